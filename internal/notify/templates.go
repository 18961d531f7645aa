package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

var subjects = map[Template]string{
	TemplateVerifyEmail:   "Welcome to Contacts",
	TemplateResetPassword: "Reset password",
}

const mailTemplates = `
{{define "verify_email"}}Hi {{.first_name}},

Please confirm your email address by opening the link below:

{{.host}}/api/auth/verify/{{.token}}
{{end}}
{{define "reset_password"}}Hi {{.first_name}},

A password reset was requested for your account. Set a new password here:

{{.host}}/reset-password/{{.token}}

If you did not request this, you can ignore this message.
{{end}}`

var templates = template.Must(template.New("emails").Parse(mailTemplates))

func render(tmpl Template, data map[string]string) (subject, body string, err error) {
	subject, ok := subjects[tmpl]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", tmpl)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(tmpl), data); err != nil {
		return "", "", fmt.Errorf("render template %q: %w", tmpl, err)
	}

	return subject, buf.String(), nil
}
