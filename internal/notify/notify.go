// Package notify delivers transactional email to contacts. Delivery is
// fire and forget from the caller's perspective: failures are logged,
// never propagated into the flow that triggered them.
package notify

import "context"

type Template string

const (
	TemplateVerifyEmail   Template = "verify_email"
	TemplateResetPassword Template = "reset_password"
)

type Notifier interface {
	Notify(ctx context.Context, email string, template Template, data map[string]string)
}
