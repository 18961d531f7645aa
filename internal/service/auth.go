package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/notify"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/serr"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/store"
)

type authStore interface {
	FindByEmail(ctx context.Context, email string) (store.Contact, error)
	FindByVerificationToken(ctx context.Context, token string) (store.Contact, error)
	FindByResetToken(ctx context.Context, token string) (store.Contact, error)
	UpdateFields(ctx context.Context, id int64, f store.FieldUpdates) (store.Contact, error)
}

type hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type tokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// Auth owns the credential lifecycle: login, email verification and
// password reset. Verification and reset tokens are opaque single-use
// random strings, distinct from the signed bearer credential.
type Auth struct {
	store    authStore
	hasher   hasher
	tokens   tokenIssuer
	notifier notify.Notifier
	host     string
}

type AuthOption func(*Auth) *Auth

func WithAuthStore(st authStore) AuthOption {
	return func(a *Auth) *Auth {
		a.store = st
		return a
	}
}

func WithAuthHasher(h hasher) AuthOption {
	return func(a *Auth) *Auth {
		a.hasher = h
		return a
	}
}

func WithAuthTokens(ti tokenIssuer) AuthOption {
	return func(a *Auth) *Auth {
		a.tokens = ti
		return a
	}
}

func WithAuthNotifier(n notify.Notifier) AuthOption {
	return func(a *Auth) *Auth {
		a.notifier = n
		return a
	}
}

func WithAuthHost(host string) AuthOption {
	return func(a *Auth) *Auth {
		a.host = host
		return a
	}
}

func NewAuth(opts ...AuthOption) *Auth {
	a := &Auth{}
	for _, opt := range opts {
		a = opt(a)
	}

	if a.store == nil {
		panic("auth store is required")
	}

	if a.hasher == nil {
		panic("password hasher is required")
	}

	if a.tokens == nil {
		panic("token issuer is required")
	}

	if a.notifier == nil {
		panic("notifier is required")
	}

	return a
}

// Login checks the credentials and issues a bearer token for the
// contact's email. Unknown email, unverified account and wrong password
// all produce the same response.
func (a *Auth) Login(ctx context.Context, email, pass string) (string, error) {
	c, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", serr.New(err, http.StatusBadRequest, "incorrect email or password")
		}

		return "", fmt.Errorf("find contact: %w", err)
	}

	if !c.Verified || !a.hasher.Verify(pass, c.PasswordHash) {
		return "", serr.New(nil, http.StatusBadRequest, "incorrect email or password")
	}

	tok, err := a.tokens.Issue(c.Email, 0)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return tok, nil
}

// VerifyEmail flips the contact named by token to verified and clears
// the token in the same statement. The verified flag only ever goes
// false to true.
func (a *Auth) VerifyEmail(ctx context.Context, token string) error {
	c, err := a.store.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return serr.New(err, http.StatusBadRequest, "verification failed")
		}

		return fmt.Errorf("find contact by verification token: %w", err)
	}

	if c.Verified {
		return serr.New(nil, http.StatusBadRequest, "email already verified")
	}

	verified := true
	_, err = a.store.UpdateFields(ctx, c.ID, store.FieldUpdates{
		Verified:          &verified,
		VerificationToken: &sql.NullString{},
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return serr.New(err, http.StatusBadRequest, "verification failed")
		}

		return fmt.Errorf("verify contact: %w", err)
	}

	return nil
}

// RequestReset puts a fresh reset token on the matching record and
// notifies the address. An unknown email is a silent no-op so the
// endpoint does not leak which addresses exist.
func (a *Auth) RequestReset(ctx context.Context, email string) error {
	c, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("find contact: %w", err)
	}

	token := uuid.NewString()
	_, err = a.store.UpdateFields(ctx, c.ID, store.FieldUpdates{
		ResetToken: &sql.NullString{String: token, Valid: true},
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("set reset token: %w", err)
	}

	a.notifier.Notify(ctx, c.Email, notify.TemplateResetPassword, map[string]string{
		"token":      token,
		"host":       a.host,
		"first_name": c.FirstName,
	})

	return nil
}

// ConsumeReset changes the password for the record holding token and
// clears the token in the same statement, so one token grants exactly
// one password change.
func (a *Auth) ConsumeReset(ctx context.Context, token, newPassword string) error {
	c, err := a.store.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return serr.New(err, http.StatusBadRequest, "invalid reset token")
		}

		return fmt.Errorf("find contact by reset token: %w", err)
	}

	digest, err := a.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = a.store.UpdateFields(ctx, c.ID, store.FieldUpdates{
		PasswordHash: &digest,
		ResetToken:   &sql.NullString{},
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return serr.New(err, http.StatusBadRequest, "invalid reset token")
		}

		return fmt.Errorf("set password: %w", err)
	}

	return nil
}
