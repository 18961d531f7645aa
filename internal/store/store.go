package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Store is the repository contract for contact records. Absence is
// reported as ErrNotFound, a duplicate email as ErrExists; any other
// error is a storage failure the caller propagates unchanged.
type Store interface {
	FindByID(ctx context.Context, id int64) (Contact, error)
	FindByEmail(ctx context.Context, email string) (Contact, error)
	FindByVerificationToken(ctx context.Context, token string) (Contact, error)
	FindByResetToken(ctx context.Context, token string) (Contact, error)
	Insert(ctx context.Context, r InsertRequest) (Contact, error)
	UpdateFields(ctx context.Context, id int64, f FieldUpdates) (Contact, error)
	Delete(ctx context.Context, id int64) error
	ListPaginated(ctx context.Context, r ListRequest) ([]Contact, error)
	Search(ctx context.Context, r SearchRequest) ([]Contact, error)
	FindByBirthdayWindow(ctx context.Context, startMD, endMD int) ([]Contact, error)
}
