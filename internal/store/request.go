package store

import (
	"database/sql"
	"time"
)

type InsertRequest struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	BirthDay          time.Time
	Avatar            string
	PasswordHash      string
	VerificationToken string
}

// FieldUpdates names the columns to change in a single UPDATE. A nil
// field is left untouched. The token fields use sql.NullString so a
// pending token can be cleared (set to NULL) in the same statement as
// the state change it authorizes.
type FieldUpdates struct {
	FirstName         *string
	LastName          *string
	Phone             *string
	BirthDay          *time.Time
	Avatar            *string
	Role              *Role
	PasswordHash      *string
	Verified          *bool
	VerificationToken *sql.NullString
	ResetToken        *sql.NullString
}

type ListRequest struct {
	Skip  int
	Limit int
}

// SearchRequest filters combine as logical AND; empty fields are
// ignored. Matching is a case-insensitive substring match.
type SearchRequest struct {
	FirstName string
	LastName  string
	Email     string
}
