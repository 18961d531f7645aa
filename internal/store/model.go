package store

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Model struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contact is the durable identity record. The store is the system of
// record; every other component holds it transiently.
type Contact struct {
	Model
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Role         Role
	BirthDay     time.Time
	Avatar       string
	PasswordHash string
	Verified     bool

	// Single-use opaque tokens. Present only while the corresponding
	// operation is pending; cleared in the same statement that applies
	// the state change they authorize.
	VerificationToken *string
	ResetToken        *string
}
