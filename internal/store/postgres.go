package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const errUniqueViolation pq.ErrorCode = "23505"

const contactColumns = `id, first_name, last_name, email, phone, role, birth_day, avatar,
	password, verified, verification_token, password_reset_token, created_at, updated_at`

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

// PostgresStore implements the Store interface using a Postgres database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresDB creates a new Postgres database connection.
func NewPostgresDB(cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (Contact, error) {
	return s.findBy(ctx, "id = $1", id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Contact, error) {
	return s.findBy(ctx, "email = $1", email)
}

func (s *PostgresStore) FindByVerificationToken(ctx context.Context, token string) (Contact, error) {
	return s.findBy(ctx, "verification_token = $1", token)
}

func (s *PostgresStore) FindByResetToken(ctx context.Context, token string) (Contact, error) {
	return s.findBy(ctx, "password_reset_token = $1", token)
}

func (s *PostgresStore) findBy(ctx context.Context, cond string, arg any) (Contact, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE "+cond, arg)

	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}

		return Contact{}, fmt.Errorf("scan contact: %w", err)
	}

	return c, nil
}

func (s *PostgresStore) Insert(ctx context.Context, r InsertRequest) (Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO contacts (first_name, last_name, email, phone, birth_day, avatar, password, verification_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+contactColumns,
		r.FirstName,
		r.LastName,
		r.Email,
		r.Phone,
		r.BirthDay,
		r.Avatar,
		r.PasswordHash,
		r.VerificationToken)

	c, err := scanContact(row)
	if err != nil {
		if isPqErr(err, errUniqueViolation) {
			return Contact{}, ErrExists
		}

		return Contact{}, fmt.Errorf("insert contact: %w", err)
	}

	return c, nil
}

// UpdateFields applies the non-nil fields of f to one record in a single
// UPDATE and returns the updated row, or ErrNotFound if the record is
// absent. Resolve and act happen in one round trip.
func (s *PostgresStore) UpdateFields(ctx context.Context, id int64, f FieldUpdates) (Contact, error) {
	set := []string{"updated_at = now()"}
	var args []any

	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if f.FirstName != nil {
		add("first_name", *f.FirstName)
	}
	if f.LastName != nil {
		add("last_name", *f.LastName)
	}
	if f.Phone != nil {
		add("phone", *f.Phone)
	}
	if f.BirthDay != nil {
		add("birth_day", *f.BirthDay)
	}
	if f.Avatar != nil {
		add("avatar", *f.Avatar)
	}
	if f.Role != nil {
		add("role", string(*f.Role))
	}
	if f.PasswordHash != nil {
		add("password", *f.PasswordHash)
	}
	if f.Verified != nil {
		add("verified", *f.Verified)
	}
	if f.VerificationToken != nil {
		add("verification_token", *f.VerificationToken)
	}
	if f.ResetToken != nil {
		add("password_reset_token", *f.ResetToken)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE contacts SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), contactColumns)

	c, err := scanContact(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		if isPqErr(err, errUniqueViolation) {
			return Contact{}, ErrExists
		}

		return Contact{}, fmt.Errorf("update contact: %w", err)
	}

	return c, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) ListPaginated(ctx context.Context, r ListRequest) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+contactColumns+" FROM contacts ORDER BY id OFFSET $1 LIMIT $2",
		r.Skip, r.Limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

func (s *PostgresStore) Search(ctx context.Context, r SearchRequest) ([]Contact, error) {
	var conds []string
	var args []any

	filter := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", col, len(args)))
	}

	filter("first_name", r.FirstName)
	filter("last_name", r.LastName)
	filter("email", r.Email)

	query := "SELECT " + contactColumns + " FROM contacts"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

// FindByBirthdayWindow returns contacts whose birth day falls within the
// inclusive month-day range [startMD, endMD], year ignored. Month-day
// values are encoded as month*100+day; callers split a year-wrapping
// window into two calls.
func (s *PostgresStore) FindByBirthdayWindow(ctx context.Context, startMD, endMD int) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts
		 WHERE EXTRACT(MONTH FROM birth_day)::int * 100 + EXTRACT(DAY FROM birth_day)::int BETWEEN $1 AND $2`,
		startMD, endMD)
	if err != nil {
		return nil, fmt.Errorf("find by birthday window: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Role,
		&c.BirthDay,
		&c.Avatar,
		&c.PasswordHash,
		&c.Verified,
		&c.VerificationToken,
		&c.ResetToken,
		&c.CreatedAt,
		&c.UpdatedAt)

	return c, err
}

func collectContacts(rows *sql.Rows) ([]Contact, error) {
	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}

	return contacts, nil
}

func isPqErr(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code == code
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
