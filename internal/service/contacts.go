package service

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/notify"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/serr"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/store"
)

type contactsStore interface {
	FindByID(ctx context.Context, id int64) (store.Contact, error)
	FindByEmail(ctx context.Context, email string) (store.Contact, error)
	Insert(ctx context.Context, r store.InsertRequest) (store.Contact, error)
	UpdateFields(ctx context.Context, id int64, f store.FieldUpdates) (store.Contact, error)
	Delete(ctx context.Context, id int64) error
	ListPaginated(ctx context.Context, r store.ListRequest) ([]store.Contact, error)
	Search(ctx context.Context, r store.SearchRequest) ([]store.Contact, error)
	FindByBirthdayWindow(ctx context.Context, startMD, endMD int) ([]store.Contact, error)
}

// Contacts manages contact records: account creation, CRUD,
// multi-field search and birthday-window queries.
type Contacts struct {
	store    contactsStore
	hasher   hasher
	notifier notify.Notifier
	host     string
	now      func() time.Time
}

type ContactsOption func(*Contacts) *Contacts

func WithContactsStore(st contactsStore) ContactsOption {
	return func(c *Contacts) *Contacts {
		c.store = st
		return c
	}
}

func WithContactsHasher(h hasher) ContactsOption {
	return func(c *Contacts) *Contacts {
		c.hasher = h
		return c
	}
}

func WithContactsNotifier(n notify.Notifier) ContactsOption {
	return func(c *Contacts) *Contacts {
		c.notifier = n
		return c
	}
}

func WithContactsHost(host string) ContactsOption {
	return func(c *Contacts) *Contacts {
		c.host = host
		return c
	}
}

func WithContactsClock(now func() time.Time) ContactsOption {
	return func(c *Contacts) *Contacts {
		c.now = now
		return c
	}
}

func NewContacts(opts ...ContactsOption) *Contacts {
	c := &Contacts{now: time.Now}
	for _, opt := range opts {
		c = opt(c)
	}

	if c.store == nil {
		panic("contacts store is required")
	}

	if c.hasher == nil {
		panic("password hasher is required")
	}

	if c.notifier == nil {
		panic("notifier is required")
	}

	return c
}

func (s *Contacts) List(ctx context.Context, skip, limit int) ([]store.Contact, error) {
	contacts, err := s.store.ListPaginated(ctx, store.ListRequest{Skip: skip, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	return contacts, nil
}

func (s *Contacts) GetByID(ctx context.Context, id int64) (store.Contact, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Contact{}, serr.New(err, http.StatusNotFound, "contact not found")
		}

		return store.Contact{}, fmt.Errorf("get contact: %w", err)
	}

	return c, nil
}

func (s *Contacts) GetByEmail(ctx context.Context, email string) (store.Contact, error) {
	c, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Contact{}, serr.New(err, http.StatusNotFound, "contact not found")
		}

		return store.Contact{}, fmt.Errorf("get contact: %w", err)
	}

	return c, nil
}

type CreateRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	BirthDay  time.Time
	Password  string
}

// Create registers a new unverified contact. The password is hashed
// before it ever reaches the store, a verification token is assigned and
// mailed to the address.
func (s *Contacts) Create(ctx context.Context, r CreateRequest) (store.Contact, error) {
	_, err := s.store.FindByEmail(ctx, r.Email)
	if err == nil {
		return store.Contact{}, serr.New(store.ErrExists, http.StatusConflict, "contact already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.Contact{}, fmt.Errorf("check existing contact: %w", err)
	}

	digest, err := s.hasher.Hash(r.Password)
	if err != nil {
		return store.Contact{}, fmt.Errorf("hash password: %w", err)
	}

	token := uuid.NewString()
	c, err := s.store.Insert(ctx, store.InsertRequest{
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		Email:             r.Email,
		Phone:             r.Phone,
		BirthDay:          r.BirthDay,
		Avatar:            gravatarURL(r.Email),
		PasswordHash:      digest,
		VerificationToken: token,
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			return store.Contact{}, serr.New(err, http.StatusConflict, "contact already exists")
		}

		return store.Contact{}, fmt.Errorf("insert contact: %w", err)
	}

	s.notifier.Notify(ctx, c.Email, notify.TemplateVerifyEmail, map[string]string{
		"token":      token,
		"host":       s.host,
		"first_name": c.FirstName,
	})

	return c, nil
}

type UpdateRequest struct {
	FirstName *string
	LastName  *string
	Phone     *string
	BirthDay  *time.Time
}

func (s *Contacts) Update(ctx context.Context, id int64, r UpdateRequest) (store.Contact, error) {
	c, err := s.store.UpdateFields(ctx, id, store.FieldUpdates{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		BirthDay:  r.BirthDay,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Contact{}, serr.New(err, http.StatusNotFound, "contact not found")
		}

		return store.Contact{}, fmt.Errorf("update contact: %w", err)
	}

	return c, nil
}

func (s *Contacts) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return serr.New(err, http.StatusNotFound, "contact not found")
		}

		return fmt.Errorf("delete contact: %w", err)
	}

	return nil
}

type SearchRequest struct {
	FirstName string
	LastName  string
	Email     string
}

// Search requires at least one filter; an unfiltered search would be an
// unbounded scan.
func (s *Contacts) Search(ctx context.Context, r SearchRequest) ([]store.Contact, error) {
	if r.FirstName == "" && r.LastName == "" && r.Email == "" {
		return nil, serr.New(nil, http.StatusBadRequest, "no search parameters provided")
	}

	contacts, err := s.store.Search(ctx, store.SearchRequest{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}

	return contacts, nil
}

// BirthdayWindow returns contacts whose birthday falls within
// [today, today+days], compared by month and day only. A window that
// crosses Dec 31 is split into two month-day ranges and the results
// merged; a naive single range would come back empty or reversed.
func (s *Contacts) BirthdayWindow(ctx context.Context, days int) ([]store.Contact, error) {
	if days < 0 {
		return nil, serr.New(nil, http.StatusBadRequest, "days must be non-negative")
	}

	today := s.now()
	end := today.AddDate(0, 0, days)

	startMD := monthDay(today)
	endMD := monthDay(end)

	if startMD <= endMD {
		contacts, err := s.store.FindByBirthdayWindow(ctx, startMD, endMD)
		if err != nil {
			return nil, fmt.Errorf("birthday window: %w", err)
		}

		return contacts, nil
	}

	tail, err := s.store.FindByBirthdayWindow(ctx, startMD, monthDay(time.Date(1, 12, 31, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		return nil, fmt.Errorf("birthday window: %w", err)
	}

	head, err := s.store.FindByBirthdayWindow(ctx, monthDay(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)), endMD)
	if err != nil {
		return nil, fmt.Errorf("birthday window: %w", err)
	}

	return append(tail, head...), nil
}

// monthDay encodes a date as month*100+day for year-agnostic range
// comparison in the store.
func monthDay(t time.Time) int {
	return int(t.Month())*100 + t.Day()
}

func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x", sum)
}
