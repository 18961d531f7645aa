package service

import (
	"context"
	"time"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/notify"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/store"
)

type mockStore struct {
	findByIDFunc                func(ctx context.Context, id int64) (store.Contact, error)
	findByEmailFunc             func(ctx context.Context, email string) (store.Contact, error)
	findByVerificationTokenFunc func(ctx context.Context, token string) (store.Contact, error)
	findByResetTokenFunc        func(ctx context.Context, token string) (store.Contact, error)
	insertFunc                  func(ctx context.Context, r store.InsertRequest) (store.Contact, error)
	updateFieldsFunc            func(ctx context.Context, id int64, f store.FieldUpdates) (store.Contact, error)
	deleteFunc                  func(ctx context.Context, id int64) error
	listPaginatedFunc           func(ctx context.Context, r store.ListRequest) ([]store.Contact, error)
	searchFunc                  func(ctx context.Context, r store.SearchRequest) ([]store.Contact, error)
	findByBirthdayWindowFunc    func(ctx context.Context, startMD, endMD int) ([]store.Contact, error)
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (store.Contact, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockStore) FindByEmail(ctx context.Context, email string) (store.Contact, error) {
	return m.findByEmailFunc(ctx, email)
}

func (m *mockStore) FindByVerificationToken(ctx context.Context, token string) (store.Contact, error) {
	return m.findByVerificationTokenFunc(ctx, token)
}

func (m *mockStore) FindByResetToken(ctx context.Context, token string) (store.Contact, error) {
	return m.findByResetTokenFunc(ctx, token)
}

func (m *mockStore) Insert(ctx context.Context, r store.InsertRequest) (store.Contact, error) {
	return m.insertFunc(ctx, r)
}

func (m *mockStore) UpdateFields(ctx context.Context, id int64, f store.FieldUpdates) (store.Contact, error) {
	return m.updateFieldsFunc(ctx, id, f)
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockStore) ListPaginated(ctx context.Context, r store.ListRequest) ([]store.Contact, error) {
	return m.listPaginatedFunc(ctx, r)
}

func (m *mockStore) Search(ctx context.Context, r store.SearchRequest) ([]store.Contact, error) {
	return m.searchFunc(ctx, r)
}

func (m *mockStore) FindByBirthdayWindow(ctx context.Context, startMD, endMD int) ([]store.Contact, error) {
	return m.findByBirthdayWindowFunc(ctx, startMD, endMD)
}

type mockHasher struct {
	hashFunc   func(plaintext string) (string, error)
	verifyFunc func(plaintext, digest string) bool
}

func (m *mockHasher) Hash(plaintext string) (string, error) {
	return m.hashFunc(plaintext)
}

func (m *mockHasher) Verify(plaintext, digest string) bool {
	return m.verifyFunc(plaintext, digest)
}

func newMockHasher() *mockHasher {
	return &mockHasher{
		hashFunc: func(plaintext string) (string, error) {
			return "hashed:" + plaintext, nil
		},
		verifyFunc: func(plaintext, digest string) bool {
			return digest == "hashed:"+plaintext
		},
	}
}

type mockIssuer struct {
	issueFunc    func(subject string, ttl time.Duration) (string, error)
	validateFunc func(raw string) (string, error)
}

func (m *mockIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	return m.issueFunc(subject, ttl)
}

func (m *mockIssuer) Validate(raw string) (string, error) {
	return m.validateFunc(raw)
}

type notification struct {
	email    string
	template notify.Template
	data     map[string]string
}

type mockNotifier struct {
	sent []notification
}

func (m *mockNotifier) Notify(ctx context.Context, email string, template notify.Template, data map[string]string) {
	m.sent = append(m.sent, notification{email: email, template: template, data: data})
}

// fakeCache is an in-memory cache with no expiry; tests drive staleness
// by clearing entries explicitly.
type fakeCache struct {
	entries map[string][]byte
	gets    int
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) TryGet(ctx context.Context, key string) ([]byte, bool, error) {
	f.gets++
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fakeCache) Put(ctx context.Context, key string, value []byte) error {
	f.puts++
	f.entries[key] = value
	return nil
}
