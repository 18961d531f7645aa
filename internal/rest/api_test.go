package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/serr"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/service"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/store"
)

type mockAuthService struct {
	LoginFunc        func(ctx context.Context, email, pass string) (string, error)
	VerifyEmailFunc  func(ctx context.Context, token string) error
	RequestResetFunc func(ctx context.Context, email string) error
	ConsumeResetFunc func(ctx context.Context, token, newPassword string) error
}

func (m *mockAuthService) Login(ctx context.Context, email, pass string) (string, error) {
	return m.LoginFunc(ctx, email, pass)
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) error {
	return m.VerifyEmailFunc(ctx, token)
}

func (m *mockAuthService) RequestReset(ctx context.Context, email string) error {
	return m.RequestResetFunc(ctx, email)
}

func (m *mockAuthService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	return m.ConsumeResetFunc(ctx, token, newPassword)
}

type mockContactsService struct {
	ListFunc           func(ctx context.Context, skip, limit int) ([]store.Contact, error)
	GetByIDFunc        func(ctx context.Context, id int64) (store.Contact, error)
	CreateFunc         func(ctx context.Context, r service.CreateRequest) (store.Contact, error)
	UpdateFunc         func(ctx context.Context, id int64, r service.UpdateRequest) (store.Contact, error)
	DeleteFunc         func(ctx context.Context, id int64) error
	SearchFunc         func(ctx context.Context, r service.SearchRequest) ([]store.Contact, error)
	BirthdayWindowFunc func(ctx context.Context, days int) ([]store.Contact, error)
}

func (m *mockContactsService) List(ctx context.Context, skip, limit int) ([]store.Contact, error) {
	return m.ListFunc(ctx, skip, limit)
}

func (m *mockContactsService) GetByID(ctx context.Context, id int64) (store.Contact, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockContactsService) Create(ctx context.Context, r service.CreateRequest) (store.Contact, error) {
	return m.CreateFunc(ctx, r)
}

func (m *mockContactsService) Update(ctx context.Context, id int64, r service.UpdateRequest) (store.Contact, error) {
	return m.UpdateFunc(ctx, id, r)
}

func (m *mockContactsService) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockContactsService) Search(ctx context.Context, r service.SearchRequest) ([]store.Contact, error) {
	return m.SearchFunc(ctx, r)
}

func (m *mockContactsService) BirthdayWindow(ctx context.Context, days int) ([]store.Contact, error) {
	return m.BirthdayWindowFunc(ctx, days)
}

type mockResolver struct {
	identity service.Identity
	err      error
}

func (m *mockResolver) ResolveCached(ctx context.Context, rawToken string) (service.Identity, error) {
	return m.identity, m.err
}

func (m *mockResolver) RequireAdmin(id service.Identity) error {
	if id.Role != store.RoleAdmin {
		return serr.New(nil, http.StatusForbidden, "admin role required")
	}

	return nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

func newTestAPI(auth authService, contacts contactsService, resolver identityResolver) *API {
	if auth == nil {
		auth = &mockAuthService{}
	}
	if contacts == nil {
		contacts = &mockContactsService{}
	}
	if resolver == nil {
		resolver = &mockResolver{identity: service.Identity{Email: "olha@example.com", Role: store.RoleUser}}
	}

	return NewAPI(auth, contacts, resolver, &mockPinger{})
}

func sendRequest(t *testing.T, h http.Handler, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var bodyRW strings.Builder
	enc := json.NewEncoder(&bodyRW)
	err := enc.Encode(body)
	require.NoError(t, err)

	req, err := http.NewRequest(method, path, strings.NewReader(bodyRW.String()))
	require.NoError(t, err)
	if authed {
		req.Header.Set("Authorization", "Bearer test-token")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func parseResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	dec := json.NewDecoder(rec.Body)
	var resp T
	err := dec.Decode(&resp)
	require.NoError(t, err)

	return resp
}

func sampleContact() store.Contact {
	return store.Contact{
		ID:        1,
		FirstName: "Olha",
		LastName:  "Koval",
		Email:     "olha@example.com",
		Phone:     "+380501234567",
		Role:      store.RoleUser,
		BirthDay:  time.Date(1994, 12, 28, 0, 0, 0, 0, time.UTC),
		Verified:  true,
	}
}

func TestLogin(t *testing.T) {
	api := newTestAPI(&mockAuthService{
		LoginFunc: func(ctx context.Context, email, pass string) (string, error) {
			if email == "olha@example.com" && pass == "secret" {
				return "signed-token", nil
			}

			return "", errors.New("unexpected credentials")
		},
	}, nil, nil)

	rec := sendRequest(t, api, "POST", "/api/auth/login", loginRequest{
		Email:    "olha@example.com",
		Password: "secret",
	}, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := parseResponse[loginResponse](t, rec)
	assert.Equal(t, "signed-token", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestLogin_BadCredentials(t *testing.T) {
	api := newTestAPI(&mockAuthService{
		LoginFunc: func(ctx context.Context, email, pass string) (string, error) {
			return "", serr.New(nil, http.StatusBadRequest, "incorrect email or password")
		},
	}, nil, nil)

	rec := sendRequest(t, api, "POST", "/api/auth/login", loginRequest{}, false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrect email or password")
}

func TestVerify(t *testing.T) {
	api := newTestAPI(&mockAuthService{
		VerifyEmailFunc: func(ctx context.Context, token string) error {
			if token != "verify-123" {
				return errors.New("unexpected token")
			}

			return nil
		},
	}, nil, nil)

	rec := sendRequest(t, api, "GET", "/api/auth/verify/verify-123", nil, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := parseResponse[verifyResponse](t, rec)
	assert.Equal(t, "Verified", resp.Message)
}

func TestSetPassword(t *testing.T) {
	api := newTestAPI(&mockAuthService{
		ConsumeResetFunc: func(ctx context.Context, token, newPassword string) error {
			if token == "reset-123" && newPassword == "new-secret" {
				return nil
			}

			return errors.New("unexpected arguments")
		},
	}, nil, nil)

	rec := sendRequest(t, api, "POST", "/api/auth/set-password/reset-123", setPasswordRequest{
		Password: "new-secret",
	}, false)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSignup(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{
		CreateFunc: func(ctx context.Context, r service.CreateRequest) (store.Contact, error) {
			assert.Equal(t, "olha@example.com", r.Email)
			assert.Equal(t, time.Date(1994, 12, 28, 0, 0, 0, 0, time.UTC), r.BirthDay)
			return sampleContact(), nil
		},
	}, nil)

	rec := sendRequest(t, api, "POST", "/api/contacts/signup", signupRequest{
		FirstName: "Olha",
		LastName:  "Koval",
		Email:     "olha@example.com",
		Phone:     "+380501234567",
		BirthDay:  "1994-12-28",
		Password:  "secret",
	}, false)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := parseResponse[contactResponse](t, rec)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "1994-12-28", resp.BirthDay)
}

func TestSignup_BadDate(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{}, nil)

	rec := sendRequest(t, api, "POST", "/api/contacts/signup", signupRequest{
		Email:    "olha@example.com",
		BirthDay: "28.12.1994",
		Password: "secret",
	}, false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetPassword_AlwaysNoContent(t *testing.T) {
	api := newTestAPI(&mockAuthService{
		RequestResetFunc: func(ctx context.Context, email string) error {
			return nil
		},
	}, nil, nil)

	rec := sendRequest(t, api, "POST", "/api/contacts/reset-password/nobody@example.com", nil, false)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListContacts(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{
		ListFunc: func(ctx context.Context, skip, limit int) ([]store.Contact, error) {
			assert.Equal(t, 0, skip)
			assert.Equal(t, 10, limit)
			return []store.Contact{sampleContact()}, nil
		},
	}, nil)

	rec := sendRequest(t, api, "GET", "/api/contacts", nil, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := parseResponse[[]contactResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "olha@example.com", resp[0].Email)
}

func TestListContacts_Unauthorized(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{}, nil)

	rec := sendRequest(t, api, "GET", "/api/contacts", nil, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListContacts_Pagination(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{
		ListFunc: func(ctx context.Context, skip, limit int) ([]store.Contact, error) {
			assert.Equal(t, 20, skip)
			assert.Equal(t, 5, limit)
			return nil, nil
		},
	}, nil)

	rec := sendRequest(t, api, "GET", "/api/contacts?skip=20&limit=5", nil, true)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchContacts(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{
		SearchFunc: func(ctx context.Context, r service.SearchRequest) ([]store.Contact, error) {
			assert.Equal(t, service.SearchRequest{FirstName: "ol", Email: "example"}, r)
			return []store.Contact{sampleContact()}, nil
		},
	}, nil)

	rec := sendRequest(t, api, "GET", "/api/contacts/search?first_name=ol&email=example", nil, true)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSoonCelebrate(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{
		BirthdayWindowFunc: func(ctx context.Context, days int) ([]store.Contact, error) {
			assert.Equal(t, 7, days)
			return []store.Contact{sampleContact()}, nil
		},
	}, nil)

	rec := sendRequest(t, api, "GET", "/api/contacts/soon_celebrate", nil, true)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMe(t *testing.T) {
	api := newTestAPI(nil, nil, &mockResolver{
		identity: service.Identity{ID: 7, Email: "olha@example.com", Role: store.RoleUser},
	})

	rec := sendRequest(t, api, "GET", "/api/contacts/me", nil, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := parseResponse[service.Identity](t, rec)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "olha@example.com", resp.Email)
}

func TestGetContact(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{
		GetByIDFunc: func(ctx context.Context, id int64) (store.Contact, error) {
			if id != 1 {
				return store.Contact{}, serr.New(store.ErrNotFound, http.StatusNotFound, "contact not found")
			}

			return sampleContact(), nil
		},
	}, nil)

	rec := sendRequest(t, api, "GET", "/api/contacts/1", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = sendRequest(t, api, "GET", "/api/contacts/42", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateContact_RequiresAdmin(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{}, &mockResolver{
		identity: service.Identity{Role: store.RoleUser},
	})

	rec := sendRequest(t, api, "PATCH", "/api/contacts/1", updateContactRequest{}, true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateContact_Admin(t *testing.T) {
	name := "Renamed"
	api := newTestAPI(nil, &mockContactsService{
		UpdateFunc: func(ctx context.Context, id int64, r service.UpdateRequest) (store.Contact, error) {
			assert.Equal(t, int64(1), id)
			require.NotNil(t, r.FirstName)
			assert.Equal(t, "Renamed", *r.FirstName)
			c := sampleContact()
			c.FirstName = *r.FirstName
			return c, nil
		},
	}, &mockResolver{
		identity: service.Identity{Role: store.RoleAdmin},
	})

	rec := sendRequest(t, api, "PATCH", "/api/contacts/1", updateContactRequest{FirstName: &name}, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := parseResponse[contactResponse](t, rec)
	assert.Equal(t, "Renamed", resp.FirstName)
}

func TestDeleteContact_RequiresAdmin(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{}, &mockResolver{
		identity: service.Identity{Role: store.RoleUser},
	})

	rec := sendRequest(t, api, "DELETE", "/api/contacts/1", nil, true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteContact_Admin(t *testing.T) {
	api := newTestAPI(nil, &mockContactsService{
		DeleteFunc: func(ctx context.Context, id int64) error {
			if id != 1 {
				return errors.New("unexpected id")
			}

			return nil
		},
	}, &mockResolver{
		identity: service.Identity{Role: store.RoleAdmin},
	})

	rec := sendRequest(t, api, "DELETE", "/api/contacts/1", nil, true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(nil, nil, nil)

	rec := sendRequest(t, api, "GET", "/healthz", nil, false)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_StorageDown(t *testing.T) {
	api := NewAPI(&mockAuthService{}, &mockContactsService{}, &mockResolver{}, &mockPinger{
		err: errors.New("connection refused"),
	})

	rec := sendRequest(t, api, "GET", "/readyz", nil, false)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
