package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/httpx"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/middleware"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/serr"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/service"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/store"
)

const (
	defaultListLimit    = 10
	defaultBirthdayDays = 7
)

type authService interface {
	Login(ctx context.Context, email, pass string) (string, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestReset(ctx context.Context, email string) error
	ConsumeReset(ctx context.Context, token, newPassword string) error
}

type contactsService interface {
	List(ctx context.Context, skip, limit int) ([]store.Contact, error)
	GetByID(ctx context.Context, id int64) (store.Contact, error)
	Create(ctx context.Context, r service.CreateRequest) (store.Contact, error)
	Update(ctx context.Context, id int64, r service.UpdateRequest) (store.Contact, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, r service.SearchRequest) ([]store.Contact, error)
	BirthdayWindow(ctx context.Context, days int) ([]store.Contact, error)
}

type identityResolver interface {
	ResolveCached(ctx context.Context, rawToken string) (service.Identity, error)
	RequireAdmin(id service.Identity) error
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type API struct {
	auth     authService
	contacts contactsService
	resolver identityResolver
	db       pinger
	mux      *http.ServeMux
}

func NewAPI(auth authService, contacts contactsService, resolver identityResolver, db pinger) *API {
	api := &API{
		auth:     auth,
		contacts: contacts,
		resolver: resolver,
		db:       db,
		mux:      http.NewServeMux(),
	}
	api.mount()
	return api
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) mount() {
	a.mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	a.mux.HandleFunc("GET /api/auth/verify/{token}", a.handleVerify)
	a.mux.HandleFunc("POST /api/auth/set-password/{token}", a.handleSetPassword)

	a.mux.HandleFunc("POST /api/contacts/signup", a.handleSignup)
	a.mux.HandleFunc("POST /api/contacts/reset-password/{email}", a.handleResetPassword)

	authed := middleware.Auth(a.resolver)
	protect := func(h http.HandlerFunc) http.Handler {
		return authed(h)
	}

	a.mux.Handle("GET /api/contacts", protect(a.handleList))
	a.mux.Handle("GET /api/contacts/search", protect(a.handleSearch))
	a.mux.Handle("GET /api/contacts/soon_celebrate", protect(a.handleSoonCelebrate))
	a.mux.Handle("GET /api/contacts/me", protect(a.handleMe))
	a.mux.Handle("GET /api/contacts/{id}", protect(a.handleGet))
	a.mux.Handle("PATCH /api/contacts/{id}", protect(a.handleUpdate))
	a.mux.Handle("DELETE /api/contacts/{id}", protect(a.handleDelete))

	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)
}

type contactResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	BirthDay  string `json:"birth_day"`
	Avatar    string `json:"avatar"`
	Verified  bool   `json:"verified"`
}

func toContactResponse(c store.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Role:      string(c.Role),
		BirthDay:  c.BirthDay.Format(time.DateOnly),
		Avatar:    c.Avatar,
		Verified:  c.Verified,
	}
}

func toContactResponses(contacts []store.Contact) []contactResponse {
	out := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}

	return out
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := httpx.ReadJSON(r, &req)
	if err != nil {
		httpx.HandleErr(w, r, serr.New(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	token, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type verifyResponse struct {
	Message string `json:"message"`
}

func (a *API) handleVerify(w http.ResponseWriter, r *http.Request) {
	err := a.auth.VerifyEmail(r.Context(), r.PathValue("token"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, verifyResponse{Message: "Verified"})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

func (a *API) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	err := httpx.ReadJSON(r, &req)
	if err != nil {
		httpx.HandleErr(w, r, serr.New(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	err = a.auth.ConsumeReset(r.Context(), r.PathValue("token"), req.Password)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDay  string `json:"birth_day"`
	Password  string `json:"password"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	err := httpx.ReadJSON(r, &req)
	if err != nil {
		httpx.HandleErr(w, r, serr.New(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	birthDay, err := time.Parse(time.DateOnly, req.BirthDay)
	if err != nil {
		httpx.HandleErr(w, r, serr.New(err, http.StatusBadRequest, "invalid birth_day, expected YYYY-MM-DD"))
		return
	}

	c, err := a.contacts.Create(r.Context(), service.CreateRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDay:  birthDay,
		Password:  req.Password,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusCreated, toContactResponse(c))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	err := a.auth.RequestReset(r.Context(), r.PathValue("email"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultListLimit)

	contacts, err := a.contacts.List(r.Context(), skip, limit)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toContactResponses(contacts))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contacts, err := a.contacts.Search(r.Context(), service.SearchRequest{
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
		Email:     q.Get("email"),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toContactResponses(contacts))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (a *API) handleSoonCelebrate(w http.ResponseWriter, r *http.Request) {
	contacts, err := a.contacts.BirthdayWindow(r.Context(), defaultBirthdayDays)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toContactResponses(contacts))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())

	err := httpx.WriteJSON(w, http.StatusOK, id)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	c, err := a.contacts.GetByID(r.Context(), id)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toContactResponse(c))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type updateContactRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	BirthDay  *string `json:"birth_day"`
}

func (a *API) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := a.requireAdmin(r); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	id, err := idFromRequest(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req updateContactRequest
	err = httpx.ReadJSON(r, &req)
	if err != nil {
		httpx.HandleErr(w, r, serr.New(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	upd := service.UpdateRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if req.BirthDay != nil {
		birthDay, err := time.Parse(time.DateOnly, *req.BirthDay)
		if err != nil {
			httpx.HandleErr(w, r, serr.New(err, http.StatusBadRequest, "invalid birth_day, expected YYYY-MM-DD"))
			return
		}
		upd.BirthDay = &birthDay
	}

	c, err := a.contacts.Update(r.Context(), id, upd)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toContactResponse(c))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.requireAdmin(r); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	id, err := idFromRequest(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = a.contacts.Delete(r.Context(), id)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		httpx.HandleErr(w, r, serr.New(err, http.StatusServiceUnavailable, "storage unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *API) requireAdmin(r *http.Request) error {
	return a.resolver.RequireAdmin(middleware.IdentityFromContext(r.Context()))
}

func idFromRequest(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, serr.New(err, http.StatusBadRequest, "invalid id parameter")
	}

	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}
