package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/cache"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/serr"
	"github.com/asaulyak/goit-pythonweb-hw-012/internal/store"
)

// Identity is the public-safe projection of a contact record: no
// password hash, no pending tokens. It is what gets cached and what the
// REST layer serializes.
type Identity struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      store.Role `json:"role"`
	BirthDay  time.Time  `json:"birth_day"`
	Avatar    string     `json:"avatar"`
	Verified  bool       `json:"verified"`
}

func IdentityOf(c store.Contact) Identity {
	return Identity{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Role:      c.Role,
		BirthDay:  c.BirthDay,
		Avatar:    c.Avatar,
		Verified:  c.Verified,
	}
}

const identityCacheKeyPrefix = "current_user_"

type tokenValidator interface {
	Validate(raw string) (string, error)
}

type identityStore interface {
	FindByEmail(ctx context.Context, email string) (store.Contact, error)
}

// Resolver turns a bearer credential into an identity, optionally
// through a TTL-bounded snapshot cache.
type Resolver struct {
	tokens tokenValidator
	store  identityStore
	cache  cache.Cache
}

type ResolverOption func(*Resolver) *Resolver

func WithResolverTokens(tv tokenValidator) ResolverOption {
	return func(r *Resolver) *Resolver {
		r.tokens = tv
		return r
	}
}

func WithResolverStore(st identityStore) ResolverOption {
	return func(r *Resolver) *Resolver {
		r.store = st
		return r
	}
}

func WithResolverCache(c cache.Cache) ResolverOption {
	return func(r *Resolver) *Resolver {
		r.cache = c
		return r
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		r = opt(r)
	}

	if r.tokens == nil {
		panic("token validator is required")
	}

	if r.store == nil {
		panic("identity store is required")
	}

	if r.cache == nil {
		panic("snapshot cache is required")
	}

	return r
}

// Resolve validates the credential and loads the identity it names
// straight from storage.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (store.Contact, error) {
	subject, err := r.tokens.Validate(rawToken)
	if err != nil {
		return store.Contact{}, serr.New(err, http.StatusUnauthorized, "could not validate credentials")
	}

	c, err := r.store.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Contact{}, serr.New(err, http.StatusUnauthorized, "could not validate credentials")
		}

		return store.Contact{}, fmt.Errorf("load identity: %w", err)
	}

	return c, nil
}

// ResolveCached is Resolve behind a cache-aside lookup. A hit within the
// TTL skips storage entirely; a miss resolves and stores the public-safe
// projection under the subject's key. Entries are never invalidated on
// mutation, so a snapshot may lag storage by up to the TTL.
func (r *Resolver) ResolveCached(ctx context.Context, rawToken string) (Identity, error) {
	subject, err := r.tokens.Validate(rawToken)
	if err != nil {
		return Identity{}, serr.New(err, http.StatusUnauthorized, "could not validate credentials")
	}

	key := identityCacheKeyPrefix + subject
	cached, found, err := r.cache.TryGet(ctx, key)
	if err != nil {
		return Identity{}, fmt.Errorf("read identity cache: %w", err)
	}

	if found {
		var id Identity
		if err := json.Unmarshal(cached, &id); err != nil {
			return Identity{}, fmt.Errorf("decode cached identity: %w", err)
		}

		return id, nil
	}

	c, err := r.Resolve(ctx, rawToken)
	if err != nil {
		return Identity{}, err
	}

	id := IdentityOf(c)
	snapshot, err := json.Marshal(id)
	if err != nil {
		return Identity{}, fmt.Errorf("encode identity snapshot: %w", err)
	}

	if err := r.cache.Put(ctx, key, snapshot); err != nil {
		return Identity{}, fmt.Errorf("write identity cache: %w", err)
	}

	return id, nil
}

// RequireAdmin guards admin-only operations.
func (r *Resolver) RequireAdmin(id Identity) error {
	if id.Role != store.RoleAdmin {
		return serr.New(nil, http.StatusForbidden, "admin role required")
	}

	return nil
}
