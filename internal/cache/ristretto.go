package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Ristretto is an in-process Cache implementation for single-instance
// deployments where Redis is not worth running.
type Ristretto struct {
	cache *ristretto.Cache[string, []byte]
	ttl   time.Duration
}

type RistrettoConfig struct {
	MaxKeys int64
	TTL     time.Duration
}

func NewRistretto(cfg RistrettoConfig) (*Ristretto, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: cfg.MaxKeys * 10,
		MaxCost:     cfg.MaxKeys,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	return &Ristretto{
		cache: c,
		ttl:   cfg.TTL,
	}, nil
}

func (r *Ristretto) TryGet(ctx context.Context, key string) ([]byte, bool, error) {
	val, found := r.cache.Get(key)
	return val, found, nil
}

func (r *Ristretto) Put(ctx context.Context, key string, value []byte) error {
	r.cache.SetWithTTL(key, value, 1, r.ttl)
	// Flush the set buffer so the entry is visible to the next TryGet.
	r.cache.Wait()
	return nil
}

func (r *Ristretto) Close() error {
	r.cache.Close()
	return nil
}
