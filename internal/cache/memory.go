package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"
)

// MemoryStore keeps pages in an in-process ristretto cache
type MemoryStore struct {
	client  *ristretto.Cache
	manager *gocache.Cache[[]byte]
}

func NewMemoryStore(maxBytes int64) (*MemoryStore, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &MemoryStore{
		client:  client,
		manager: gocache.New[[]byte](ristrettostore.NewRistretto(client)),
	}, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := s.manager.Get(ctx, key)
	if err != nil || body == nil {
		return nil, ErrMiss
	}
	return body, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	err := s.manager.Set(ctx, key, body,
		store.WithExpiration(ttl),
		store.WithCost(int64(len(body))),
	)
	if err != nil {
		return err
	}
	// ristretto applies writes asynchronously
	s.client.Wait()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	return s.manager.Clear(ctx)
}

func (s *MemoryStore) Close() {
	s.client.Close()
}
