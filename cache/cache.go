package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores raw response bodies keyed by request URL. It is injected
// into the HTTP transport so tests can swap in a Noop.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte)
}

// Store is the in-process implementation backed by go-cache. Entries
// expire after the configured TTL; the cache is a performance
// optimization, not part of the correctness contract.
type Store struct {
	backend *gocache.Cache
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		backend: gocache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

func (s *Store) Get(key string) ([]byte, bool) {
	value, found := s.backend.Get(key)
	if !found {
		return nil, false
	}

	body, ok := value.([]byte)
	return body, ok
}

func (s *Store) Set(key string, body []byte) {
	s.backend.Set(key, body, s.ttl)
}

// Noop never hits and never stores. Used in tests and anywhere caching
// must be disabled.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool) { return nil, false }
func (Noop) Set(string, []byte)        {}
