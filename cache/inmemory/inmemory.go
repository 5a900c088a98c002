package inmemory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mohammad-safakhou/seoagent/cache"
	"github.com/mohammad-safakhou/seoagent/provider"
)

const DefaultMaxEntries = 4096

type Option func(*Store)

// WithExpiry sets how long entries are served.
func WithExpiry(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithMaxEntries bounds the number of entries kept; least recently used entries go first.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps entries in process memory. Safe for concurrent use.
type Store struct {
	entries    *lru.Cache[string, cache.Entry]
	expiry     time.Duration
	maxEntries int
	now        func() time.Time
}

func New(opts ...Option) *Store {
	s := &Store{expiry: cache.DefaultExpiry, maxEntries: DefaultMaxEntries, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	// only fails on a non-positive size, which the options rule out
	s.entries, _ = lru.New[string, cache.Entry](s.maxEntries)
	return s
}

func (s *Store) Get(_ context.Context, key string) (provider.Result, bool, error) {
	e, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.Live(s.now(), s.expiry) {
		return nil, false, nil
	}
	return e.Data.DeepClone(), true, nil
}

func (s *Store) Put(_ context.Context, key string, data provider.Result) error {
	s.entries.Add(key, cache.Entry{Data: data.DeepClone(), Timestamp: s.now()})
	return nil
}

// Len returns the number of entries held, live or expired.
func (s *Store) Len() int { return s.entries.Len() }
