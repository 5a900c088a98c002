package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mohammad-safakhou/seoagent/provider"
)

// DefaultExpiry is how long an entry is served after it was written.
const DefaultExpiry = time.Hour

// Store interface for tool result memoization
type Store interface {
	// Get returns a live entry's data. Expired entries are reported as absent.
	Get(ctx context.Context, key string) (provider.Result, bool, error)
	// Put replaces the entry under key.
	Put(ctx context.Context, key string, data provider.Result) error
}

// Entry is a cached result and the instant it was written.
type Entry struct {
	Data      provider.Result `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Live reports whether the entry is still served at now.
func (e Entry) Live(now time.Time, expiry time.Duration) bool {
	return now.Sub(e.Timestamp) < expiry
}

// Key builds the cache key for a tool call. encoding/json writes map keys in
// sorted order at every depth, so bags that differ only in insertion order
// share a key.
func Key(tool string, params provider.Params) (string, error) {
	if params == nil {
		params = provider.Params{}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return tool + "_" + string(b), nil
}
