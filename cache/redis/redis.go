package redis_cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/seoagent/cache"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/redis/go-redis/v9"
)

// Conn dials Redis and verifies the connection with PING.
func Conn(ctx context.Context, host, port, pass string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", host, port),
		DialTimeout: timeout,
		Password:    pass,
		DB:          db,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if pong != "PONG" {
		_ = client.Close()
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}
	return client, nil
}

// Store shares entries between processes through Redis. Entries carry a
// server-side TTL equal to the expiry and are also checked against their
// write timestamp on read.
type Store struct {
	client *redis.Client
	prefix string
	expiry time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, prefix string, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = cache.DefaultExpiry
	}
	return &Store{client: client, prefix: prefix, expiry: expiry, now: time.Now}
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) (provider.Result, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e cache.Entry
	if err := json.Unmarshal(val, &e); err != nil {
		// unreadable entries are treated as absent and overwritten by the next fetch
		return nil, false, nil
	}
	if !e.Live(s.now(), s.expiry) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

func (s *Store) Put(ctx context.Context, key string, data provider.Result) error {
	b, err := json.Marshal(cache.Entry{Data: data, Timestamp: s.now()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), b, s.expiry).Err()
}
