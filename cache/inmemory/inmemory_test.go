package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestExpiryBoundary(t *testing.T) {
	clk := &clock{now: time.Unix(1700000000, 0)}
	s := New(WithExpiry(10*time.Minute), WithClock(clk.Now))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", provider.Result{"v": 1}))

	clk.Advance(10*time.Minute - time.Millisecond)
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got["v"])

	clk.Advance(time.Millisecond)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", provider.Result{"v": 2}))
	got, ok, _ = s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 2, got["v"])
	assert.Equal(t, 1, s.Len())
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	data := provider.Result{"v": 1}
	require.NoError(t, s.Put(ctx, "k", data))

	data["v"] = 99
	got, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 1, got["v"])

	got["extra"] = true
	again, _, _ := s.Get(ctx, "k")
	assert.NotContains(t, again, "extra")
}

func TestNestedValuesNotShared(t *testing.T) {
	s := New()
	ctx := context.Background()
	data := provider.Result{
		"keyword_gaps":       []any{"gift ideas"},
		"competitor_metrics": []any{map[string]any{"domain": "gifts.ru", "organic_traffic": 100}},
		"related":            []string{"gift box"},
	}
	require.NoError(t, s.Put(ctx, "k", data))
	data["keyword_gaps"].([]any)[0] = "written after put"

	got, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)
	got["keyword_gaps"].([]any)[0] = "written by reader"
	got["competitor_metrics"].([]any)[0].(map[string]any)["organic_traffic"] = -42
	got["related"].([]string)[0] = "changed"

	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, []any{"gift ideas"}, again["keyword_gaps"])
	assert.Equal(t, 100, again["competitor_metrics"].([]any)[0].(map[string]any)["organic_traffic"])
	assert.Equal(t, []string{"gift box"}, again["related"])
}

func TestMissingKey(t *testing.T) {
	got, ok, err := New().Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMaxEntriesEvictsLeastRecentlyUsed(t *testing.T) {
	s := New(WithMaxEntries(2))
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "a", provider.Result{}))
	require.NoError(t, s.Put(ctx, "b", provider.Result{}))
	_, _, _ = s.Get(ctx, "a")
	require.NoError(t, s.Put(ctx, "c", provider.Result{}))

	_, okA, _ := s.Get(ctx, "a")
	_, okB, _ := s.Get(ctx, "b")
	_, okC, _ := s.Get(ctx, "c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = s.Put(ctx, key, provider.Result{"i": i})
			_, _, _ = s.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, s.Len())
}
