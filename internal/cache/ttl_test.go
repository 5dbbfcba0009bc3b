package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 9, 15, 0, 0, time.UTC)}
}

func TestGetSet(t *testing.T) {
	c := New[string, float64](4, time.Minute)

	_, ok := c.Get("AAPL")
	assert.False(t, ok)

	c.Set("AAPL", 1.5)
	v, ok := c.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	c.Set("AAPL", 2.5)
	v, _ = c.Get("AAPL")
	assert.Equal(t, 2.5, v)
	assert.Equal(t, 1, c.Len())

	c.Delete("AAPL")
	_, ok = c.Get("AAPL")
	assert.False(t, ok)
}

func TestExpiryOnAccess(t *testing.T) {
	clock := newClock()
	c := New[string, int](4, time.Minute, WithClock(clock.Now))

	c.Set("MSFT", 1)
	clock.Advance(59 * time.Second)
	_, ok := c.Get("MSFT")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("MSFT")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Expired)
}

func TestSetRefreshesExpiry(t *testing.T) {
	clock := newClock()
	c := New[string, int](4, time.Minute, WithClock(clock.Now))

	c.Set("MSFT", 1)
	clock.Advance(50 * time.Second)
	c.Set("MSFT", 2)
	clock.Advance(50 * time.Second)

	v, ok := c.Get("MSFT")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLRUEviction(t *testing.T) {
	c := New[string, int](2, 0)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestSweep(t *testing.T) {
	clock := newClock()
	c := New[string, int](8, time.Minute, WithClock(clock.Now))

	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(30 * time.Second)
	c.Set("c", 3)
	clock.Advance(45 * time.Second)

	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestNoExpiryWhenTTLZero(t *testing.T) {
	clock := newClock()
	c := New[string, int](2, 0, WithClock(clock.Now))
	c.Set("a", 1)
	clock.Advance(24 * time.Hour)
	_, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 0, c.Sweep())
}

func TestPurgeAndDefaults(t *testing.T) {
	c := New[int, int](0, time.Minute)
	assert.Equal(t, 128, c.Stats().Capacity)
	for i := 0; i < 10; i++ {
		c.Set(i, i)
	}
	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestStartSweeper(t *testing.T) {
	c := New[string, int](4, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Set("a", 1)
	c.StartSweeper(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int, int](64, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				c.Set(i%100, g)
				c.Get(i % 50)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}
