package suggest

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// responseCache is a fixed-size cache for repeated queries, oldest evicted
// first, combined with a cooldown window: a query issued too soon after the
// previous remote call is only served from cache, never forwarded.
type responseCache[V any] struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, V]
	cooldown time.Duration
	lastCall time.Time
	now      func() time.Time
}

func newResponseCache[V any](size int, cooldown time.Duration) (*responseCache[V], error) {
	entries, err := lru.New[string, V](size)
	if err != nil {
		return nil, err
	}
	return &responseCache[V]{
		entries:  entries,
		cooldown: cooldown,
		now:      time.Now,
	}, nil
}

func (c *responseCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(key)
}

func (c *responseCache[V]) put(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, val)
}

// allowCall reports whether a remote call may be issued now, and if so marks
// the window as used. Callers that get false fall back locally; nothing
// queues or blocks.
func (c *responseCache[V]) allowCall() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Sub(c.lastCall) < c.cooldown {
		return false
	}
	c.lastCall = now
	return true
}
