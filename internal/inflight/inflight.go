package inflight

import (
	"context"
	"net/http"
	"sync"
)

// Counter tracks in-flight requests so shutdown can wait for them.
// The zero value is ready to use.
type Counter struct {
	mu     sync.Mutex
	count  int64
	zeroCh chan struct{}
}

// Inc increments the counter.
func (c *Counter) Inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initLocked()
	if c.count == 0 {
		c.zeroCh = make(chan struct{})
	}
	c.count++
}

// Dec decrements the counter. Extra calls at zero are ignored.
func (c *Counter) Dec() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initLocked()
	if c.count == 0 {
		return
	}
	c.count--
	if c.count == 0 {
		close(c.zeroCh)
	}
}

// Load returns the current count.
func (c *Counter) Load() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// WaitForZero blocks until the count is zero or ctx is done. It reports
// whether zero was reached.
func (c *Counter) WaitForZero(ctx context.Context) bool {
	c.mu.Lock()
	c.initLocked()
	ch := c.zeroCh
	c.mu.Unlock()
	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	}
}

// initLocked creates a closed channel on first use so an idle counter is
// already at zero.
func (c *Counter) initLocked() {
	if c.zeroCh == nil {
		c.zeroCh = make(chan struct{})
		close(c.zeroCh)
	}
}

// Middleware counts each request for its whole duration.
func (c *Counter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Inc()
			defer c.Dec()
			next.ServeHTTP(w, r)
		})
	}
}
