package retrieve

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// originGate serializes requests to one network origin with a minimum
// inter-request delay, while leaving distinct origins fully concurrent.
// One rate.Limiter per host: rate.Every(minDelay) with burst 1 is exactly
// "earliest next request time" semantics, and Limiter.Wait is the per-origin
// mutex.
type originGate struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval rate.Limit
	burst    int
}

func newOriginGate(minDelay time.Duration, burst int) *originGate {
	if burst <= 0 {
		burst = 1
	}
	var lim rate.Limit
	if minDelay <= 0 {
		lim = rate.Inf
	} else {
		lim = rate.Every(minDelay)
	}
	return &originGate{
		limiters: make(map[string]*rate.Limiter),
		interval: lim,
		burst:    burst,
	}
}

// wait blocks until a request to host is allowed, or ctx is done.
func (g *originGate) wait(ctx context.Context, host string) error {
	return g.limiter(host).Wait(ctx)
}

// slowTo widens one host's inter-request interval, typically to honor a
// robots.txt crawl delay. The gate only ever slows down: a delay shorter
// than the host's current interval is ignored.
func (g *originGate) slowTo(host string, d time.Duration) {
	if d <= 0 {
		return
	}
	want := rate.Every(d)

	g.mu.Lock()
	defer g.mu.Unlock()
	lim, ok := g.limiters[host]
	if !ok {
		if want > g.interval {
			want = g.interval
		}
		g.limiters[host] = rate.NewLimiter(want, g.burst)
		return
	}
	if want < lim.Limit() {
		lim.SetLimit(want)
	}
}

func (g *originGate) limiter(host string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	lim, ok := g.limiters[host]
	if !ok {
		lim = rate.NewLimiter(g.interval, g.burst)
		g.limiters[host] = lim
	}
	return lim
}
