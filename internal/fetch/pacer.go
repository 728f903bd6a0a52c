package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces the polite delay of one crawl: a request may start only
// after delay has passed since the previous request finished (or since the
// Pacer was created, for the first request).
// A nil Pacer, or one built with a non-positive delay, never blocks.
//
// Design decision: the delay is measured from the end of the previous
// request, not from its start. A token bucket alone refills while a slow
// response is still downloading, and the next request would then fire
// immediately. Done resets the bucket when a request completes.
type Pacer struct {
	mu      sync.Mutex
	delay   time.Duration
	limiter *rate.Limiter
}

// NewPacer returns a Pacer that waits delay before every request.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{}
	}
	p := &Pacer{delay: delay}
	p.reset()
	return p
}

// reset starts a new delay period at the current time.
func (p *Pacer) reset() {
	limiter := rate.NewLimiter(rate.Every(p.delay), 1)
	// Drain the initial token so the next Wait blocks for a full delay.
	limiter.Allow()
	p.limiter = limiter
}

// Wait blocks until the next request may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

// Done marks the end of a request. The next Wait blocks for the full delay
// from now.
func (p *Pacer) Done() {
	if p == nil || p.delay <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}
