package source

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits requests per source host
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter; requestsPerSecond <= 0 disables limiting
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     limit,
		burst:    burst,
	}
}

// Wait blocks until the URL's host may be contacted, then sleeps for any
// crawl delay the host asked for
func (l *HostLimiter) Wait(ctx context.Context, rawURL string, crawlDelay time.Duration) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	if err := l.forHost(parsed.Host).Wait(ctx); err != nil {
		return err
	}

	if crawlDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(crawlDelay):
		}
	}
	return nil
}

func (l *HostLimiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[host] = limiter
	}
	return limiter
}
