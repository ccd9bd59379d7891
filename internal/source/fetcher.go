package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/model"
)

const maxFetchAttempts = 3

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = time.Sleep

// ErrRobotsDisallowed is returned when robots.txt forbids the download
var ErrRobotsDisallowed = errors.New("blocked by robots.txt")

// Fetcher downloads clause tables over HTTP
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *RobotsChecker
	limiter    *HostLimiter
	logger     *zap.Logger
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, respectRobots bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: NewProxyFunc(httpProxy, httpsProxy, noProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		logger:     zap.NewNop(),
	}
	if respectRobots {
		f.robots = NewRobotsChecker(userAgent, client)
	}
	return f
}

// NewFetcherFromConfig creates a fetcher from the http and rate limiting config
func NewFetcherFromConfig(cfg model.HTTPConfig, limits model.RateLimitingConfig, logger *zap.Logger) *Fetcher {
	f := NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBodyBytes, cfg.RespectRobots, cfg.HTTPProxy, cfg.HTTPSProxy, "")
	f.limiter = NewHostLimiter(limits.RequestsPerSecond, limits.BurstSize)
	if logger != nil {
		f.logger = logger
	}
	return f
}

// FetchResult contains the fetched table and metadata
type FetchResult struct {
	Content     string
	ContentType string
	Subject     string
	FinalURL    string
}

// FetchWithRetry fetches the URL, retrying transient failures with backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
			f.logger.Debug("retrying fetch", zap.String("url", rawURL), zap.Int("attempt", attempt+1), zap.Error(lastErr))
			fetchSleepFunc(backoff)
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// Fetch retrieves the URL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
		}
		crawlDelay = delay
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/csv,text/tab-separated-values,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	// One extra byte tells a body at the limit from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("read body: exceeds %d bytes", f.maxBytes)
	}

	finalURL := resp.Request.URL.String()
	return &FetchResult{
		Content:     string(body),
		ContentType: resp.Header.Get("Content-Type"),
		Subject:     extractSubject(finalURL),
		FinalURL:    finalURL,
	}, nil
}

// isRetryableFetchError reports whether a failure is worth another attempt:
// server errors, 429 and transport failures
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "fetch: ") {
		return true
	}
	if status, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		return strings.HasPrefix(status, "5") || strings.HasPrefix(status, "429")
	}
	return false
}

// extractSubject names a source after the last path segment of its URL
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")
	return last
}

// NewProxyFunc creates a proxy function from explicit proxy URLs, falling back
// to the environment when none are set. Hosts listed in noProxy go direct.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := make(map[string]bool)
	for _, host := range strings.Split(noProxy, ",") {
		if host = strings.TrimSpace(host); host != "" {
			bypass[host] = true
		}
	}

	return func(req *http.Request) (*url.URL, error) {
		if bypass[req.URL.Hostname()] {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
