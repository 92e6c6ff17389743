package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mealtrack/mealsync/internal/store"
)

// DefaultTimeout bounds a single network attempt. On expiry the
// request is treated exactly like a connection failure.
const DefaultTimeout = 10 * time.Second

// Result is a normalized successful fetch.
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string

	// FromCache is true when the body was served from the local cache
	// rather than a live response.
	FromCache bool
}

// Config configures a Selector.
type Config struct {
	BaseURL string // server root, e.g. "http://localhost:5001"

	// APIPrefix routes requests: paths under it use network-first,
	// everything else cache-first. Defaults to "/api/".
	APIPrefix string

	// StaticPartition and DynamicPartition name the cache partitions.
	// Partition names are stable, versioned strings; bumping the
	// static version is the caller's concern (see syncer).
	StaticPartition  string
	DynamicPartition string

	Timeout time.Duration // per-attempt network timeout
	Client  *http.Client  // optional; built from Timeout when nil
	Logger  *slog.Logger  // optional; slog.Default() when nil
}

// Selector executes requests with the strategy their namespace calls
// for and classifies every failure into a typed *Error.
type Selector struct {
	base             *url.URL
	apiPrefix        string
	staticPartition  string
	dynamicPartition string
	client           *http.Client
	cache            *store.Store
	logger           *slog.Logger

	// revalidations tracks in-flight background refreshes so tests
	// and shutdown can wait for them.
	revalidations sync.WaitGroup
}

// New builds a Selector over the given cache store.
func New(cache *store.Store, cfg Config) (*Selector, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", cfg.BaseURL)
	}

	apiPrefix := cfg.APIPrefix
	if apiPrefix == "" {
		apiPrefix = "/api/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Selector{
		base:             base,
		apiPrefix:        apiPrefix,
		staticPartition:  cfg.StaticPartition,
		dynamicPartition: cfg.DynamicPartition,
		client:           client,
		cache:            cache,
		logger:           logger,
	}, nil
}

// cacheKey is the request signature: method + path + query.
func cacheKey(method, target string) string {
	return method + " " + target
}

// Get executes a GET with the strategy selected by the target's
// namespace. The target is a server-relative path with optional query,
// e.g. "/api/progress/daily?date=2026-03-10".
func (s *Selector) Get(ctx context.Context, target string) (Result, error) {
	if strings.HasPrefix(target, s.apiPrefix) {
		return s.networkFirst(ctx, http.MethodGet, target, nil)
	}
	return s.cacheFirst(ctx, target)
}

// Send executes a mutating request (POST/PUT/DELETE). Mutations are
// never served from cache; failures are classified the same way as
// network-first reads but without fallback. Idempotency headers may be
// passed through hdr.
func (s *Selector) Send(ctx context.Context, method, target string, body []byte, hdr http.Header) (Result, error) {
	res, err := s.doNetwork(ctx, method, target, body, hdr)
	if err != nil {
		return Result{}, NewNetworkError(cacheKey(method, target), err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Result{}, NewStatusError(cacheKey(method, target), res.StatusCode, snippet(res.Body))
	}
	return res, nil
}

// networkFirst attempts the network, overwrites the dynamic cache on
// success, and falls back to the cache only on transport failure.
func (s *Selector) networkFirst(ctx context.Context, method, target string, body []byte) (Result, error) {
	key := cacheKey(method, target)

	res, netErr := s.doNetwork(ctx, method, target, body, nil)
	if netErr == nil {
		if res.StatusCode >= 200 && res.StatusCode <= 299 {
			if err := s.cache.CachePut(ctx, s.dynamicPartition, key, res.Body, store.CacheMeta{
				ContentType: res.ContentType,
				StatusCode:  res.StatusCode,
			}); err != nil {
				// A failed cache write must not fail a good response.
				s.logger.Warn("dynamic cache write failed", "key", key, "error", err)
			}
			return res, nil
		}
		// Non-2xx is an application error, never a network failure:
		// no fallback, the caller sees the real status.
		return Result{}, NewStatusError(key, res.StatusCode, snippet(res.Body))
	}

	cached, meta, ok, err := s.cache.CacheGet(ctx, s.dynamicPartition, key)
	if err != nil {
		return Result{}, &Error{Code: ErrCodeOffline, Message: "cache read failed", Target: key, Err: err}
	}
	if !ok {
		return Result{}, NewOfflineError(key)
	}

	s.logger.Debug("serving stale cache after network failure", "key", key, "error", netErr)
	return Result{
		Body:        cached,
		StatusCode:  meta.StatusCode,
		ContentType: meta.ContentType,
		FromCache:   true,
	}, nil
}

// cacheFirst serves assets from cache when possible, refreshing in the
// background. A miss falls through to the network.
func (s *Selector) cacheFirst(ctx context.Context, target string) (Result, error) {
	key := cacheKey(http.MethodGet, target)

	cached, meta, ok, err := s.cache.CacheGet(ctx, s.staticPartition, key)
	if err == nil && ok {
		s.revalidateAsync(ctx, target, key)
		return Result{
			Body:        cached,
			StatusCode:  meta.StatusCode,
			ContentType: meta.ContentType,
			FromCache:   true,
		}, nil
	}
	if err != nil {
		s.logger.Warn("static cache read failed", "key", key, "error", err)
	}

	res, netErr := s.doNetwork(ctx, http.MethodGet, target, nil, nil)
	if netErr != nil {
		return Result{}, NewAssetError(key, netErr)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Result{}, NewStatusError(key, res.StatusCode, snippet(res.Body))
	}

	if err := s.cache.CachePut(ctx, s.staticPartition, key, res.Body, store.CacheMeta{
		ContentType: res.ContentType,
		StatusCode:  res.StatusCode,
	}); err != nil {
		s.logger.Warn("static cache write failed", "key", key, "error", err)
	}
	return res, nil
}

// revalidateAsync refreshes a cached asset in the background. The
// caller already has a valid value, so failures are logged and
// swallowed. The refresh is detached from the caller's context:
// abandoning the read must not cancel it.
func (s *Selector) revalidateAsync(ctx context.Context, target, key string) {
	detached := context.WithoutCancel(ctx)
	s.revalidations.Add(1)
	go func() {
		defer s.revalidations.Done()

		res, err := s.doNetwork(detached, http.MethodGet, target, nil, nil)
		if err != nil {
			s.logger.Warn("asset revalidation failed", "key", key, "error", err)
			return
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			s.logger.Warn("asset revalidation rejected", "key", key, "status", res.StatusCode)
			return
		}
		if err := s.cache.CachePut(detached, s.staticPartition, key, res.Body, store.CacheMeta{
			ContentType: res.ContentType,
			StatusCode:  res.StatusCode,
		}); err != nil {
			s.logger.Warn("asset revalidation cache write failed", "key", key, "error", err)
		}
	}()
}

// WaitRevalidations blocks until all in-flight background refreshes
// complete. Used by tests and orderly shutdown.
func (s *Selector) WaitRevalidations() {
	s.revalidations.Wait()
}

// doNetwork performs one HTTP round trip and reads the full body.
// Returns the raw result; classification is the caller's job.
func (s *Selector) doNetwork(ctx context.Context, method, target string, body []byte, hdr http.Header) (Result, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return Result{}, fmt.Errorf("parse target %q: %w", target, err)
	}
	u := s.base.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	for name, values := range hdr {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response body: %w", err)
	}

	return Result{
		Body:        data,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// snippet truncates a response body for error messages.
func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
