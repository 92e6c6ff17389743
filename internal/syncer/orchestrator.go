package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mealtrack/mealsync/internal/api"
	"github.com/mealtrack/mealsync/internal/fetch"
	"github.com/mealtrack/mealsync/internal/store"
)

// Orchestrator composes the cache store, mutation queue, fetch
// strategy selector, and API client.
//
// Thread-safety model:
//   - Read and write methods are safe from any goroutine.
//   - Queue drains are serialized by a single in-flight guard; see
//     TriggerSync.
type Orchestrator struct {
	store    *store.Store
	selector *fetch.Selector
	client   *api.Client
	logger   *slog.Logger
	now      func() time.Time

	dynamicPartition string

	mu       sync.Mutex
	inflight *drainRun // current drain, nil when idle
}

// drainRun lets concurrent TriggerSync callers wait on one drain.
type drainRun struct {
	done   chan struct{}
	report SyncReport
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithNow overrides the wall clock. Tests pin "today" with this.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an Orchestrator over an opened store and selector.
func New(st *store.Store, selector *fetch.Selector, dynamicPartition string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:            st,
		selector:         selector,
		client:           api.NewClient(selector),
		logger:           slog.Default(),
		now:              time.Now,
		dynamicPartition: dynamicPartition,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Client exposes the underlying API client for passthrough reads that
// need no overlay (foods, export).
func (o *Orchestrator) Client() *api.Client {
	return o.client
}

// DynamicPartition names the dynamic cache partition. It is not
// versioned: static generation bumps never touch cached API
// responses, so offline fallback survives an upgrade.
const DynamicPartition = "dynamic"

// StaticPartitionName formats a versioned static partition name.
// Partition names are stable: the same version always maps to the
// same name.
func StaticPartitionName(version int) string {
	return fmt.Sprintf("static-v%d", version)
}

// EnsureStaticGeneration invalidates stale static partitions after a
// version bump. Every generation below the current one is dropped, so
// a config jump across several versions leaves no orphaned rows; the
// dynamic partition is untouched.
func EnsureStaticGeneration(ctx context.Context, st *store.Store, version int) error {
	dropped := 0
	for v := 1; v < version; v++ {
		n, err := st.CacheDropPartition(ctx, StaticPartitionName(v))
		if err != nil {
			return fmt.Errorf("drop stale static partition: %w", err)
		}
		dropped += n
	}
	if dropped > 0 {
		slog.Info("static cache invalidated", "version", version, "dropped", dropped)
	}
	return nil
}

// methodFor maps a mutation kind to its HTTP method.
func methodFor(op store.MutationOp) string {
	switch op {
	case store.OpCreate:
		return http.MethodPost
	case store.OpUpdate:
		return http.MethodPut
	case store.OpDelete:
		return http.MethodDelete
	}
	return http.MethodPost
}

// invalidateDerived evicts dynamic cache entries whose key touches any
// of the given path families. Derived views (progress, analytics,
// streak, export) are invalidated alongside the written resource so
// the next read refetches them.
func (o *Orchestrator) invalidateDerived(ctx context.Context, families ...string) {
	families = append(families, "/api/progress", "/api/analytics", "/api/streak", "/api/export")
	evicted, err := o.store.CacheEvictStale(ctx, o.dynamicPartition, func(key string, _ store.CacheMeta) bool {
		for _, family := range families {
			if strings.Contains(key, family) {
				return true
			}
		}
		return false
	})
	if err != nil {
		o.logger.Warn("cache invalidation failed", "error", err)
		return
	}
	if evicted > 0 {
		o.logger.Debug("invalidated derived cache entries", "count", evicted)
	}
}

// familyFor extracts the invalidation family from a mutation target,
// e.g. "/api/meals/multi/7" -> "/api/meals".
func familyFor(target string) string {
	trimmed := strings.TrimPrefix(target, "/api/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/api/" + trimmed
}
