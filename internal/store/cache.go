package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CacheMeta describes a cached response.
type CacheMeta struct {
	ContentType string
	StatusCode  int
	StoredAt    time.Time
}

// CachePut stores value under (partition, key), replacing any previous
// value. Overwrite semantics: a key never holds more than the latest
// value, and there is no version history.
func (s *Store) CachePut(ctx context.Context, partition, key string, value []byte, meta CacheMeta) error {
	if meta.StoredAt.IsZero() {
		meta.StoredAt = time.Now().UTC()
	}
	if meta.StatusCode == 0 {
		meta.StatusCode = 200
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (partition, key, value, content_type, status_code, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(partition, key) DO UPDATE SET
			value = excluded.value,
			content_type = excluded.content_type,
			status_code = excluded.status_code,
			stored_at = excluded.stored_at
	`,
		partition,
		key,
		value,
		meta.ContentType,
		meta.StatusCode,
		meta.StoredAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("cache put %s/%s: %w", partition, key, err)
	}
	return nil
}

// CacheGet returns the cached value for (partition, key).
// ok=false means absent, which is not an error.
func (s *Store) CacheGet(ctx context.Context, partition, key string) (value []byte, meta CacheMeta, ok bool, err error) {
	var storedAt string
	err = s.db.QueryRowContext(ctx, `
		SELECT value, content_type, status_code, stored_at
		FROM cache_entries
		WHERE partition = ? AND key = ?
	`, partition, key).Scan(&value, &meta.ContentType, &meta.StatusCode, &storedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, CacheMeta{}, false, nil
	}
	if err != nil {
		return nil, CacheMeta{}, false, fmt.Errorf("cache get %s/%s: %w", partition, key, err)
	}

	meta.StoredAt, err = time.Parse(time.RFC3339Nano, storedAt)
	if err != nil {
		return nil, CacheMeta{}, false, fmt.Errorf("cache get %s/%s: parse stored_at: %w", partition, key, err)
	}
	return value, meta, true, nil
}

// CacheListKeys returns all keys in a partition in insertion-stable
// (lexicographic) order.
func (s *Store) CacheListKeys(ctx context.Context, partition string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM cache_entries WHERE partition = ? ORDER BY key
	`, partition)
	if err != nil {
		return nil, fmt.Errorf("cache list %s: %w", partition, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("cache list %s: scan: %w", partition, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache list %s: %w", partition, err)
	}
	return keys, nil
}

// CacheEvictStale removes every entry in partition for which predicate
// returns true. Returns the number of evicted entries. The predicate
// runs over a snapshot of the partition, so it may not observe writes
// made while the eviction is in progress.
func (s *Store) CacheEvictStale(ctx context.Context, partition string, predicate func(key string, meta CacheMeta) bool) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, content_type, status_code, stored_at
		FROM cache_entries WHERE partition = ?
	`, partition)
	if err != nil {
		return 0, fmt.Errorf("cache evict %s: %w", partition, err)
	}

	var stale []string
	for rows.Next() {
		var key, storedAt string
		var meta CacheMeta
		if err := rows.Scan(&key, &meta.ContentType, &meta.StatusCode, &storedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("cache evict %s: scan: %w", partition, err)
		}
		meta.StoredAt, _ = time.Parse(time.RFC3339Nano, storedAt)
		if predicate(key, meta) {
			stale = append(stale, key)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("cache evict %s: %w", partition, err)
	}
	rows.Close()

	evicted := 0
	for _, key := range stale {
		result, err := s.db.ExecContext(ctx, `
			DELETE FROM cache_entries WHERE partition = ? AND key = ?
		`, partition, key)
		if err != nil {
			return evicted, fmt.Errorf("cache evict %s/%s: %w", partition, key, err)
		}
		n, _ := result.RowsAffected()
		evicted += int(n)
	}
	return evicted, nil
}

// CacheDropPartition deletes an entire partition. Used on static cache
// version bumps, which must invalidate exactly the prior static
// partition and no others.
func (s *Store) CacheDropPartition(ctx context.Context, partition string) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM cache_entries WHERE partition = ?
	`, partition)
	if err != nil {
		return 0, fmt.Errorf("cache drop %s: %w", partition, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache drop %s: rows affected: %w", partition, err)
	}
	return int(n), nil
}
