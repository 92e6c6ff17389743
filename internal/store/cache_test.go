package store

import (
	"context"
	"testing"
	"time"
)

func TestCachePut_AndGet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	value := []byte(`{"foods":[]}`)
	meta := CacheMeta{ContentType: "application/json", StatusCode: 200}
	if err := s.CachePut(ctx, "dynamic", "GET /api/foods", value, meta); err != nil {
		t.Fatalf("CachePut() failed: %v", err)
	}

	got, gotMeta, ok, err := s.CacheGet(ctx, "dynamic", "GET /api/foods")
	if err != nil {
		t.Fatalf("CacheGet() failed: %v", err)
	}
	if !ok {
		t.Fatal("CacheGet() ok = false, want true")
	}
	if string(got) != string(value) {
		t.Errorf("value = %q, want %q", got, value)
	}
	if gotMeta.ContentType != "application/json" {
		t.Errorf("content_type = %q, want application/json", gotMeta.ContentType)
	}
	if gotMeta.StoredAt.IsZero() {
		t.Error("stored_at not populated")
	}
}

func TestCacheGet_Absent(t *testing.T) {
	s := createTestStore(t)

	_, _, ok, err := s.CacheGet(context.Background(), "dynamic", "GET /api/nothing")
	if err != nil {
		t.Fatalf("CacheGet() failed: %v", err)
	}
	if ok {
		t.Error("ok = true for absent key")
	}
}

func TestCachePut_OverwritesLatest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	key := "GET /api/progress/daily?date=2026-03-10"

	if err := s.CachePut(ctx, "dynamic", key, []byte(`{"v":1}`), CacheMeta{}); err != nil {
		t.Fatalf("first CachePut() failed: %v", err)
	}
	if err := s.CachePut(ctx, "dynamic", key, []byte(`{"v":2}`), CacheMeta{}); err != nil {
		t.Fatalf("second CachePut() failed: %v", err)
	}

	got, _, ok, err := s.CacheGet(ctx, "dynamic", key)
	if err != nil || !ok {
		t.Fatalf("CacheGet() failed: %v ok=%v", err, ok)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("value = %q, want latest write (no version history)", got)
	}
}

func TestCache_PartitionsAreIsolated(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.CachePut(ctx, "static-v1", "/app.js", []byte("js"), CacheMeta{}); err != nil {
		t.Fatalf("CachePut() failed: %v", err)
	}
	if err := s.CachePut(ctx, "dynamic", "/app.js", []byte("api"), CacheMeta{}); err != nil {
		t.Fatalf("CachePut() failed: %v", err)
	}

	got, _, ok, _ := s.CacheGet(ctx, "static-v1", "/app.js")
	if !ok || string(got) != "js" {
		t.Errorf("static value = %q ok=%v, want js", got, ok)
	}
	got, _, ok, _ = s.CacheGet(ctx, "dynamic", "/app.js")
	if !ok || string(got) != "api" {
		t.Errorf("dynamic value = %q ok=%v, want api", got, ok)
	}
}

func TestCacheListKeys(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"/b.css", "/a.js", "/c.png"} {
		if err := s.CachePut(ctx, "static-v1", key, []byte("x"), CacheMeta{}); err != nil {
			t.Fatalf("CachePut(%s) failed: %v", key, err)
		}
	}

	keys, err := s.CacheListKeys(ctx, "static-v1")
	if err != nil {
		t.Fatalf("CacheListKeys() failed: %v", err)
	}
	want := []string{"/a.js", "/b.css", "/c.png"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestCacheEvictStale_Predicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	old := CacheMeta{StoredAt: time.Now().UTC().Add(-48 * time.Hour)}
	fresh := CacheMeta{StoredAt: time.Now().UTC()}
	s.CachePut(ctx, "dynamic", "GET /api/old", []byte("1"), old)
	s.CachePut(ctx, "dynamic", "GET /api/fresh", []byte("2"), fresh)

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	evicted, err := s.CacheEvictStale(ctx, "dynamic", func(key string, meta CacheMeta) bool {
		return meta.StoredAt.Before(cutoff)
	})
	if err != nil {
		t.Fatalf("CacheEvictStale() failed: %v", err)
	}
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}

	_, _, ok, _ := s.CacheGet(ctx, "dynamic", "GET /api/old")
	if ok {
		t.Error("stale entry survived eviction")
	}
	_, _, ok, _ = s.CacheGet(ctx, "dynamic", "GET /api/fresh")
	if !ok {
		t.Error("fresh entry was evicted")
	}
}

func TestCacheDropPartition_LeavesOthersIntact(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	s.CachePut(ctx, "static-v1", "/app.js", []byte("old"), CacheMeta{})
	s.CachePut(ctx, "static-v1", "/app.css", []byte("old"), CacheMeta{})
	s.CachePut(ctx, "dynamic", "GET /api/foods", []byte("keep"), CacheMeta{})

	// Version bump: the prior static partition goes away entirely.
	dropped, err := s.CacheDropPartition(ctx, "static-v1")
	if err != nil {
		t.Fatalf("CacheDropPartition() failed: %v", err)
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}

	keys, _ := s.CacheListKeys(ctx, "static-v1")
	if len(keys) != 0 {
		t.Errorf("static partition not empty after drop: %v", keys)
	}
	_, _, ok, _ := s.CacheGet(ctx, "dynamic", "GET /api/foods")
	if !ok {
		t.Error("dynamic partition was affected by static drop")
	}
}
