package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	key := "solve:abc123"
	want := []byte(`{"total_cost":180}`)

	if err := c.Set(ctx, key, want, TTLReport); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if string(got) != string(want) {
		t.Errorf("Get = %q, want %q", got, want)
	}
}

func TestFileCacheMiss(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	_, hit, err := c.Get(ctx, "solve:missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected cache miss for unknown key")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	key := "solve:expired"
	if err := c.Set(ctx, key, []byte("stale"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected expired entry to miss")
	}
}

func TestFileCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	key := "solve:gone"
	if err := c.Set(ctx, key, []byte("data"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("expected miss after delete")
	}

	// Deleting an absent key is not an error.
	if err := c.Delete(ctx, "solve:never-existed"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	for _, key := range []string{"solve:a", "solve:b", "solve:c"} {
		if err := c.Set(ctx, key, []byte("x"), 0); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, key := range []string{"solve:a", "solve:b", "solve:c"} {
		if _, hit, _ := c.Get(ctx, key); hit {
			t.Errorf("expected miss for %s after clear", key)
		}
	}
}

func TestNullCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), TTLReport); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, hit, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("null cache should never hit")
	}
}

func TestSolveKeyStability(t *testing.T) {
	keyer := NewDefaultKeyer()

	a := keyer.SolveKey("deadbeef", "transportation")
	b := keyer.SolveKey("deadbeef", "transportation")
	if a != b {
		t.Errorf("same inputs produced different keys: %s vs %s", a, b)
	}

	c := keyer.SolveKey("deadbeef", "assignment")
	if a == c {
		t.Error("different kinds should produce different keys")
	}

	d := keyer.SolveKey("cafef00d", "transportation")
	if a == d {
		t.Error("different model hashes should produce different keys")
	}
}
