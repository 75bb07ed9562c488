package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/cache"
	"go.uber.org/zap"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_JanitorEvictsExpired(t *testing.T) {
	c := cache.New[int](20 * time.Millisecond)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)

	deadline := time.Now().Add(time.Second)
	for c.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := c.Len(); n != 0 {
		t.Errorf("expected janitor to evict all entries, %d left", n)
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := cache.New[string](time.Minute)

	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestCache_StoresPointers(t *testing.T) {
	c := cache.New[*domain.ReferenceData](time.Minute)
	defer c.Close()

	ref := &domain.ReferenceData{Categories: []domain.ServiceCategory{{ID: 1, Name: "Usage"}}}
	c.Set("reference", ref)

	got, ok := c.Get("reference")
	if !ok || got != ref {
		t.Fatalf("expected the stored pointer back, got %v (ok=%v)", got, ok)
	}
}

// TestRedisCache_RoundTrip needs a live Redis; set REDIS_ADDR to run it.
func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client, err := cache.NewRedisClient(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	c := cache.NewRedisCache[*domain.ReferenceData](client, "costdash:test:", time.Minute, zap.NewNop())
	defer c.Close()

	c.Set("reference", &domain.ReferenceData{Providers: []domain.Provider{{ID: 7, Name: "AWS"}}})

	got, ok := c.Get("reference")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got.Providers) != 1 || got.Providers[0].Name != "AWS" {
		t.Errorf("unexpected value: %+v", got)
	}

	c.Delete("reference")
	if _, ok := c.Get("reference"); ok {
		t.Error("expected miss after delete")
	}
}
