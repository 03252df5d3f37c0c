package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/triplecheck/internal/model"
)

func TestCacheKey(t *testing.T) {
	k1 := CacheKey("ab", "c")
	k2 := CacheKey("a", "bc")
	if k1 == k2 {
		t.Error("expected distinct keys for different part boundaries")
	}
	if !strings.HasPrefix(k1, "triplecheck:v1:") {
		t.Errorf("unexpected key prefix: %s", k1)
	}
	if CacheKey("ab", "c") != k1 {
		t.Error("expected stable keys")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	val, ok := c.Get("k")
	if !ok || string(val) != "v" {
		t.Errorf("expected v, got %q (found=%v)", val, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after clear, got %d", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	key := CacheKey("doc")
	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, ok := c.Get(key)
	if !ok || string(val) != "payload" {
		t.Errorf("expected payload, got %q (found=%v)", val, ok)
	}

	// a second instance sees the persisted entry
	other := NewDiskCache(dir, time.Hour)
	if _, ok := other.Get(key); !ok {
		t.Error("expected entry to persist across instances")
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache_Corrupt(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected corrupt entry to miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expected corrupt entry to be removed")
	}
}

func TestDiskCache_ClearKeepsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	keep := filepath.Join(dir, "README")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be cleared")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("expected unrelated file to survive: %v", err)
	}
}

func TestDiskCache_ClearMissingDir(t *testing.T) {
	c := NewDiskCache(filepath.Join(t.TempDir(), "absent"), time.Hour)
	if err := c.Clear(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	_ = NewDiskCache(dir, time.Hour).Set("k", []byte("v"), 0)

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if val, ok := c.Get("k"); !ok || string(val) != "v" {
		t.Fatalf("expected disk hit, got %q (found=%v)", val, ok)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("expected value promoted to memory")
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}
}

func TestLayeredCache_SetDeleteClear(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Hour)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.disk.Get("k"); !ok {
		t.Error("expected value written through to disk")
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after clear")
	}
}

func TestResultCache(t *testing.T) {
	rc := NewResultCache(NewMemoryCache(time.Minute, time.Minute), time.Minute)

	key := ResultKey("schema", "vocab", "turtle", "file:///tmp/a.ttl", []byte("<a> <b> <c> ."))
	if _, ok := rc.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := model.NewResult([]string{"domain violation"}, []string{"w1"})
	if err := rc.Put(key, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := rc.Get(key)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Valid || len(got.Errors) != 1 || got.Errors[0] != "domain violation" || len(got.Warnings) != 1 {
		t.Errorf("unexpected cached result: %+v", got)
	}
}

func TestResultKey_DependsOnAllInputs(t *testing.T) {
	base := ResultKey("s", "v", "turtle", "file:///a/t.ttl", []byte("doc"))
	tests := []struct {
		name string
		key  string
	}{
		{"schema fingerprint", ResultKey("s2", "v", "turtle", "file:///a/t.ttl", []byte("doc"))},
		{"vocabulary fingerprint", ResultKey("s", "v2", "turtle", "file:///a/t.ttl", []byte("doc"))},
		{"format", ResultKey("s", "v", "ntriples", "file:///a/t.ttl", []byte("doc"))},
		{"base", ResultKey("s", "v", "turtle", "file:///b/t.ttl", []byte("doc"))},
		{"content", ResultKey("s", "v", "turtle", "file:///a/t.ttl", []byte("doc2"))},
	}
	for _, tt := range tests {
		if tt.key == base {
			t.Errorf("%s should change the key", tt.name)
		}
	}
	if ResultKey("s", "v", "turtle", "file:///a/t.ttl", []byte("doc")) != base {
		t.Error("identical inputs should give the same key")
	}
}

func TestResultCache_UndecodableIsMiss(t *testing.T) {
	mem := NewMemoryCache(time.Minute, time.Minute)
	_ = mem.Set("k", []byte("garbage"), 0)
	rc := NewResultCache(mem, time.Minute)
	if _, ok := rc.Get("k"); ok {
		t.Error("expected undecodable entry to miss")
	}
	if _, ok := mem.Get("k"); ok {
		t.Error("expected undecodable entry to be evicted")
	}
}
