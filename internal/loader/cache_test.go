package loader

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

type countingSource struct {
	mu    sync.Mutex
	calls map[string]int
	fail  error
}

func (s *countingSource) Load(_ context.Context, source string) (*manifest.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[source]++
	if s.fail != nil {
		return nil, s.fail
	}
	return Parse(source, strings.NewReader(sampleCSV))
}

func (s *countingSource) count(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[source]
}

func TestCacheReturnsSameDatasetWithoutReloading(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src, nil)
	ctx := context.Background()

	a, err := c.Get(ctx, "https://example.test/train.csv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := c.Get(ctx, "  https://example.test/train.csv ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != b {
		t.Fatal("expected the same in-memory dataset")
	}
	if n := src.count("https://example.test/train.csv"); n != 1 {
		t.Fatalf("expected one load, got %d", n)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src, nil)
	ctx := context.Background()
	const u = "https://example.test/train.csv"

	first, _ := c.Get(ctx, u)
	if !c.Invalidate(u) {
		t.Fatal("expected entry to be invalidated")
	}
	if c.Invalidate(u) {
		t.Fatal("second invalidate should report no entry")
	}
	second, err := c.Get(ctx, u)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first == second || first.ID() == second.ID() {
		t.Fatal("expected a fresh load after invalidation")
	}
	if n := src.count(u); n != 2 {
		t.Fatalf("expected two loads, got %d", n)
	}

	c.Reset()
	if c.Len() != 0 {
		t.Fatal("expected empty cache after Reset")
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	src := &countingSource{fail: &SourceUnavailableError{Source: "x", Err: errors.New("down")}}
	c := NewCache(src, nil)
	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), "x"); !errors.Is(err, ErrSourceUnavailable) {
			t.Fatalf("expected source unavailable, got %v", err)
		}
	}
	if n := src.count("x"); n != 2 {
		t.Fatalf("expected a retry per Get, got %d", n)
	}
	if c.Len() != 0 {
		t.Fatal("failure was cached")
	}
}

func TestCacheKeyNormalizesLocalPaths(t *testing.T) {
	dir := t.TempDir()
	a := CacheKey(dir + string(filepath.Separator) + "data" + string(filepath.Separator) + ".." + string(filepath.Separator) + "train.csv")
	b := CacheKey(filepath.Join(dir, "train.csv"))
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if CacheKey("https://x.test/a.csv") != "https://x.test/a.csv" {
		t.Fatal("URLs should be kept as given")
	}
}

func TestCacheConcurrentGetLoadsOnce(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background(), "https://example.test/a.csv"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := src.count("https://example.test/a.csv"); n != 1 {
		t.Fatalf("expected one load, got %d", n)
	}
}
