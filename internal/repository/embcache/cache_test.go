package embcache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	c := NewCache(10, time.Hour)
	before := time.Now()

	c.Put("k", []float32{1, 2, 3})
	e, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(e.Vector) != 3 || e.Vector[2] != 3 {
		t.Errorf("unexpected vector %v", e.Vector)
	}
	if e.StoredAt.Before(before) {
		t.Errorf("StoredAt %v before put", e.StoredAt)
	}
	if _, ok := c.Get("other"); ok {
		t.Error("unexpected hit for unknown key")
	}
}

func TestCache_CopiesVectors(t *testing.T) {
	c := NewCache(10, time.Hour)
	v := []float32{1, 2}
	c.Put("k", v)
	v[0] = 99

	e, _ := c.Get("k")
	e.Vector[1] = 42

	again, _ := c.Get("k")
	if again.Vector[0] != 1 || again.Vector[1] != 2 {
		t.Errorf("cached vector mutated: %v", again.Vector)
	}
}

func TestCache_EvictPurgeLen(t *testing.T) {
	c := NewCache(10, time.Hour)
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if !c.Evict("a") {
		t.Error("expected Evict to report presence")
	}
	if c.Evict("a") {
		t.Error("second Evict should report absence")
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d", c.Len())
	}
}

func TestCache_CapacityBound(t *testing.T) {
	c := NewCache(3, time.Hour)
	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("k%d", i), []float32{float32(i)})
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry should be evicted")
	}
	if _, ok := c.Get("k4"); !ok {
		t.Error("newest entry should be present")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache(10, 20*time.Millisecond)
	c.Put("k", []float32{1})
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestCache_ConcurrentLastWriterWins(t *testing.T) {
	c := NewCache(100, time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put("shared", []float32{float32(i)})
			c.Get("shared")
		}(i)
	}
	wg.Wait()
	c.Put("shared", []float32{-1})

	e, ok := c.Get("shared")
	if !ok || e.Vector[0] != -1 {
		t.Errorf("expected last write to win, got %v", e.Vector)
	}
}
