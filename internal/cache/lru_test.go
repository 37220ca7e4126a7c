package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLRUCache_FixedTTL(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[string](10, time.Minute)
	c.now = clock.now

	c.Set("a", "alpha")
	clock.advance(40 * time.Second)
	if v, ok := c.Get("a"); !ok || v != "alpha" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}
	clock.advance(20 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry should expire after the ttl even when read")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry not removed, size %d", c.Size())
	}
}

func TestLRUCache_SlidingTTL(t *testing.T) {
	clock := newClock()
	c := NewSlidingCache[string](10, time.Minute)
	c.now = clock.now

	c.Set("s", "session")
	for i := 0; i < 5; i++ {
		clock.advance(50 * time.Second)
		if _, ok := c.Get("s"); !ok {
			t.Fatalf("read %d: sliding entry expired", i)
		}
	}
	clock.advance(time.Minute)
	if _, ok := c.Get("s"); ok {
		t.Fatal("idle entry should expire")
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry should be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used entry evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestLRUCache_DeleteAndDeleteFunc(t *testing.T) {
	c := NewLRUCache[string](10, time.Hour)
	c.Set("t1", "user-1")
	c.Set("t2", "user-2")
	c.Set("t3", "user-1")

	c.Delete("t2")
	if _, ok := c.Get("t2"); ok {
		t.Fatal("deleted key still present")
	}
	if n := c.DeleteFunc(func(v string) bool { return v == "user-1" }); n != 2 {
		t.Fatalf("DeleteFunc removed %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d, want 0", c.Size())
	}
}

func TestManager_CleanNow(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[int](10, time.Minute)
	c.now = clock.now
	c.Set("a", 1)
	c.Set("b", 2)
	clock.advance(2 * time.Minute)
	c.Set("c", 3)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(time.Hour)
	defer m.Stop()

	if n := m.CleanNow(); n != 2 {
		t.Fatalf("CleanNow removed %d, want 2", n)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1", c.Size())
	}
}
