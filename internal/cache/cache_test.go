package cache

import "testing"

func TestCachePutGet(t *testing.T) {
	tests := []struct {
		name      string
		put       map[string]string
		lookup    string
		wantValue string
		wantOK    bool
	}{
		{
			name:      "hit after put",
			put:       map[string]string{"a": "1"},
			lookup:    "a",
			wantValue: "1",
			wantOK:    true,
		},
		{
			name:   "miss on unknown key",
			put:    map[string]string{"a": "1"},
			lookup: "b",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(10)
			for k, v := range tt.put {
				c.Put(k, v)
			}
			got, ok := c.Get(tt.lookup)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.lookup, ok, tt.wantOK)
			}
			if ok && got != tt.wantValue {
				t.Fatalf("Get(%q) = %q, want %q", tt.lookup, got, tt.wantValue)
			}
		})
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Put("a", "1")
	c.Put("b", "2")

	// Touch "a" so "b" becomes the least-recently-used entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}

	c.Put("c", "3") // should evict "b", not "a"

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to still be present")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected c to be present")
	}
}

func TestCacheEvict(t *testing.T) {
	c := New(10)
	c.Put("a", "1")
	c.Evict("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be evicted")
	}
	// Evicting an absent key is a no-op, not an error.
	c.Evict("nonexistent")
}

func TestCacheNonPositiveCapacityFallsBackToDefault(t *testing.T) {
	c := New(0)
	for i := 0; i < defaultCapacity+1; i++ {
		c.Put(string(rune('a'+i%26))+string(rune(i)), "v")
	}
	// Should not panic and should still behave as a bounded cache.
	if c.lru.Len() > defaultCapacity {
		t.Fatalf("cache grew past default capacity: %d", c.lru.Len())
	}
}
