package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(10, time.Minute, false)

	c.Set("srv", "who has Oregon", "Oregon is assigned to userA.")
	got, ok := c.Get("srv", "who has Oregon")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "Oregon is assigned to userA." {
		t.Errorf("got %q", got)
	}
}

func TestCachePhrasingVariantsHit(t *testing.T) {
	c := New(10, time.Minute, false)

	c.Set("srv", "who has Oregon", "Oregon is assigned to userA.")
	for _, variant := range []string{"who owns Oregon", "Who has Oregon?", "who's got oregon"} {
		if _, ok := c.Get("srv", variant); !ok {
			t.Errorf("expected hit for variant %q", variant)
		}
	}
}

func TestCacheScopeIsolation(t *testing.T) {
	c := New(10, time.Minute, false)

	c.Set("srv1", "who has Oregon", "Oregon is assigned to userA.")
	if _, ok := c.Get("srv2", "who has Oregon"); ok {
		t.Error("entry must not leak across servers")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := New(10, 10*time.Millisecond, false)

	c.Set("srv", "who has Oregon", "Oregon is assigned to userA.")
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("srv", "who has Oregon"); ok {
		t.Error("expected miss after TTL expiry")
	}

	stats := c.Stats()
	if stats.Size != 0 {
		t.Errorf("expired entry should be deleted on read, size = %d", stats.Size)
	}
}

func TestCacheCapacityEviction(t *testing.T) {
	const capacity = 5
	c := New(capacity, time.Minute, false)

	for i := 0; i <= capacity; i++ {
		q := fmt.Sprintf("who has team%d", i)
		c.Set("srv", q, fmt.Sprintf("team%d is assigned to user%d.", i, i))
	}

	// The first-inserted entry is gone, the rest survive.
	if _, ok := c.Get("srv", "who has team0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	for i := 1; i <= capacity; i++ {
		if _, ok := c.Get("srv", fmt.Sprintf("who has team%d", i)); !ok {
			t.Errorf("entry %d should have survived eviction", i)
		}
	}
}

func TestCacheEmptySignatureNeverHits(t *testing.T) {
	c := New(10, time.Minute, false)

	c.Set("srv", "???", "some response text here")
	if _, ok := c.Get("srv", "!!!"); ok {
		t.Error("punctuation-only queries must never cache-hit")
	}
}

func TestCacheInvalidatePattern(t *testing.T) {
	c := New(10, time.Minute, false)

	c.Set("srv", "who has Oregon", "Oregon is assigned to userA.")
	c.Set("srv", "show standings", "League standings:\n1. Oregon (3-0)")
	c.Set("other", "who has Oregon", "Oregon is assigned to userB.")

	removed := c.InvalidatePattern("srv", "who_has")
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := c.Get("srv", "who has Oregon"); ok {
		t.Error("invalidated entry should miss")
	}
	if _, ok := c.Get("other", "who has Oregon"); !ok {
		t.Error("other server's entry must survive")
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		response string
		want     bool
	}{
		{"normal response", "who has Oregon", "Oregon is assigned to userA.", true},
		{"error marker", "who has Oregon", "Error: database unavailable", false},
		{"failure phrasing", "who has Oregon", "I couldn't complete that. Please try again.", false},
		{"too short", "who has Oregon", "ok", false},
		{"image query", "create matchups from image", "Found these matchups: A vs B", false},
		{"attachment query", "process this attachment please", "Looks like a schedule to me", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cacheable(tt.query, tt.response); got != tt.want {
				t.Errorf("Cacheable(%q, %q) = %v, want %v", tt.query, tt.response, got, tt.want)
			}
		})
	}
}

func TestCacheStats(t *testing.T) {
	c := New(10, time.Minute, false)

	c.Set("srv", "who has Oregon", "Oregon is assigned to userA.")
	c.Get("srv", "who has Oregon")
	c.Get("srv", "who has Clemson")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", stats.Hits, stats.Misses)
	}
	if stats.HitRate != 50.0 {
		t.Errorf("hit rate = %v, want 50", stats.HitRate)
	}
}
