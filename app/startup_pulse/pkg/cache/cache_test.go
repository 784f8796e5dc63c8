package cache

import (
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewWithClock(5*time.Minute, func() time.Time { return now })

	c.Set("acme", 42)
	v, ok := c.Get("acme")
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if v.(int) != 42 {
		t.Errorf("Get() = %v, want 42", v)
	}

	// 时钟推进超过 TTL 后应当未命中
	now = now.Add(6 * time.Minute)
	if _, ok := c.Get("acme"); ok {
		t.Error("Get() hit after expiry, want miss")
	}
}

func TestCacheDisabled(t *testing.T) {
	c := New(0)
	c.Set("acme", 1)
	if _, ok := c.Get("acme"); ok {
		t.Error("Get() hit with zero TTL, want always miss")
	}

	// nil 缓存也应当安全
	var nilCache *Cache
	nilCache.Set("acme", 1)
	if _, ok := nilCache.Get("acme"); ok {
		t.Error("nil cache Get() hit, want miss")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) hit after Invalidate, want miss")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("Get(b) miss, want hit")
	}

	c.Purge()
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) hit after Purge, want miss")
	}
}
