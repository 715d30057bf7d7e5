package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute, true)
	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get() = %q, %v; want %q, true", got, ok, "v")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(time.Minute, true)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("k", "v")

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestCacheDisabled(t *testing.T) {
	c := New(time.Minute, false)
	c.Set("k", "v")

	if _, ok := c.Get("k"); ok {
		t.Fatal("disabled cache must never hit")
	}
	if _, ok := c.Take("k"); ok {
		t.Fatal("disabled cache must never hit on Take")
	}
}

func TestCacheTakeRemoves(t *testing.T) {
	c := New(time.Minute, true)
	c.Set("state", "user-1")

	got, ok := c.Take("state")
	if !ok || got != "user-1" {
		t.Fatalf("Take() = %q, %v; want %q, true", got, ok, "user-1")
	}
	if _, ok := c.Take("state"); ok {
		t.Fatal("second Take must miss; state nonces are one-shot")
	}
}
