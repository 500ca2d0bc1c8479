package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	ok, err := s.SetNX(ctx, "lease", []byte("a"), time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX ok=%v err=%v", ok, err)
	}
	ok, _ = s.SetNX(ctx, "lease", []byte("b"), time.Minute)
	if ok {
		t.Fatalf("second SetNX should fail while held")
	}
	v, found, _ := s.Get(ctx, "lease")
	if !found || string(v) != "a" {
		t.Fatalf("value=%q found=%v", v, found)
	}

	now = now.Add(2 * time.Minute)
	ok, _ = s.SetNX(ctx, "lease", []byte("c"), time.Minute)
	if !ok {
		t.Fatalf("SetNX after expiry should succeed")
	}
	if err := s.Delete(ctx, "lease"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "lease"); found {
		t.Fatalf("expected deleted")
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	_ = s.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	v, _, _ := s.Get(ctx, "k")
	if string(v) != "abc" {
		t.Fatalf("value=%q", v)
	}
}
