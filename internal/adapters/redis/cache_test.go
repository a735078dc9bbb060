package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "rovia/internal/adapters/redis"
	"rovia/internal/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	in := domain.AdminDashboard{PendingApplications: 3, ApprovedThisWeek: 1}
	if err := c.Set(ctx, "dash:admin", in, 30); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL("dash:admin"); ttl != 30*time.Second {
		t.Fatalf("ttl = %v, want 30s", ttl)
	}

	var out domain.AdminDashboard
	ok, err := c.Get(ctx, "dash:admin", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestCacheMissAndDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	var out domain.AdminDashboard
	ok, err := c.Get(ctx, "dash:admin", &out)
	if err != nil {
		t.Fatalf("Get on empty: %v", err)
	}
	if ok {
		t.Fatal("miss must report ok=false")
	}

	if err := c.Set(ctx, "dash:promoter:7", domain.PromoterDashboard{PendingSuggestions: 2}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Del(ctx, "dash:promoter:7"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if mr.Exists("dash:promoter:7") {
		t.Fatal("key should be gone after Del")
	}
}
