package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, StaticScope("sess-1"), time.Hour), mr
}

func TestRedis(t *testing.T) {
	r, _ := setupTestRedis(t)
	exercise(t, context.Background(), r)
}

func TestRedisKeyAndTTL(t *testing.T) {
	r, mr := setupTestRedis(t)

	if err := r.SetItem(context.Background(), "cart-storage", []byte("v")); err != nil {
		t.Fatal(err)
	}

	got, err := mr.Get("cart-storage:sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "v" {
		t.Fatalf("expected v, got %q", got)
	}

	if ttl := mr.TTL("cart-storage:sess-1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	b, err := r.GetItem(context.Background(), "cart-storage")
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Fatalf("expected expired item, got %q", b)
	}
}

func TestRedisError(t *testing.T) {
	r, mr := setupTestRedis(t)
	mr.SetError("LOADING redis is loading the dataset in memory")

	if _, err := r.GetItem(context.Background(), "cart-storage"); err == nil {
		t.Fatal("expected error from redis")
	}
}
