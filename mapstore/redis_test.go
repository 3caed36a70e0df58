package mapstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestRedisStore needs a redis server on localhost:6379 and is skipped
// without one.
func TestRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	prefix := "gridmap-test-" + time.Now().Format("150405.000000")
	defer func() {
		client.Del(context.Background(), prefix+":maps", prefix+":map:hall")
	}()

	s := NewRedisStore(client, prefix)
	def := &Definition{
		Name:           "hall",
		EntityLayer:    "*****\n*P A*\n*****",
		DecalFrequency: 0.1,
		RandomSeed:     1,
	}
	if err := s.Save(ctx, def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names, err := s.Names(ctx)
	if err != nil || len(names) != 1 || names[0] != "hall" {
		t.Fatalf("expected [hall], got %v (%v)", names, err)
	}
	got, err := s.Load(ctx, "hall")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *def {
		t.Errorf("expected %+v, got %+v", def, got)
	}
	if _, err := s.Load(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
