package database

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
)

func TestConnectRedis(t *testing.T) {
	m := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), "redis://"+m.Addr()+"/0", zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("ConnectRedis() error = %v", err)
	}
	defer client.Close()

	opt := client.Options()
	if opt.PoolSize != 10 || opt.MaxRetries != 3 {
		t.Errorf("pool settings not applied: size=%d retries=%d", opt.PoolSize, opt.MaxRetries)
	}
}

func TestConnectRedisRejectsBadURI(t *testing.T) {
	if _, err := ConnectRedis(context.Background(), "not a uri", zerolog.New(io.Discard)); err == nil {
		t.Fatal("expected error for malformed uri")
	}
}
