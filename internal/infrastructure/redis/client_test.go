package redis

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Set(ctx, "healthcheck", "1", 0).Err(); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got := s.Exists("healthcheck"); !got {
		t.Fatalf("expected key written through the client")
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}

func TestQueueConnOpt(t *testing.T) {
	opt, err := QueueConnOpt("redis://localhost:6380/2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clientOpt, ok := opt.(asynq.RedisClientOpt)
	if !ok {
		t.Fatalf("expected RedisClientOpt, got %T", opt)
	}
	if clientOpt.Addr != "localhost:6380" || clientOpt.DB != 2 {
		t.Fatalf("unexpected options %+v", clientOpt)
	}

	if _, err := QueueConnOpt("ftp://nope"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
