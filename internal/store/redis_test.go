package store

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisSlotKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	slot := NewRedisSlot(client, "mathstudent:", DefaultSlotName)
	if slot.Name() != DefaultSlotName {
		t.Errorf("name = %q, want %q", slot.Name(), DefaultSlotName)
	}
	if slot.Key() != "mathstudent:mathStudentData" {
		t.Errorf("key = %q", slot.Key())
	}
}

func TestRedisSlotRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	slot, err := OpenRedis(ctx, RedisOptions{Addr: mr.Addr(), Prefix: "mathstudent-test:"}, DefaultSlotName)
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	defer slot.Close()

	testRedisSlotRoundTrip(t, ctx, slot)

	if got, err := mr.Get("mathstudent-test:" + DefaultSlotName); err != nil || got != "blob" {
		t.Errorf("stored value = %q, %v", got, err)
	}
	if err := slot.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("mathstudent-test:" + DefaultSlotName) {
		t.Error("key still present after clear")
	}
	if data, err := slot.Read(ctx); err != nil || data != nil {
		t.Errorf("read after clear = %q, %v", data, err)
	}
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := OpenRedis(context.Background(), RedisOptions{Addr: addr}, DefaultSlotName); err == nil {
		t.Fatal("expected a connection error")
	}
}

// TestRedisSlotLiveServer runs against a real server when
// MATHSTUDENT_TEST_REDIS_ADDR is set.
func TestRedisSlotLiveServer(t *testing.T) {
	addr := os.Getenv("MATHSTUDENT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MATHSTUDENT_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	slot, err := OpenRedis(ctx, RedisOptions{Addr: addr, Prefix: "mathstudent-test:"}, t.Name())
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	defer slot.Close()
	defer slot.Clear(ctx)

	testRedisSlotRoundTrip(t, ctx, slot)
}

func testRedisSlotRoundTrip(t *testing.T, ctx context.Context, slot *RedisSlot) {
	t.Helper()
	if data, err := slot.Read(ctx); err != nil || data != nil {
		t.Fatalf("read (empty) = %q, %v", data, err)
	}
	if err := slot.Write(ctx, []byte("blob")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := slot.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "blob" {
		t.Errorf("data = %q, want blob", data)
	}
}
