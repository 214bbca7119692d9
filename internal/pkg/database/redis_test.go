package database

import (
	"testing"
)

func TestRedisOptions(t *testing.T) {
	opt, err := redisOptions("redis://:secret@cache.internal:6380/3")
	if err != nil {
		t.Fatalf("redisOptions: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.DB != 3 || opt.Password != "secret" {
		t.Fatalf("unexpected options %s db=%d", opt.Addr, opt.DB)
	}
	if opt.PoolSize != 20 || opt.DialTimeout != redisPingTimeout {
		t.Fatalf("pool settings not applied: %+v", opt)
	}

	if _, err := redisOptions("http://nope"); err == nil {
		t.Fatal("expected non-redis scheme to fail")
	}
}

func TestNewRedisWithoutURL(t *testing.T) {
	client, err := NewRedis("")
	if err != nil || client != nil {
		t.Fatalf("expected nil client and no error, got %v %v", client, err)
	}
	CloseRedis(nil)
}
