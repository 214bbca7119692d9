package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://files.test/")
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	key := "statements/m1/2026-03.csv"
	if err := s.Put(ctx, key, strings.NewReader("a,b\n"), "text/csv"); err != nil {
		t.Fatalf("put: %v", err)
	}

	ok, err := s.Exists(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected file to exist, ok=%v err=%v", ok, err)
	}

	rc, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "a,b\n" {
		t.Fatalf("unexpected body %q", body)
	}

	if got := s.GetURL(key); got != "http://files.test/statements/m1/2026-03.csv" {
		t.Fatalf("unexpected url %s", got)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	s, _ := NewLocalStorage(t.TempDir(), "")
	if err := s.Put(context.Background(), "../outside.csv", strings.NewReader("x"), "text/csv"); err == nil {
		t.Fatal("expected error for key escaping base path")
	}
}

func TestNewUnknownDriver(t *testing.T) {
	if _, err := New(Config{Driver: "ftp"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
