package docstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreWritesFileAndReturnsPublicPath(t *testing.T) {
	base := t.TempDir()
	fixed := time.UnixMilli(1700000000123)
	store := New(base).WithClock(func() time.Time { return fixed })

	got, err := store.Store(42, []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpg")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	want := "/uploads/verify/42-1700000000123.jpg"
	if got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}

	data, err := os.ReadFile(filepath.Join(base, "verify", "42-1700000000123.jpg"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(data) != 4 || data[0] != 0xFF {
		t.Fatalf("unexpected file contents: %v", data)
	}
}

func TestStoreCreatesVerifyDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "uploads")
	store := New(base)

	if _, err := store.Store(1, []byte("x"), "png"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	info, err := os.Stat(filepath.Join(base, "verify"))
	if err != nil || !info.IsDir() {
		t.Fatalf("verify dir not created: %v", err)
	}
}

func TestStoreUnavailable(t *testing.T) {
	base := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(base, []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := New(base)

	_, err := store.Store(1, []byte("x"), "jpg")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}
