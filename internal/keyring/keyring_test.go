package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

const testConnStr = "host=localhost user=habitquest password=secret dbname=habitquest sslmode=disable"

func TestConnectionStringLifecycle(t *testing.T) {
	gokeyring.MockInit()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetConnectionString() on empty keyring error = %v, want ErrNotFound", err)
	}

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, testConnStr)
	}

	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want ErrNotFound", err)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
}

func TestResolveStoragePath(t *testing.T) {
	gokeyring.MockInit()

	path, err := ResolveStoragePath("/tmp/habitquest.db")
	if err != nil || path != "/tmp/habitquest.db" {
		t.Errorf("file path should pass through, got %q, %v", path, err)
	}

	if _, err := ResolveStoragePath("keyring"); !errors.Is(err, ErrNotFound) {
		t.Errorf("keyring reference with nothing stored error = %v, want ErrNotFound", err)
	}

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	path, err = ResolveStoragePath("keyring")
	if err != nil {
		t.Fatalf("ResolveStoragePath() failed: %v", err)
	}
	if path != testConnStr {
		t.Errorf("ResolveStoragePath() = %q, want stored connection string", path)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
