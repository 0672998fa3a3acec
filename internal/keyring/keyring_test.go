package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}

	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() after delete error = %v, want ErrNotFound", err)
	}
}

func TestEmptyValuesAreRejected(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
	if err := SetSession(""); err == nil {
		t.Error("SetSession(\"\") should return an error")
	}
	if err := SetOpenAIKey(""); err == nil {
		t.Error("SetOpenAIKey(\"\") should return an error")
	}
}

func TestSessionIsSeparateEntry(t *testing.T) {
	gokeyring.MockInit()

	if err := SetSession("user-123"); err != nil {
		t.Fatalf("SetSession() failed: %v", err)
	}
	if err := SetOpenAIKey("sk-test"); err != nil {
		t.Fatalf("SetOpenAIKey() failed: %v", err)
	}

	session, err := GetSession()
	if err != nil || session != "user-123" {
		t.Errorf("GetSession() = %q, %v", session, err)
	}
	key, err := GetOpenAIKey()
	if err != nil || key != "sk-test" {
		t.Errorf("GetOpenAIKey() = %q, %v", key, err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want ErrNotFound", err)
	}

	if err := DeleteSession(); err != nil {
		t.Fatalf("DeleteSession() failed: %v", err)
	}
	if err := DeleteSession(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteSession() error = %v, want ErrNotFound", err)
	}
}

func TestUnavailableKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no dbus"))
	defer gokeyring.MockInit()

	if IsAvailable() {
		t.Error("IsAvailable() = true for failing keyring")
	}
	if _, err := GetSession(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("GetSession() error = %v, want ErrKeyringUnavailable", err)
	}
}
