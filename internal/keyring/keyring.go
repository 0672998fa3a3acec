// Package keyring keeps habithero secrets in the OS keyring: the database
// connection string, the signed-in user id and the OpenAI API key.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habithero/internal/constants"
)

var (
	// ErrNotFound is returned when the requested entry is not in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(entry string) (string, error) {
	v, err := keyring.Get(constants.AppName, entry)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func set(entry, what, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, entry, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func remove(entry, what string) error {
	if err := keyring.Delete(constants.AppName, entry); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetConnectionString returns the stored PostgreSQL connection string.
func GetConnectionString() (string, error) {
	return get(constants.DefaultKeyringUser)
}

func SetConnectionString(connStr string) error {
	return set(constants.DefaultKeyringUser, "connection string", connStr)
}

func DeleteConnectionString() error {
	return remove(constants.DefaultKeyringUser, "connection string")
}

// GetSession returns the user id stored by login.
func GetSession() (string, error) {
	return get(constants.SessionKeyringUser)
}

func SetSession(userID string) error {
	return set(constants.SessionKeyringUser, "session", userID)
}

func DeleteSession() error {
	return remove(constants.SessionKeyringUser, "session")
}

// GetOpenAIKey returns the stored OpenAI API key.
func GetOpenAIKey() (string, error) {
	return get(constants.OpenAIKeyringUser)
}

func SetOpenAIKey(key string) error {
	return set(constants.OpenAIKeyringUser, "API key", key)
}

// IsAvailable makes a best-effort read to check that a keyring backend exists.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
