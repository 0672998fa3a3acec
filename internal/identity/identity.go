// Package identity resolves the opaque user id that owns habits.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/keyring"
)

// ErrNoSession is returned when no user is signed in and none was given.
var ErrNoSession = errors.New("not signed in, run 'habithero login' first")

// SessionStore persists the signed-in user id.
type SessionStore interface {
	GetSession() (string, error)
	SetSession(userID string) error
	DeleteSession() error
}

type keyringSessions struct{}

func (keyringSessions) GetSession() (string, error) { return keyring.GetSession() }
func (keyringSessions) SetSession(id string) error  { return keyring.SetSession(id) }
func (keyringSessions) DeleteSession() error        { return keyring.DeleteSession() }

// KeyringSessions stores the session in the OS keyring.
func KeyringSessions() SessionStore {
	return keyringSessions{}
}

// Provider resolves the acting user. An override (from --user or
// HABITHERO_USER) wins over the stored session.
type Provider struct {
	sessions SessionStore
	override string
}

func NewProvider(sessions SessionStore, override string) *Provider {
	return &Provider{sessions: sessions, override: strings.TrimSpace(override)}
}

func (p *Provider) CurrentUser() (string, error) {
	if p.override != "" {
		return p.override, nil
	}
	id, err := p.sessions.GetSession()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return id, nil
}

// Login stores userID as the session user.
func (p *Provider) Login(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id cannot be empty")
	}
	if err := p.sessions.SetSession(userID); err != nil {
		return "", err
	}
	return userID, nil
}

// LoginGuest starts a session as a fresh anonymous user.
func (p *Provider) LoginGuest() (string, error) {
	return p.Login(constants.GuestUserPrefix + uuid.New().String())
}

// Logout forgets the session. Logging out twice is not an error.
func (p *Provider) Logout() error {
	err := p.sessions.DeleteSession()
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// IsGuest reports whether userID was created by LoginGuest.
func IsGuest(userID string) bool {
	return strings.HasPrefix(userID, constants.GuestUserPrefix)
}
