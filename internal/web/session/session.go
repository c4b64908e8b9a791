// Package session keeps the login state of API clients. The cookie carries a random
// session id; the stored data holds nothing but the user id.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/secret"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrNoSession is returned when the request carries no valid session.
var ErrNoSession = errors.New("no session")

// Storage is the subset of the gofiber storage drivers used for sessions.
// Get returns nil data for unknown or expired keys.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// Data represents the session data structure.
type Data struct {
	UserID uint `json:"user_id"`
}

// Manager creates, reads and destroys sessions.
type Manager struct {
	storage Storage
	expiry  time.Duration
	secure  bool
}

// New returns a session manager. expiry is the lifetime of a session, secure
// restricts the cookie to https.
func New(storage Storage, expiry time.Duration, secure bool) *Manager {
	if storage == nil {
		panic("storage is nil")
	}

	return &Manager{storage: storage, expiry: expiry, secure: secure}
}

// GenerateSessionID generates a new secure random session ID (256 bits, hex).
func GenerateSessionID() (string, error) {
	return secret.Token()
}

// Create starts a session for userID and sets the cookie.
func (m *Manager) Create(c fiber.Ctx, userID uint) error {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return err
	}

	out, err := json.Marshal(Data{UserID: userID})
	if err != nil {
		return err
	}

	if err = m.storage.Set(sessionID, out, m.expiry); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  time.Now().Add(m.expiry),
		Secure:   m.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return nil
}

// Read returns the session data of the request, or ErrNoSession.
func (m *Manager) Read(c fiber.Ctx) (*Data, error) {
	sessionID := c.Cookies(CookieName)
	if sessionID == "" {
		return nil, ErrNoSession
	}

	raw, err := m.storage.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if len(raw) == 0 {
		return nil, ErrNoSession
	}

	var d Data
	if err = json.Unmarshal(raw, &d); err != nil || d.UserID == 0 {
		return nil, ErrNoSession
	}

	return &d, nil
}

// Destroy deletes the session of the request and clears the cookie.
func (m *Manager) Destroy(c fiber.Ctx) error {
	var err error

	if sessionID := c.Cookies(CookieName); sessionID != "" {
		err = m.storage.Delete(sessionID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return err
}
