package authservice

import (
	"database/sql"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials covers both a wrong password and a non-admin
	// email: callers get one generic failure either way.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	// ErrNotConfigured means no admin email is set; the admin area is
	// unusable until the operator configures one.
	ErrNotConfigured = errors.New("admin email not configured")
)

// SessionTTL bounds how long an admin session stays valid.
const SessionTTL = 12 * time.Hour

// Session is one logged-in admin session. Plain is the wire token handed to
// the client; only its hash is stored.
type Session struct {
	Plain  string
	Hash   []byte
	Email  string
	Expiry time.Time
}

type AuthModel struct {
	db *sql.DB
}

type AuthService struct {
	m            *AuthModel
	allowedEmail string
	passwordHash []byte
}
