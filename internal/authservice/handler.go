package authservice

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/fennwick/pressroom/internal/common"
)

// NewAuthService wires the single-admin gate. allowedEmail is the only
// account permitted into the admin area; passwordHash is its bcrypt hash.
func NewAuthService(db *sql.DB, allowedEmail, passwordHash string) *AuthService {
	return &AuthService{
		m:            newAuthModel(db),
		allowedEmail: allowedEmail,
		passwordHash: []byte(passwordHash),
	}
}

// AllowedEmail returns the configured admin email, empty when unset.
func (s *AuthService) AllowedEmail() string {
	return s.allowedEmail
}

// Login checks the submitted credentials against the configured admin account
// and opens a session. Unknown email and wrong password both yield the same
// ErrInvalidCredentials so the response leaks nothing.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	v := common.NewValidator()
	v.Check(email != "", "email", "must be provided")
	v.CheckMatches(email, common.EmailRX, "email", "must be a valid email address")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if s.allowedEmail == "" {
		return nil, ErrNotConfigured
	}

	if email != s.allowedEmail {
		return nil, ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}

	// Best effort housekeeping; a failure here must not block the login.
	_ = s.m.deleteExpired(ctx)

	session, err := newSession(email, SessionTTL)
	if err != nil {
		return nil, err
	}

	err = s.m.insert(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// SessionEmail resolves a wire token to the email it was issued for. Expired
// or unknown tokens yield ErrSessionNotFound.
func (s *AuthService) SessionEmail(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionNotFound
	}

	return s.m.getEmail(ctx, hashToken(token))
}

// Logout revokes the session for the given token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.m.delete(ctx, hashToken(token))
}
