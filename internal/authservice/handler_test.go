package authservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/fennwick/pressroom/internal/common"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "Correct_Horse_1!"
)

func setupTestService(t *testing.T, allowedEmail string) *AuthService {
	db := common.TestDB("file://../../migrations", t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), 12)
	assert.NoError(t, err)

	return NewAuthService(db, allowedEmail, string(hash))
}

func TestLogin(t *testing.T) {
	s := setupTestService(t, testAdminEmail)

	testCases := []struct {
		name        string
		email       string
		password    string
		expectedErr error
	}{
		{
			name:     "valid credentials",
			email:    testAdminEmail,
			password: testAdminPassword,
		},
		{
			name:        "wrong password",
			email:       testAdminEmail,
			password:    "not-the-password",
			expectedErr: ErrInvalidCredentials,
		},
		{
			name:        "non-admin email",
			email:       "intruder@example.com",
			password:    testAdminPassword,
			expectedErr: ErrInvalidCredentials,
		},
		{
			name:        "missing email",
			email:       "",
			password:    testAdminPassword,
			expectedErr: common.ValidationError{Errors: map[string]string{"email": "must be provided"}},
		},
		{
			name:        "missing password",
			email:       testAdminEmail,
			password:    "",
			expectedErr: common.ValidationError{Errors: map[string]string{"password": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			session, err := s.Login(context.Background(), tc.email, tc.password)
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				assert.NotEmpty(t, session.Plain)
				assert.Equal(t, testAdminEmail, session.Email)
				assert.True(t, session.Expiry.After(time.Now()))
			}
		})
	}
}

func TestLoginWithoutConfiguredEmail(t *testing.T) {
	s := setupTestService(t, "")

	_, err := s.Login(context.Background(), testAdminEmail, testAdminPassword)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSessionLifecycle(t *testing.T) {
	s := setupTestService(t, testAdminEmail)
	ctx := context.Background()

	session, err := s.Login(ctx, testAdminEmail, testAdminPassword)
	assert.NoError(t, err)

	email, err := s.SessionEmail(ctx, session.Plain)
	assert.NoError(t, err)
	assert.Equal(t, testAdminEmail, email)

	assert.NoError(t, s.Logout(ctx, session.Plain))

	_, err = s.SessionEmail(ctx, session.Plain)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Revoking again reports not found.
	assert.ErrorIs(t, s.Logout(ctx, session.Plain), ErrSessionNotFound)
}

func TestSessionEmailRejectsGarbage(t *testing.T) {
	s := setupTestService(t, testAdminEmail)

	_, err := s.SessionEmail(context.Background(), "not-a-real-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.SessionEmail(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
