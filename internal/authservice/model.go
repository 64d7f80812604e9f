package authservice

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func newAuthModel(db *sql.DB) *AuthModel {
	return &AuthModel{db: db}
}

func (m *AuthModel) insert(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO admin_sessions (hash, email, expiry)
		VALUES ($1, $2, $3)`

	_, err := m.db.ExecContext(ctx, query, s.Hash, s.Email, s.Expiry)
	return err
}

func (m *AuthModel) getEmail(ctx context.Context, hash []byte) (string, error) {
	query := `
		SELECT email
		FROM admin_sessions
		WHERE hash = $1 AND expiry > $2`

	var email string
	err := m.db.QueryRowContext(ctx, query, hash, time.Now()).Scan(&email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return "", ErrSessionNotFound
		default:
			return "", err
		}
	}

	return email, nil
}

func (m *AuthModel) delete(ctx context.Context, hash []byte) error {
	query := `
		DELETE FROM admin_sessions
		WHERE hash = $1`

	res, err := m.db.ExecContext(ctx, query, hash)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// deleteExpired removes stale sessions. Called opportunistically on login so
// the table does not grow without bound.
func (m *AuthModel) deleteExpired(ctx context.Context) error {
	query := `
		DELETE FROM admin_sessions
		WHERE expiry <= $1`

	_, err := m.db.ExecContext(ctx, query, time.Now())
	return err
}
