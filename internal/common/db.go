package common

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
)

// DSN builds a postgres connection URI from its discrete parts.
func DSN(host, port, user, password, name string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
}

// DSNWithSessionEmail adds a startup parameter setting app.email on every
// connection opened from the URI. The row level security policies compare
// current_setting('app.email', true) against the configured admin email, so
// a pool without this parameter cannot pass the write policies unless its
// role bypasses RLS.
func DSNWithSessionEmail(dsn, email string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}

	q := u.Query()
	q.Set("options", fmt.Sprintf("-c app.email=%s", email))
	u.RawQuery = q.Encode()

	return u.String()
}

func NewDB(host, port, user, password, name string, maxOpenConns, maxIdleConns int, maxIdleTime time.Duration) (*sql.DB, error) {
	return ConnectDB(DSN(host, port, user, password, name), maxOpenConns, maxIdleConns, maxIdleTime)
}

// ConnectDB connects to the database and verifies the connection with a ping.
func ConnectDB(URI string, maxOpenConns int, maxIdleConns int, maxIdleTime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", URI)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// CloseDB closes the database connection.
func CloseDB(db *sql.DB) error {
	return db.Close()
}
