package authservice

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"time"
)

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func newSession(email string, ttl time.Duration) (*Session, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Plain:  base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		Email:  email,
		Expiry: time.Now().Add(ttl),
	}

	session.Hash = hashToken(session.Plain)

	return session, nil
}
