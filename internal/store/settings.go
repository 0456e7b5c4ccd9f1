package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	return getOrCreateSecret(ctx, db, "jwt_secret")
}

// GetSessionKey returns the key that encrypts access tokens at rest,
// generating it on first use.
func GetSessionKey(ctx context.Context, db *sql.DB) (*[32]byte, error) {
	s, err := getOrCreateSecret(ctx, db, "session_key")
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("stored session_key is malformed")
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// getOrCreateSecret returns the 32-byte hex secret stored under name.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func getOrCreateSecret(ctx context.Context, db *sql.DB, name string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating %s: %w", name, err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		name, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", name, err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, name,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", name, err)
	}

	return secret, nil
}
