package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/erazemk/armory/internal/model"
)

const nonceSize = 24

// Sessions stores dashboard sessions. Access tokens are sealed with a
// secretbox key before they reach the database.
type Sessions struct {
	db  *sql.DB
	key *[32]byte
	now func() time.Time
}

// NewSessions creates a session store.
func NewSessions(db *sql.DB, key *[32]byte) *Sessions {
	return &Sessions{db: db, key: key, now: time.Now}
}

func (s *Sessions) seal(token string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, s.key), nil
}

func (s *Sessions) open(box []byte) (string, error) {
	if len(box) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed token too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, s.key)
	if !ok {
		return "", errors.New("sealed token failed authentication")
	}
	return string(plain), nil
}

// Create stores a new session.
func (s *Sessions) Create(ctx context.Context, sess *model.Session) error {
	box, err := s.seal(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("sealing access token: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, email, role, access_token, expires_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Email, sess.Role, box, sess.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// Get returns a live session by id, or nil if it does not exist or has
// expired.
func (s *Sessions) Get(ctx context.Context, id string) (*model.Session, error) {
	sess := &model.Session{ID: id}
	var box []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT email, role, access_token, created_at, expires_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.Email, &sess.Role, &box, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, nil
	}

	sess.AccessToken, err = s.open(box)
	if err != nil {
		return nil, fmt.Errorf("opening access token: %w", err)
	}
	return sess, nil
}

// AccessToken returns the backend token of a live session, or "".
func (s *Sessions) AccessToken(ctx context.Context, id string) (string, error) {
	sess, err := s.Get(ctx, id)
	if err != nil || sess == nil {
		return "", err
	}
	return sess.AccessToken, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteForEmail removes every session of a user and returns how many were
// removed.
func (s *Sessions) DeleteForEmail(ctx context.Context, email string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE email = ?`, email)
	if err != nil {
		return 0, fmt.Errorf("deleting sessions: %w", err)
	}
	return res.RowsAffected()
}

// Prune deletes expired sessions.
func (s *Sessions) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	return res.RowsAffected()
}
