package store

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/erazemk/armory/internal/db"
	"github.com/erazemk/armory/internal/model"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	database := db.NewTestDB(t)
	key, err := GetSessionKey(context.Background(), database)
	if err != nil {
		t.Fatalf("GetSessionKey: %v", err)
	}
	return NewSessions(database, key)
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestSessions(t)
	ctx := context.Background()

	err := s.Create(ctx, &model.Session{
		ID:          "sess-1",
		Email:       "ann@example.com",
		Role:        model.RoleManager,
		AccessToken: "backend-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sess, err := s.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session")
	}
	if sess.AccessToken != "backend-token" {
		t.Errorf("expected access token, got %q", sess.AccessToken)
	}
	if sess.Role != model.RoleManager || sess.Email != "ann@example.com" {
		t.Errorf("unexpected session %+v", sess)
	}

	token, err := s.AccessToken(ctx, "sess-1")
	if err != nil || token != "backend-token" {
		t.Errorf("AccessToken = %q, %v", token, err)
	}
}

func TestAccessTokenSealedAtRest(t *testing.T) {
	s := newTestSessions(t)
	ctx := context.Background()

	s.Create(ctx, &model.Session{
		ID: "sess-1", Email: "ann@example.com", Role: model.RoleStaff,
		AccessToken: "backend-token", ExpiresAt: time.Now().Add(time.Hour),
	})

	var stored []byte
	if err := s.db.QueryRow(`SELECT access_token FROM sessions WHERE id = 'sess-1'`).Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(stored, []byte("backend-token")) {
		t.Fatal("access token stored in plain text")
	}
}

func TestGetSessionMissing(t *testing.T) {
	s := newTestSessions(t)

	sess, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess != nil {
		t.Fatal("expected nil for missing session")
	}
}

func TestGetSessionExpired(t *testing.T) {
	s := newTestSessions(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Create(ctx, &model.Session{
		ID: "old", Email: "ann@example.com", Role: model.RoleStaff,
		AccessToken: "t", ExpiresAt: now.Add(-time.Minute),
	})
	s.Create(ctx, &model.Session{
		ID: "live", Email: "ann@example.com", Role: model.RoleStaff,
		AccessToken: "t", ExpiresAt: now.Add(time.Hour),
	})

	sess, err := s.Get(ctx, "old")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess != nil {
		t.Fatal("expected expired session to be hidden")
	}

	n, err := s.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned session, got %d", n)
	}
	if sess, _ := s.Get(ctx, "live"); sess == nil {
		t.Error("expected live session to survive pruning")
	}
}

func TestDeleteSessions(t *testing.T) {
	s := newTestSessions(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	for _, id := range []string{"a", "b", "c"} {
		email := "ann@example.com"
		if id == "c" {
			email = "bob@example.com"
		}
		if err := s.Create(ctx, &model.Session{ID: id, Email: email, Role: model.RoleStaff, AccessToken: "t", ExpiresAt: exp}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if sess, _ := s.Get(ctx, "a"); sess != nil {
		t.Error("expected session a to be deleted")
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Errorf("deleting a missing session: %v", err)
	}

	n, err := s.DeleteForEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("DeleteForEmail: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted session, got %d", n)
	}
	if sess, _ := s.Get(ctx, "c"); sess == nil {
		t.Error("expected bob's session to remain")
	}
}

func TestOpenRejectsTampered(t *testing.T) {
	s := newTestSessions(t)
	box, err := s.seal("secret")
	if err != nil {
		t.Fatal(err)
	}
	box[len(box)-1] ^= 0xff
	if _, err := s.open(box); err == nil {
		t.Fatal("expected tampered token to fail")
	}
	if _, err := s.open([]byte("short")); err == nil {
		t.Fatal("expected short token to fail")
	}
}
