package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tasktracker/domain"
)

func newTestAuth(t *testing.T) (*Auth, *fakeSessions) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	sessions := newFakeSessions()
	auth := NewAuth(fakeCreds{user: domain.User{ID: 1, Username: "admin"}, hash: string(hash)}, sessions, time.Hour)
	return auth, sessions
}

func TestLoginMintsSession(t *testing.T) {
	auth, sessions := newTestAuth(t)

	user, token, err := auth.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "admin" {
		t.Fatalf("unexpected identity %+v", user)
	}
	if _, ok := sessions.tokens[token]; !ok {
		t.Fatal("login did not register the session")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	auth, _ := newTestAuth(t)
	_, _, err := auth.Login(context.Background(), "admin", "nope")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUserIndistinguishable(t *testing.T) {
	auth, _ := newTestAuth(t)
	_, _, err := auth.Login(context.Background(), "ghost", "admin123")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutUnknownTokenIsNoop(t *testing.T) {
	auth, _ := newTestAuth(t)
	if err := auth.Logout(context.Background(), "missing"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := auth.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout empty token: %v", err)
	}
}
