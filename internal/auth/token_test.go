package auth

import (
	"testing"
	"time"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", 30*time.Minute, 7*24*time.Hour)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	m := newTestManager()

	token, err := m.IssueAccess(42, "alice1234", "a@x.com", "CUSTOMER")
	if err != nil {
		t.Fatalf("issuing access token failed: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verifying access token failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id: got %d want 42", claims.UserID)
	}
	if claims.Username != "alice1234" || claims.Email != "a@x.com" || claims.Role != "CUSTOMER" {
		t.Fatalf("identity claims wrong: %+v", claims)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("type claim: got %q want %q", claims.TokenType, TokenTypeAccess)
	}
}

func TestIssueRefresh_CarriesOnlyUserID(t *testing.T) {
	m := newTestManager()

	token, err := m.IssueRefresh(7)
	if err != nil {
		t.Fatalf("issuing refresh token failed: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verifying refresh token failed: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Fatalf("type claim: got %q want %q", claims.TokenType, TokenTypeRefresh)
	}
	if claims.UserID != 7 {
		t.Fatalf("user id: got %d want 7", claims.UserID)
	}
	if claims.Username != "" || claims.Email != "" || claims.Role != "" {
		t.Fatalf("refresh token should not carry identity claims: %+v", claims)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	m := newTestManager()

	token, err := m.IssueAccessWithTTL(1, "alice1234", "a@x.com", "CUSTOMER", -time.Minute)
	if err != nil {
		t.Fatalf("issuing token failed: %v", err)
	}
	if _, err := m.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expired token should yield ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewTokenManager("another-secret", 30*time.Minute, 7*24*time.Hour)

	token, err := m.IssueAccess(1, "alice1234", "a@x.com", "CUSTOMER")
	if err != nil {
		t.Fatalf("issuing token failed: %v", err)
	}
	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Fatalf("wrong-secret token should yield ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m := newTestManager()
	if _, err := m.Verify("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("garbage token should yield ErrInvalidToken, got %v", err)
	}
}
