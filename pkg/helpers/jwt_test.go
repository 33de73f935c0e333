package helpers

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	tok, exp, err := m.GenerateAccessToken("user-1", "sess-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry already passed")
	}

	claims, err := m.ParseAccessToken(tok)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.SessionID != "sess-1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestJWTSecretsAreNotInterchangeable(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	refresh, _, err := m.GenerateRefreshToken("user-1", "sess-1")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if _, err := m.ParseAccessToken(refresh); err == nil {
		t.Fatal("refresh token must not validate as access token")
	}

	other := NewJWTManager("different", "different", time.Hour, time.Hour)
	access, _, _ := m.GenerateAccessToken("user-1", "sess-1")
	if _, err := other.ParseAccessToken(access); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestJWTExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager("s", "s", -time.Minute, -time.Minute)
	tok, _, err := m.GenerateAccessToken("user-1", "sess-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := m.ParseAccessToken(tok); err == nil {
		t.Fatal("expired token must be rejected")
	}
}
