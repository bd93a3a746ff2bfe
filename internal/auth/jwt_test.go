package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "partsfit", "partsfit")
}

func TestGenerateAndValidate(t *testing.T) {
	a := newTestAuthenticator()
	pair, err := a.GenerateTokens(42, "staff")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := a.ValidateAccessToken(pair.Access)
	if err != nil {
		t.Fatalf("access token rejected: %v", err)
	}
	if id, err := claims.AdminID(); err != nil || id != 42 || claims.Role != "staff" {
		t.Fatalf("unexpected claims: id=%d role=%q err=%v", id, claims.Role, err)
	}

	refresh, err := a.ValidateRefreshToken(pair.Refresh)
	if err != nil {
		t.Fatalf("refresh token rejected: %v", err)
	}
	if refresh.ID != pair.RefreshID || refresh.ID == claims.ID {
		t.Fatalf("unexpected token ids: refresh=%q pair=%q access=%q", refresh.ID, pair.RefreshID, claims.ID)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	a := newTestAuthenticator()
	pair, err := a.GenerateTokens(1, "staff")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.ValidateAccessToken(pair.Refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh accepted as access: %v", err)
	}
	if _, err := a.ValidateRefreshToken(pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access accepted as refresh: %v", err)
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	a := newTestAuthenticator()
	issued := time.Now().Add(-time.Hour)
	a.now = func() time.Time { return issued }
	pair, err := a.GenerateTokens(1, "staff")
	if err != nil {
		t.Fatal(err)
	}

	a.now = time.Now
	if _, err := a.ValidateAccessToken(pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
	if _, err := a.ValidateRefreshToken(pair.Refresh); err != nil {
		t.Fatalf("refresh token should still be valid: %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	pair, err := newTestAuthenticator().GenerateTokens(1, "staff")
	if err != nil {
		t.Fatal(err)
	}
	other := NewJWTAuthenticator("other", "other", "partsfit", "partsfit")
	if _, err := other.ValidateAccessToken(pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token accepted: %v", err)
	}
}
