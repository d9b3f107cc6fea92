package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
)

func newTestService(t *testing.T, now func() time.Time) *TokenService {
	t.Helper()
	cfg := &config.Config{
		AccessTokenSecret:            "access-secret",
		RefreshTokenSecret:           "refresh-secret",
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: 24 * time.Hour,
	}
	if now == nil {
		return NewTokenService(cfg)
	}
	return NewTokenService(cfg, WithClock(now))
}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	tok, err := s.IssueAccessToken("user-123", Identity{Username: "alice", Email: "a@b.c", FullName: "Alice A"})
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := s.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}
	if claims.UserID() != "user-123" {
		t.Fatalf("userID mismatch: got %q", claims.UserID())
	}
	if claims.Username != "alice" || claims.Email != "a@b.c" || claims.FullName != "Alice A" {
		t.Fatalf("identity mismatch: %+v", claims)
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	tok, err := s.IssueRefreshToken("u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	claims, err := s.VerifyRefreshToken(tok)
	if err != nil {
		t.Fatalf("VerifyRefreshToken error: %v", err)
	}
	if claims.UserID() != "u1" {
		t.Fatalf("userID mismatch: got %q", claims.UserID())
	}
	if claims.Username != "" {
		t.Fatalf("refresh token must not carry identity, got %+v", claims)
	}
}

func TestTokens_AreNotInterchangeable(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	access, _ := s.IssueAccessToken("u1", Identity{})
	refresh, _ := s.IssueRefreshToken("u1")

	if _, err := s.VerifyRefreshToken(access); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
	if _, err := s.VerifyAccessToken(refresh); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
}

func TestTokens_UniqueWithinSameInstant(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, func() time.Time { return fixed })

	a, _ := s.IssueRefreshToken("u1")
	b, _ := s.IssueRefreshToken("u1")
	if a == b {
		t.Fatal("two refresh tokens issued at the same instant must differ")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, func() time.Time { return now })

	tok, err := s.IssueAccessToken("u1", Identity{})
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	now = now.Add(16 * time.Minute)

	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)
	other := NewTokenService(&config.Config{
		AccessTokenSecret:           "someone-else",
		RefreshTokenSecret:          "someone-else-2",
		AccessTokenValidityDuration: time.Hour,
	})

	tok, _ := other.IssueAccessToken("u2", Identity{})
	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := s.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512 token, got %v", err)
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)
	tok, _ := s.IssueAccessToken("", Identity{})

	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil)
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))

	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssue_EmptySecretFails(t *testing.T) {
	t.Parallel()

	s := NewTokenService(&config.Config{AccessTokenValidityDuration: time.Minute})
	if _, err := s.IssueAccessToken("u1", Identity{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
