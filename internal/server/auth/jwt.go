// Package auth issues and verifies the signed access and refresh tokens.
// It never touches storage: whether a refresh token is still the current one
// is decided by the caller.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the profile data embedded in access tokens.
type Identity struct {
	Username string
	Email    string
	FullName string
}

// Claims are the registered claims plus the identity fields. The user id is
// the subject. Refresh tokens carry only the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenService signs access and refresh tokens with two independent secrets,
// so a leaked refresh secret cannot mint access tokens and vice versa.
type TokenService struct {
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

type Option func(*TokenService)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg *config.Config, opts ...Option) *TokenService {
	s := &TokenService{
		accessSecret:                 []byte(cfg.AccessTokenSecret),
		refreshSecret:                []byte(cfg.RefreshTokenSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueAccessToken returns a short-lived token for userID carrying id.
func (s *TokenService) IssueAccessToken(userID string, id Identity) (string, error) {
	claims := s.registered(userID, s.accessTokenValidityDuration)
	return sign(&Claims{
		RegisteredClaims: claims,
		Username:         id.Username,
		Email:            id.Email,
		FullName:         id.FullName,
	}, s.accessSecret)
}

// IssueRefreshToken returns a long-lived token for userID.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return sign(&Claims{RegisteredClaims: s.registered(userID, s.refreshTokenValidityDuration)}, s.refreshSecret)
}

// VerifyAccessToken checks signature and expiry of an access token.
// Any failure is reported as common.ErrInvalidToken.
func (s *TokenService) VerifyAccessToken(token string) (*Claims, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefreshToken checks signature and expiry of a refresh token.
// Any failure is reported as common.ErrInvalidToken.
func (s *TokenService) VerifyRefreshToken(token string) (*Claims, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) registered(userID string, validity time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	}
}

func sign(claims *Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty signing secret")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
