package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/logging"
	"github.com/dmitrijs2005/channelhub/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const userIDKey contextKey = "userID"

// tokenVerifier is the part of auth.TokenService the middleware needs.
type tokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// accessToken reads the access token from the cookie or, failing that, from
// an "Authorization: Bearer" header.
func accessToken(r *http.Request) string {
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid access token.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		if token == "" {
			unauthorized(w, "Unauthorized request")
			return
		}

		claims, err := s.tokens.VerifyAccessToken(token)
		if err != nil {
			unauthorized(w, "Invalid access token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (s *Server) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := accessToken(r); token != "" {
			if claims, err := s.tokens.VerifyAccessToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, claims.UserID()))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserID(r *http.Request) string {
	if v := r.Context().Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok {
			return userID
		}
	}
	return ""
}

// requestLogger logs every request with the id chi's RequestID assigned.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
			r = r.WithContext(ctx)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info(ctx, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"remote", r.RemoteAddr,
			)
		})
	}
}
