package api

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/channelhub/internal/common"
)

func (s *Server) sessionCookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge.Seconds())
	} else {
		c.MaxAge = -1
	}
	return c
}

func (s *Server) setSessionCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, s.sessionCookie(common.AccessTokenCookieName, access, s.accessTTL))
	http.SetCookie(w, s.sessionCookie(common.RefreshTokenCookieName, refresh, s.refreshTTL))
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.sessionCookie(common.AccessTokenCookieName, "", 0))
	http.SetCookie(w, s.sessionCookie(common.RefreshTokenCookieName, "", 0))
}
