// SPDX-License-Identifier: MIT

// Package csrf implements double-submit cookie tokens and Origin/Referer
// checks for state-changing HTTP requests.
package csrf

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
)

const (
	// CookieName is the cookie carrying the server-issued token.
	CookieName = "csrf-token"
	// HeaderName is the request header a client echoes the token in.
	HeaderName = "x-csrf-token"
	// BodyField is the body field consulted when the header is absent.
	BodyField = "csrfToken"

	// TokenBytes is the amount of entropy per token (hex encoded to 64 chars).
	TokenBytes = 32
	// CookieMaxAge is the token cookie lifetime in seconds.
	CookieMaxAge = 3600
)

// GenerateToken returns a fresh hex-encoded random token.
// It panics if the system entropy source fails; there is no safe fallback.
func GenerateToken() string {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("csrf: read random bytes: %v", err))
	}
	return hex.EncodeToString(b)
}

// IssueToken generates a token, sets it as the csrf-token cookie on w and
// returns it. The cookie is not marked Secure; use Guard.IssueToken when the
// site is served over TLS.
func IssueToken(w http.ResponseWriter) string {
	return issue(w, false)
}

func issue(w http.ResponseWriter, secure bool) string {
	token := GenerateToken()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

// GetToken returns the token stored in the request's csrf-token cookie.
func GetToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
