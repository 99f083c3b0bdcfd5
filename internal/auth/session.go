package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
)

const (
	// SessionCookieName is the cookie carrying the signed owner id.
	SessionCookieName = "jobmargin_session"

	// MethodSession marks identities resolved from the session cookie.
	MethodSession = "session"
)

// Sessions signs owner ids into cookie values with HMAC-SHA256.
type Sessions struct {
	secret []byte
}

// NewSessions returns a Sessions codec. An empty secret disables it.
func NewSessions(secret string) *Sessions {
	return &Sessions{secret: []byte(secret)}
}

// Enabled reports whether a secret is configured.
func (s *Sessions) Enabled() bool {
	return len(s.secret) > 0
}

func (s *Sessions) sign(payload string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return mac.Sum(nil)
}

// Encode returns the signed cookie value for ownerID.
func (s *Sessions) Encode(ownerID string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(ownerID))
	return payload + "." + hex.EncodeToString(s.sign(payload))
}

// Decode verifies a cookie value and returns the owner id it carries.
func (s *Sessions) Decode(value string) (string, bool) {
	if !s.Enabled() {
		return "", false
	}

	payload, signature, ok := strings.Cut(value, ".")
	if !ok || strings.Contains(signature, ".") {
		return "", false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, s.sign(payload)) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}

// SetCookie writes the session cookie for ownerID.
func (s *Sessions) SetCookie(w http.ResponseWriter, ownerID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.Encode(ownerID),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Resolve implements Resolver.
func (s *Sessions) Resolve(r *http.Request) (Identity, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return Identity{}, false
	}
	owner, ok := s.Decode(c.Value)
	if !ok {
		return Identity{}, false
	}
	return Identity{OwnerID: owner, Method: MethodSession}, true
}
