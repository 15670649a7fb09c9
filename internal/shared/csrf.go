package shared

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

const (
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token on script-issued requests.
	CSRFHeader = "X-CSRF-Token"
)

// CSRFManager derives per-session tokens from a server secret.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// Token returns the token bound to sess. Tokens are stable for the life of the session.
func (m *CSRFManager) Token(sess *Session) (string, error) {
	if sess == nil || sess.ID == "" {
		return "", ErrSessionMissing
	}
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte("csrf|"))
	_, _ = mac.Write([]byte(sess.ID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// VerifyToken compares the supplied token with the one derived for the session.
func (m *CSRFManager) VerifyToken(sess *Session, token string) error {
	if token == "" {
		return ErrCSRFTokenMissing
	}
	expected, err := m.Token(sess)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}
