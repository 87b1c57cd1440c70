package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SchemeName identifies a signing scheme generation.
type SchemeName string

const (
	SchemeWebApp      SchemeName = "WEB_APP"
	SchemeLoginWidget SchemeName = "LOGIN_WIDGET"
)

// Scheme is the interface both signing generations implement. A scheme
// derives its own per-bot secret from the raw bot token and signs the
// canonical data-check string with it.
type Scheme interface {
	// Sign computes the hex signature of checkString under the scheme.
	Sign(checkString, botToken string) string

	// Name returns the scheme identifier.
	Name() SchemeName
}

// Schemes returns the accepted schemes in verification order. The current
// Web-App scheme is tried first; the legacy Login-Widget scheme keeps
// payloads from older clients verifiable.
func Schemes() []Scheme {
	return []Scheme{&WebAppScheme{}, &LoginWidgetScheme{}}
}

// WebAppScheme derives the signing secret as HMAC-SHA256 keyed with the
// fixed label "WebAppData" over the bot token.
type WebAppScheme struct{}

// Name returns the scheme identifier.
func (s *WebAppScheme) Name() SchemeName {
	return SchemeWebApp
}

// Sign computes the Web-App signature of checkString.
func (s *WebAppScheme) Sign(checkString, botToken string) string {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	secret := mac.Sum(nil)

	sig := hmac.New(sha256.New, secret)
	sig.Write([]byte(checkString))
	return hex.EncodeToString(sig.Sum(nil))
}

// LoginWidgetScheme derives the signing secret as SHA-256 of the bot token.
type LoginWidgetScheme struct{}

// Name returns the scheme identifier.
func (s *LoginWidgetScheme) Name() SchemeName {
	return SchemeLoginWidget
}

// Sign computes the Login-Widget signature of checkString.
func (s *LoginWidgetScheme) Sign(checkString, botToken string) string {
	secret := sha256.Sum256([]byte(botToken))

	sig := hmac.New(sha256.New, secret[:])
	sig.Write([]byte(checkString))
	return hex.EncodeToString(sig.Sum(nil))
}
