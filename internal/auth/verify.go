// Package auth verifies the signed initData payload a Telegram Mini App
// attaches to every request. Verification is offline: the payload's own
// signature is checked against the configured bot token, with no call back
// to Telegram.
package auth

import (
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Common errors
var (
	ErrMissingToken    = errors.New("bot token is not configured")
	ErrInvalidInitData = errors.New("init data is missing, malformed, or has a bad signature")
)

// Claims are the verified identity fields embedded in an initData payload.
type Claims struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
}

// DisplayName joins the name parts, falling back to the username and
// finally the numeric id so there is always something to show.
func (c *Claims) DisplayName() string {
	parts := make([]string, 0, 2)
	if c.FirstName != "" {
		parts = append(parts, c.FirstName)
	}
	if c.LastName != "" {
		parts = append(parts, c.LastName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if c.Username != "" {
		return c.Username
	}
	return fmt.Sprintf("ID %d", c.ID)
}

// Verify checks initData against botToken and returns the embedded claims.
// The payload is accepted if its signature matches under any scheme from
// Schemes(); comparison is constant time. All rejections collapse to
// ErrInvalidInitData so the caller cannot leak which check failed.
func Verify(initData, botToken string) (*Claims, error) {
	if botToken == "" {
		return nil, ErrMissingToken
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrInvalidInitData
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, ErrInvalidInitData
	}
	claims := &Claims{}
	if err := json.Unmarshal([]byte(userJSON), claims); err != nil {
		return nil, ErrInvalidInitData
	}
	if claims.ID == 0 {
		return nil, ErrInvalidInitData
	}

	checkString := buildCheckString(values)
	for _, scheme := range Schemes() {
		expected := scheme.Sign(checkString, botToken)
		if hmac.Equal([]byte(expected), []byte(hash)) {
			return claims, nil
		}
	}

	return nil, ErrInvalidInitData
}

// buildCheckString reconstructs the canonical signing input: every key=value
// pair except the signature itself, sorted lexicographically, one per line.
func buildCheckString(values url.Values) string {
	lines := make([]string, 0, len(values))
	for key, vals := range values {
		if key == "hash" {
			continue
		}
		for _, v := range vals {
			lines = append(lines, key+"="+v)
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
