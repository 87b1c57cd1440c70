package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/urfu-enjoyers/campuslink/internal/auth"
	"github.com/urfu-enjoyers/campuslink/pkg/response"
)

// InitDataHeader carries the signed Telegram payload on API requests.
const InitDataHeader = "X-Telegram-Init-Data"

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
)

// Authenticator verifies a signed initData payload and resolves it to a
// local user ID. Implemented by the user service.
type Authenticator interface {
	Authenticate(ctx context.Context, initData string) (int64, error)
}

// TelegramAuth verifies the initData payload from the request header (or, as
// a fallback, the "initData" field of a JSON body) and stores the resolved
// local user ID in the request context.
func TelegramAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initData := r.Header.Get(InitDataHeader)
			if initData == "" {
				initData = initDataFromBody(r)
			}
			if initData == "" {
				response.AuthMissing(w)
				return
			}

			userID, err := authn.Authenticate(r.Context(), initData)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingToken):
					response.ServerMisconfigured(w)
				case errors.Is(err, auth.ErrInvalidInitData):
					response.AuthInvalid(w)
				default:
					response.InternalError(w, "Authentication failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// initDataFromBody pulls the "initData" field out of a JSON body, restoring
// the body afterwards so handlers can still decode it.
func initDataFromBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 2<<20))
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var probe struct {
		InitData string `json:"initData"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return probe.InitData
}

// GetUserID extracts the authenticated user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
