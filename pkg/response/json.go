package response

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response with a machine-readable kind
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error kinds returned by this API. Clients map these to localized
// messages; the server never carries localized strings.
const (
	CodeAuthMissing         = "AUTH_MISSING"
	CodeAuthInvalid         = "AUTH_INVALID"
	CodeServerMisconfigured = "SERVER_MISCONFIGURED"
	CodeValidation          = "VALIDATION"
	CodeNotFound            = "NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInternalError       = "INTERNAL_ERROR"
)

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeBadRequest, message)
}

func Validation(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeValidation, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, CodeInternalError, message)
}

func AuthMissing(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, CodeAuthMissing, "Authentication payload required")
}

func AuthInvalid(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, CodeAuthInvalid, "Authentication payload rejected")
}

func ServerMisconfigured(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, CodeServerMisconfigured, "Signing secret is not configured")
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, CodeForbidden, message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, CodeConflict, message)
}
