package httpapi

import (
	"net/http"
)

// Standard error messages for API responses.
const (
	// MsgUnprocessable indicates a malformed body or a persistence failure.
	MsgUnprocessable = "unprocessable"

	// MsgNotFound indicates a resource was not found.
	MsgNotFound = "resource not found"

	// MsgUnauthorized indicates a missing or invalid bearer token.
	MsgUnauthorized = "Unauthorized"

	// MsgForbidden indicates a valid token lacking the required permission.
	MsgForbidden = "Forbidden"

	// MsgMethodNotAllowed indicates the route exists for other methods only.
	MsgMethodNotAllowed = "method not allowed"

	// MsgTooManyRequests indicates the client exceeded the rate limit.
	MsgTooManyRequests = "too many requests"

	// MsgTooLarge indicates the request body exceeds the configured limit.
	MsgTooLarge = "request entity too large"

	// MsgInternalError indicates a server error.
	MsgInternalError = "internal server error"
)

// ErrorResponse is the standard error envelope for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// WriteError writes the error envelope with the given status code and message.
func WriteError(w http.ResponseWriter, status int, message string) {
	Write(w, status, ErrorResponse{
		Success: false,
		Error:   status,
		Message: message,
	})
}

// NotFound writes the 404 envelope for an unknown drink or an empty menu.
func NotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, MsgNotFound)
}

// Unprocessable writes the 422 envelope for a bad body or a failed write.
func Unprocessable(w http.ResponseWriter) {
	WriteError(w, http.StatusUnprocessableEntity, MsgUnprocessable)
}

// Unauthorized writes the 401 envelope.
func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
}

// Forbidden writes the 403 envelope.
func Forbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, MsgForbidden)
}

// MethodNotAllowed writes the 405 envelope.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}

// TooManyRequests writes the 429 envelope.
func TooManyRequests(w http.ResponseWriter) {
	WriteError(w, http.StatusTooManyRequests, MsgTooManyRequests)
}

// InternalServerError writes the 500 envelope.
func InternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, MsgInternalError)
}

// NotFoundHandler adapts NotFound to a router's NotFound hook.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) { NotFound(w) }

// MethodNotAllowedHandler adapts MethodNotAllowed to a router's MethodNotAllowed hook.
func MethodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) { MethodNotAllowed(w) }
