// Package apierr defines the JSON error envelope shared by all HTTP
// responses: {"error":{"code":"...","message":"..."}} with stable,
// machine-readable codes.
package apierr

import (
	"encoding/json"
	"net/http"
)

// Stable error codes.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

// HTTPErrorResponse is the wire shape of every error response.
type HTTPErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the code and human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write emits the envelope with the given status.
func Write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{
		Error: ErrorBody{Code: code, Message: message},
	})
}

// BadRequest writes a 400 envelope.
func BadRequest(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadRequest, CodeBadRequest, message)
}

// Unauthorized writes a 401 envelope.
func Unauthorized(w http.ResponseWriter) {
	Write(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, message string) {
	Write(w, http.StatusNotFound, CodeNotFound, message)
}

// Internal writes a 500 envelope.
func Internal(w http.ResponseWriter) {
	Write(w, http.StatusInternalServerError, CodeInternal, "Internal Server Error")
}
