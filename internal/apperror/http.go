package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Response is the error body returned to clients.
type Response struct {
	Timestamp time.Time   `json:"timestamp"`
	Status    int         `json:"status"`
	Error     string      `json:"error"`
	Path      string      `json:"path"`
	Errors    []Violation `json:"errors,omitempty"`
}

// StatusCode maps a Kind to its HTTP status.
func StatusCode(kind Kind) int {
	switch kind {
	case KindInvalidCredential:
		return http.StatusUnauthorized
	case KindAccessDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindIntegrity, KindMalformed:
		return http.StatusBadRequest
	case KindInvalidTransition:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Translate builds the client response for err. Internal details never
// leave the process; callers log them before translating.
func Translate(err error, path string) Response {
	kind := KindOf(err)
	resp := Response{
		Timestamp: time.Now().UTC(),
		Status:    StatusCode(kind),
		Path:      path,
	}

	switch kind {
	case KindInvalidCredential:
		resp.Error = "Invalid credential"
	case KindAccessDenied, KindInvalidTransition:
		var aerr *Error
		errors.As(err, &aerr)
		resp.Error = aerr.Message
	case KindNotFound:
		resp.Error = "Resource not found"
	case KindValidation:
		var verr *ValidationError
		errors.As(err, &verr)
		resp.Error = "Invalid data"
		resp.Errors = verr.Violations
	case KindIntegrity:
		resp.Error = "Referential integrity violation"
	case KindMalformed:
		resp.Error = "Malformed request"
	case KindRateLimited:
		resp.Error = "Too many requests"
	default:
		resp.Error = "Internal server error"
	}

	return resp
}

// WriteJSON translates err and writes it to w.
func WriteJSON(w http.ResponseWriter, r *http.Request, err error) {
	resp := Translate(err, r.URL.Path)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_ = json.NewEncoder(w).Encode(resp)
}
