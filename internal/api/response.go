package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/auth"
	"dscommerce-be/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs unexpected failures before translating err; client
// errors were already logged by the service layer.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if apperror.KindOf(err) == apperror.KindInternal {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	apperror.WriteJSON(w, r, err)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", apperror.ErrMalformedRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrMalformedRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", apperror.ErrMalformedRequest, raw)
	}
	return id, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// principal returns the caller of a route mounted behind RequireAuth.
func principal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, apperror.ErrInvalidCredential
	}
	return p, nil
}
