package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/logger"

	"go.uber.org/zap"
)

// Recovery turns a panic in a downstream handler into a 500 with the
// standard error body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.FromCtx(r.Context()).Error("panic recovered",
					zap.String("error", fmt.Sprintf("%v", rec)),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				apperror.WriteJSON(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
