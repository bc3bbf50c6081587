package middleware

import (
	"net/http"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/auth"
	"dscommerce-be/internal/logger"

	"go.uber.org/zap"
)

// Authenticator verifies an access token. *auth.TokenParser implements it.
type Authenticator interface {
	Authenticate(token string) (auth.Principal, error)
}

// AuthMiddleware attaches the caller's Principal to the request context.
// Requests without a token continue anonymously; a token that fails
// verification is rejected with 401.
func AuthMiddleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := authenticator.Authenticate(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				apperror.WriteJSON(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFrom(r.Context()); !ok {
			apperror.WriteJSON(w, r, apperror.ErrInvalidCredential)
			return
		}
		next.ServeHTTP(w, r)
	})
}
