package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dscommerce-be/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int64    `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

func ExtractAccessToken(r *http.Request) string {
	// Cookie (preferred)
	if cookie, err := r.Cookie("access_token"); err == nil {
		if cookie.Value != "" {
			return cookie.Value
		}
	}

	// Authorization header (fallback)
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// TokenParser verifies HS256 access tokens issued by the identity provider.
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Authenticate turns a bearer token into a Principal.
// Any failure is reported as apperror.ErrInvalidCredential.
func (p *TokenParser) Authenticate(tokenStr string) (Principal, error) {
	if len(p.secret) == 0 {
		return Principal{}, fmt.Errorf("%w: signing secret is not set", apperror.ErrInvalidCredential)
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return p.secret, nil
		},
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", apperror.ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return Principal{}, fmt.Errorf("%w: invalid token", apperror.ErrInvalidCredential)
	}

	roles := make([]Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, Role(strings.ToUpper(strings.TrimPrefix(r, "ROLE_"))))
	}

	return Principal{UserID: claims.UserID, Email: claims.Email, Roles: roles}, nil
}

// GenerateToken signs a token for p. Issuance belongs to the identity
// provider; this exists for local tooling and tests.
func GenerateToken(secret string, p Principal, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}

	roles := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, string(r))
	}

	claims := Claims{
		UserID: p.UserID,
		Email:  p.Email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
