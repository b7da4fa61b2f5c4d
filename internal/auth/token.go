// Package auth verifies bearer tokens. Token issuance lives with the
// identity provider; this service only consumes tokens.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
)

// Claims is the token payload this service understands.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// ParseToken verifies the HMAC signature and returns the acting user.
func ParseToken(secret, tokenString string) (domain.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: parse token: %s", apperr.ErrForbidden, err)
	}
	if !token.Valid {
		return domain.Actor{}, fmt.Errorf("%w: token is not valid", apperr.ErrForbidden)
	}

	role := domain.Role(claims.Role)
	if claims.UserID == 0 || !role.Valid() {
		return domain.Actor{}, fmt.Errorf("%w: incomplete claims", apperr.ErrForbidden)
	}
	return domain.Actor{UserID: claims.UserID, Role: role}, nil
}

// BuildToken signs a token for the given actor. Used by tests and local
// tooling; production tokens come from the identity provider.
func BuildToken(secret string, actor domain.Actor, opts ...func(*Claims)) (string, error) {
	claims := Claims{
		UserID: actor.UserID,
		Role:   string(actor.Role),
	}
	for _, opt := range opts {
		opt(&claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
