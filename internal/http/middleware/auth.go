package middleware

import (
	"context"
	"io"
	"net/http"
	"strings"

	"delivery-tracking/internal/auth"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
)

type ctxKey int

const actorKey ctxKey = iota

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// Auth verifies the bearer token and stores the actor in the request
// context. Browser WebSocket clients cannot set headers, so a token query
// parameter is accepted as a fallback.
func Auth(secret string, logger logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				unauthorized(w, "missing token")
				return
			}

			actor, err := auth.ParseToken(secret, token)
			if err != nil {
				logger.Warn("token rejected",
					logx.String("path", r.URL.Path),
					logx.Err(err),
				)
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = io.WriteString(w, `{"error":"`+msg+`"}`)
}
