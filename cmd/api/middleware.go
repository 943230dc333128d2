package main

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
)

type actorKey struct{}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled && app.rateLimiter != nil {
			if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				app.rateLimitExceededResponse(w, r, fmt.Sprint(seconds))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP drops the port from RemoteAddr. Behind a proxy RealIP has already
// replaced it with a bare address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ActorMiddleware reads the user resolved by the upstream gateway. Requests
// without one are anonymous; roles are recorded, never enforced.
func (app *application) ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := domain.Actor{
			ID:   strings.TrimSpace(r.Header.Get("X-Actor-ID")),
			Role: domain.Role(strings.TrimSpace(r.Header.Get("X-Actor-Role"))),
		}
		if actor.ID == "" {
			actor.ID = "anonymous"
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getActorFromCtx(r *http.Request) domain.Actor {
	actor, ok := r.Context().Value(actorKey{}).(domain.Actor)
	if !ok {
		return domain.Actor{ID: "anonymous"}
	}
	return actor
}
