package middleware

import (
	"context"
	"net/http"
)

// Actor is the authenticated principal resolved by the upstream gateway.
// This service trusts the identity headers; token verification happens
// before requests reach it.
type Actor struct {
	ID   string
	Role string
}

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

const ActorKey contextKey = "actor"

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsZero() bool {
	return a.ID == "" && a.Role != RoleAdmin
}

// Identity decodes the gateway identity headers into a request-scoped Actor.
// Requests without identity pass through; handlers decide whether the
// operation requires one.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := Actor{
				ID:   r.Header.Get(HeaderActorID),
				Role: r.Header.Get(HeaderActorRole),
			}

			switch actor.Role {
			case RolePatient, RoleDoctor, RoleAdmin, "":
			default:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"Unknown actor role"}`))
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the request actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(Actor)
	return actor, ok && !actor.IsZero()
}
