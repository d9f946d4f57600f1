package middleware

import (
	"context"
	"net/http"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

const UserIDHeader = "X-User-ID"

type actorKey struct{}

// Identity resolves the acting user from X-User-ID, falling back to
// defaultUserID. The value is trusted as given.
func Identity(defaultUserID string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				userID = defaultUserID
			} else if !model.IsValidID(userID) {
				reject(w, log, r, apperrors.Validation("Validation failed", nil).
					WithReason(UserIDHeader+" must be a valid id"))
				return
			}

			ctx := ContextWithActor(r.Context(), model.Actor{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ContextWithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}
