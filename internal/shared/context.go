package shared

import (
	"context"

	"github.com/google/uuid"
)

type actorContextKey struct{}

// ContextWithActor stores the authenticated actor id in context. The id is
// supplied by the upstream identity provider; the core performs no
// authentication itself.
func ContextWithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// ActorFromContext extracts the actor id from context. The second return
// value is false when no actor is present (unauthenticated request).
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorContextKey{}).(uuid.UUID)
	return id, ok
}
