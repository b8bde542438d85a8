package ports

import "context"

type actorKey struct{}

// SystemActor is recorded when no authenticated user drove the operation.
const SystemActor = "system"

// WithActor returns a copy of ctx carrying the username of the caller, used
// to attribute audit events.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// ActorFromContext returns the username stored by WithActor, or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return SystemActor
}
