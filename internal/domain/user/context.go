package user

import "context"

type actorKey struct{}

// WithActor stores the authenticated user's profile in ctx.
func WithActor(ctx context.Context, u *AppUser) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

// ActorFromContext returns the authenticated user's profile.
func ActorFromContext(ctx context.Context) (*AppUser, error) {
	u, ok := ctx.Value(actorKey{}).(*AppUser)
	if !ok || u == nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}
