package user

import "context"

type UserFilter struct {
	BUCode          *string
	ExcludeArtists  bool
	RequireHireDate bool
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (AppUser, error)
	List(ctx context.Context, filter UserFilter) ([]AppUser, error)
	// ListByRole returns users holding role, optionally scoped to a business unit.
	ListByRole(ctx context.Context, role Role, buCode *string) ([]AppUser, error)
}
