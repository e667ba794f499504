package approval

import "context"

// Store persists one kind of approvable request.
type Store interface {
	// LockForDecision loads the request and locks it until the surrounding transaction ends.
	LockForDecision(ctx context.Context, id string) (Request, error)
	// SaveDecision writes the new approval state of the request.
	SaveDecision(ctx context.Context, id string, state State) error
}

// Hook runs inside the decision transaction after the state has been saved.
type Hook func(ctx context.Context, req Request) error

// Transactor runs fn in a single database transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
