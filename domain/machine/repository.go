package machine

import "context"

type Repository interface {
	Get(ctx context.Context) (State, error)
	// Update applies fn atomically; the state is left untouched when fn returns an error.
	Update(ctx context.Context, fn func(state *State) error) error
}
