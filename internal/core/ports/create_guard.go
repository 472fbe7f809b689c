package ports

import "context"

// CreateGuard serialises user creation per normalized user name across
// processes.
// Acquire returns domain.ErrConcurrencyFailure when another holder owns key.
type CreateGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
