package ports

import "context"

// Transactor runs fn as a single unit of work. Repository calls made with the
// ctx handed to fn commit together when fn returns nil and are rolled back
// otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
