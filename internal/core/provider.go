package core

import "context"

// Provider produces a complete, independently valid snapshot of T.
// A non-nil error means the returned value must be ignored.
type Provider[T any] interface {
	Fetch(ctx context.Context) (T, error)
}

// ProviderFunc adapts a plain function to a Provider.
type ProviderFunc[T any] func(ctx context.Context) (T, error)

// Fetch calls f(ctx).
func (f ProviderFunc[T]) Fetch(ctx context.Context) (T, error) {
	return f(ctx)
}
