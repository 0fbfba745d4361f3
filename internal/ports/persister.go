package ports

import "context"

// Persister stores one editable unit's content. It may be a network call,
// a disk write or anything else; a returned error marks the save as failed.
type Persister[T any] interface {
	Persist(ctx context.Context, content T) error
}

type PersistFunc[T any] func(ctx context.Context, content T) error

func (f PersistFunc[T]) Persist(ctx context.Context, content T) error {
	return f(ctx, content)
}
