package request

import "context"

type Repository interface {
	// GetAll returns every request ordered by id.
	GetAll(ctx context.Context) ([]Request, error)
	GetByRequester(ctx context.Context, requesterIdentity string) ([]Request, error)
	// GetByID returns ErrNotFound when no record carries id.
	GetByID(ctx context.Context, id int64) (Request, error)
	Create(ctx context.Context, r Request) (Request, error)
	// Update persists the status of an existing record and returns ErrNotFound
	// when it is gone.
	Update(ctx context.Context, r Request) (Request, error)
	// Delete removes the record; deleting an absent id is not an error.
	Delete(ctx context.Context, id int64) error
}
