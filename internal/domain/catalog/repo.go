package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a question does not exist.
var ErrNotFound = errors.New("question not found")

type Repository interface {
	Create(ctx context.Context, q *Question) error
	GetByID(ctx context.Context, id int64) (*Question, error)
	GetByCode(ctx context.Context, code string) (*Question, error)
	// List returns the full catalog ordered by section, display order, id.
	List(ctx context.Context) ([]*Question, error)
	DeleteByCode(ctx context.Context, code string) error
}
