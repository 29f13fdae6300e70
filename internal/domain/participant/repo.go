package participant

import (
	"context"
	"errors"

	"github.com/datalab/datalab/pkg/pagination"
)

// ErrNotFound is returned when a participant does not exist.
var ErrNotFound = errors.New("participant not found")

// Repository persists participants.
type Repository interface {
	Create(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, id int64) (*Participant, error)
	GetByCode(ctx context.Context, code string) (*Participant, error)
	List(ctx context.Context, f Filter, pg pagination.Params) ([]*Participant, int, error)
	UpdateCode(ctx context.Context, id int64, code string) error
	UpdateProfile(ctx context.Context, p *Participant) error
	UpdateStatus(ctx context.Context, id int64, status Status, justification *string) error
	Delete(ctx context.Context, id int64) error
}
