package audit

import (
	"context"

	"github.com/datalab/datalab/pkg/pagination"
)

// Repository persists audit entries.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Entry, error)
	// Exists reports whether any entry with the given action was ever
	// recorded for the participant.
	Exists(ctx context.Context, participantID int64, action string) (bool, error)
}
