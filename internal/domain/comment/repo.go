package comment

import "context"

// Repository persists participant comments.
type Repository interface {
	Insert(ctx context.Context, c *Comment) error
	// ListByParticipant returns a participant's comments, newest first.
	ListByParticipant(ctx context.Context, participantID int64) ([]*Comment, error)
}
