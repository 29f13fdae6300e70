package response

import "context"

// Repository persists answers.
type Repository interface {
	// Upsert writes the answer for (participant, question), replacing any
	// previous value.
	Upsert(ctx context.Context, r *Response) error
	ListByParticipant(ctx context.Context, participantID int64) ([]*Response, error)
	// MapByParticipant returns the participant's answers keyed by question id.
	MapByParticipant(ctx context.Context, participantID int64) (map[int64]string, error)
}
