package comment

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/datalab/datalab/internal/domain/participant"
)

// ErrEmptyBody is returned when a comment has no content.
var ErrEmptyBody = errors.New("comment body is required")

// Service implements comment business logic.
type Service struct {
	repo         Repository
	participants participant.Repository
	log          zerolog.Logger
}

func NewService(repo Repository, participants participant.Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, participants: participants, log: log}
}

// Add attaches a note to a participant, attributed to the author.
func (s *Service) Add(ctx context.Context, author, participantKey, body string) (*Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	p, err := participant.Resolve(ctx, s.participants, participantKey)
	if err != nil {
		return nil, err
	}

	c := &Comment{ParticipantID: p.ID, Author: author, Body: body}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}
	s.log.Debug().Int64("participant_id", p.ID).Str("author", author).Msg("comment added")
	return c, nil
}

// ListByParticipant returns a participant's comments, newest first.
func (s *Service) ListByParticipant(ctx context.Context, participantKey string) ([]*Comment, error) {
	p, err := participant.Resolve(ctx, s.participants, participantKey)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByParticipant(ctx, p.ID)
}
