package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datalab/datalab/pkg/pagination"
)

// Recorder is the write side of the audit trail, consumed by other domain
// services so they do not need the full repository.
type Recorder interface {
	Record(ctx context.Context, actor string, participantID *int64, action, subject, detail string) error
	Exists(ctx context.Context, participantID int64, action string) (bool, error)
}

// Service implements Recorder and the read API.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record writes a single audit entry. Failures are returned to the caller,
// which decides whether the surrounding transaction aborts.
func (s *Service) Record(ctx context.Context, actor string, participantID *int64, action, subject, detail string) error {
	e := &Entry{
		ID:            uuid.New(),
		Actor:         actor,
		ParticipantID: participantID,
		Action:        action,
		Subject:       subject,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return err
	}
	s.log.Debug().
		Str("actor", actor).
		Str("action", action).
		Str("subject", subject).
		Msg("audit entry recorded")
	return nil
}

func (s *Service) Exists(ctx context.Context, participantID int64, action string) (bool, error) {
	return s.repo.Exists(ctx, participantID, action)
}

// List returns audit entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*Entry, error) {
	return s.repo.List(ctx, f, p)
}
