package response

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/datalab/datalab/internal/domain/audit"
	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/internal/platform/db"
)

// EditorResolver resolves the submitting editor to a display name. Backed by
// the user service.
type EditorResolver interface {
	ResolveEditor(ctx context.Context, key string) (string, error)
}

// Service orchestrates batch submission: profile overrides, per-answer
// validation, upserts, completeness recomputation and the audit record, all
// inside one transaction.
type Service struct {
	repo         Repository
	questions    catalog.Repository
	participants *participant.Service
	pRepo        participant.Repository
	editors      EditorResolver
	auditor      audit.Recorder
	tx           db.Transactor
	log          zerolog.Logger
}

func NewService(
	repo Repository,
	questions catalog.Repository,
	participants *participant.Service,
	pRepo participant.Repository,
	editors EditorResolver,
	auditor audit.Recorder,
	tx db.Transactor,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		questions:    questions,
		participants: participants,
		pRepo:        pRepo,
		editors:      editors,
		auditor:      auditor,
		tx:           tx,
		log:          log,
	}
}

// SubmitRequest is the wire shape for a batch submission.
type SubmitRequest struct {
	Answers   map[string]string     `json:"answers"`
	Overrides participant.Overrides `json:"overrides"`
}

// SubmitBatch validates and stores a batch of answers for one participant.
// All mutations commit together or not at all: a validation failure on any
// answer leaves storage untouched. Keys that resolve to no question are
// skipped silently so stale clients keep working after catalog changes.
func (s *Service) SubmitBatch(ctx context.Context, editorKey, participantKey string, req SubmitRequest) error {
	if len(req.Answers) == 0 {
		return ErrNoResponsesSubmitted
	}

	editor, err := s.editors.ResolveEditor(ctx, editorKey)
	if err != nil {
		return err
	}
	p, err := participant.Resolve(ctx, s.pRepo, participantKey)
	if err != nil {
		return err
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return err
	}

	// sorted for deterministic validation order
	keys := make([]string, 0, len(req.Answers))
	for k := range req.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	touched := 0
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err = s.participants.ApplyOverrides(ctx, p.ID, req.Overrides)
		if err != nil {
			return err
		}

		working, err := s.repo.MapByParticipant(ctx, p.ID)
		if err != nil {
			return err
		}

		for _, key := range keys {
			q := resolveQuestion(questions, key)
			if q == nil {
				continue
			}
			value := req.Answers[key]
			if err := Validate(q, value); err != nil {
				return err
			}
			if err := s.repo.Upsert(ctx, &Response{
				ParticipantID: p.ID,
				QuestionID:    q.ID,
				Value:         value,
			}); err != nil {
				return err
			}
			working[q.ID] = value
			touched++
		}

		complete := EvaluateCompleteness(working, p.Group, questions)
		if err := s.participants.RefreshStatus(ctx, p.ID, complete); err != nil {
			return err
		}

		return s.auditor.Record(ctx, editor, &p.ID, audit.ActionUpdate, "Respuesta",
			fmt.Sprintf("%d variables actualizadas para %s", touched, p.Code))
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Int64("participant_id", p.ID).
		Int("touched", touched).
		Msg("response batch stored")
	return nil
}

// resolveQuestion applies the dual id-or-code lookup against an in-memory
// catalog snapshot. Numeric keys try the id first so numeric-looking codes
// stay reachable.
func resolveQuestion(questions []*catalog.Question, key string) *catalog.Question {
	key = strings.TrimSpace(key)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		for _, q := range questions {
			if q.ID == id {
				return q
			}
		}
	}
	for _, q := range questions {
		if q.Code == key {
			return q
		}
	}
	return nil
}

// IsComplete evaluates the stored answers of a participant against the
// current catalog. Satisfies the participant service's checker interface.
func (s *Service) IsComplete(ctx context.Context, participantID int64) (bool, error) {
	p, err := s.pRepo.GetByID(ctx, participantID)
	if err != nil {
		return false, err
	}
	answers, err := s.repo.MapByParticipant(ctx, participantID)
	if err != nil {
		return false, err
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return false, err
	}
	return EvaluateCompleteness(answers, p.Group, questions), nil
}

// ListByParticipant returns the stored answers for a participant key.
func (s *Service) ListByParticipant(ctx context.Context, participantKey string) ([]*Response, error) {
	p, err := participant.Resolve(ctx, s.pRepo, participantKey)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByParticipant(ctx, p.ID)
}

// Summary describes how far along a participant's form is.
type Summary struct {
	ParticipantID int64              `json:"participant_id"`
	Code          string             `json:"code"`
	Status        participant.Status `json:"status"`
	Required      int                `json:"required"`
	Answered      int                `json:"answered"`
	Missing       []string           `json:"missing"`
}

// Summarize reports the required applicable questions still unanswered.
func (s *Service) Summarize(ctx context.Context, participantKey string) (*Summary, error) {
	p, err := participant.Resolve(ctx, s.pRepo, participantKey)
	if err != nil {
		return nil, err
	}
	answers, err := s.repo.MapByParticipant(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{ParticipantID: p.ID, Code: p.Code, Status: p.Status, Missing: []string{}}
	for _, q := range questions {
		if !q.Required || !q.AppliesTo.Covers(p.Group) || catalog.IsMetadataCode(q.Code) {
			continue
		}
		sum.Required++
		if strings.TrimSpace(answers[q.ID]) != "" {
			sum.Answered++
		} else {
			sum.Missing = append(sum.Missing, q.Code)
		}
	}
	return sum, nil
}
