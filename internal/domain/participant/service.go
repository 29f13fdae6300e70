package participant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/datalab/datalab/internal/domain/audit"
	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/platform/db"
	"github.com/datalab/datalab/pkg/pagination"
)

// ErrJustificationRequired is returned when marking a participant not
// completable without a reason.
var ErrJustificationRequired = errors.New("justification is required")

// ErrRecruiterRequired is returned when enrolling without a recruiter.
var ErrRecruiterRequired = errors.New("recruiter is required")

// CompletenessChecker reports whether a participant's form is complete.
// Implemented by the response service; injected to keep the dependency
// pointing one way.
type CompletenessChecker interface {
	IsComplete(ctx context.Context, participantID int64) (bool, error)
}

// Service implements participant business logic.
type Service struct {
	repo    Repository
	auditor audit.Recorder
	tx      db.Transactor
	checker CompletenessChecker
	log     zerolog.Logger
}

func NewService(repo Repository, auditor audit.Recorder, tx db.Transactor, log zerolog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, tx: tx, log: log}
}

// SetCompletenessChecker wires the response-side completeness evaluation in
// after construction. Must be called before Reopen is used.
func (s *Service) SetCompletenessChecker(c CompletenessChecker) {
	s.checker = c
}

// CreateRequest is the wire shape for enrolling a participant.
type CreateRequest struct {
	Group       string `json:"group"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	RecruiterID int64  `json:"recruiter_id"`
}

// Create enrolls a participant in the given study arm. The public code is
// derived from the generated id inside the same transaction, so a code is
// never observed missing or stale.
func (s *Service) Create(ctx context.Context, actor string, req CreateRequest) (*Participant, error) {
	g, ok := catalog.ParseGroup(req.Group)
	if !ok {
		return nil, fmt.Errorf("unknown group %q", req.Group)
	}
	if req.RecruiterID == 0 {
		return nil, ErrRecruiterRequired
	}

	p := &Participant{
		Group:       g,
		Name:        strings.TrimSpace(req.Name),
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		RecruiterID: req.RecruiterID,
		Status:      StatusIncomplete,
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		p.Code = DeriveCode(p.Group, p.ID)
		if err := s.repo.UpdateCode(ctx, p.ID, p.Code); err != nil {
			return err
		}
		return s.auditor.Record(ctx, actor, &p.ID, audit.ActionCreate, "Participante",
			fmt.Sprintf("participante %s inscrito en grupo %s", p.Code, p.Group))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("id", p.ID).Str("code", p.Code).Msg("participant enrolled")
	return p, nil
}

// Get resolves a participant by numeric id or public code.
func (s *Service) Get(ctx context.Context, key string) (*Participant, error) {
	return Resolve(ctx, s.repo, key)
}

// Resolve looks a participant up by id when the key parses as a number,
// falling back to the public code either way.
func Resolve(ctx context.Context, repo Repository, key string) (*Participant, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		p, err := repo.GetByID(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return repo.GetByCode(ctx, key)
}

// List returns participants matching the filter.
func (s *Service) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Participant, int, error) {
	return s.repo.List(ctx, f, pg)
}

// Delete removes a participant and records the deletion.
func (s *Service) Delete(ctx context.Context, actor string, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.auditor.Record(ctx, actor, &id, audit.ActionDelete, "Participante",
			fmt.Sprintf("participante %s eliminado", p.Code))
	})
}

// MarkNotCompletable flags a participant whose form will never be finished.
// The state is terminal for automatic transitions: completeness recomputation
// leaves it alone until an explicit Reopen.
func (s *Service) MarkNotCompletable(ctx context.Context, actor string, id int64, justification string) (*Participant, error) {
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, ErrJustificationRequired
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, id, StatusNotCompletable, &justification); err != nil {
			return err
		}
		return s.auditor.Record(ctx, actor, &id, audit.ActionUpdate, "Participante",
			fmt.Sprintf("participante %s marcado no completable: %s", p.Code, justification))
	})
	if err != nil {
		return nil, err
	}

	p.Status = StatusNotCompletable
	p.Justification = &justification
	return p, nil
}

// Reopen lifts the not-completable flag and recomputes the completion state
// from the stored responses.
func (s *Service) Reopen(ctx context.Context, actor string, id int64) (*Participant, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := StatusIncomplete
	complete, err := s.checker.IsComplete(ctx, id)
	if err != nil {
		return nil, err
	}
	if complete {
		status = StatusComplete
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, id, status, nil); err != nil {
			return err
		}
		return s.auditor.Record(ctx, actor, &id, audit.ActionUpdate, "Participante",
			fmt.Sprintf("participante %s reabierto, estado %s", p.Code, status))
	})
	if err != nil {
		return nil, err
	}

	p.Status = status
	p.Justification = nil
	return p, nil
}

// ApplyOverrides updates the non-blank profile fields on a participant. A
// group change re-derives the public code from the new group, so the code is
// always consistent with the current arm.
func (s *Service) ApplyOverrides(ctx context.Context, id int64, o Overrides) (*Participant, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if v := strings.TrimSpace(o.Name); v != "" && v != p.Name {
		p.Name = v
		changed = true
	}
	if v := strings.TrimSpace(o.Phone); v != "" && v != p.Phone {
		p.Phone = v
		changed = true
	}
	if v := strings.TrimSpace(o.Address); v != "" && v != p.Address {
		p.Address = v
		changed = true
	}
	if v := strings.TrimSpace(o.Group); v != "" {
		g, ok := catalog.ParseGroup(v)
		if !ok {
			return nil, fmt.Errorf("unknown group %q", v)
		}
		if g != p.Group {
			p.Group = g
			p.Code = DeriveCode(g, p.ID)
			changed = true
		}
	}

	if !changed {
		return p, nil
	}
	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RefreshStatus stores the completion state implied by the latest responses.
// Not-completable participants are left untouched.
func (s *Service) RefreshStatus(ctx context.Context, id int64, complete bool) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == StatusNotCompletable {
		return nil
	}

	status := StatusIncomplete
	if complete {
		status = StatusComplete
	}
	if status == p.Status {
		return nil
	}
	return s.repo.UpdateStatus(ctx, id, status, nil)
}
