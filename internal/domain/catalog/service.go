package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateRequest carries the legacy wire shape for a new question; type and
// applicability strings are normalized here, at the ingestion boundary.
type CreateRequest struct {
	Code           string   `json:"code"`
	Statement      string   `json:"statement"`
	DataType       string   `json:"data_type"`
	Options        []string `json:"options"`
	AppliesTo      string   `json:"applies_to"`
	Section        string   `json:"section"`
	DisplayOrder   int      `json:"display_order"`
	Required       bool     `json:"required"`
	ValidationRule string   `json:"validation_rule"`
}

func (s *Service) CreateQuestion(ctx context.Context, req CreateRequest) (*Question, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("code is required")
	}
	if req.Statement == "" {
		return nil, fmt.Errorf("statement is required")
	}
	if IsMetadataCode(req.Code) {
		return nil, fmt.Errorf("code %q is reserved", req.Code)
	}
	// A malformed rule blob is rejected at ingestion so it can never surface
	// as a validation-time configuration error.
	if _, err := ParseRules(req.ValidationRule); err != nil {
		return nil, err
	}

	q := &Question{
		Code:           req.Code,
		Statement:      req.Statement,
		DataType:       ParseDataType(req.DataType),
		Options:        req.Options,
		AppliesTo:      ParseApplicability(req.AppliesTo),
		Section:        req.Section,
		DisplayOrder:   req.DisplayOrder,
		Required:       req.Required,
		ValidationRule: req.ValidationRule,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) ListQuestions(ctx context.Context) ([]*Question, error) {
	return s.repo.List(ctx)
}

func (s *Service) DeleteQuestion(ctx context.Context, code string) error {
	return s.repo.DeleteByCode(ctx, code)
}

// Resolve looks a question up by a submitted key: numeric-looking keys are
// tried as the id first, then any key falls back to a code lookup.
func (s *Service) Resolve(ctx context.Context, key string) (*Question, error) {
	return Resolve(ctx, s.repo, key)
}

// Resolve is the dual id-or-code lookup shared with the response engine.
func Resolve(ctx context.Context, repo Repository, key string) (*Question, error) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		q, err := repo.GetByID(ctx, id)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return repo.GetByCode(ctx, key)
}
