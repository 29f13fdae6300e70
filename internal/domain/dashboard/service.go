package dashboard

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/domain/coding"
)

const inclusionMonths = 6

// Service assembles the dashboard payload.
type Service struct {
	repo      Repository
	questions catalog.Repository
	target    int
	log       zerolog.Logger
}

func NewService(repo Repository, questions catalog.Repository, target int, log zerolog.Logger) *Service {
	return &Service{repo: repo, questions: questions, target: target, log: log}
}

// Stats computes the full overview in one call.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	byGroup, err := s.repo.CountByGroup(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := s.repo.MonthlyInclusions(ctx, inclusionMonths)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range byGroup {
		total += n
	}

	sex, err := s.breakdown(ctx, "sexo", false)
	if err != nil {
		return nil, err
	}
	age, err := s.breakdown(ctx, "edad", true)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalParticipants: total,
		EnrollmentTarget:  s.target,
		ByGroup:           byGroup,
		ByStatus:          byStatus,
		MonthlyInclusions: monthly,
		SexBreakdown:      sex,
		AgeBreakdown:      age,
	}, nil
}

// breakdown tallies the answers to one question. With encode set, values are
// recoded first so numeric answers collapse into their statistical buckets.
// A catalog without the question yields an empty breakdown, not an error.
func (s *Service) breakdown(ctx context.Context, code string, encode bool) (map[string]int, error) {
	q, err := s.questions.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return map[string]int{}, nil
		}
		return nil, err
	}

	values, err := s.repo.ValuesForQuestion(ctx, code)
	if err != nil {
		return nil, err
	}

	out := map[string]int{}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if encode {
			v = coding.Encode(q, v)
			if v == "" {
				continue
			}
		}
		out[v]++
	}
	return out, nil
}
