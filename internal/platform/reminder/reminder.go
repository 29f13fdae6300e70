// Package reminder runs the background sweep that nudges recruiters about
// forms left incomplete for too long.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/datalab/datalab/internal/domain/audit"
	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/internal/platform/mail"
	"github.com/datalab/datalab/pkg/pagination"
)

const sweepInterval = 24 * time.Hour

// RecruiterDirectory resolves a participant's recruiter to a mailing
// identity. Backed by the user service.
type RecruiterDirectory interface {
	Recruiter(ctx context.Context, id int64) (name, email string, err error)
}

// Scheduler periodically scans for stale incomplete participants and mails
// each one's recruiter at most once ever. The audit trail is the send
// ledger, so restarts never double-send.
type Scheduler struct {
	participants participant.Repository
	auditor      audit.Recorder
	sender       mail.Sender
	recruiters   RecruiterDirectory
	staleAfter   time.Duration
	log          zerolog.Logger
}

func NewScheduler(
	participants participant.Repository,
	auditor audit.Recorder,
	sender mail.Sender,
	recruiters RecruiterDirectory,
	staleDays int,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		participants: participants,
		auditor:      auditor,
		sender:       sender,
		recruiters:   recruiters,
		staleAfter:   time.Duration(staleDays) * 24 * time.Hour,
		log:          log,
	}
}

// Run sweeps immediately and then once a day until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep sends reminders for every stale incomplete participant. Errors are
// logged per participant so one bad address does not stall the rest.
func (s *Scheduler) sweep(ctx context.Context) {
	sent, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reminder sweep failed")
		return
	}
	if sent > 0 {
		s.log.Info().Int("sent", sent).Msg("reminders sent")
	}
}

// SweepOnce performs one pass and reports how many reminders went out.
func (s *Scheduler) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.staleAfter)
	sent := 0

	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		page, _, err := s.participants.List(ctx,
			participant.Filter{Status: participant.StatusIncomplete},
			pagination.Params{Limit: pageSize, Offset: offset})
		if err != nil {
			return sent, err
		}
		for _, p := range page {
			if p.CreatedAt.After(cutoff) {
				continue
			}
			already, err := s.auditor.Exists(ctx, p.ID, audit.ActionReminder)
			if err != nil {
				return sent, err
			}
			if already {
				continue
			}
			if err := s.remind(ctx, p); err != nil {
				s.log.Error().Err(err).Str("code", p.Code).Msg("reminder failed")
				continue
			}
			sent++
		}
		if len(page) < pageSize {
			break
		}
	}
	return sent, nil
}

func (s *Scheduler) remind(ctx context.Context, p *participant.Participant) error {
	name, email, err := s.recruiters.Recruiter(ctx, p.RecruiterID)
	if err != nil {
		return fmt.Errorf("resolve recruiter %d: %w", p.RecruiterID, err)
	}
	if email == "" {
		return fmt.Errorf("recruiter %d has no email", p.RecruiterID)
	}

	days := int(time.Since(p.CreatedAt).Hours() / 24)
	subject := fmt.Sprintf("Recordatorio: formulario incompleto - %s", p.Code)
	body := fmt.Sprintf(
		"Estimado/a %s,\n\nla ficha del participante %s (grupo %s) lleva %d dias incompleta desde su inclusion (%s). "+
			"Por favor ingrese al sistema para completar la informacion faltante.",
		name, p.Code, p.Group, days, p.CreatedAt.Format("2006-01-02"))
	if err := s.sender.Send(email, subject, body); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return s.auditor.Record(ctx, email, &p.ID, audit.ActionReminder, "Participante",
		fmt.Sprintf("notificacion por email: incompleta por %d dias", days))
}
