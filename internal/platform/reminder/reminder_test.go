package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/datalab/datalab/internal/domain/audit"
	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/pkg/pagination"
)

type memParticipants struct {
	items []*participant.Participant
}

func (m *memParticipants) Create(context.Context, *participant.Participant) error { return nil }
func (m *memParticipants) GetByID(context.Context, int64) (*participant.Participant, error) {
	return nil, participant.ErrNotFound
}
func (m *memParticipants) GetByCode(context.Context, string) (*participant.Participant, error) {
	return nil, participant.ErrNotFound
}
func (m *memParticipants) List(_ context.Context, f participant.Filter, p pagination.Params) ([]*participant.Participant, int, error) {
	var matched []*participant.Participant
	for _, item := range m.items {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		matched = append(matched, item)
	}
	if p.Offset >= len(matched) {
		return nil, len(matched), nil
	}
	end := p.Offset + p.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[p.Offset:end], len(matched), nil
}
func (m *memParticipants) UpdateCode(context.Context, int64, string) error { return nil }
func (m *memParticipants) UpdateProfile(context.Context, *participant.Participant) error {
	return nil
}
func (m *memParticipants) UpdateStatus(context.Context, int64, participant.Status, *string) error {
	return nil
}
func (m *memParticipants) Delete(context.Context, int64) error { return nil }

type memAudit struct {
	reminded map[int64]bool
	records  int
}

func (m *memAudit) Record(_ context.Context, _ string, pid *int64, action, _ string, _ string) error {
	if action == audit.ActionReminder && pid != nil {
		if m.reminded == nil {
			m.reminded = map[int64]bool{}
		}
		m.reminded[*pid] = true
	}
	m.records++
	return nil
}

func (m *memAudit) Exists(_ context.Context, pid int64, action string) (bool, error) {
	if action != audit.ActionReminder {
		return false, nil
	}
	return m.reminded[pid], nil
}

type memDirectory struct {
	emails map[int64]string
}

func (m *memDirectory) Recruiter(_ context.Context, id int64) (string, string, error) {
	email, ok := m.emails[id]
	if !ok {
		return "", "", fmt.Errorf("recruiter %d not found", id)
	}
	return "Ana Reclutadora", email, nil
}

type sentMail struct {
	to      string
	subject string
}

type memSender struct {
	sent []sentMail
}

func (m *memSender) Send(to, subject, _ string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

func stale(id int64, code string, status participant.Status, age time.Duration) *participant.Participant {
	return &participant.Participant{
		ID:          id,
		Code:        code,
		Group:       catalog.GroupCase,
		RecruiterID: 10,
		Status:      status,
		CreatedAt:   time.Now().Add(-age),
	}
}

func TestSweepOnce_MailsRecruiterOfStaleIncomplete(t *testing.T) {
	participants := &memParticipants{items: []*participant.Participant{
		stale(1, "CS1", participant.StatusIncomplete, 5*24*time.Hour),
		stale(2, "CS2", participant.StatusIncomplete, time.Hour), // too fresh
		stale(3, "CT3", participant.StatusComplete, 10*24*time.Hour),
		stale(4, "CT4", participant.StatusNotCompletable, 10*24*time.Hour),
	}}
	auditor := &memAudit{}
	sender := &memSender{}
	directory := &memDirectory{emails: map[int64]string{10: "ana@study.org"}}
	s := NewScheduler(participants, auditor, sender, directory, 3, zerolog.Nop())

	sent, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(sender.sent) != 1 || sender.sent[0].to != "ana@study.org" {
		t.Errorf("mail = %+v", sender.sent)
	}
	if !auditor.reminded[1] {
		t.Error("reminder must leave an audit record")
	}
}

func TestSweepOnce_SkipsAlreadyReminded(t *testing.T) {
	// the audit check has no time bound, so a participant is only ever
	// reminded once
	participants := &memParticipants{items: []*participant.Participant{
		stale(1, "CS1", participant.StatusIncomplete, 40*24*time.Hour),
	}}
	auditor := &memAudit{reminded: map[int64]bool{1: true}}
	sender := &memSender{}
	directory := &memDirectory{emails: map[int64]string{10: "ana@study.org"}}
	s := NewScheduler(participants, auditor, sender, directory, 3, zerolog.Nop())

	sent, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
	if len(sender.sent) != 0 {
		t.Errorf("total mails = %d, want 0", len(sender.sent))
	}
}

func TestSweepOnce_UnresolvableRecruiterDoesNotStallSweep(t *testing.T) {
	participants := &memParticipants{items: []*participant.Participant{
		stale(1, "CS1", participant.StatusIncomplete, 5*24*time.Hour),
	}}
	auditor := &memAudit{}
	sender := &memSender{}
	s := NewScheduler(participants, auditor, sender, &memDirectory{}, 3, zerolog.Nop())

	sent, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if sent != 0 || len(sender.sent) != 0 {
		t.Errorf("nothing should be sent, got sent=%d mails=%d", sent, len(sender.sent))
	}
	if auditor.reminded[1] {
		t.Error("failed reminder must not be ledgered as sent")
	}
}
