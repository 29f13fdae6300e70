package comment

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/pkg/pagination"
)

type memRepo struct {
	nextID int64
	items  []*Comment
}

func (m *memRepo) Insert(_ context.Context, c *Comment) error {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.items = append(m.items, c)
	return nil
}

func (m *memRepo) ListByParticipant(_ context.Context, pid int64) ([]*Comment, error) {
	var out []*Comment
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].ParticipantID == pid {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

type memParticipants struct {
	items map[int64]*participant.Participant
}

func (m *memParticipants) Create(context.Context, *participant.Participant) error { return nil }
func (m *memParticipants) GetByID(_ context.Context, id int64) (*participant.Participant, error) {
	if p, ok := m.items[id]; ok {
		return p, nil
	}
	return nil, participant.ErrNotFound
}
func (m *memParticipants) GetByCode(_ context.Context, code string) (*participant.Participant, error) {
	for _, p := range m.items {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, participant.ErrNotFound
}
func (m *memParticipants) List(context.Context, participant.Filter, pagination.Params) ([]*participant.Participant, int, error) {
	return nil, 0, nil
}
func (m *memParticipants) UpdateCode(context.Context, int64, string) error { return nil }
func (m *memParticipants) UpdateProfile(context.Context, *participant.Participant) error {
	return nil
}
func (m *memParticipants) UpdateStatus(context.Context, int64, participant.Status, *string) error {
	return nil
}
func (m *memParticipants) Delete(context.Context, int64) error { return nil }

func newTestService() *Service {
	participants := &memParticipants{items: map[int64]*participant.Participant{
		1: {ID: 1, Code: "CS1", Group: catalog.GroupCase},
	}}
	return NewService(&memRepo{}, participants, zerolog.Nop())
}

func TestService_Add(t *testing.T) {
	svc := newTestService()

	c, err := svc.Add(context.Background(), "ana@study.org", "CS1", "  revisar el telefono  ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.ParticipantID != 1 || c.Author != "ana@study.org" {
		t.Errorf("comment = %+v", c)
	}
	if c.Body != "revisar el telefono" {
		t.Errorf("body should be trimmed, got %q", c.Body)
	}
	if c.ID == 0 || c.CreatedAt.IsZero() {
		t.Error("stored comment should carry id and timestamp")
	}
}

func TestService_Add_EmptyBody(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Add(context.Background(), "ana@study.org", "CS1", "   "); err != ErrEmptyBody {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestService_Add_UnknownParticipant(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Add(context.Background(), "ana@study.org", "CT9", "hola"); err != participant.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ListByParticipant_NewestFirst(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Add(context.Background(), "ana@study.org", "CS1", "primero"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(context.Background(), "luis@study.org", "1", "segundo"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := svc.ListByParticipant(context.Background(), "CS1")
	if err != nil {
		t.Fatalf("ListByParticipant: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Body != "segundo" || got[1].Body != "primero" {
		t.Errorf("comments should come newest first: %q, %q", got[0].Body, got[1].Body)
	}
}
