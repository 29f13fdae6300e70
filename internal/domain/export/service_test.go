package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/datalab/datalab/internal/domain/audit"
	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/internal/domain/response"
	"github.com/datalab/datalab/pkg/pagination"
)

type memQuestions struct {
	items []*catalog.Question
}

func (m *memQuestions) Create(context.Context, *catalog.Question) error { return nil }
func (m *memQuestions) GetByID(context.Context, int64) (*catalog.Question, error) {
	return nil, catalog.ErrNotFound
}
func (m *memQuestions) GetByCode(context.Context, string) (*catalog.Question, error) {
	return nil, catalog.ErrNotFound
}
func (m *memQuestions) List(context.Context) ([]*catalog.Question, error) { return m.items, nil }
func (m *memQuestions) DeleteByCode(context.Context, string) error        { return nil }

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
func (m *memParticipants) List(_ context.Context, _ participant.Filter, p pagination.Params) ([]*participant.Participant, int, error) {
	if p.Offset >= len(m.items) {
		return nil, len(m.items), nil
	}
	end := p.Offset + p.Limit
	if end > len(m.items) {
		end = len(m.items)
	}
	return m.items[p.Offset:end], len(m.items), nil
}
func (m *memParticipants) UpdateCode(context.Context, int64, string) error { return nil }
func (m *memParticipants) UpdateProfile(context.Context, *participant.Participant) error {
	return nil
}
func (m *memParticipants) UpdateStatus(context.Context, int64, participant.Status, *string) error {
	return nil
}
func (m *memParticipants) Delete(context.Context, int64) error { return nil }

type memResponses struct {
	byParticipant map[int64]map[int64]string
}

func (m *memResponses) Upsert(context.Context, *response.Response) error { return nil }
func (m *memResponses) ListByParticipant(context.Context, int64) ([]*response.Response, error) {
	return nil, nil
}
func (m *memResponses) MapByParticipant(_ context.Context, pid int64) (map[int64]string, error) {
	return m.byParticipant[pid], nil
}

type memAudit struct {
	actions []string
}

func (m *memAudit) Record(_ context.Context, _ string, _ *int64, action, _ string, _ string) error {
	m.actions = append(m.actions, action)
	return nil
}

func (m *memAudit) Exists(context.Context, int64, string) (bool, error) {
	return false, nil
}

func newTestService() (*Service, *memAudit) {
	questions := &memQuestions{items: []*catalog.Question{
		{ID: 1, Code: "CODIGO", DataType: catalog.TypeText},
		{ID: 2, Code: "edad", Statement: "Edad", DataType: catalog.TypeNumeric},
		{ID: 3, Code: "sexo", Statement: "Sexo", DataType: catalog.TypeChoice, Options: []string{"M", "F"}},
	}}
	participants := &memParticipants{items: []*participant.Participant{
		{ID: 1, Code: "CS1", Group: catalog.GroupCase, Status: participant.StatusComplete},
		{ID: 2, Code: "CT2", Group: catalog.GroupControl, Status: participant.StatusIncomplete},
	}}
	responses := &memResponses{byParticipant: map[int64]map[int64]string{
		1: {2: "51", 3: "F"},
		2: {2: "30"},
	}}
	auditor := &memAudit{}
	return NewService(questions, participants, responses, auditor, zerolog.Nop()), auditor
}

func TestBuildMatrix_Raw(t *testing.T) {
	svc, _ := newTestService()

	m, err := svc.BuildMatrix(context.Background(), false)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	wantHeader := []string{"codigo", "grupo", "estado", "edad", "sexo"}
	if strings.Join(m.Header, ",") != strings.Join(wantHeader, ",") {
		t.Errorf("header = %v, want %v", m.Header, wantHeader)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.Rows))
	}
	if m.Rows[0][0] != "CS1" || m.Rows[0][3] != "51" || m.Rows[0][4] != "F" {
		t.Errorf("row 0 = %v", m.Rows[0])
	}
	if m.Rows[1][4] != "" {
		t.Errorf("missing answer should export empty, got %q", m.Rows[1][4])
	}
}

func TestBuildMatrix_Coded(t *testing.T) {
	svc, _ := newTestService()

	m, err := svc.BuildMatrix(context.Background(), true)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	// edad 51 -> "1", sexo F -> option index "1"
	if m.Rows[0][3] != "1" || m.Rows[0][4] != "1" {
		t.Errorf("coded row 0 = %v", m.Rows[0])
	}
	// edad 30 -> "0"
	if m.Rows[1][3] != "0" {
		t.Errorf("coded row 1 = %v", m.Rows[1])
	}
}

func TestWriteCSV(t *testing.T) {
	svc, auditor := newTestService()

	var buf bytes.Buffer
	if err := svc.WriteCSV(context.Background(), "ana@study.org", &buf, false); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[1][0] != "CS1" {
		t.Errorf("first data row = %v", records[1])
	}

	if len(auditor.actions) != 1 || auditor.actions[0] != audit.ActionExport {
		t.Errorf("export should be audited once, got %v", auditor.actions)
	}
}

func TestWriteXLSX_CodedWithLegend(t *testing.T) {
	svc, auditor := newTestService()

	var buf bytes.Buffer
	if err := svc.WriteXLSX(context.Background(), "ana@study.org", &buf, true); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Datos", "A2")
	if err != nil || got != "CS1" {
		t.Errorf("Datos!A2 = %q, %v", got, err)
	}
	coded, err := f.GetCellValue("Datos", "D2")
	if err != nil || coded != "1" {
		t.Errorf("Datos!D2 = %q, want coded age 1", coded)
	}

	legend, err := f.GetCellValue("Leyenda", "A2")
	if err != nil || legend != "edad" {
		t.Errorf("Leyenda!A2 = %q, %v", legend, err)
	}

	if len(auditor.actions) != 1 {
		t.Errorf("export should be audited once, got %v", auditor.actions)
	}
}

func TestWriteXLSX_UncodedHasNoLegend(t *testing.T) {
	svc, _ := newTestService()

	var buf bytes.Buffer
	if err := svc.WriteXLSX(context.Background(), "ana@study.org", &buf, false); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex("Leyenda"); idx != -1 {
		t.Error("uncoded export should not carry a legend sheet")
	}
}
