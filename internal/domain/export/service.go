// Package export renders the study dataset as a participant-by-question
// matrix, either raw or statistically recoded, in CSV or XLSX form.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/datalab/datalab/internal/domain/audit"
	"github.com/datalab/datalab/internal/domain/catalog"
	"github.com/datalab/datalab/internal/domain/coding"
	"github.com/datalab/datalab/internal/domain/participant"
	"github.com/datalab/datalab/internal/domain/response"
	"github.com/datalab/datalab/pkg/pagination"
)

const fetchPageSize = 500

// Service assembles and writes dataset exports.
type Service struct {
	questions    catalog.Repository
	participants participant.Repository
	responses    response.Repository
	auditor      audit.Recorder
	log          zerolog.Logger
}

func NewService(
	questions catalog.Repository,
	participants participant.Repository,
	responses response.Repository,
	auditor audit.Recorder,
	log zerolog.Logger,
) *Service {
	return &Service{
		questions:    questions,
		participants: participants,
		responses:    responses,
		auditor:      auditor,
		log:          log,
	}
}

// Matrix is the flattened dataset: one row per participant, one column per
// question, plus fixed identity columns.
type Matrix struct {
	Header []string
	Rows   [][]string
	// Questions are the catalog entries behind the variable columns, in
	// column order.
	Questions []*catalog.Question
}

// BuildMatrix loads the full dataset. When coded is true every value runs
// through the statistical encoder; raw values are exported otherwise.
func (s *Service) BuildMatrix(ctx context.Context, coded bool) (*Matrix, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// metadata codes are carried by the identity columns, not as variables
	var cols []*catalog.Question
	for _, q := range questions {
		if catalog.IsMetadataCode(q.Code) {
			continue
		}
		cols = append(cols, q)
	}

	header := []string{"codigo", "grupo", "estado"}
	for _, q := range cols {
		header = append(header, q.Code)
	}
	m := &Matrix{Header: header, Questions: cols}

	for offset := 0; ; offset += fetchPageSize {
		page, _, err := s.participants.List(ctx, participant.Filter{},
			pagination.Params{Limit: fetchPageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("load participants: %w", err)
		}
		for _, p := range page {
			answers, err := s.responses.MapByParticipant(ctx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("load responses for %s: %w", p.Code, err)
			}
			row := []string{p.Code, string(p.Group), string(p.Status)}
			for _, q := range cols {
				value := answers[q.ID]
				if coded {
					value = coding.Encode(q, value)
				}
				row = append(row, value)
			}
			m.Rows = append(m.Rows, row)
		}
		if len(page) < fetchPageSize {
			break
		}
	}
	return m, nil
}

// WriteCSV writes the dataset as CSV and records the export.
func (s *Service) WriteCSV(ctx context.Context, actor string, w io.Writer, coded bool) error {
	m, err := s.BuildMatrix(ctx, coded)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(m.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range m.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return s.recordExport(ctx, actor, "csv", coded, len(m.Rows))
}

// WriteXLSX writes the dataset as a spreadsheet and records the export. Coded
// exports carry a second sheet with the encoding legend so the numbers stay
// interpretable.
func (s *Service) WriteXLSX(ctx context.Context, actor string, w io.Writer, coded bool) error {
	m, err := s.BuildMatrix(ctx, coded)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const dataSheet = "Datos"
	f.SetSheetName("Sheet1", dataSheet)

	for col, name := range m.Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(dataSheet, cell, name); err != nil {
			return fmt.Errorf("write header cell: %w", err)
		}
	}
	for i, row := range m.Rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(dataSheet, cell, value); err != nil {
				return fmt.Errorf("write data cell: %w", err)
			}
		}
	}

	if coded {
		if err := writeLegendSheet(f, m.Questions); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return s.recordExport(ctx, actor, "xlsx", coded, len(m.Rows))
}

func writeLegendSheet(f *excelize.File, questions []*catalog.Question) error {
	const sheet = "Leyenda"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create legend sheet: %w", err)
	}

	headers := []string{"variable", "enunciado", "codificacion"}
	for col, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write legend header: %w", err)
		}
	}
	for i, q := range questions {
		values := []any{q.Code, q.Statement, coding.Describe(q)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write legend row: %w", err)
			}
		}
	}
	return nil
}

func (s *Service) recordExport(ctx context.Context, actor, format string, coded bool, rows int) error {
	kind := "sin codificar"
	if coded {
		kind = "codificada"
	}
	detail := fmt.Sprintf("exportacion %s %s, %d participantes", format, kind, rows)
	if err := s.auditor.Record(ctx, actor, nil, audit.ActionExport, "Exportacion", detail); err != nil {
		return err
	}
	s.log.Info().Str("format", format).Bool("coded", coded).Int("rows", rows).Msg("dataset exported")
	return nil
}
