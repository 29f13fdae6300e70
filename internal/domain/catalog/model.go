package catalog

import (
	"strings"
	"time"
)

// DataType is the primitive type of a question, resolved once at ingestion
// from the legacy free-form strings ("Numero", "Texto", ...).
type DataType string

const (
	TypeNumeric DataType = "numeric"
	TypeText    DataType = "text"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
	TypeChoice  DataType = "choice"
)

// ParseDataType maps a legacy type string to its tagged DataType. Matching is
// case-insensitive; anything unrecognized is treated as free text.
func ParseDataType(s string) DataType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numero", "number", "numeric", "decimal", "entero", "integer":
		return TypeNumeric
	case "fecha", "date":
		return TypeDate
	case "booleano", "boolean", "si_no", "sino":
		return TypeBoolean
	case "select", "choice", "opcion", "opciones":
		return TypeChoice
	default:
		return TypeText
	}
}

// Group is the study arm a participant is assigned to.
type Group string

const (
	GroupCase    Group = "CASO"
	GroupControl Group = "CONTROL"
)

// ParseGroup maps a group string to its enum value.
func ParseGroup(s string) (Group, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASO", "CASE":
		return GroupCase, true
	case "CONTROL":
		return GroupControl, true
	}
	return "", false
}

// Applicability says which group(s) a question is collected for.
type Applicability string

const (
	AppliesAll     Applicability = "ALL"
	AppliesCase    Applicability = "CASO"
	AppliesControl Applicability = "CONTROL"
)

// ParseApplicability normalizes a legacy applicability string. Blank and the
// historical "both" spellings mean ALL; unrecognized values also normalize to
// ALL so a malformed catalog row widens rather than hides a question.
func ParseApplicability(s string) Applicability {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AMBOS", "BOTH", "TODOS", "ALL":
		return AppliesAll
	case "CASO", "CASE":
		return AppliesCase
	case "CONTROL":
		return AppliesControl
	default:
		return AppliesAll
	}
}

// Covers reports whether a question with this applicability is collected for
// the given group.
func (a Applicability) Covers(g Group) bool {
	switch a {
	case AppliesAll:
		return true
	case AppliesCase:
		return g == GroupCase
	case AppliesControl:
		return g == GroupControl
	}
	return false
}

// Codes that are system-generated and never collected as answers.
var metadataCodes = []string{"CODIGO", "CODIGO_PARTICIPANTE"}

// IsMetadataCode reports whether code names a reserved auto-generated field.
// Comparison is case-insensitive.
func IsMetadataCode(code string) bool {
	for _, m := range metadataCodes {
		if strings.EqualFold(code, m) {
			return true
		}
	}
	return false
}

// Question maps to the question table: one declarative definition per
// collected data point.
type Question struct {
	ID             int64         `db:"id" json:"id"`
	Code           string        `db:"code" json:"code"`
	Statement      string        `db:"statement" json:"statement"`
	DataType       DataType      `db:"data_type" json:"data_type"`
	Options        []string      `db:"options" json:"options,omitempty"`
	AppliesTo      Applicability `db:"applies_to" json:"applies_to"`
	Section        string        `db:"section" json:"section,omitempty"`
	DisplayOrder   int           `db:"display_order" json:"display_order"`
	Required       bool          `db:"required" json:"required"`
	ValidationRule string        `db:"validation_rule" json:"validation_rule,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// IsNumeric reports whether answers must coerce to a decimal number.
func (q *Question) IsNumeric() bool { return q.DataType == TypeNumeric }
