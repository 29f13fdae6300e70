// Package coding recodes raw answers into the statistical codes used by the
// export layer. Encoding is read-only: codes are computed at export time and
// never written back to storage.
package coding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/datalab/datalab/internal/domain/catalog"
)

const (
	codeAge = "edad"
	codeBMI = "imc"
)

// Encode maps a raw stored answer to its statistical code. Empty in, empty
// out. Values that no rule claims pass through unmodified.
func Encode(q *catalog.Question, rawValue string) string {
	if strings.TrimSpace(rawValue) == "" {
		return ""
	}

	code := strings.ToLower(q.Code)

	// Age is dichotomized: < 45 -> 0, >= 45 -> 1.
	if code == codeAge {
		age, err := strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
		if err != nil {
			return ""
		}
		if age >= 45 {
			return "1"
		}
		return "0"
	}

	// BMI is an ordinal bucket; comma decimal separators are normalized.
	if code == codeBMI {
		bmi, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(rawValue, ",", ".")), 64)
		if err != nil {
			return ""
		}
		switch {
		case bmi < 18.5:
			return "0"
		case bmi < 25.0:
			return "1"
		case bmi < 30.0:
			return "2"
		default:
			return "3"
		}
	}

	// Choice questions map to the zero-based index of the matched option.
	if len(q.Options) > 0 {
		trimmed := strings.TrimSpace(rawValue)
		for i, opt := range q.Options {
			if strings.EqualFold(strings.TrimSpace(opt), trimmed) {
				return strconv.Itoa(i)
			}
		}
	}

	// Fallback: standard Si/No dichotomy.
	switch {
	case strings.EqualFold(rawValue, "Si") || strings.EqualFold(rawValue, "Sí"):
		return "1"
	case strings.EqualFold(rawValue, "No"):
		return "0"
	}

	// Free text, dates and uncategorized numeric fields flow through raw.
	return rawValue
}

// Describe returns the human-readable legend for a question's encoding,
// following the same branch order as Encode.
func Describe(q *catalog.Question) string {
	code := strings.ToLower(q.Code)

	if code == codeAge {
		return "0: < 45 años\n1: >= 45 años"
	}
	if code == codeBMI {
		return "0: Bajo peso (<18.5)\n1: Normal (18.5-24.9)\n2: Sobrepeso (25-29.9)\n3: Obesidad (>=30)"
	}

	if len(q.Options) > 0 {
		var sb strings.Builder
		for i, opt := range q.Options {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(fmt.Sprintf("%d: %s", i, strings.TrimSpace(opt)))
		}
		return sb.String()
	}

	if q.DataType == catalog.TypeNumeric {
		return "Valor numérico real"
	}

	return "Texto / Fecha (Sin codificar)"
}

// IsCategorical reports whether a question's encoded output is a bounded
// category set, which tells the stats layer whether counting codes is
// meaningful.
func IsCategorical(q *catalog.Question) bool {
	code := strings.ToLower(q.Code)
	if code == codeAge || code == codeBMI {
		return true
	}
	return len(q.Options) > 0
}
