package response

import (
	"strings"

	"github.com/datalab/datalab/internal/domain/catalog"
)

// EvaluateCompleteness reports whether every required question applicable to
// the group has a non-blank answer. A catalog with no applicable required
// questions is never complete; that guards a misconfigured catalog from
// marking every form done.
func EvaluateCompleteness(answers map[int64]string, g catalog.Group, questions []*catalog.Question) bool {
	applicable := 0
	for _, q := range questions {
		if !q.Required {
			continue
		}
		if !q.AppliesTo.Covers(g) {
			continue
		}
		if catalog.IsMetadataCode(q.Code) {
			continue
		}
		applicable++
		if strings.TrimSpace(answers[q.ID]) == "" {
			return false
		}
	}
	return applicable > 0
}
