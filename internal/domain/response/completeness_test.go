package response

import (
	"testing"

	"github.com/datalab/datalab/internal/domain/catalog"
)

func reqQ(id int64, code string, applies catalog.Applicability) *catalog.Question {
	return &catalog.Question{ID: id, Code: code, Required: true, AppliesTo: applies}
}

func TestEvaluateCompleteness_EmptyCatalogNeverComplete(t *testing.T) {
	if EvaluateCompleteness(map[int64]string{}, catalog.GroupCase, nil) {
		t.Error("no applicable required questions must not mean complete")
	}

	// only-optional catalog behaves the same
	qs := []*catalog.Question{{ID: 1, Code: "notas", Required: false, AppliesTo: catalog.AppliesAll}}
	if EvaluateCompleteness(map[int64]string{1: "x"}, catalog.GroupCase, qs) {
		t.Error("catalog without required questions must not be complete")
	}
}

func TestEvaluateCompleteness_AllAnswered(t *testing.T) {
	qs := []*catalog.Question{
		reqQ(1, "edad", catalog.AppliesAll),
		reqQ(2, "sexo", catalog.AppliesAll),
	}
	answers := map[int64]string{1: "45", 2: "F"}
	if !EvaluateCompleteness(answers, catalog.GroupCase, qs) {
		t.Error("all required answered should be complete")
	}
}

func TestEvaluateCompleteness_Monotonicity(t *testing.T) {
	qs := []*catalog.Question{
		reqQ(1, "edad", catalog.AppliesAll),
		reqQ(2, "sexo", catalog.AppliesAll),
	}

	answers := map[int64]string{1: "45"}
	if EvaluateCompleteness(answers, catalog.GroupCase, qs) {
		t.Error("missing required answer should be incomplete")
	}

	answers[2] = "F"
	if !EvaluateCompleteness(answers, catalog.GroupCase, qs) {
		t.Error("adding the last missing answer should flip to complete")
	}

	answers[2] = "   "
	if EvaluateCompleteness(answers, catalog.GroupCase, qs) {
		t.Error("blanking a required answer should flip back to incomplete")
	}
}

func TestEvaluateCompleteness_GroupFilter(t *testing.T) {
	qs := []*catalog.Question{
		reqQ(1, "edad", catalog.AppliesAll),
		reqQ(2, "exposicion", catalog.AppliesCase),
	}

	// the case-only question does not bind controls
	if !EvaluateCompleteness(map[int64]string{1: "50"}, catalog.GroupControl, qs) {
		t.Error("control participant should not need case-only answers")
	}
	if EvaluateCompleteness(map[int64]string{1: "50"}, catalog.GroupCase, qs) {
		t.Error("case participant still needs the case-only answer")
	}
}

func TestEvaluateCompleteness_MetadataExcluded(t *testing.T) {
	qs := []*catalog.Question{
		reqQ(1, "CODIGO", catalog.AppliesAll),
		reqQ(2, "codigo_participante", catalog.AppliesAll),
		reqQ(3, "edad", catalog.AppliesAll),
	}
	// metadata codes are auto-generated, never answered
	if !EvaluateCompleteness(map[int64]string{3: "45"}, catalog.GroupCase, qs) {
		t.Error("metadata codes must not count toward completeness")
	}
}
