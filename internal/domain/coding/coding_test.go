package coding

import (
	"testing"

	"github.com/datalab/datalab/internal/domain/catalog"
)

func question(code string, dt catalog.DataType, opts ...string) *catalog.Question {
	return &catalog.Question{Code: code, DataType: dt, Options: opts}
}

func TestEncode_Age(t *testing.T) {
	q := question("edad", catalog.TypeNumeric)

	cases := []struct {
		raw  string
		want string
	}{
		{"44", "0"},
		{"45", "1"},
		{"44.9", "0"},
		{"80", "1"},
		{"0", "0"},
		{"abc", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Encode(q, c.raw); got != c.want {
			t.Errorf("Encode(edad, %q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestEncode_BMI(t *testing.T) {
	q := question("imc", catalog.TypeNumeric)

	cases := []struct {
		raw  string
		want string
	}{
		{"17,9", "0"},
		{"18.5", "1"},
		{"24,9", "1"},
		{"25.0", "2"},
		{"29,9", "2"},
		{"30,0", "3"},
		{"42.1", "3"},
		{"no-num", ""},
	}
	for _, c := range cases {
		if got := Encode(q, c.raw); got != c.want {
			t.Errorf("Encode(imc, %q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestEncode_AgeCodeCaseInsensitive(t *testing.T) {
	q := question("EDAD", catalog.TypeNumeric)
	if got := Encode(q, "50"); got != "1" {
		t.Errorf("Encode(EDAD, 50) = %q, want 1", got)
	}
}

func TestEncode_OptionIndex(t *testing.T) {
	q := question("actividad", catalog.TypeChoice, "Low", "Medium", "High")

	cases := []struct {
		raw  string
		want string
	}{
		{"Low", "0"},
		{"medium", "1"},
		{"  HIGH  ", "2"},
		{"None", "None"}, // unmatched passes through
	}
	for _, c := range cases {
		if got := Encode(q, c.raw); got != c.want {
			t.Errorf("Encode(actividad, %q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestEncode_YesNoFallback(t *testing.T) {
	q := question("fuma", catalog.TypeText)

	cases := []struct {
		raw  string
		want string
	}{
		{"Si", "1"},
		{"sí", "1"},
		{"SI", "1"},
		{"No", "0"},
		{"no", "0"},
		{"tal vez", "tal vez"},
	}
	for _, c := range cases {
		if got := Encode(q, c.raw); got != c.want {
			t.Errorf("Encode(fuma, %q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestEncode_PassThrough(t *testing.T) {
	q := question("observaciones", catalog.TypeText)
	if got := Encode(q, "paciente estable"); got != "paciente estable" {
		t.Errorf("free text should pass through, got %q", got)
	}
}

func TestDescribe(t *testing.T) {
	if d := Describe(question("edad", catalog.TypeNumeric)); d == "" {
		t.Error("edad legend should not be empty")
	}
	if d := Describe(question("imc", catalog.TypeNumeric)); d == "" {
		t.Error("imc legend should not be empty")
	}

	d := Describe(question("actividad", catalog.TypeChoice, "Low", "High"))
	want := "0: Low\n1: High"
	if d != want {
		t.Errorf("Describe(choice) = %q, want %q", d, want)
	}

	if d := Describe(question("peso", catalog.TypeNumeric)); d != "Valor numérico real" {
		t.Errorf("numeric legend = %q", d)
	}
	if d := Describe(question("notas", catalog.TypeText)); d != "Texto / Fecha (Sin codificar)" {
		t.Errorf("text legend = %q", d)
	}
}

func TestIsCategorical(t *testing.T) {
	if !IsCategorical(question("edad", catalog.TypeNumeric)) {
		t.Error("edad should be categorical")
	}
	if !IsCategorical(question("imc", catalog.TypeNumeric)) {
		t.Error("imc should be categorical")
	}
	if !IsCategorical(question("sexo", catalog.TypeChoice, "M", "F")) {
		t.Error("choice should be categorical")
	}
	if IsCategorical(question("peso", catalog.TypeNumeric)) {
		t.Error("plain numeric should not be categorical")
	}
}
