package derive

import (
	"testing"

	"paperflow-hq/paperflow/pkg/policy"
)

// TestVariables_CopiesNonNilValues tests that extracted values are copied in
// string form and nil values are dropped.
func TestVariables_CopiesNonNilValues(t *testing.T) {
	data := map[string]any{
		"issuer": "Acme Corp",
		"amount": 129.5,
		"pages":  float64(3),
		"debtor": nil,
	}

	vars := Variables(data, nil)

	if got := vars["issuer"]; got != "Acme Corp" {
		t.Errorf("issuer = %q, want %q", got, "Acme Corp")
	}
	if got := vars["amount"]; got != "129.5" {
		t.Errorf("amount = %q, want %q", got, "129.5")
	}
	if got := vars["pages"]; got != "3" {
		t.Errorf("pages = %q, want %q", got, "3")
	}
	if _, ok := vars["debtor"]; ok {
		t.Error("nil value should not produce a variable")
	}
}

// TestVariables_DateTransformers tests year/month/month-name derivation.
func TestVariables_DateTransformers(t *testing.T) {
	data := map[string]any{"date": "2023-01-15"}
	fields := []policy.ExtractField{
		{
			Key:  "date",
			Type: "date",
			Transformers: []policy.Transformer{
				{Name: TransformerYear, As: "year"},
				{Name: TransformerMonth, As: "month"},
				{Name: TransformerMonthName, As: "month_name"},
			},
		},
	}

	vars := Variables(data, fields)

	if got := vars["year"]; got != "2023" {
		t.Errorf("year = %q, want %q", got, "2023")
	}
	if got := vars["month"]; got != "01" {
		t.Errorf("month = %q, want %q", got, "01")
	}
	if got := vars["month_name"]; got != "January" {
		t.Errorf("month_name = %q, want %q", got, "January")
	}
}

// TestVariables_UnparseableDateSkipped tests that a transformer on a
// non-date string is skipped without raising and without affecting other
// fields.
func TestVariables_UnparseableDateSkipped(t *testing.T) {
	data := map[string]any{
		"date":   "not a date",
		"issuer": "Acme",
	}
	fields := []policy.ExtractField{
		{
			Key:          "date",
			Transformers: []policy.Transformer{{Name: TransformerYear, As: "year"}},
		},
	}

	vars := Variables(data, fields)

	if _, ok := vars["year"]; ok {
		t.Error("unparseable date should not produce a year variable")
	}
	if got := vars["issuer"]; got != "Acme" {
		t.Errorf("issuer = %q, want %q (derivation of other fields must continue)", got, "Acme")
	}
}

// TestVariables_TransformerOnAbsentField is a no-op.
func TestVariables_TransformerOnAbsentField(t *testing.T) {
	fields := []policy.ExtractField{
		{
			Key:          "date",
			Transformers: []policy.Transformer{{Name: TransformerYear, As: "year"}},
		},
	}

	vars := Variables(map[string]any{}, fields)

	if len(vars) != 0 {
		t.Errorf("expected empty variable map, got %v", vars)
	}
}

// TestParseDate_Layouts tests the accepted date input formats.
func TestParseDate_Layouts(t *testing.T) {
	tests := []struct {
		input string
		want  string // formatted back as 2006-01-02
		ok    bool
	}{
		{"2024-03-02", "2024-03-02", true},
		{"2024-03-02T10:30:00Z", "2024-03-02", true},
		{"02.03.2024", "2024-03-02", true},
		{"2024/03/02", "2024-03-02", true},
		{"yesterday", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %t, want %t", tt.input, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
		}
	}
}
