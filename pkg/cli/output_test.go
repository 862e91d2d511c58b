package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
)

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("2 processed, 0 failed")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "2 processed, 0 failed\n" {
		t.Errorf("Format() = %q", string(output))
	}
}

func TestJSONFormatter(t *testing.T) {
	type row struct {
		Document string `json:"document"`
		Success  bool   `json:"success"`
	}
	formatter := &JSONFormatter{Indent: true}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, []row{{Document: "invoice.pdf", Success: true}}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded []row
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("FormatTo() produced invalid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Document != "invoice.pdf" || !decoded[0].Success {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestCSVFormatter(t *testing.T) {
	formatter := &CSVFormatter{Headers: []string{"name", "value"}}

	output, err := formatter.Format([][]string{{"a", "1"}, {"b", "2"}})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "name,value\na,1\nb,2\n" {
		t.Errorf("Format() = %q", string(output))
	}

	if _, err := formatter.Format("not rows"); err == nil {
		t.Error("Format() accepted non-tabular data")
	}
}

func TestNewFormatterSelection(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}
	for _, tt := range tests {
		if got := fmt.Sprintf("%T", NewFormatter(tt.format)); got != tt.want {
			t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
		}
	}
}
