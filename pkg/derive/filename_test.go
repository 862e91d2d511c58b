package derive

import "testing"

// TestResolveFilename_OriginalMode tests that absent and "original" modes
// return the name unchanged.
func TestResolveFilename_OriginalMode(t *testing.T) {
	if got := ResolveFilename("", nil, "invoice", ".pdf", nil); got != "invoice.pdf" {
		t.Errorf("absent mode = %q, want %q", got, "invoice.pdf")
	}
	if got := ResolveFilename(ModeOriginal, map[string]string{"date": "2024-01-01"}, "invoice", ".pdf", nil); got != "invoice.pdf" {
		t.Errorf("original mode = %q, want %q", got, "invoice.pdf")
	}
}

// TestResolveFilename_AutoSynthesis tests the auto naming scheme.
func TestResolveFilename_AutoSynthesis(t *testing.T) {
	vars := map[string]string{
		"date":          "2024-03-02",
		"issuer":        "Acme Corp",
		"document_type": "invoice",
	}

	got := ResolveFilename(ModeAuto, vars, "x", ".pdf", nil)
	if got != "2024-03-02_Acme-Corp_invoice.pdf" {
		t.Errorf("auto = %q, want %q", got, "2024-03-02_Acme-Corp_invoice.pdf")
	}
}

// TestResolveFilename_AutoWithAmount tests the optional amount segment.
func TestResolveFilename_AutoWithAmount(t *testing.T) {
	vars := map[string]string{
		"date":          "2024-03-02",
		"issuer":        "Acme",
		"document_type": "invoice",
		"amount":        "1,250.00 EUR",
	}

	got := ResolveFilename(ModeAuto, vars, "x", ".pdf", nil)
	if got != "2024-03-02_Acme_invoice_1250.00.pdf" {
		t.Errorf("auto = %q, want %q", got, "2024-03-02_Acme_invoice_1250.00.pdf")
	}
}

// TestResolveFilename_AutoFallbacks tests the suggested-filename and stem
// fallbacks when no segment variable is present.
func TestResolveFilename_AutoFallbacks(t *testing.T) {
	got := ResolveFilename(ModeAuto, map[string]string{"suggested_filename": "  offer-letter  "}, "scan0001", ".pdf", nil)
	if got != "offer-letter.pdf" {
		t.Errorf("suggested fallback = %q, want %q", got, "offer-letter.pdf")
	}

	got = ResolveFilename(ModeAuto, map[string]string{}, "scan0001", ".pdf", nil)
	if got != "scan0001.pdf" {
		t.Errorf("stem fallback = %q, want %q", got, "scan0001.pdf")
	}

	// An unparseable date contributes no segment.
	got = ResolveFilename(ModeAuto, map[string]string{"date": "sometime", "issuer": "Acme"}, "x", ".pdf", nil)
	if got != "Acme.pdf" {
		t.Errorf("unparseable date = %q, want %q", got, "Acme.pdf")
	}
}

// TestResolveFilename_Template tests {variable} interpolation templates.
func TestResolveFilename_Template(t *testing.T) {
	got := ResolveFilename("{document_type}_report", map[string]string{"document_type": "audit"}, "x", ".txt", nil)
	if got != "audit_report.txt" {
		t.Errorf("template = %q, want %q", got, "audit_report.txt")
	}
}

// TestResolveFilename_UnresolvedPlaceholderKept tests that unknown
// placeholders survive literally instead of being dropped.
func TestResolveFilename_UnresolvedPlaceholderKept(t *testing.T) {
	got := ResolveFilename("{issuer}_{missing}", map[string]string{"issuer": "Acme"}, "x", ".pdf", nil)
	if got != "Acme_{missing}.pdf" {
		t.Errorf("template = %q, want %q", got, "Acme_{missing}.pdf")
	}
}

// TestResolveFilename_RawDataLookup tests that templates can reference raw
// extracted values not promoted to variables.
func TestResolveFilename_RawDataLookup(t *testing.T) {
	data := map[string]any{"invoice_number": "INV-7"}
	got := ResolveFilename("{invoice_number}", map[string]string{}, "x", ".pdf", data)
	if got != "INV-7.pdf" {
		t.Errorf("template = %q, want %q", got, "INV-7.pdf")
	}
}

// TestResolveFilename_ExtensionNotDuplicated tests that an extension already
// present in the template result is not appended again.
func TestResolveFilename_ExtensionNotDuplicated(t *testing.T) {
	got := ResolveFilename("{name}.pdf", map[string]string{"name": "contract"}, "x", ".pdf", nil)
	if got != "contract.pdf" {
		t.Errorf("template = %q, want %q", got, "contract.pdf")
	}
}
