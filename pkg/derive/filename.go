package derive

import (
	"regexp"
	"strings"
)

// Filename modes with reserved meanings. Any other non-empty mode string is
// treated as a {variable} interpolation template.
const (
	// ModeOriginal keeps the original filename unchanged. An absent mode
	// behaves the same way.
	ModeOriginal = "original"

	// ModeAuto synthesizes a name from well-known variables, falling back to
	// the suggested_filename variable and finally the original stem.
	ModeAuto = "auto"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.-]+)\}`)

// ResolveFilename resolves the final filename for a file given a
// filename-mode directive, the derived variable map, the original filename
// stem and extension, and (optionally) the raw extracted-data map for lookups
// not yet promoted to variables.
//
// Unresolved template placeholders are left literally as {name} so that a
// missing variable shows up in the result instead of vanishing.
func ResolveFilename(mode string, vars map[string]string, stem, ext string, data map[string]any) string {
	switch mode {
	case "", ModeOriginal:
		return stem + ext

	case ModeAuto:
		return EnsureExtension(autoFilename(vars, stem), ext)

	default:
		resolved := Interpolate(mode, func(name string) (string, bool) {
			if v, ok := vars[name]; ok {
				return v, true
			}
			if data != nil {
				if raw, ok := data[name]; ok && raw != nil {
					return Stringify(raw), true
				}
			}
			return "", false
		})
		return EnsureExtension(resolved, ext)
	}
}

// Interpolate replaces every {name} placeholder using lookup. Placeholders
// the lookup cannot resolve are left intact.
func Interpolate(template string, lookup func(name string) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := lookup(name); ok {
			return value
		}
		return match
	})
}

// autoFilename synthesizes YYYY-MM-DD_Issuer_DocType[_Amount] from the
// variable map. Each segment is included only when its source variable is
// present; when no segment resolves, the suggested_filename variable and then
// the original stem are used.
func autoFilename(vars map[string]string, stem string) string {
	var segments []string

	if raw, ok := vars["date"]; ok {
		if t, parsed := ParseDate(raw); parsed {
			segments = append(segments, t.Format("2006-01-02"))
		}
	}
	if issuer, ok := vars["issuer"]; ok {
		if s := sanitizeSegment(issuer); s != "" {
			segments = append(segments, s)
		}
	}
	if docType, ok := vars["document_type"]; ok {
		if s := sanitizeSegment(docType); s != "" {
			segments = append(segments, s)
		}
	}
	if amount, ok := vars["amount"]; ok {
		if s := sanitizeAmount(amount); s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) > 0 {
		return strings.Join(segments, "_")
	}

	if suggested := strings.TrimSpace(vars["suggested_filename"]); suggested != "" {
		return suggested
	}
	return stem
}

// sanitizeSegment reduces a value to alphanumerics and hyphens: whitespace
// becomes a hyphen, everything else non-alphanumeric is dropped, and hyphen
// runs collapse.
func sanitizeSegment(value string) string {
	var b strings.Builder
	lastHyphen := false

	for _, r := range strings.TrimSpace(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			if !lastHyphen && b.Len() > 0 {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// sanitizeAmount strips everything except digits, the decimal point, and
// common currency symbols.
func sanitizeAmount(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '$' || r == '€' || r == '£' || r == '¥':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EnsureExtension appends ext unless name already ends with it.
func EnsureExtension(name, ext string) string {
	if ext == "" || strings.HasSuffix(name, ext) {
		return name
	}
	return name + ext
}
