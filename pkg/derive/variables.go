package derive

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"paperflow-hq/paperflow/pkg/policy"
)

// Transformer names understood by Variables.
const (
	// TransformerYear extracts the four-digit year from a date value.
	TransformerYear = "get_year"

	// TransformerMonth extracts the zero-padded two-digit month number.
	TransformerMonth = "get_month"

	// TransformerMonthName extracts the full English month name.
	TransformerMonthName = "get_month_name"
)

// dateLayouts are the accepted input formats for date-valued variables,
// tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02.01.2006",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate parses a date-valued variable using the accepted layouts.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Variables derives the flat string-keyed variable map from extracted field
// values and the policy's extract-field definitions.
//
// Every non-nil extracted value is copied in as its string form. Then, for
// each field carrying transformers, each transformer is applied in declared
// order and its result written under the transformer's target key. A
// transformer whose source value does not parse as a date is skipped with a
// warning; it never aborts derivation of other fields.
func Variables(data map[string]any, fields []policy.ExtractField) map[string]string {
	logger := slog.Default().With("component", "derive")
	vars := make(map[string]string, len(data))

	for key, value := range data {
		if value == nil {
			continue
		}
		vars[key] = Stringify(value)
	}

	for _, field := range fields {
		if len(field.Transformers) == 0 {
			continue
		}
		source, ok := vars[field.Key]
		if !ok {
			continue
		}

		for _, tr := range field.Transformers {
			result, ok := applyTransformer(tr.Name, source)
			if !ok {
				logger.Warn("transformer skipped",
					"transformer", tr.Name,
					"field", field.Key,
					"value", source,
				)
				continue
			}
			vars[tr.As] = result
		}
	}

	return vars
}

// applyTransformer applies one named transformer to a source value.
func applyTransformer(name, source string) (string, bool) {
	t, parsed := ParseDate(source)
	if !parsed {
		return "", false
	}

	switch name {
	case TransformerYear:
		return strconv.Itoa(t.Year()), true
	case TransformerMonth:
		return fmt.Sprintf("%02d", int(t.Month())), true
	case TransformerMonthName:
		return t.Month().String(), true
	default:
		return "", false
	}
}

// Stringify converts an extracted value (string, number, bool) to its
// variable string form. JSON numbers arrive as float64; integral values are
// rendered without a decimal point.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
