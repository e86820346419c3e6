// =============================================================================
// CSV to EDI Mapper - Transformation Engine
// =============================================================================
//
// This module rewrites field values between record building and mapping, for
// customers whose CSV values need reshaping before they fit the template.
//
// TRANSFORMATION TYPES:
//   - String manipulations (prepend, append, trim, case conversion)
//   - Numeric formatting (padding, precision)
//   - Date conversions
//   - Lookup table replacements
//   - Defaults for empty values
//   - Regular expression replacements
//
// RECORDS:
//   Records are never modified in place; each pass returns new records.
//   Header rules also run for fields the record does not have (with an empty
//   input), so if_empty_use_default can supply a missing header value. A
//   header value that transforms to empty is dropped from the record.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/config"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles field value transformations.
type Transformer struct {
	rules []config.TransformationRule
}

// NewTransformer creates a new Transformer with the given rules.
func NewTransformer(rules []config.TransformationRule) *Transformer {
	return &Transformer{
		rules: rules,
	}
}

// Empty reports whether the transformer has no rules.
func (t *Transformer) Empty() bool {
	return len(t.rules) == 0
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform applies every rule for a field in a section to its value.
//
// PARAMETERS:
//   - section: config.SectionHeader or config.SectionLines.
//   - fieldName: The name of the field being transformed.
//   - value: The current value of the field.
//   - allFields: The record's original fields, for if_empty_use_field.
//
// RETURNS:
//   - The transformed value.
//   - An error if any transformation fails.
func (t *Transformer) Transform(section, fieldName, value string, allFields map[string]string) (string, error) {
	result := value

	for _, rule := range t.rules {
		if rule.Field != fieldName || !rule.AppliesTo(section) {
			continue
		}

		for _, action := range rule.Actions {
			var err error
			result, err = ApplyTransformation(result, action, allFields)
			if err != nil {
				return "", fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
			}
		}
	}

	return result, nil
}

// TransformHeader returns a transformed copy of the header record.
func (t *Transformer) TransformHeader(record types.HeaderRecord) (types.HeaderRecord, error) {
	result := make(types.HeaderRecord, len(record))
	for name, value := range record {
		result[name] = value
	}

	for _, rule := range t.rules {
		if !rule.AppliesTo(config.SectionHeader) {
			continue
		}
		if _, done := result[rule.Field]; !done {
			result[rule.Field] = ""
		}
	}

	for name, value := range result {
		transformed, err := t.Transform(config.SectionHeader, name, value, record)
		if err != nil {
			return nil, fmt.Errorf("error transforming header field '%s': %w", name, err)
		}

		transformed = strings.TrimSpace(transformed)
		if transformed == "" {
			delete(result, name)
			continue
		}
		result[name] = transformed
	}

	return result, nil
}

// TransformLines returns transformed copies of the line item records.
func (t *Transformer) TransformLines(records []types.LineItemRecord) ([]types.LineItemRecord, error) {
	result := make([]types.LineItemRecord, 0, len(records))

	for i, record := range records {
		line := make(types.LineItemRecord, len(record))

		for name, value := range record {
			transformed, err := t.Transform(config.SectionLines, name, value, record)
			if err != nil {
				return nil, fmt.Errorf("error transforming line %d field '%s': %w", i+1, name, err)
			}
			line[name] = transformed
		}

		result = append(result, line)
	}

	return result, nil
}

// ApplyTransformation applies a single transformation action.
//
// PARAMETERS:
//   - value: The current value.
//   - action: The transformation action to apply.
//   - allFields: All fields in the current record.
//
// RETURNS:
//   - The transformed value.
//   - An error if the transformation fails.
//
// SUPPORTED TRANSFORMATIONS:
//   See the switch statement below for all supported transformation types.
func ApplyTransformation(value string, action config.TransformationAction, allFields map[string]string) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		// "32815" + value "WR" -> "WR32815"
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "trim_left":
		return strings.TrimLeft(value, cutset(action.Value)), nil

	case "trim_right":
		return strings.TrimRight(value, cutset(action.Value)), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "title_case":
		// "WAITROSE DEPOT BRACKNELL" -> "Waitrose Depot Bracknell"
		return cases.Title(language.Und).String(strings.ToLower(value)), nil

	case "replace":
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		// find "[^0-9]" value "" turns "PO-4500/12" into "450012".
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	case "substring":
		// VALUE FORMAT: "start,end", 0-indexed, end exclusive, in characters.
		return substring(value, action.Value), nil

	case "normalize_whitespace":
		return strings.Join(strings.Fields(value), " "), nil

	// =========================================================================
	// NUMERIC FORMATTING
	// =========================================================================

	case "pad_zeros_to_length":
		// "123" with value "8" -> "00000123"
		if n, ok := length(action.Value); ok {
			return PadLeft(value, n, '0'), nil
		}
		return value, nil

	case "pad_spaces_to_length":
		if n, ok := length(action.Value); ok {
			return PadRight(value, n, ' '), nil
		}
		return value, nil

	case "ensure_length":
		// Longer values are cut on the right, shorter ones zero padded.
		n, ok := length(action.Value)
		if !ok {
			return value, nil
		}
		if runes := []rune(value); len(runes) > n {
			return string(runes[:n]), nil
		}
		return PadLeft(value, n, '0'), nil

	case "format_number", "format_currency":
		// "1234.5" with value "2" -> "1234.50". format_currency always uses 2.
		places := 2
		if action.Type == "format_number" {
			n, err := strconv.Atoi(action.Value)
			if err != nil || n < 0 {
				return value, nil
			}
			places = n
		}

		num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return value, nil
		}
		return strconv.FormatFloat(num, 'f', places, 64), nil

	case "remove_leading_zeros":
		if trimmed := strings.TrimLeft(value, "0"); trimmed != "" {
			return trimmed, nil
		}
		if value == "" {
			return "", nil
		}
		return "0", nil

	case "extract_digits":
		return strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, value), nil

	// =========================================================================
	// DATE CONVERSIONS
	// =========================================================================

	case "format_date":
		// VALUE FORMAT: "input layout|output layout" in Go time layouts.
		// "15/06/2024" with "02/01/2006|2006-01-02" -> "2024-06-15"
		// Values that do not parse are left unchanged.
		layouts := strings.Split(action.Value, "|")
		if len(layouts) != 2 {
			return value, nil
		}

		parsed, err := time.Parse(strings.TrimSpace(layouts[0]), value)
		if err != nil {
			return value, nil
		}
		return parsed.Format(strings.TrimSpace(layouts[1])), nil

	// =========================================================================
	// LOOKUPS AND DEFAULTS
	// =========================================================================

	case "lookup":
		// Unknown values pass through unchanged.
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	case "lookup_with_default":
		// Unknown values become action.Value.
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return action.Value, nil

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case "if_empty_use_field":
		// action.Value names the field to fall back to.
		if strings.TrimSpace(value) == "" {
			if other, exists := allFields[action.Value]; exists {
				return other, nil
			}
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads a string with a character on the left to reach the target
// length in characters.
func PadLeft(s string, length int, padChar rune) string {
	if n := utf8.RuneCountInString(s); n < length {
		return strings.Repeat(string(padChar), length-n) + s
	}
	return s
}

// PadRight pads a string with a character on the right to reach the target
// length in characters.
func PadRight(s string, length int, padChar rune) string {
	if n := utf8.RuneCountInString(s); n < length {
		return s + strings.Repeat(string(padChar), length-n)
	}
	return s
}

// cutset returns the characters to trim, whitespace when none are given.
func cutset(chars string) string {
	if chars == "" {
		return " \t\n\r"
	}
	return chars
}

// length parses a positive target length.
func length(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// substring cuts value by a "start,end" character range, clamped to the value.
func substring(value, spec string) string {
	parts := strings.Split(spec, ",")
	if len(parts) != 2 {
		return value
	}

	start, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, _ := strconv.Atoi(strings.TrimSpace(parts[1]))

	runes := []rune(value)
	start = max(start, 0)
	end = min(end, len(runes))
	if start >= end {
		return ""
	}

	return string(runes[start:end])
}
