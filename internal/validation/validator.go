// =============================================================================
// CSV to EDI Mapper - Structural Validator
// =============================================================================
//
// This module checks that an order CSV has the shape the mapper expects. It
// is an optional pre-check: the mapper itself never requires it and degrades
// to empty records on malformed input.
//
// CHECKS (in reporting order):
//   1. The file has at least one row
//   2. All four section markers are present
//   3. Each end marker comes after its start marker
//   4. The header and lines sections have a body
//   5. Required header fields are present and non-empty
//
// Checks 3-5 only run for a section whose two markers were both found.
//
// ERROR HANDLING:
//   - Defects are collected, not returned as errors
//   - Each defect carries the rule it violated and a readable message
//   - Only reading the file can fail with an error
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/csvparser"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
)

// Rules reported by the validator.
const (
	RuleEmptyFile      = "empty_file"
	RuleReadFailure    = "read_failure"
	RuleMissingMarkers = "missing_markers"
	RuleMarkerOrder    = "marker_order"
	RuleEmptySection   = "empty_section"
	RuleRequiredField  = "required_field"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single structural defect.
type ValidationError struct {
	// Rule is the check that failed.
	Rule string

	// Field is the header field involved, for required field defects.
	Field string

	// Message is a human-readable description.
	Message string

	// RowNumber is the 1-based CSV row the defect refers to, 0 if none.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.RowNumber > 0 {
		return fmt.Sprintf("%s (row %d)", e.Message, e.RowNumber)
	}
	return e.Message
}

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if no defects were found.
	IsValid bool

	// Errors contains every defect in reporting order.
	Errors []*ValidationError
}

// Messages returns the defect messages in order.
func (r *ValidationResult) Messages() []string {
	messages := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		messages[i] = err.Error()
	}
	return messages
}

func (r *ValidationResult) add(err *ValidationError) {
	r.Errors = append(r.Errors, err)
	r.IsValid = false
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// RequiredHeaderFields must be present with a value in the header section.
	// Default: CUST-ORDER
	RequiredHeaderFields []string
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		RequiredHeaderFields: []string{"CUST-ORDER"},
	}
}

// Validator checks order CSV structure.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a new Validator with the default options.
func NewValidator() *Validator {
	return &Validator{options: DefaultValidationOptions()}
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// Validate checks rows with the default options.
func Validate(rows []types.Row) *ValidationResult {
	return NewValidator().Validate(rows)
}

// ValidateFile reads and checks a CSV file. A file that cannot be read is
// reported as a defect, not an error.
func (v *Validator) ValidateFile(filePath string) *ValidationResult {
	rows, err := csvparser.ReadFile(filePath)
	if err != nil {
		result := &ValidationResult{IsValid: true}
		result.add(&ValidationError{
			Rule:    RuleReadFailure,
			Message: fmt.Sprintf("Failed to read CSV file: %v", err),
		})
		return result
	}

	return v.Validate(rows)
}

// Validate checks rows and returns every defect found.
//
// PARAMETERS:
//   - rows: The raw CSV rows.
//
// RETURNS:
//   - The validation result. IsValid is false when any defect was found.
func (v *Validator) Validate(rows []types.Row) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if len(rows) == 0 {
		result.add(&ValidationError{Rule: RuleEmptyFile, Message: "CSV file is empty"})
		return result
	}

	pos := csvparser.Locate(rows)

	if missing := missingMarkers(pos); len(missing) > 0 {
		result.add(&ValidationError{
			Rule:    RuleMissingMarkers,
			Message: "Missing required markers: " + strings.Join(missing, ", "),
		})
	}

	if pos.HeaderStart >= 0 && pos.HeaderEnd >= 0 {
		v.validateHeader(result, rows, pos.HeaderStart, pos.HeaderEnd)
	}

	if pos.LinesStart >= 0 && pos.LinesEnd >= 0 {
		validateLines(result, rows, pos.LinesStart, pos.LinesEnd)
	}

	return result
}

// missingMarkers lists the absent markers in marker order.
func missingMarkers(pos csvparser.Positions) []string {
	found := []int{pos.HeaderStart, pos.HeaderEnd, pos.LinesStart, pos.LinesEnd}

	var missing []string
	for i, marker := range csvparser.Markers {
		if found[i] < 0 {
			missing = append(missing, marker)
		}
	}

	return missing
}

func (v *Validator) validateHeader(result *ValidationResult, rows []types.Row, start, end int) {
	if end <= start {
		result.add(&ValidationError{
			Rule:      RuleMarkerOrder,
			Message:   "Header end marker must come after header start marker",
			RowNumber: end + 1,
		})
		return
	}

	body := rows[start+1 : end]
	if len(body) == 0 {
		result.add(&ValidationError{
			Rule:      RuleEmptySection,
			Message:   "Header section is empty",
			RowNumber: start + 1,
		})
		return
	}

	names := make(map[string]bool)
	for _, cell := range body[0] {
		names[strings.TrimSpace(cell)] = true
	}
	record := csvparser.BuildHeaderRecord(body)

	for _, field := range v.options.RequiredHeaderFields {
		if !names[field] {
			result.add(&ValidationError{
				Rule:      RuleRequiredField,
				Field:     field,
				Message:   fmt.Sprintf("%s field is required in header section", field),
				RowNumber: start + 2,
			})
			continue
		}

		if _, ok := record.Get(field); !ok {
			result.add(&ValidationError{
				Rule:      RuleRequiredField,
				Field:     field,
				Message:   fmt.Sprintf("%s field is required but empty", field),
				RowNumber: start + 3,
			})
		}
	}
}

func validateLines(result *ValidationResult, rows []types.Row, start, end int) {
	if end <= start {
		result.add(&ValidationError{
			Rule:      RuleMarkerOrder,
			Message:   "Lines end marker must come after lines start marker",
			RowNumber: end + 1,
		})
		return
	}

	if end == start+1 {
		result.add(&ValidationError{
			Rule:      RuleEmptySection,
			Message:   "Lines section is empty",
			RowNumber: start + 1,
		})
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
