// =============================================================================
// CSV to EDI Mapper - Shared Types
// =============================================================================
//
// This package contains the value types that flow through the mapping run.
// They live here to avoid import cycles. Types defined here are used by:
//   - csvparser   (produces rows and records)
//   - validation  (inspects rows)
//   - converter   (transforms records)
//   - mapping     (projects records onto the template document)
//
// =============================================================================

package types

// =============================================================================
// ROWS
// =============================================================================

// Row is one line of the input CSV as an ordered sequence of cells.
// A row may be empty.
type Row []string

// =============================================================================
// RECORDS
// =============================================================================

// HeaderRecord maps an order-level field name to its value.
// A key is present only when its value is non-empty.
type HeaderRecord map[string]string

// Get returns the value of a header field and whether it is present.
func (r HeaderRecord) Get(field string) (string, bool) {
	value, ok := r[field]
	return value, ok
}

// LineItemRecord maps a line-item field name to its value.
// Unlike HeaderRecord, empty values are retained.
type LineItemRecord map[string]string

// Get returns the value of a line field and whether the column was present
// in the source row.
func (r LineItemRecord) Get(field string) (string, bool) {
	value, ok := r[field]
	return value, ok
}
