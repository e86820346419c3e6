// =============================================================================
// CSV to EDI Mapper - Record Builder
// =============================================================================
//
// Turns the blocks found by Extract into records:
//   - The header block becomes one HeaderRecord (names row + values row).
//   - The line-items block becomes one LineItemRecord per data row, all
//     sharing the block's first row as field names.
//
// POSITIONAL ALIGNMENT:
//   Blank field names are dropped BEFORE values are paired with names, so a
//   value is read from the position of its name in the compacted name list,
//   not from its original column. Given names ["A", "", "B"] and values
//   ["v1", "v2", "v3"] the header record is {A: v1, B: v2}.
//
//   Existing order files depend on this pairing, so it is kept as is. See
//   DESIGN.md before changing it.
//
// =============================================================================

package csvparser

import (
	"strings"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
)

// =============================================================================
// HEADER RECORD
// =============================================================================

// BuildHeaderRecord builds the order-level record from the header block.
//
// PARAMETERS:
//   - rows: The header block body. Row 0 holds field names, row 1 values.
//
// RETURNS:
//   - The header record. Fields whose value is empty after trimming are
//     omitted. Fewer than two rows yields an empty record.
func BuildHeaderRecord(rows []types.Row) types.HeaderRecord {
	record := make(types.HeaderRecord)

	if len(rows) < 2 {
		return record
	}

	names := fieldNames(rows[0])
	values := rows[1]

	for i, name := range names {
		if i >= len(values) {
			break
		}

		value := strings.TrimSpace(values[i])
		if value == "" {
			continue
		}

		record[name] = value
	}

	return record
}

// =============================================================================
// LINE ITEM RECORDS
// =============================================================================

// BuildLineItemRecords builds one record per data row of the line block.
//
// PARAMETERS:
//   - rows: The line-items block body. Row 0 holds field names.
//
// RETURNS:
//   - The records in row order. Blank rows are skipped; empty cell values
//     are kept as empty strings. Cells missing from a short row are absent
//     from its record.
func BuildLineItemRecords(rows []types.Row) []types.LineItemRecord {
	records := make([]types.LineItemRecord, 0)

	if len(rows) == 0 {
		return records
	}

	names := fieldNames(rows[0])

	for _, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}

		record := make(types.LineItemRecord, len(names))
		for i, name := range names {
			if i < len(row) {
				record[name] = strings.TrimSpace(row[i])
			}
		}

		records = append(records, record)
	}

	return records
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// fieldNames returns the trimmed, non-empty cells of a names row, compacted.
func fieldNames(row types.Row) []string {
	names := make([]string, 0, len(row))

	for _, cell := range row {
		name := strings.TrimSpace(cell)
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row types.Row) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
