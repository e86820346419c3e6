// =============================================================================
// CSV to EDI Mapper - Section Extractor
// =============================================================================
//
// The order CSV is a flat stream of rows partitioned by marker rows:
//
//   ###ORD-HEADER
//   CUST-ORDER,CUST-ADDR-CODE,...      <- header field names
//   CUST-001,CA0,...                   <- header values
//   ###ORD-HEADER-END
//   ###ORD-LINES
//   LINE-NO,LINE-CODE,LINE-DESC,...    <- line field names
//   1,32815,Product Name,...           <- one row per line item
//   ###ORD-LINES-END
//
// Extract finds the two blocks in a single pass. It never fails: a block
// whose markers are missing or inverted is simply absent. Checking marker
// well-formedness is the job of the validation package.
//
// =============================================================================

package csvparser

import (
	"strings"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
)

// =============================================================================
// MARKERS
// =============================================================================

// Marker tokens, matched case-sensitively against the first cell of a row.
const (
	MarkerHeaderStart = "###ORD-HEADER"
	MarkerHeaderEnd   = "###ORD-HEADER-END"
	MarkerLinesStart  = "###ORD-LINES"
	MarkerLinesEnd    = "###ORD-LINES-END"
)

// Markers lists every marker token in document order.
var Markers = []string{
	MarkerHeaderStart,
	MarkerHeaderEnd,
	MarkerLinesStart,
	MarkerLinesEnd,
}

// MarkerOf returns the marker carried by a row, or "" if the row is not a
// marker row. Surrounding whitespace in the first cell is ignored.
func MarkerOf(row types.Row) string {
	if len(row) == 0 {
		return ""
	}

	cell := strings.TrimSpace(row[0])
	for _, marker := range Markers {
		if cell == marker {
			return marker
		}
	}

	return ""
}

// =============================================================================
// MARKER POSITIONS
// =============================================================================

// Positions holds the row index of the last occurrence of each marker.
// An index of -1 means the marker was not seen.
type Positions struct {
	HeaderStart int
	HeaderEnd   int
	LinesStart  int
	LinesEnd    int
}

// Locate folds over the rows and records where each marker last appears.
// A repeated marker overwrites the earlier position.
func Locate(rows []types.Row) Positions {
	pos := Positions{HeaderStart: -1, HeaderEnd: -1, LinesStart: -1, LinesEnd: -1}

	for i, row := range rows {
		switch MarkerOf(row) {
		case MarkerHeaderStart:
			pos.HeaderStart = i
		case MarkerHeaderEnd:
			pos.HeaderEnd = i
		case MarkerLinesStart:
			pos.LinesStart = i
		case MarkerLinesEnd:
			pos.LinesEnd = i
		}
	}

	return pos
}

// HasHeader reports whether both header markers were seen in order.
func (p Positions) HasHeader() bool {
	return validBlock(p.HeaderStart, p.HeaderEnd)
}

// HasLines reports whether both line markers were seen in order.
func (p Positions) HasLines() bool {
	return validBlock(p.LinesStart, p.LinesEnd)
}

func validBlock(start, end int) bool {
	return start >= 0 && end >= 0 && start < end
}

// =============================================================================
// SECTIONS
// =============================================================================

// Sections is the result of extraction. A nil block means it is absent;
// a present block may still have an empty body.
type Sections struct {
	// Header holds the rows strictly between the header markers.
	Header []types.Row

	// Lines holds the rows strictly between the line markers.
	Lines []types.Row

	// HeaderFound is true when the header block is present.
	HeaderFound bool

	// LinesFound is true when the line-items block is present.
	LinesFound bool
}

// Extract slices the header and line-items blocks out of the row stream.
//
// PARAMETERS:
//   - rows: The full ordered row sequence of the CSV file.
//
// RETURNS:
//   - The located blocks. Missing or inverted markers yield absent blocks,
//     never an error.
func Extract(rows []types.Row) Sections {
	pos := Locate(rows)

	var sections Sections

	if pos.HasHeader() {
		sections.Header = rows[pos.HeaderStart+1 : pos.HeaderEnd]
		sections.HeaderFound = true
	}

	if pos.HasLines() {
		sections.Lines = rows[pos.LinesStart+1 : pos.LinesEnd]
		sections.LinesFound = true
	}

	return sections
}
