// =============================================================================
// CSV to EDI Mapper - CSV Parser Module
// =============================================================================
//
// This module reads the order CSV into memory as a sequence of rows. The file
// format is fixed:
//   - Comma delimited
//   - UTF-8 (a leading byte-order mark written by spreadsheet exports is
//     tolerated and dropped; any invalid byte sequence fails the read)
//   - Standard quoted-field handling
//   - Variable number of cells per row (marker rows have one cell)
//   - A blank line is an empty row, so row indices follow file lines
//
// The rows are handed, unmodified, to the section extractor (sections.go)
// and the record builder (records.go).
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadFile opens a CSV file and returns all of its rows.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//
// RETURNS:
//   - The rows of the file, in order.
//   - An error if the file cannot be opened, decoded or parsed.
func ReadFile(filePath string) ([]types.Row, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	return rows, nil
}

// Read parses CSV rows from a reader.
//
// Blank lines come back as empty rows. Rows that only contain separators
// (",,,") keep their empty cells. Both are left to the record builder.
func Read(r io.Reader) ([]types.Row, error) {
	// Strip a BOM, then reject anything that is not valid UTF-8. Input after
	// a BOM never reaches BOMOverride's fallback, so validation is chained.
	decoder := transform.Chain(unicode.BOMOverride(transform.Nop), encoding.UTF8Validator)
	reader := bufio.NewReader(transform.NewReader(r, decoder))

	csvReader := csv.NewReader(reader)
	configureReader(csvReader)

	rows := make([]types.Row, 0)
	nextLine := 1

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		// encoding/csv skips blank lines; put them back.
		line, _ := csvReader.FieldPos(0)
		for ; nextLine < line; nextLine++ {
			rows = append(rows, types.Row{})
		}

		rows = append(rows, types.Row(record))
		nextLine = recordEndLine(csvReader, record) + 1
	}

	return rows, nil
}

// recordEndLine returns the file line on which the last record read ends.
// A quoted cell can span several lines.
func recordEndLine(reader *csv.Reader, record []string) int {
	last := len(record) - 1
	line, _ := reader.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}

// configureReader applies the single supported dialect to the CSV reader.
func configureReader(reader *csv.Reader) {
	reader.Comma = ','

	// Marker rows carry one cell while data rows carry many.
	reader.FieldsPerRecord = -1

	// Spreadsheet exports are not always strict about quoting.
	reader.LazyQuotes = true
}
