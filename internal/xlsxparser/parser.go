// =============================================================================
// CSV to EDI Mapper - XLSX Profile Parser
// =============================================================================
//
// Mapping analysts maintain customer mappings in spreadsheets. This module
// reads such a workbook into a mapping profile, the same structure a YAML
// profile produces.
//
// WORKBOOK STRUCTURE:
//
//   Sheet "Mapping" (or the first sheet if there is none):
//
//   | Column A | Column B       | Column C                               | Column D |
//   |----------|----------------|----------------------------------------|----------|
//   | Section  | Source Field   | Destination Path                       | Required |
//   | header   | CUST-ORDER     | //Document/OrderHeader/CustOrder       | yes      |
//   | header   | DEL-DATE       | //Document/OrderHeader/Delivery/Date   |          |
//   | line     | LINE-NO        | LineNo                                 |          |
//   | line     | PRODUCT-CODE   | Product/SuppCode                       |          |
//
//   Sheet "Layout" (optional), one key/value pair per row:
//
//   | Key         | Value       |
//   |-------------|-------------|
//   | name        | waitrose    |
//   | parent      | //Document  |
//   | prototype   | OrderLine   |
//   | trailer     | DocTrailer  |
//   | count_field | TotalLines  |
//   | prefix      | WAITROSE    |
//   | placeholder | UNKNOWN     |
//
//   Sheet "Transformations" (optional):
//
//   | Field      | Section | Type          | Value | Find | Lookup        |
//   |------------|---------|---------------|-------|------|---------------|
//   | LINE-PRICE | lines   | format_number | 2     |      |               |
//   | UOM        | lines   | lookup        |       |      | EA=EACH;CS=CASE |
//
// Anything the workbook leaves out keeps its built-in value.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/config"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/mapping"
	"github.com/xuri/excelize/v2"
)

// Sheet names looked up in a profile workbook.
const (
	MappingSheet         = "Mapping"
	LayoutSheet          = "Layout"
	TransformationsSheet = "Transformations"
)

// =============================================================================
// COLUMN CONFIGURATION
// =============================================================================

// mappingColumns says which columns of the mapping sheet hold which data.
// Column indices are 0-based (A=0, B=1, C=2, etc.)
type mappingColumns struct {
	section  int
	field    int
	path     int
	required int

	// dataStartRow is the first row after the column titles (0-based).
	dataStartRow int
}

var defaultMappingColumns = mappingColumns{
	section:      0, // Column A
	field:        1, // Column B
	path:         2, // Column C
	required:     3, // Column D
	dataStartRow: 1, // Row 2
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseProfile reads a profile workbook.
//
// PARAMETERS:
//   - path: The path to the XLSX workbook.
//
// RETURNS:
//   - The profile with defaults applied and validated.
//   - An error if the workbook cannot be read or describes an invalid profile.
func ParseProfile(path string) (*config.Profile, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile workbook: %w", err)
	}
	defer f.Close()

	profile := &config.Profile{}

	sheetName := MappingSheet
	if index, _ := f.GetSheetIndex(sheetName); index < 0 {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("profile workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if err := parseMappingRows(profile, rows, defaultMappingColumns); err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheetName, err)
	}

	if rows, ok, err := optionalSheet(f, LayoutSheet); err != nil {
		return nil, err
	} else if ok {
		if err := parseLayoutRows(profile, rows); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", LayoutSheet, err)
		}
	}

	if rows, ok, err := optionalSheet(f, TransformationsSheet); err != nil {
		return nil, err
	} else if ok {
		rules, err := parseTransformationRows(rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", TransformationsSheet, err)
		}
		profile.TransformationRules = rules
	}

	if err := config.NormalizeProfile(profile); err != nil {
		return nil, fmt.Errorf("invalid profile workbook %s: %w", path, err)
	}

	return profile, nil
}

// optionalSheet returns the rows of a sheet, or ok=false if it does not exist.
func optionalSheet(f *excelize.File, name string) ([][]string, bool, error) {
	if index, _ := f.GetSheetIndex(name); index < 0 {
		return nil, false, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	return rows, true, nil
}

// parseMappingRows fills the header and line rule tables.
//
// The required-field list is only set when at least one header row fills the
// Required column, so a workbook without that column keeps the default.
func parseMappingRows(profile *config.Profile, rows [][]string, columns mappingColumns) error {
	var required []string
	requiredColumnUsed := false

	for i := columns.dataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		section, err := normalizeSection(cell(row, columns.section))
		if err != nil {
			return fmt.Errorf("error parsing row %d: %w", i+1, err)
		}

		rule := mapping.Rule{
			Field: cell(row, columns.field),
			Path:  cell(row, columns.path),
		}
		if rule.Field == "" || rule.Path == "" {
			return fmt.Errorf("error parsing row %d: source field and destination path are required", i+1)
		}

		if section == config.SectionLines {
			profile.LineRules = append(profile.LineRules, rule)
			continue
		}

		profile.HeaderRules = append(profile.HeaderRules, rule)
		if flag := cell(row, columns.required); flag != "" {
			requiredColumnUsed = true
			if isRequired(flag) {
				required = append(required, rule.Field)
			}
		}
	}

	if requiredColumnUsed {
		profile.RequiredHeaderFields = append([]string{}, required...)
	}

	return nil
}

// parseLayoutRows reads the key/value Layout sheet.
func parseLayoutRows(profile *config.Profile, rows [][]string) error {
	for i, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		key := normalizeKey(cell(row, 0))
		value := cell(row, 1)

		switch key {
		case "key":
			// Column title row.
		case "name":
			profile.Name = value
		case "parent":
			profile.LineLayout.Parent = value
		case "prototype":
			profile.LineLayout.Prototype = value
		case "trailer":
			profile.LineLayout.Trailer = value
		case "count_field":
			profile.LineLayout.CountField = value
		case "prefix", "output_prefix":
			profile.Output.Prefix = value
		case "placeholder":
			profile.Output.Placeholder = value
		default:
			return fmt.Errorf("unknown layout key %q in row %d", cell(row, 0), i+1)
		}
	}
	return nil
}

// parseTransformationRows reads the Transformations sheet. Consecutive rows
// for the same field and section become actions of one rule.
func parseTransformationRows(rows [][]string) ([]config.TransformationRule, error) {
	var rules []config.TransformationRule

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		field := cell(row, 0)
		section := ""
		if raw := cell(row, 1); raw != "" {
			var err error
			if section, err = normalizeSection(raw); err != nil {
				return nil, fmt.Errorf("error parsing row %d: %w", i+1, err)
			}
		}

		action := config.TransformationAction{
			Type:  strings.ToLower(cell(row, 2)),
			Value: cell(row, 3),
			Find:  cell(row, 4),
		}
		if lookup := cell(row, 5); lookup != "" {
			table, err := parseLookupTable(lookup)
			if err != nil {
				return nil, fmt.Errorf("error parsing row %d: %w", i+1, err)
			}
			action.LookupTable = table
		}

		if n := len(rules); n > 0 && rules[n-1].Field == field && rules[n-1].Section == section {
			rules[n-1].Actions = append(rules[n-1].Actions, action)
			continue
		}

		rules = append(rules, config.TransformationRule{
			Field:   field,
			Section: section,
			Actions: []config.TransformationAction{action},
		})
	}

	return rules, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cell safely returns a trimmed cell value.
func cell(row []string, index int) string {
	if index >= 0 && index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeSection maps the spellings analysts use onto a profile section.
func normalizeSection(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "header", "headers", "head", "h":
		return config.SectionHeader, nil
	case "line", "lines", "line item", "lineitem", "detail", "l":
		return config.SectionLines, nil
	default:
		return "", fmt.Errorf("unknown section %q", value)
	}
}

// isRequired interprets the Required column.
func isRequired(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "required", "req", "r", "yes", "y", "true", "1", "mandatory":
		return true
	default:
		return false
	}
}

func normalizeKey(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(value)
}

// parseLookupTable reads "A=1;B=2" into a map.
func parseLookupTable(value string) (map[string]string, error) {
	table := make(map[string]string)
	for _, pair := range strings.Split(value, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, mapped, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid lookup entry %q, expected KEY=VALUE", pair)
		}
		table[strings.TrimSpace(key)] = strings.TrimSpace(mapped)
	}
	return table, nil
}
