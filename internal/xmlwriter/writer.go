// =============================================================================
// CSV to EDI Mapper - XML Writer Module
// =============================================================================
//
// This module renders the populated template and decides where it goes.
//
// DECLARATION:
//   The template's own <?xml ...?> declaration is kept as written. A template
//   without one gets:
//
//     <?xml version="1.0" encoding="UTF-8"?>
//
// FILE NAMING:
//   <prefix>_<CUST-ORDER>.XML, for example WAITROSE_4500012345.XML. When the
//   header has no CUST-ORDER value the placeholder is used instead
//   (WAITROSE_UNKNOWN.XML). No other field influences the name.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/document"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/pkg/utils"
)

const (
	// DefaultPrefix is the output file name prefix.
	DefaultPrefix = "WAITROSE"

	// DefaultPlaceholder stands in for a missing order number.
	DefaultPlaceholder = "UNKNOWN"

	// OrderNumberField is the header field that names the output file.
	OrderNumberField = "CUST-ORDER"

	// Extension is appended to every output file name.
	Extension = ".XML"

	defaultDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`
)

// =============================================================================
// SERIALIZATION
// =============================================================================

// Serialize renders the document as UTF-8 XML with a declaration. The
// document is not modified.
//
// PARAMETERS:
//   - doc: The populated template.
//
// RETURNS:
//   - The XML bytes.
//   - An error if the tree cannot be rendered.
func Serialize(doc *document.Document) ([]byte, error) {
	tree := doc.Tree()

	var buf bytes.Buffer
	if !hasDeclaration(tree) {
		buf.WriteString(defaultDeclaration)

		// Keep the root element on its own line.
		if len(tree.Child) == 0 || !isCharData(tree.Child[0]) {
			buf.WriteByte('\n')
		}
	}

	if _, err := tree.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize XML: %w", err)
	}

	return buf.Bytes(), nil
}

// hasDeclaration reports whether the document carries its own <?xml ...?>.
func hasDeclaration(tree *etree.Document) bool {
	for _, token := range tree.Child {
		if pi, ok := token.(*etree.ProcInst); ok && pi.Target == "xml" {
			return true
		}
	}
	return false
}

func isCharData(token etree.Token) bool {
	_, ok := token.(*etree.CharData)
	return ok
}

// =============================================================================
// FILE NAMING
// =============================================================================

// OutputFileName builds the output file name for an order.
//
// PARAMETERS:
//   - prefix: The file name prefix. Empty uses DefaultPrefix.
//   - placeholder: Used when CUST-ORDER is absent. Empty uses DefaultPlaceholder.
//   - header: The order's header record.
//
// RETURNS:
//   - A bare file name. Path separators in the order number are replaced
//     with "_" so the name cannot leave the output directory.
//
// EXAMPLE:
//   prefix: "WAITROSE", header: {"CUST-ORDER": "4500012345"}
//   output: "WAITROSE_4500012345.XML"
func OutputFileName(prefix, placeholder string, header types.HeaderRecord) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	order, ok := header.Get(OrderNumberField)
	if !ok {
		order = placeholder
	}

	return sanitize(prefix) + "_" + sanitize(order) + Extension
}

// sanitize replaces characters that would turn a name into a path.
func sanitize(s string) string {
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if s == "." || s == ".." {
		return strings.Repeat("_", len(s))
	}
	return s
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// WriteBytes writes serialized XML into dir under name.
//
// RETURNS:
//   - The full path written.
//   - An error if the directory or file cannot be written. A failed write
//     leaves no file under the final name.
func WriteBytes(data []byte, dir, name string) (string, error) {
	fm := utils.NewFileManager("", dir, "")
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}

	return path, nil
}
