// =============================================================================
// CSV to EDI Mapper - Template Document Model
// =============================================================================
//
// This module holds the XML order template in memory as a mutable element
// tree. It is a thin layer over github.com/beevik/etree that adds the few
// operations the mapping engine needs:
//   - Load/parse the template once per run
//   - Locate elements by path expressions, absolute or relative to an anchor
//   - Deep-clone a subtree
//   - Remove and insert elements while keeping the template's indentation
//
// PATH SYNTAX:
//   Paths use etree's XPath subset. Rule tables use descendant paths anchored
//   at the document ("//Document/OrderHeader/CustOrder") and relative paths
//   inside a line subtree ("Item/CustItem/Code").
//
// =============================================================================

package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoRoot is returned when a template parses but has no root element.
var ErrNoRoot = errors.New("template has no root element")

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is one template instance. It is owned by a single mapping run.
type Document struct {
	tree   *etree.Document
	source string
}

// Load reads and parses a template file.
//
// PARAMETERS:
//   - filePath: The path to the XML template.
//
// RETURNS:
//   - The parsed document.
//   - An error if the file cannot be opened or is not well-formed XML.
func Load(filePath string) (*Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer file.Close()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", filePath, err)
	}

	doc.source = filePath
	return doc, nil
}

// Parse reads a template from a reader.
func Parse(r io.Reader) (*Document, error) {
	tree := etree.NewDocument()
	tree.ReadSettings.PreserveCData = true

	if _, err := tree.ReadFrom(r); err != nil {
		return nil, err
	}

	if tree.Root() == nil {
		return nil, ErrNoRoot
	}

	return &Document{tree: tree}, nil
}

// ParseString parses a template held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Source returns the file the document was loaded from, if any.
func (d *Document) Source() string {
	return d.source
}

// Root returns the document's root element.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// Tree exposes the underlying etree document for serialization.
func (d *Document) Tree() *etree.Document {
	return d.tree
}

// Find locates the first element matching path, evaluated from the document.
// It returns nil if nothing matches or the path is not a valid expression.
func (d *Document) Find(path string) *etree.Element {
	return FindFrom(&d.tree.Element, path)
}

// FindFrom locates the first element matching path relative to anchor.
func FindFrom(anchor *etree.Element, path string) *etree.Element {
	if anchor == nil {
		return nil
	}

	compiled, err := etree.CompilePath(path)
	if err != nil {
		return nil
	}

	return anchor.FindElementPath(compiled)
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// SplitPath splits a path into its parent path and final element tag.
//
// EXAMPLE:
//   "//Document/DocHeader/CustAddr/Code" -> ("//Document/DocHeader/CustAddr", "Code")
//   "LineNo"                             -> (".", "LineNo")
func SplitPath(path string) (parent, tag string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ".", path
	}

	parent = path[:i]
	switch parent {
	case "":
		parent = "/"
	case "/":
		parent = "//"
	}

	return parent, path[i+1:]
}

// ValidatePath reports whether path compiles as an etree path expression.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("empty path")
	}
	_, err := etree.CompilePath(path)
	return err
}

// =============================================================================
// TREE SURGERY
// =============================================================================

// Clone returns a deep copy of an element. The copy has no parent and shares
// no mutable structure with the original.
func Clone(el *etree.Element) *etree.Element {
	return el.Copy()
}

// Detach removes el from its parent together with the whitespace-only text
// that indents it. It returns the parent, the indentation text and the index
// el occupied after the indentation was removed.
func Detach(el *etree.Element) (parent *etree.Element, indent string, index int) {
	parent = el.Parent()
	if parent == nil {
		return nil, "", -1
	}

	index = el.Index()
	if ws := whitespaceAt(parent, index-1); ws != nil {
		indent = ws.Data
		parent.RemoveChildAt(index - 1)
		index--
	}

	parent.RemoveChildAt(index)
	return parent, indent, index
}

// InsertBefore inserts el immediately before ref, preceded by indent. The
// whitespace that already indents ref stays in front of el, so repeated
// inserts before the same ref keep each element on its own line.
func InsertBefore(ref, el *etree.Element, indent string) {
	parent := ref.Parent()
	index := ref.Index()

	parent.InsertChildAt(index, el)
	if indent != "" {
		parent.InsertChildAt(index+1, etree.NewText(indent))
	}
}

// Append adds el as the last element child of parent. Trailing whitespace
// before the parent's closing tag is kept after the new element.
func Append(parent, el *etree.Element, indent string) {
	index := len(parent.Child)
	if ws := whitespaceAt(parent, index-1); ws != nil {
		index--
	}

	if indent != "" {
		parent.InsertChildAt(index, etree.NewText(indent))
		index++
	}
	parent.InsertChildAt(index, el)
}

// CreateChild appends a new element named tag to parent, indented like the
// parent's existing element children.
func CreateChild(parent *etree.Element, tag string) *etree.Element {
	indent := ""
	if children := parent.ChildElements(); len(children) > 0 {
		last := children[len(children)-1]
		if ws := whitespaceAt(parent, last.Index()-1); ws != nil {
			indent = ws.Data
		}
	}

	el := etree.NewElement(tag)
	Append(parent, el, indent)
	return el
}

// whitespaceAt returns the child at index if it is whitespace-only text.
func whitespaceAt(parent *etree.Element, index int) *etree.CharData {
	if index < 0 || index >= len(parent.Child) {
		return nil
	}

	cd, ok := parent.Child[index].(*etree.CharData)
	if !ok || !cd.IsWhitespace() {
		return nil
	}

	return cd
}
