// =============================================================================
// CSV to EDI Mapper - Field Projector
// =============================================================================
//
// The projector copies header fields into the template. For every rule whose
// source field is present in the header record:
//   1. Find the destination element from the document.
//   2. If it exists, overwrite its text.
//   3. If not, create it under its parent and set its text.
//
// A rule whose field is absent, or whose destination parent is not in the
// template, is skipped. Neither case is an error.
//
// Projecting the same record twice leaves the document as projecting once:
// the first pass creates whatever is missing and the second only overwrites.
//
// =============================================================================

package mapping

import (
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/document"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"go.uber.org/zap"
)

// =============================================================================
// CHANGES
// =============================================================================

// Change records one write made to the document.
type Change struct {
	// Field is the source field that was copied.
	Field string

	// Path is the destination path from the rule.
	Path string

	// Value is the text written.
	Value string

	// Created is true when the destination element did not exist.
	Created bool

	// Line is the 1-based line number for line changes, 0 for header changes.
	Line int
}

// =============================================================================
// PROJECTOR
// =============================================================================

// Projector applies a header rule table to a document.
type Projector struct {
	rules  []Rule
	logger *zap.SugaredLogger
}

// NewProjector creates a projector for the given rules.
func NewProjector(rules []Rule, logger *zap.SugaredLogger) *Projector {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Projector{
		rules:  rules,
		logger: logger,
	}
}

// Apply projects the header record onto the document.
//
// PARAMETERS:
//   - doc: The template document, mutated in place.
//   - record: The header record.
//
// RETURNS:
//   - The writes that were made, in rule order.
func (p *Projector) Apply(doc *document.Document, record types.HeaderRecord) []Change {
	var changes []Change

	for _, rule := range p.rules {
		value, ok := record.Get(rule.Field)
		if !ok {
			continue
		}

		change, ok := p.write(doc, rule, value)
		if !ok {
			continue
		}

		changes = append(changes, change)
	}

	return changes
}

// write sets the destination text, creating the element if needed.
func (p *Projector) write(doc *document.Document, rule Rule, value string) (Change, bool) {
	change := Change{Field: rule.Field, Path: rule.Path, Value: value}

	if el := doc.Find(rule.Path); el != nil {
		el.SetText(value)
		p.logger.Debugw("updated element", "field", rule.Field, "path", rule.Path, "value", value)
		return change, true
	}

	parentPath, tag := document.SplitPath(rule.Path)
	parent := doc.Find(parentPath)
	if parent == nil {
		p.logger.Debugw("destination parent not in template", "field", rule.Field, "path", parentPath)
		return change, false
	}

	document.CreateChild(parent, tag).SetText(value)
	p.logger.Debugw("created element", "field", rule.Field, "path", rule.Path, "value", value)

	change.Created = true
	return change, true
}
