// =============================================================================
// CSV to EDI Mapper - Line Expander
// =============================================================================
//
// The template contains a single OrderLine prototype followed by a trailer:
//
//   <Document>
//     ...
//     <OrderLine>...</OrderLine>      <- prototype, cloned per line item
//     <DocTrailer>
//       <TotalLines>1</TotalLines>    <- overwritten with the expanded count
//     </DocTrailer>
//   </Document>
//
// EXPANSION:
//   1. No line items: nothing changes, the prototype stays in place.
//   2. Otherwise the prototype is removed from its parent.
//   3. Each record gets a deep clone of the prototype, its line rules are
//      applied, and the clone is inserted before the trailer (or at the end
//      of the parent when the template has no trailer). Record order becomes
//      document order.
//   4. The trailer count is set to the number of lines expanded.
//
// Line rule paths must exist in the prototype. A missing one is skipped;
// elements are never created inside a line.
//
// =============================================================================

package mapping

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/document"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"go.uber.org/zap"
)

// Expansion is the outcome of expanding the line group.
type Expansion struct {
	// Lines is the number of line subtrees inserted.
	Lines int

	// Changes holds every line field written, in line then rule order.
	Changes []Change

	// CountUpdated is true when the trailer count field was overwritten.
	CountUpdated bool
}

// Expander clones the line prototype once per line item.
type Expander struct {
	layout LineLayout
	rules  []Rule
	logger *zap.SugaredLogger
}

// NewExpander creates an expander for a layout and its per-line rules.
func NewExpander(layout LineLayout, rules []Rule, logger *zap.SugaredLogger) *Expander {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Expander{
		layout: layout,
		rules:  rules,
		logger: logger,
	}
}

// Expand replaces the prototype with one populated clone per record.
//
// PARAMETERS:
//   - doc: The template document, mutated in place.
//   - records: The line item records in input order.
//
// RETURNS:
//   - What was expanded. A template without the parent or the prototype
//     yields an empty Expansion.
func (e *Expander) Expand(doc *document.Document, records []types.LineItemRecord) Expansion {
	var result Expansion

	if len(records) == 0 {
		e.logger.Debug("no line items to expand")
		return result
	}

	parent := doc.Find(e.layout.Parent)
	if parent == nil {
		e.logger.Debugw("line parent not in template", "path", e.layout.Parent)
		return result
	}

	prototype := parent.SelectElement(e.layout.Prototype)
	if prototype == nil {
		e.logger.Debugw("line prototype not in template", "tag", e.layout.Prototype)
		return result
	}

	trailer := parent.SelectElement(e.layout.Trailer)
	_, indent, _ := document.Detach(prototype)

	for i, record := range records {
		line := document.Clone(prototype)
		result.Changes = append(result.Changes, e.populate(line, record, i+1)...)

		if trailer != nil {
			document.InsertBefore(trailer, line, indent)
		} else {
			document.Append(parent, line, indent)
		}

		result.Lines++
	}

	if trailer != nil {
		if count := document.FindFrom(trailer, e.layout.CountField); count != nil {
			count.SetText(strconv.Itoa(result.Lines))
			result.CountUpdated = true
		}
	}

	e.logger.Debugw("expanded line items", "lines", result.Lines, "count_updated", result.CountUpdated)
	return result
}

// populate applies the line rules to one clone.
func (e *Expander) populate(line *etree.Element, record types.LineItemRecord, lineNo int) []Change {
	var changes []Change

	for _, rule := range e.rules {
		value, ok := record.Get(rule.Field)
		if !ok {
			continue
		}

		el := document.FindFrom(line, rule.Path)
		if el == nil {
			e.logger.Debugw("line element not in prototype", "field", rule.Field, "path", rule.Path)
			continue
		}

		el.SetText(value)
		changes = append(changes, Change{Field: rule.Field, Path: rule.Path, Value: value, Line: lineNo})
	}

	return changes
}
