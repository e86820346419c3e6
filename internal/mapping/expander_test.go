package mapping

import (
	"strconv"
	"strings"
	"testing"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/document"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func threeLines() []types.LineItemRecord {
	return []types.LineItemRecord{
		{"LINE-NO": "1", "LINE-CODE": "32815", "LINE-DESC": "Apples", "LINE-QUANT": "500", "LINE-PRICE": "0.40", "LINE-TOTAL-AMOUNT": "200.00"},
		{"LINE-NO": "2", "LINE-CODE": "32816", "LINE-DESC": "Pears", "LINE-QUANT": "250", "LINE-PRICE": "0.50", "LINE-TOTAL-AMOUNT": "125.00"},
		{"LINE-NO": "3", "LINE-CODE": "32817", "LINE-DESC": "Plums", "LINE-QUANT": "100", "LINE-PRICE": "0.30", "LINE-TOTAL-AMOUNT": "30.00"},
	}
}

func TestExpandThreeLines(t *testing.T) {
	doc := parseTemplate(t, baseTemplate)
	e := NewExpander(DefaultLineLayout(), DefaultLineRules(), zap.NewNop().Sugar())

	result := e.Expand(doc, threeLines())

	assert.Equal(t, 3, result.Lines)
	assert.True(t, result.CountUpdated)
	assert.Len(t, result.Changes, 18)

	parent := doc.Find("//Document")
	assert.Equal(t,
		[]string{"DocHeader", "OrderHeader", "OrderLine", "OrderLine", "OrderLine", "DocTrailer"},
		tags(parent.ChildElements()))

	lines := parent.SelectElements("OrderLine")
	require.Len(t, lines, 3)
	for i, want := range []string{"32815", "32816", "32817"} {
		assert.Equal(t, want, document.FindFrom(lines[i], "Item/CustItem/Code").Text())
		assert.Equal(t, "standard", lines[i].SelectAttrValue("type", ""))
	}
	assert.Equal(t, "Pears", document.FindFrom(lines[1], "Item/Desc1").Text())
	assert.Equal(t, "250", document.FindFrom(lines[1], "OrderQty/Unit").Text())
	assert.Equal(t, "0.50", document.FindFrom(lines[1], "CostPrice").Text())
	assert.Equal(t, "125.00", document.FindFrom(lines[1], "LineAmount").Text())

	assert.Equal(t, "3", doc.Find("//Document/DocTrailer/TotalLines").Text())
}

func TestExpandKeepsLayout(t *testing.T) {
	doc := parseTemplate(t, baseTemplate)
	e := NewExpander(DefaultLineLayout(), DefaultLineRules(), nil)

	e.Expand(doc, threeLines())

	out := render(t, doc)
	assert.Equal(t, 3, strings.Count(out, "\n    <OrderLine type=\"standard\">"))
	assert.Contains(t, out, "</OrderHeader>\n    <OrderLine")
	assert.Contains(t, out, "</OrderLine>\n    <DocTrailer>")
}

func TestExpandZeroLinesIsNoop(t *testing.T) {
	doc := parseTemplate(t, baseTemplate)
	before := render(t, doc)
	e := NewExpander(DefaultLineLayout(), DefaultLineRules(), nil)

	result := e.Expand(doc, nil)
	assert.Equal(t, 0, result.Lines)
	assert.False(t, result.CountUpdated)

	result = e.Expand(doc, []types.LineItemRecord{})
	assert.Equal(t, 0, result.Lines)

	assert.Equal(t, before, render(t, doc))
	assert.Equal(t, "99", doc.Find("//Document/DocTrailer/TotalLines").Text())
}

func TestExpandCountIgnoresPriorValue(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		doc := parseTemplate(t, baseTemplate)
		e := NewExpander(DefaultLineLayout(), DefaultLineRules(), nil)

		records := make([]types.LineItemRecord, n)
		for i := range records {
			records[i] = types.LineItemRecord{"LINE-NO": "x"}
		}

		result := e.Expand(doc, records)

		assert.Equal(t, n, result.Lines)
		assert.Len(t, doc.Find("//Document").SelectElements("OrderLine"), n)
		assert.Equal(t, strconv.Itoa(n), doc.Find("//Document/DocTrailer/TotalLines").Text())
	}
}

func TestExpandPreservesOrderAndDuplicates(t *testing.T) {
	doc := parseTemplate(t, baseTemplate)
	e := NewExpander(DefaultLineLayout(), DefaultLineRules(), nil)

	records := []types.LineItemRecord{
		{"LINE-NO": "3"},
		{"LINE-NO": "1"},
		{"LINE-NO": "1"},
		{"LINE-NO": "2"},
	}
	e.Expand(doc, records)

	var got []string
	for _, line := range doc.Find("//Document").SelectElements("OrderLine") {
		got = append(got, line.SelectElement("LineNo").Text())
	}
	assert.Equal(t, []string{"3", "1", "1", "2"}, got)
}

func TestExpandClonesAreIndependent(t *testing.T) {
	doc := parseTemplate(t, baseTemplate)
	e := NewExpander(DefaultLineLayout(), DefaultLineRules(), nil)

	e.Expand(doc, []types.LineItemRecord{
		{"LINE-CODE": "A"},
		{"LINE-DESC": "only description"},
	})

	lines := doc.Find("//Document").SelectElements("OrderLine")
	require.Len(t, lines, 2)

	// The second line only sets its description; its code keeps the prototype value.
	assert.Equal(t, "A", document.FindFrom(lines[0], "Item/CustItem/Code").Text())
	assert.Equal(t, "CODE", document.FindFrom(lines[1], "Item/CustItem/Code").Text())
	assert.Equal(t, "DESC", document.FindFrom(lines[0], "Item/Desc1").Text())
}

func TestExpandEmptyValuesOverwrite(t *testing.T) {
	doc := parseTemplate(t, baseTemplate)
	e := NewExpander(DefaultLineLayout(), DefaultLineRules(), nil)

	e.Expand(doc, []types.LineItemRecord{{"LINE-NO": "1", "LINE-DESC": ""}})

	line := doc.Find("//Document/OrderLine")
	require.NotNil(t, line)
	assert.Equal(t, "", document.FindFrom(line, "Item/Desc1").Text())
}

func TestExpandNeverCreatesLineElements(t *testing.T) {
	doc := parseTemplate(t, baseTemplate)
	rules := append(DefaultLineRules(), Rule{Field: "LINE-VAT", Path: "VatRate"})
	e := NewExpander(DefaultLineLayout(), rules, nil)

	result := e.Expand(doc, []types.LineItemRecord{{"LINE-VAT": "20"}})

	assert.Equal(t, 1, result.Lines)
	assert.Empty(t, result.Changes)
	assert.Nil(t, doc.Find("//Document/OrderLine/VatRate"))
}

func TestExpandWithoutTrailer(t *testing.T) {
	template := "<Root>\n  <Document>\n    <OrderLine><LineNo/></OrderLine>\n  </Document>\n</Root>"
	doc := parseTemplate(t, template)
	e := NewExpander(DefaultLineLayout(), DefaultLineRules(), nil)

	result := e.Expand(doc, []types.LineItemRecord{{"LINE-NO": "1"}, {"LINE-NO": "2"}})

	assert.Equal(t, 2, result.Lines)
	assert.False(t, result.CountUpdated)
	assert.Equal(t,
		"<Root>\n  <Document>\n    <OrderLine><LineNo>1</LineNo></OrderLine>\n    <OrderLine><LineNo>2</LineNo></OrderLine>\n  </Document>\n</Root>",
		render(t, doc))
}

func TestExpandMissingStructureIsNoop(t *testing.T) {
	tests := map[string]string{
		"no parent":    "<Root><Other><OrderLine/></Other></Root>",
		"no prototype": "<Root><Document><DocTrailer><TotalLines>1</TotalLines></DocTrailer></Document></Root>",
	}

	for name, template := range tests {
		t.Run(name, func(t *testing.T) {
			doc := parseTemplate(t, template)
			e := NewExpander(DefaultLineLayout(), DefaultLineRules(), nil)

			result := e.Expand(doc, threeLines())

			assert.Equal(t, 0, result.Lines)
			assert.Equal(t, template, render(t, doc))
		})
	}
}
