package mapping

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/document"
	"github.com/stretchr/testify/require"
)

const baseTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<TrueCommerce xmlns:tc="http://www.truecommerce.com/docs/order">
  <Document version="2">
    <DocHeader>
      <CustAddr>
        <Code>OLD</Code>
      </CustAddr>
    </DocHeader>
    <OrderHeader>
      <CustOrder>TEMPLATE</CustOrder>
      <Delivery>
        <ReqDel>
          <Date>2000-01-01</Date>
        </ReqDel>
        <DeliverTo/>
      </Delivery>
      <Locations>
        <InvoiceTo/>
      </Locations>
    </OrderHeader>
    <OrderLine type="standard">
      <LineNo>0</LineNo>
      <Item>
        <CustItem>
          <Code>CODE</Code>
        </CustItem>
        <Desc1>DESC</Desc1>
      </Item>
      <OrderQty>
        <Unit>0</Unit>
      </OrderQty>
      <CostPrice>0.00</CostPrice>
      <LineAmount>0.00</LineAmount>
    </OrderLine>
    <DocTrailer>
      <TotalLines>99</TotalLines>
    </DocTrailer>
  </Document>
</TrueCommerce>
`

func parseTemplate(t *testing.T, s string) *document.Document {
	t.Helper()
	doc, err := document.ParseString(s)
	require.NoError(t, err)
	return doc
}

func render(t *testing.T, doc *document.Document) string {
	t.Helper()
	out, err := doc.Tree().WriteToString()
	require.NoError(t, err)
	return out
}

func tags(elements []*etree.Element) []string {
	out := make([]string, len(elements))
	for i, el := range elements {
		out[i] = el.Tag
	}
	return out
}
