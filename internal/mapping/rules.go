// =============================================================================
// CSV to EDI Mapper - Mapping Rule Tables
// =============================================================================
//
// A mapping rule copies one source field into one element of the template.
// The tables below are the built-in profile for the TrueCommerce order
// template; a profile file can replace them (see internal/config).
//
// HEADER RULES:
//   Paths are evaluated from the document. When the destination is missing,
//   it is created under its parent, so every header path must end one level
//   below an element the template always contains.
//
// LINE RULES:
//   Paths are relative to one OrderLine clone and must already exist in the
//   prototype; the expander never creates line elements.
//
// =============================================================================

package mapping

// Rule maps a source field onto a destination path.
type Rule struct {
	// Field is the CSV field name, e.g. "CUST-ORDER".
	Field string `yaml:"field" validate:"required"`

	// Path is the destination element path.
	Path string `yaml:"path" validate:"required"`
}

// LineLayout describes where the repeating line group lives in the template.
type LineLayout struct {
	// Parent is the path of the element that holds the line subtrees.
	Parent string `yaml:"parent" validate:"required"`

	// Prototype is the tag of the line subtree, relative to Parent.
	Prototype string `yaml:"prototype" validate:"required"`

	// Trailer is the tag of the sibling that follows all lines. Optional.
	Trailer string `yaml:"trailer"`

	// CountField is the path, relative to Trailer, of the line count.
	CountField string `yaml:"count_field" validate:"required_with=Trailer"`
}

// =============================================================================
// DEFAULT TABLES
// =============================================================================

// DefaultHeaderRules returns the order-level rule table.
func DefaultHeaderRules() []Rule {
	return []Rule{
		{Field: "CUST-ORDER", Path: "//Document/OrderHeader/CustOrder"},

		// Customer address
		{Field: "CUST-ADDR-CODE", Path: "//Document/DocHeader/CustAddr/Code"},
		{Field: "CUST-ADDR-NAME", Path: "//Document/DocHeader/CustAddr/Name"},
		{Field: "CUST-ADDR-ADDRESS1", Path: "//Document/DocHeader/CustAddr/Address1"},
		{Field: "CUST-ADDR-ADDRESS2", Path: "//Document/DocHeader/CustAddr/Address2"},
		{Field: "CUST-ADDR-ADDRESS3", Path: "//Document/DocHeader/CustAddr/Address3"},

		// Delivery
		{Field: "DELIVERY-DUE-DATE", Path: "//Document/OrderHeader/Delivery/ReqDel/Date"},
		{Field: "DELIVERY-TO-CODE", Path: "//Document/OrderHeader/Delivery/DeliverTo/Code"},
		{Field: "DELIVERY-TO-NAME", Path: "//Document/OrderHeader/Delivery/DeliverTo/Name"},
		{Field: "DELIVERY-TO-ADDRESS1", Path: "//Document/OrderHeader/Delivery/DeliverTo/Address1"},

		// Invoice
		{Field: "INVOICE-TO-CODE", Path: "//Document/OrderHeader/Locations/InvoiceTo/Code"},
		{Field: "INVOICE-TO-NAME", Path: "//Document/OrderHeader/Locations/InvoiceTo/Name"},
		{Field: "INVOICE-TO-ADDRESS1", Path: "//Document/OrderHeader/Locations/InvoiceTo/Address1"},

		// Totals are precomputed in the CSV.
		{Field: "TOTAL-ORDER-UNITS", Path: "//Document/OrderHeader/TotalOrderUnits"},
		{Field: "TOTAL-ORDER-VALUE", Path: "//Document/OrderHeader/TotalOrderVal"},
	}
}

// DefaultLineRules returns the per-line rule table.
func DefaultLineRules() []Rule {
	return []Rule{
		{Field: "LINE-NO", Path: "LineNo"},
		{Field: "LINE-CODE", Path: "Item/CustItem/Code"},
		{Field: "LINE-DESC", Path: "Item/Desc1"},
		{Field: "LINE-QUANT", Path: "OrderQty/Unit"},
		{Field: "LINE-PRICE", Path: "CostPrice"},
		{Field: "LINE-TOTAL-AMOUNT", Path: "LineAmount"},
	}
}

// DefaultLineLayout returns the location of the OrderLine group.
func DefaultLineLayout() LineLayout {
	return LineLayout{
		Parent:     "//Document",
		Prototype:  "OrderLine",
		Trailer:    "DocTrailer",
		CountField: "TotalLines",
	}
}
