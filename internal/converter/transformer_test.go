package converter

import (
	"testing"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/config"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransformation(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		action config.TransformationAction
		want   string
	}{
		{"prepend", "32815", config.TransformationAction{Type: "prepend_string", Value: "WR"}, "WR32815"},
		{"append", "32815", config.TransformationAction{Type: "append_string", Value: "-01"}, "32815-01"},
		{"trim", "  x  ", config.TransformationAction{Type: "trim"}, "x"},
		{"trim left chars", "000123", config.TransformationAction{Type: "trim_left", Value: "0"}, "123"},
		{"trim right default", "abc \t", config.TransformationAction{Type: "trim_right"}, "abc"},
		{"uppercase", "depot", config.TransformationAction{Type: "uppercase"}, "DEPOT"},
		{"lowercase", "DEPOT", config.TransformationAction{Type: "lowercase"}, "depot"},
		{"title case", "WAITROSE DEPOT BRACKNELL", config.TransformationAction{Type: "title_case"}, "Waitrose Depot Bracknell"},
		{"replace", "a-b-c", config.TransformationAction{Type: "replace", Find: "-", Value: "_"}, "a_b_c"},
		{"replace no find", "a-b", config.TransformationAction{Type: "replace", Value: "_"}, "a-b"},
		{"regex replace", "PO-4500/12", config.TransformationAction{Type: "regex_replace", Find: "[^0-9]"}, "450012"},
		{"substring", "ABCDEFGH", config.TransformationAction{Type: "substring", Value: "2,5"}, "CDE"},
		{"substring clamped", "ABC", config.TransformationAction{Type: "substring", Value: "1,10"}, "BC"},
		{"substring empty", "ABC", config.TransformationAction{Type: "substring", Value: "5,10"}, ""},
		{"normalize whitespace", "  a   b\tc ", config.TransformationAction{Type: "normalize_whitespace"}, "a b c"},
		{"pad zeros", "123", config.TransformationAction{Type: "pad_zeros_to_length", Value: "8"}, "00000123"},
		{"pad zeros bad length", "123", config.TransformationAction{Type: "pad_zeros_to_length", Value: "x"}, "123"},
		{"pad spaces", "ab", config.TransformationAction{Type: "pad_spaces_to_length", Value: "4"}, "ab  "},
		{"ensure length cut", "12345678901234", config.TransformationAction{Type: "ensure_length", Value: "10"}, "1234567890"},
		{"ensure length pad", "123", config.TransformationAction{Type: "ensure_length", Value: "6"}, "000123"},
		{"format number", "1234.5", config.TransformationAction{Type: "format_number", Value: "2"}, "1234.50"},
		{"format number not numeric", "n/a", config.TransformationAction{Type: "format_number", Value: "2"}, "n/a"},
		{"format currency", "0.4", config.TransformationAction{Type: "format_currency"}, "0.40"},
		{"remove leading zeros", "00012345", config.TransformationAction{Type: "remove_leading_zeros"}, "12345"},
		{"remove leading zeros all", "000", config.TransformationAction{Type: "remove_leading_zeros"}, "0"},
		{"extract digits", "ABC-123-DEF-456", config.TransformationAction{Type: "extract_digits"}, "123456"},
		{"format date", "15/06/2024", config.TransformationAction{Type: "format_date", Value: "02/01/2006|2006-01-02"}, "2024-06-15"},
		{"format date unparsable", "soon", config.TransformationAction{Type: "format_date", Value: "02/01/2006|2006-01-02"}, "soon"},
		{"lookup hit", "EA", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"EA": "EACH"}}, "EACH"},
		{"lookup miss", "CS", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"EA": "EACH"}}, "CS"},
		{"lookup default", "CS", config.TransformationAction{Type: "lookup_with_default", Value: "UNIT", LookupTable: map[string]string{"EA": "EACH"}}, "UNIT"},
		{"default when empty", " ", config.TransformationAction{Type: "if_empty_use_default", Value: "N/A"}, "N/A"},
		{"default when set", "x", config.TransformationAction{Type: "if_empty_use_default", Value: "N/A"}, "x"},
		{"other field", "", config.TransformationAction{Type: "if_empty_use_field", Value: "LINE-CODE"}, "32815"},
	}

	allFields := map[string]string{"LINE-CODE": "32815"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransformation(tt.value, tt.action, allFields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyTransformationErrors(t *testing.T) {
	_, err := ApplyTransformation("x", config.TransformationAction{Type: "explode"}, nil)
	assert.ErrorContains(t, err, "unknown transformation type")

	_, err = ApplyTransformation("x", config.TransformationAction{Type: "regex_replace", Find: "("}, nil)
	assert.ErrorContains(t, err, "invalid regex pattern")
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "00é", PadLeft("é", 3, '0'))
	assert.Equal(t, "é  ", PadRight("é", 3, ' '))
	assert.Equal(t, "long", PadLeft("long", 2, '0'))
}

func TestTransformHeader(t *testing.T) {
	transformer := NewTransformer([]config.TransformationRule{
		{Field: "CUST-ORDER", Section: config.SectionHeader, Actions: []config.TransformationAction{{Type: "pad_zeros_to_length", Value: "10"}}},
		{Field: "DELIVERY-TO-NAME", Actions: []config.TransformationAction{{Type: "if_empty_use_default", Value: "Depot"}}},
		{Field: "CUST-ADDR-CODE", Actions: []config.TransformationAction{{Type: "replace", Find: "X", Value: ""}}},
		{Field: "LINE-CODE", Section: config.SectionLines, Actions: []config.TransformationAction{{Type: "uppercase"}}},
	})

	input := types.HeaderRecord{"CUST-ORDER": "12345", "CUST-ADDR-CODE": "X", "OTHER": "kept"}

	got, err := transformer.TransformHeader(input)
	require.NoError(t, err)

	want := types.HeaderRecord{
		"CUST-ORDER":       "0000012345",
		"DELIVERY-TO-NAME": "Depot",
		"OTHER":            "kept",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TransformHeader() mismatch (-want +got):\n%s", diff)
	}

	// The input record is untouched.
	assert.Equal(t, types.HeaderRecord{"CUST-ORDER": "12345", "CUST-ADDR-CODE": "X", "OTHER": "kept"}, input)
}

func TestTransformLines(t *testing.T) {
	transformer := NewTransformer([]config.TransformationRule{
		{Field: "LINE-PRICE", Section: config.SectionLines, Actions: []config.TransformationAction{{Type: "format_number", Value: "2"}}},
		{Field: "LINE-DESC", Actions: []config.TransformationAction{{Type: "if_empty_use_field", Value: "LINE-CODE"}}},
		{Field: "LINE-CODE", Section: config.SectionHeader, Actions: []config.TransformationAction{{Type: "prepend_string", Value: "H"}}},
	})

	input := []types.LineItemRecord{
		{"LINE-CODE": "a1", "LINE-PRICE": "0.4", "LINE-DESC": ""},
		{"LINE-CODE": "b2", "LINE-PRICE": "", "LINE-DESC": "Pears"},
	}

	got, err := transformer.TransformLines(input)
	require.NoError(t, err)

	want := []types.LineItemRecord{
		{"LINE-CODE": "a1", "LINE-PRICE": "0.40", "LINE-DESC": "a1"},
		{"LINE-CODE": "b2", "LINE-PRICE": "", "LINE-DESC": "Pears"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TransformLines() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "", input[0]["LINE-DESC"])
}

func TestTransformLinesError(t *testing.T) {
	transformer := NewTransformer([]config.TransformationRule{
		{Field: "LINE-NO", Actions: []config.TransformationAction{{Type: "nope"}}},
	})

	_, err := transformer.TransformLines([]types.LineItemRecord{{"LINE-NO": "1"}})
	assert.ErrorContains(t, err, "line 1 field 'LINE-NO'")
	assert.True(t, NewTransformer(nil).Empty())
}
