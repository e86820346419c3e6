package csvparser

import (
	"testing"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBuildHeaderRecord(t *testing.T) {
	tests := []struct {
		name string
		rows []types.Row
		want types.HeaderRecord
	}{
		{
			name: "names and values",
			rows: rowsOf(
				[]string{"CUST-ORDER", " CUST-ADDR-CODE "},
				[]string{" CUST-001 ", "CA0"},
			),
			want: types.HeaderRecord{"CUST-ORDER": "CUST-001", "CUST-ADDR-CODE": "CA0"},
		},
		{
			name: "blank name shifts value alignment",
			rows: rowsOf(
				[]string{"A", "", "B"},
				[]string{"v1", "v2", "v3"},
			),
			want: types.HeaderRecord{"A": "v1", "B": "v2"},
		},
		{
			name: "empty values are omitted",
			rows: rowsOf(
				[]string{"A", "B", "C"},
				[]string{"", "  ", "c"},
			),
			want: types.HeaderRecord{"C": "c"},
		},
		{
			name: "short values row",
			rows: rowsOf(
				[]string{"A", "B", "C"},
				[]string{"a"},
			),
			want: types.HeaderRecord{"A": "a"},
		},
		{
			name: "extra rows ignored",
			rows: rowsOf(
				[]string{"A"},
				[]string{"a"},
				[]string{"ignored"},
			),
			want: types.HeaderRecord{"A": "a"},
		},
		{
			name: "names only",
			rows: rowsOf([]string{"A", "B"}),
			want: types.HeaderRecord{},
		},
		{
			name: "no rows",
			rows: nil,
			want: types.HeaderRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildHeaderRecord(tt.rows)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildHeaderRecord() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildHeaderRecordValuesAreNeverEmpty(t *testing.T) {
	record := BuildHeaderRecord(rowsOf(
		[]string{"A", "B", "C", "D"},
		[]string{"x", "", " ", "y"},
	))

	for field, value := range record {
		assert.NotEmpty(t, value, "field %s", field)
	}
}

func TestBuildLineItemRecords(t *testing.T) {
	tests := []struct {
		name string
		rows []types.Row
		want []types.LineItemRecord
	}{
		{
			name: "empty block",
			rows: nil,
			want: []types.LineItemRecord{},
		},
		{
			name: "names only",
			rows: rowsOf([]string{"LINE-NO", "LINE-CODE"}),
			want: []types.LineItemRecord{},
		},
		{
			name: "rows in order with empty values kept",
			rows: rowsOf(
				[]string{"LINE-NO", "LINE-CODE", "LINE-DESC"},
				[]string{"1", " 32815 ", ""},
				[]string{"2", "32816", "Second"},
			),
			want: []types.LineItemRecord{
				{"LINE-NO": "1", "LINE-CODE": "32815", "LINE-DESC": ""},
				{"LINE-NO": "2", "LINE-CODE": "32816", "LINE-DESC": "Second"},
			},
		},
		{
			name: "blank rows skipped",
			rows: rowsOf(
				[]string{"LINE-NO"},
				[]string{" ", ""},
				[]string{"1"},
				[]string{},
				[]string{"2"},
			),
			want: []types.LineItemRecord{
				{"LINE-NO": "1"},
				{"LINE-NO": "2"},
			},
		},
		{
			name: "blank name shifts columns",
			rows: rowsOf(
				[]string{"LINE-NO", "", "LINE-CODE"},
				[]string{"1", "32815", "ignored"},
			),
			want: []types.LineItemRecord{
				{"LINE-NO": "1", "LINE-CODE": "32815"},
			},
		},
		{
			name: "short row leaves fields absent",
			rows: rowsOf(
				[]string{"LINE-NO", "LINE-CODE", "LINE-DESC"},
				[]string{"1"},
			),
			want: []types.LineItemRecord{
				{"LINE-NO": "1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildLineItemRecords(tt.rows)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildLineItemRecords() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
