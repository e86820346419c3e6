package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
)

const sampleOrder = `###ORD-HEADER
CUST-ORDER,CUST-ADDR-CODE,CUST-ADDR-NAME
CUST-001,CA0,"Waitrose & Partners, Head Office"
###ORD-HEADER-END
###ORD-LINES
LINE-NO,LINE-CODE,LINE-DESC,LINE-QUANT
1,32815,Product One,500
2,32816,Product Two,250
###ORD-LINES-END
`

func TestRead(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleOrder))
	require.NoError(t, err)
	require.Len(t, rows, 9)

	assert.Equal(t, types.Row{"###ORD-HEADER"}, rows[0])
	assert.Equal(t, "Waitrose & Partners, Head Office", rows[2][2])
	assert.Len(t, rows[5], 4)
}

func TestReadStripsByteOrderMark(t *testing.T) {
	rows, err := Read(strings.NewReader("\ufeff###ORD-HEADER\nA,B\n"))
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	assert.Equal(t, MarkerHeaderStart, rows[0][0])
	assert.Equal(t, MarkerHeaderStart, MarkerOf(rows[0]))
}

func TestReadKeepsSeparatorOnlyRows(t *testing.T) {
	rows, err := Read(strings.NewReader("A,B\n,\n1,2\n"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, types.Row{"", ""}, rows[1])
}

func TestReadKeepsBlankLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.Row
	}{
		{
			name:  "single blank line",
			input: "A\n\nB\n",
			want:  []types.Row{{"A"}, {}, {"B"}},
		},
		{
			name:  "consecutive blank lines with CRLF",
			input: "A\r\n\r\n\r\nB\r\n",
			want:  []types.Row{{"A"}, {}, {}, {"B"}},
		},
		{
			name:  "leading blank line",
			input: "\nA\n",
			want:  []types.Row{{}, {"A"}},
		},
		{
			name:  "quoted cell spanning lines",
			input: "A,\"x\ny\"\n\nB\n",
			want:  []types.Row{{"A", "x\ny"}, {}, {"B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Read(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestReadBlankLineInHeaderBlock(t *testing.T) {
	rows, err := Read(strings.NewReader("###ORD-HEADER\n\nCUST-ORDER\n123\n###ORD-HEADER-END\n"))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	// The blank line is the names row, so nothing pairs up.
	sections := Extract(rows)
	require.Len(t, sections.Header, 3)
	assert.Empty(t, BuildHeaderRecord(sections.Header))
}

func TestReadBlankLineInLinesBlock(t *testing.T) {
	rows, err := Read(strings.NewReader("###ORD-LINES\nLINE-NO\n1\n\n2\n###ORD-LINES-END\n"))
	require.NoError(t, err)

	sections := Extract(rows)
	require.Len(t, sections.Lines, 4)

	records := BuildLineItemRecords(sections.Lines)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0]["LINE-NO"])
	assert.Equal(t, "2", records[1]["LINE-NO"])
}

func TestReadRejectsInvalidUTF8(t *testing.T) {
	inputs := map[string]string{
		"plain":     "###ORD-HEADER\nCUST-ORDER\n\xff\xfe12\n###ORD-HEADER-END\n",
		"after BOM": "\ufeff###ORD-HEADER\nCUST-ORDER\n\xff12\n###ORD-HEADER-END\n",
		"last line": "A,B\n1,\xc3",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			rows, err := Read(strings.NewReader(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, encoding.ErrInvalidUTF8)
			assert.Nil(t, rows)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleOrder), 0644))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 9)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
