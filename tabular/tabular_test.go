package tabular

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		hint   Delimiter
		header []string
		rows   [][]string
	}{
		{
			name:   "simple csv",
			input:  "first,last\nAda,Lovelace\n",
			header: []string{"first", "last"},
			rows:   [][]string{{"Ada", "Lovelace"}},
		},
		{
			name:   "crlf and blank lines",
			input:  "a,b\r\n\r\n1,2\r3,4\n\n",
			header: []string{"a", "b"},
			rows:   [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:   "quoted fields",
			input:  "name,quote\n\"Lovelace, Ada\",\" said \"\"hi\"\" \"\n",
			header: []string{"name", "quote"},
			rows:   [][]string{{"Lovelace, Ada", `said "hi"`}},
		},
		{
			name:   "detected tab",
			input:  "a\tb\tc,d\n1\t2\t3,4\n",
			header: []string{"a", "b", "c,d"},
			rows:   [][]string{{"1", "2", "3,4"}},
		},
		{
			name:   "explicit tab hint",
			input:  "a,b\tc\n",
			hint:   DelimiterTab,
			header: []string{"a,b", "c"},
		},
		{
			name:   "trims fields and keeps ragged rows",
			input:  " a , b \n1\n1,2,3\n",
			header: []string{"a", "b"},
			rows:   [][]string{{"1"}, {"1", "2", "3"}},
		},
		{
			name:   "whitespace line is kept",
			input:  "a\n \n",
			header: []string{"a"},
			rows:   [][]string{{""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := Parse(tt.input, tt.hint)
			assert.Equal(t, tt.header, grid.Header)
			assert.Equal(t, tt.rows, grid.Rows)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "\n\n", "\r\n"} {
		grid := Parse(input, DelimiterNone)
		assert.Nil(t, grid.Header)
		assert.Empty(t, grid.Rows)
		assert.True(t, grid.Empty())
	}
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, DelimiterComma, DetectDelimiter("a,b,c"))
	assert.Equal(t, DelimiterTab, DetectDelimiter("a\tb\tc,d"))
	assert.Equal(t, DelimiterComma, DetectDelimiter("a\tb,c"))
	assert.Equal(t, DelimiterComma, DetectDelimiter("plain"))
}

func TestParseDelimiter(t *testing.T) {
	d, err := ParseDelimiter("TAB")
	require.NoError(t, err)
	assert.Equal(t, DelimiterTab, d)

	d, err = ParseDelimiter("")
	require.NoError(t, err)
	assert.Equal(t, DelimiterNone, d)

	_, err = ParseDelimiter("pipe")
	assert.Error(t, err)
}

func TestGridWidth(t *testing.T) {
	grid := Grid{Header: []string{"a"}, Rows: [][]string{{"1", "2"}, {"1", "2", "3"}}}
	assert.Equal(t, 3, grid.Width())
	assert.Equal(t, 0, Grid{}.Width())
}

func TestReadDelimited(t *testing.T) {
	grid, err := Read(context.Background(), "people.csv", strings.NewReader("\xef\xbb\xbfname\nAda\n"), DelimiterNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, grid.Header)
	assert.Equal(t, [][]string{{"Ada"}}, grid.Rows)
}

func TestReadRejectsInvalidUTF8(t *testing.T) {
	_, err := Read(context.Background(), "bad.csv", bytes.NewReader([]byte{0xff, 0xfe, ',', 'a'}), DelimiterNone)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestReadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Read(ctx, "a.csv", strings.NewReader("a"), DelimiterNone)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsSpreadsheet(t *testing.T) {
	assert.True(t, IsSpreadsheet("Report.XLSX"))
	assert.True(t, IsSpreadsheet("book.xlsm"))
	assert.False(t, IsSpreadsheet("data.csv"))
	assert.False(t, IsSpreadsheet("noext"))
}

func TestReadSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", " age "))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Ada"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 36))
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "Alan"))

	_, err := f.NewSheet("Ignored")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Ignored", "A1", "other"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	grid, err := Read(context.Background(), "people.xlsx", buf, DelimiterNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "age"}, grid.Header)
	assert.Equal(t, [][]string{{"Ada", "36"}, {"Alan"}}, grid.Rows)
}

func TestReadSpreadsheetEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	grid, err := ReadSpreadsheet(buf)
	require.NoError(t, err)
	assert.True(t, grid.Empty())
}

func TestReadSpreadsheetInvalid(t *testing.T) {
	_, err := ReadSpreadsheet(strings.NewReader("not a zip"))
	assert.Error(t, err)
}
