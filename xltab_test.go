package xltab

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sharedStringsXML = `<sst>
  <si><t>Name</t></si>
  <si><t>Qty</t></si>
  <si><t>Widget</t></si>
</sst>`

const sheetXML = `<worksheet><sheetData>
  <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
  <row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>10</v></c></row>
</sheetData></worksheet>`

func TestParse_StoredArchive(t *testing.T) {
	buf := buildArchive(
		stored("xl/sharedStrings.xml", []byte(sharedStringsXML)),
		stored("xl/worksheets/sheet1.xml", []byte(sheetXML)),
	)

	got := Parse(buf)
	assert.Equal(t, []string{"Name", "Qty"}, got.Headers)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"Widget", "10"}, got.Rows[0])
}

func TestParse_DeflatedArchive(t *testing.T) {
	buf := buildArchive(
		rawEntry{name: "xl/sharedStrings.xml", method: methodDeflated,
			payload: deflateBytes(t, []byte(sharedStringsXML)), usize: uint32(len(sharedStringsXML))},
		rawEntry{name: "xl/worksheets/sheet1.xml", method: methodDeflated,
			payload: deflateBytes(t, []byte(sheetXML)), usize: uint32(len(sheetXML))},
	)

	got := Parse(buf)
	assert.Equal(t, []string{"Name", "Qty"}, got.Headers)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"Widget", "10"}, got.Rows[0])
}

func TestParse_NoSharedStrings(t *testing.T) {
	sheet := `<worksheet><sheetData>
  <row r="1"><c r="A1"><v>1</v></c><c r="B1"><v>2</v></c></row>
  <row r="2"><c r="A2"><v>3</v></c><c r="B2"><v>4</v></c></row>
</sheetData></worksheet>`
	buf := buildArchive(stored("xl/worksheets/sheet1.xml", []byte(sheet)))

	got := Parse(buf)
	assert.Equal(t, []string{"1", "2"}, got.Headers)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"3", "4"}, got.Rows[0])
}

func TestParse_RandomBytes(t *testing.T) {
	got := Parse([]byte("definitely not a zip archive, not even close"))
	assert.Empty(t, got.Headers)
	assert.Empty(t, got.Rows)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Equal(t, Table{}, Parse(nil))
}

func TestParse_UnsupportedWorksheetCompression(t *testing.T) {
	buf := buildArchive(
		stored("xl/sharedStrings.xml", []byte(sharedStringsXML)),
		rawEntry{name: "xl/worksheets/sheet1.xml", method: 99,
			payload: []byte("opaque"), usize: 6},
	)

	got := Parse(buf)
	assert.Empty(t, got.Headers)
	assert.Empty(t, got.Rows)
}

func TestParse_CorruptWorksheetStream(t *testing.T) {
	buf := buildArchive(
		rawEntry{name: "xl/worksheets/sheet1.xml", method: methodDeflated,
			payload: []byte{0xFF, 0xFF, 0xFF, 0xFF}, usize: 100},
	)

	assert.Equal(t, Table{}, Parse(buf))
}

func TestParse_WorksheetFallbackName(t *testing.T) {
	sheet := `<worksheet><sheetData><row><c r="A1"><v>solo</v></c></row></sheetData></worksheet>`
	buf := buildArchive(stored("xl/worksheets/sheet3.xml", []byte(sheet)))

	got := Parse(buf)
	assert.Equal(t, []string{"solo"}, got.Headers)
	assert.Empty(t, got.Rows)
}

func TestParse_HeaderOnlyWorksheet(t *testing.T) {
	sheet := `<worksheet><sheetData><row><c r="A1"><v>only</v></c></row></sheetData></worksheet>`
	buf := buildArchive(stored("xl/worksheets/sheet1.xml", []byte(sheet)))

	got := Parse(buf)
	assert.Equal(t, []string{"only"}, got.Headers)
	assert.Empty(t, got.Rows)
}

func TestParse_EmptyWorksheet(t *testing.T) {
	buf := buildArchive(stored("xl/worksheets/sheet1.xml", []byte(`<worksheet><sheetData/></worksheet>`)))
	assert.Equal(t, Table{}, Parse(buf))
}

func TestParse_ExcelizeWorkbook(t *testing.T) {
	// excelize writes through archive/zip, so every part is a streamed
	// deflate entry; this covers the central-directory size path end to
	// end on a real workbook.
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Widget", 10}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Last"}))

	var out bytes.Buffer
	require.NoError(t, f.Write(&out))

	got := Parse(out.Bytes())
	assert.Equal(t, []string{"Name", "Qty"}, got.Headers)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, []string{"Widget", "10"}, got.Rows[0])
	assert.Equal(t, []string{"Last"}, got.Rows[1])
}

func TestParse_SparseExcelizeWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "header"))
	require.NoError(t, f.SetCellValue("Sheet1", "C3", "x"))

	var out bytes.Buffer
	require.NoError(t, f.Write(&out))

	got := Parse(out.Bytes())
	assert.Equal(t, []string{"", "", "header"}, got.Headers)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"", "", "x"}, got.Rows[0])
}
