// Package xltab reads tabular data out of xlsx workbooks without a
// spreadsheet dependency: it walks the ZIP container by hand, inflates the two
// parts it needs, and pull-parses the worksheet XML into a header row plus
// data rows of strings.
//
// Parsing is best effort by contract. A malformed container, a missing part,
// an unsupported compression method, or broken XML all degrade to an empty or
// partial table; Parse never fails.
package xltab

import "strings"

// Table is the parsed result: the first worksheet row as Headers and every
// later row in Rows. Row widths are independent; callers must not assume the
// table is rectangular.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Parse reads a complete in-memory xlsx file into a Table.
//
// Only the first worksheet is read. A workbook without shared strings
// (all-numeric data) is valid and parses against an empty string table. Input
// that yields no usable worksheet (random bytes, a truncated archive, an entry
// the decompressor cannot open) produces the zero Table, the same result
// callers get for genuinely empty input.
func Parse(buf []byte) Table {
	entries := scanArchive(buf)

	var shared []string
	if e, ok := findEntry(entries, "sharedStrings"); ok {
		if data, ok := e.bytes(); ok {
			shared = parseSharedStrings(data)
		}
	}

	sheet, ok := findEntry(entries, "worksheets/sheet1")
	if !ok {
		sheet, ok = findEntry(entries, "worksheets/sheet")
	}
	if !ok {
		return Table{}
	}
	data, ok := sheet.bytes()
	if !ok {
		return Table{}
	}

	rows := parseWorksheet(data, shared)
	if len(rows) == 0 {
		return Table{}
	}
	return Table{Headers: rows[0], Rows: rows[1:]}
}

// findEntry returns the first archive entry whose path contains needle.
func findEntry(entries []zipEntry, needle string) (zipEntry, bool) {
	for _, e := range entries {
		if strings.Contains(e.path, needle) {
			return e, true
		}
	}
	return zipEntry{}, false
}
