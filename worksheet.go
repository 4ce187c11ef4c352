package xltab

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// Cell type attribute values that need decoding beyond the raw <v> text.
// Everything else (numbers, booleans, formula strings, errors) is passed
// through as written.
const (
	typeShared = "s"
	typeInline = "inlineStr"
)

// parseWorksheet reads a worksheet payload into dense rows of strings.
//
// Worksheet XML is sparse: only cells with content appear, each placed by the
// column letters of its r attribute. Gaps below a row's maximum column are
// materialized as "", so output rows are never holey. A cell without an r
// attribute lands in the next free column. Cells with no value at all are
// skipped, and rows that end up with zero cells are dropped.
//
// Shared-string cells (t="s") resolve their <v> index against shared; an
// index outside the table reads as "". Inline-string cells (t="inlineStr")
// concatenate their <is><t> runs. A tokenizer error ends the scan; rows
// completed before the error are kept.
func parseWorksheet(data []byte, shared []string) [][]string {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		rows [][]string
		row  []string

		inRow    bool
		inCell   bool
		inValue  bool
		cellCol  int
		cellType string
		hasValue bool
		val      strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				inRow = true
				row = nil
			case "c":
				if !inRow {
					continue
				}
				inCell = true
				cellType = ""
				hasValue = false
				val.Reset()
				cellCol = len(row)
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "r":
						if col, ok := columnIndex(a.Value); ok {
							cellCol = col
						}
					case "t":
						cellType = a.Value
					}
				}
			case "v":
				if inCell {
					inValue = true
					hasValue = true
				}
			case "t":
				if inCell && cellType == typeInline {
					inValue = true
					hasValue = true
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "row":
				inRow = false
				if len(row) > 0 {
					rows = append(rows, row)
				}
			case "c":
				if inCell && hasValue {
					row = setCell(row, cellCol, cellValue(cellType, val.String(), shared))
				}
				inCell = false
			case "v", "t":
				inValue = false
			}
		case xml.CharData:
			if inValue {
				val.Write(t)
			}
		}
	}
	return rows
}

// cellValue maps a raw cell payload to its string form.
func cellValue(cellType, raw string, shared []string) string {
	if cellType == typeShared {
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	}
	return raw
}

// setCell grows row with empty columns as needed and writes v at col.
func setCell(row []string, col int, v string) []string {
	for len(row) <= col {
		row = append(row, "")
	}
	row[col] = v
	return row
}
