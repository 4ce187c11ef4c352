package xltab

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// parseSharedStrings reads a sharedStrings.xml payload into its ordered
// string list. Each <si> contributes exactly one string: the concatenation of
// its <t> runs in document order, which reassembles text that formatting
// split across <r> runs. Text under <rPh> is phonetic metadata, not cell
// text, so an <si> holding nothing else still contributes an empty string and
// keeps later indices aligned.
//
// The decoder handles entity and charset decoding. A tokenizer error ends the
// scan; items completed before the error are kept.
func parseSharedStrings(data []byte) []string {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		items    []string
		cur      strings.Builder
		inItem   bool
		inText   bool
		phonetic int
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inItem = true
				cur.Reset()
			case "rPh":
				phonetic++
			case "t":
				inText = inItem && phonetic == 0
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				if inItem {
					items = append(items, cur.String())
				}
				inItem = false
			case "rPh":
				if phonetic > 0 {
					phonetic--
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return items
}
