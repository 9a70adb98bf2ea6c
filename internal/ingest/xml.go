package ingest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// decodeXML treats each child of the document root as a row. A row's
// attributes come first, then its child elements, each child's text being the
// cell value. Deeper nesting is ignored. Non-UTF-8 documents are decoded
// according to their encoding declaration.
func decodeXML(r io.Reader) (*Table, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = charset.NewReaderLabel

	t := &Table{}
	var (
		depth int
		row   Row
		field string
		text  strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 2:
				row = make(Row)
				for _, a := range el.Attr {
					name := a.Name.Local
					t.addColumn(name)
					row[name] = cellText(a.Value)
				}
			case 3:
				field = el.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth == 3 {
				text.Write(el)
			}
		case xml.EndElement:
			switch depth {
			case 3:
				t.addColumn(field)
				if _, dup := row[field]; !dup {
					row[field] = cellText(text.String())
				}
			case 2:
				t.Rows = append(t.Rows, row)
				row = nil
			}
			depth--
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unexpected end of document")
	}

	// Rows missing a column seen elsewhere get an explicit nil cell.
	for _, row := range t.Rows {
		for _, c := range t.Columns {
			if _, ok := row[c]; !ok {
				row[c] = nil
			}
		}
	}
	return t, nil
}

func cellText(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
