package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if lead, _ := br.Peek(len(utf8BOM)); bytes.Equal(lead, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = dedupeHeader(header)

	t := &Table{Columns: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(record), len(header))
		}

		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(record) || record[i] == "" {
				row[col] = nil
				continue
			}
			row[col] = record[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// dedupeHeader suffixes repeated column names with .1, .2, ... so no column
// silently shadows another.
func dedupeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			out[i] = h + "." + strconv.Itoa(n+1)
			continue
		}
		seen[h] = 0
		out[i] = h
	}
	return out
}
