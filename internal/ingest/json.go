package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// decodeJSON accepts either an array of record objects or a column-oriented
// object ({"col": {"0": v, "1": v}}), the default layout pandas writes.
// Keys are read token by token so column order follows the document.
func decodeJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, err
	}

	switch tok {
	case json.Delim('['):
		return decodeJSONRecords(dec)
	case json.Delim('{'):
		return decodeJSONColumns(dec)
	default:
		return nil, fmt.Errorf("expected an array of records or an object of columns, got %v", tok)
	}
}

func decodeJSONRecords(dec *json.Decoder) (*Table, error) {
	t := &Table{}
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(t.Rows)+1, err)
		}
		row := make(Row)
		for dec.More() {
			key, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			val, err := readScalar(dec)
			if err != nil {
				return nil, fmt.Errorf("record %d, key %q: %w", len(t.Rows)+1, key, err)
			}
			t.addColumn(key)
			row[key] = val
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}

	for _, row := range t.Rows {
		for _, c := range t.Columns {
			if _, ok := row[c]; !ok {
				row[c] = nil
			}
		}
	}
	return t, nil
}

func decodeJSONColumns(dec *json.Decoder) (*Table, error) {
	t := &Table{}
	rows := make(map[string]Row)
	var index []string

	for dec.More() {
		col, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		t.addColumn(col)
		for dec.More() {
			idx, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			val, err := readScalar(dec)
			if err != nil {
				return nil, fmt.Errorf("column %q, index %q: %w", col, idx, err)
			}
			row, ok := rows[idx]
			if !ok {
				row = make(Row)
				rows[idx] = row
				index = append(index, idx)
			}
			row[col] = val
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	sortIndex(index)
	for _, idx := range index {
		row := rows[idx]
		for _, c := range t.Columns {
			if _, ok := row[c]; !ok {
				row[c] = nil
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// sortIndex orders row labels numerically when they are all integers, and
// otherwise keeps first-seen order.
func sortIndex(index []string) {
	nums := make(map[string]int64, len(index))
	for _, idx := range index {
		n, err := strconv.ParseInt(idx, 10, 64)
		if err != nil {
			return
		}
		nums[idx] = n
	}
	sort.SliceStable(index, func(i, j int) bool { return nums[index[i]] < nums[index[j]] })
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// readScalar decodes one value. Numbers keep their literal text; nested
// objects and arrays are not cell values.
func readScalar(dec *json.Decoder) (any, error) {
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		return val.String(), nil
	case string:
		if val == "" {
			return nil, nil
		}
		return val, nil
	case bool:
		return val, nil
	default:
		return nil, fmt.Errorf("nested %T is not a cell value", v)
	}
}
