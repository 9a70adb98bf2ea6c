package ingest

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

const parquetBatchSize = 128

// decodeParquet reads every row group of a flat parquet file. Leaf columns
// are named by their dotted path, in schema order.
func decodeParquet(r io.ReaderAt, size int64) (*Table, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for _, path := range f.Schema().Columns() {
		t.Columns = append(t.Columns, strings.Join(path, "."))
	}

	buf := make([]parquet.Row, parquetBatchSize)
	for _, rg := range f.RowGroups() {
		if err := readRowGroup(rg, t, buf); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func readRowGroup(rg parquet.RowGroup, t *Table, buf []parquet.Row) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, pr := range buf[:n] {
			row := make(Row, len(t.Columns))
			for _, c := range t.Columns {
				row[c] = nil
			}
			for _, v := range pr {
				col := v.Column()
				if col < 0 || col >= len(t.Columns) {
					continue
				}
				row[t.Columns[col]] = parquetCell(v)
			}
			t.Rows = append(t.Rows, row)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read rows: %w", err)
		}
	}
}

func parquetCell(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		s := string(v.ByteArray())
		if s == "" {
			return nil
		}
		return s
	default:
		return v.String()
	}
}
