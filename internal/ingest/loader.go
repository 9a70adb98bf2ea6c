// Package ingest loads company records from tabular files and writes them to
// the store: format loading, schema normalization and the upsert writer.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is a supported input file type, named by its extension.
type Format string

const (
	FormatCSV     Format = ".csv"
	FormatXML     Format = ".xml"
	FormatJSON    Format = ".json"
	FormatParquet Format = ".parquet"
)

// Row is one source record keyed by column name. Missing cells are nil.
type Row map[string]any

// Table is the untyped output of a format decoder. Columns are in source order.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t *Table) addColumn(name string) {
	for _, c := range t.Columns {
		if c == name {
			return
		}
	}
	t.Columns = append(t.Columns, name)
}

// Source is what a decoder reads from. *os.File and multipart.File both satisfy it.
type Source interface {
	io.Reader
	io.ReaderAt
}

// FormatFromPath selects the decoder from the file extension, case-insensitively.
func FormatFromPath(path string) (Format, error) {
	ext := Format(strings.ToLower(filepath.Ext(path)))
	switch ext {
	case FormatCSV, FormatXML, FormatJSON, FormatParquet:
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load decodes the file at path. An unknown extension fails before the file is opened.
func Load(path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return Decode(format, f, info.Size())
}

// Decode reads a whole table of the given format from src. size is only
// needed by formats that seek, such as parquet.
func Decode(format Format, src Source, size int64) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch format {
	case FormatCSV:
		t, err = decodeCSV(src)
	case FormatXML:
		t, err = decodeXML(src)
	case FormatJSON:
		t, err = decodeJSON(src)
	case FormatParquet:
		t, err = decodeParquet(src, size)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	return t, nil
}
