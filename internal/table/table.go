// Package table reads and writes the header-first CSV tables that every
// pipeline stage exchanges. Rows are addressed by column name so stages can
// add columns without caring about position.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoHeader is returned when a table has no header row.
var ErrNoHeader = errors.New("table: header row is required")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row maps column names to cell values.
type Row map[string]string

// Get returns the first non-blank value among keys, or "".
func (r Row) Get(keys ...string) string {
	for _, key := range keys {
		if value, ok := r[key]; ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	clone := make(Row, len(r))
	for key, value := range r {
		clone[key] = value
	}
	return clone
}

// Table is an ordered header plus rows.
type Table struct {
	Header []string
	Rows   []Row
}

// New returns an empty table with the given header.
func New(header ...string) *Table {
	return &Table{Header: append([]string{}, header...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is part of the header.
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Header {
		if col == name {
			return true
		}
	}
	return false
}

// EnsureColumns appends any missing columns to the header, in order.
func (t *Table) EnsureColumns(names ...string) {
	for _, name := range names {
		if !t.HasColumn(name) {
			t.Header = append(t.Header, name)
		}
	}
}

// Append adds a row. Columns the header does not know are ignored on write.
func (t *Table) Append(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Read decodes a CSV table. Short rows are padded with empty cells; cells
// beyond the header are dropped.
func Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("table: read: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("table: decode header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t := New(header...)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: decode row %d: %w", t.Len()+1, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		t.Append(row)
	}
	return t, nil
}

// ReadFile decodes the CSV table stored at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Write encodes the table with CRLF line endings, header first.
func (t *Table) Write(w io.Writer) error {
	if len(t.Header) == 0 {
		return ErrNoHeader
	}
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("table: encode header: %w", err)
	}
	record := make([]string, len(t.Header))
	for idx, row := range t.Rows {
		for i, col := range t.Header {
			record[i] = row[col]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("table: encode row %d: %w", idx+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes the table to path through a temp file and rename so a
// failed write never leaves a truncated table behind.
func (t *Table) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := t.Write(&buf); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// WriteFileAtomic replaces path with data via a sibling temp file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
