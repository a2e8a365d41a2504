package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const bom = "\ufeff"

// Table is a parsed spreadsheet. Rows are padded or truncated to the header
// width; without a header the width is that of the widest row.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadOptions controls table parsing.
type ReadOptions struct {
	// Delimiter is the field separator. Zero detects tab or comma from the
	// first line.
	Delimiter rune
	// NoHeader treats the first line as data. Columns are then addressed by
	// index ("0", "1", ...).
	NoHeader bool
}

// DelimiterFor returns the delimiter implied by a file name, or zero.
func DelimiterFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab", ".txt":
		return '\t'
	case ".csv":
		return ','
	}
	return 0
}

// ReadTable parses CSV or TSV data. A leading byte order mark is dropped,
// blank lines are skipped and cells are trimmed. Data that is not valid UTF-8
// is read as Windows-1252, the usual encoding of spreadsheet exports.
func ReadTable(r io.Reader, opts ReadOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(bom))
	if !utf8.Valid(data) {
		if data, err = charmap.Windows1252.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("decode table: %w", err)
		}
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	// Order exports put bare quotes inside fields.
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	t := &Table{}
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if !opts.NoHeader && t.Headers == nil {
			t.Headers = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}

	width := len(t.Headers)
	if opts.NoHeader {
		for _, r := range t.Rows {
			width = max(width, len(r))
		}
	}
	for i, r := range t.Rows {
		t.Rows[i] = fit(r, width)
	}
	return t, nil
}

// Column returns the index of the named column, matching case-insensitively.
// Without headers, name must be a column index.
func (t *Table) Column(name string) (int, bool) {
	if t.Headers == nil {
		var i int
		if _, err := fmt.Sscanf(name, "%d", &i); err != nil || i < 0 {
			return 0, false
		}
		if len(t.Rows) > 0 && i >= len(t.Rows[0]) {
			return 0, false
		}
		return i, true
	}
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i, true
		}
	}
	return 0, false
}

// Lookup returns the first of names present in the table, in the order given.
func (t *Table) Lookup(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := t.Column(n); ok {
			return i, true
		}
	}
	return 0, false
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return '\t'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func fit(r []string, n int) []string {
	if len(r) == n {
		return r
	}
	if len(r) > n {
		return r[:n]
	}
	return append(r, make([]string, n-len(r))...)
}
