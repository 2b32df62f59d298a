package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table is one parsed sheet: ordered headers plus rows keyed by header.
// All cells are read as text; blank cells come back as "".
type Table struct {
	Headers []string
	Rows    []map[string]string
}

func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Rename changes a column header, keeping its position and moving cell values.
func (t *Table) Rename(old, new string) {
	if old == new {
		return
	}
	for i, h := range t.Headers {
		if h == old {
			t.Headers[i] = new
			break
		}
	}
	for _, row := range t.Rows {
		if v, ok := row[old]; ok {
			row[new] = v
			delete(row, old)
		}
	}
}

// ReadAny picks a parser by extension and returns the first sheet as a Table.
// headerRow is 1-based.
func ReadAny(r io.Reader, filename string, headerRow int) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// pickHeader takes the header row and substitutes Column N for blanks.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToTable converts AoA into a Table, skipping fully empty rows.
func rowsToTable(rows [][]string, headers []string, headerRow int) *Table {
	t := &Table{Headers: headers}
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := map[string]string{}
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			m[headers[c]] = v
		}
		empty := true
		for _, v := range m {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if !empty {
			t.Rows = append(t.Rows, m)
		}
	}
	return t
}
