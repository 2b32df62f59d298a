package model

import (
	"fmt"
	"strings"

	"github.com/duksosleepy/restate-server/internal/fileio"
)

// Canonical data-file column labels. A data sheet that names them differently
// gets its columns renamed during resolution.
const (
	CodeColumn = "Mã hàng"
	NameColumn = "Tên hàng"
)

// Columns holds the resolved header names of the four logical mapping columns.
type Columns struct {
	OldCode string
	OldName string
	NewCode string
	NewName string
}

// Row is one row of the mapping sheet after column resolution.
type Row struct {
	OldCode string
	OldName string
	NewCode string
	NewName string
}

// Table is the ordered mapping table plus its derived lookups. Duplicate old
// codes collapse to the last occurrence (single forward pass); the reverse
// index covers rows with a non-empty new code only, also last-write-wins.
type Table struct {
	Rows        []Row
	CodeMapping map[string]string // old code -> new code
	NameMapping map[string]string // old code -> new name
	ReverseCode map[string]string // new code -> old code
}

// BuildTable reads the mapping sheet into a Table using the resolved columns.
// Row order is the sheet's row order.
func BuildTable(t *fileio.Table, cols *Columns) *Table {
	mt := &Table{
		CodeMapping: make(map[string]string, len(t.Rows)),
		NameMapping: make(map[string]string, len(t.Rows)),
		ReverseCode: make(map[string]string, len(t.Rows)),
	}
	for _, rec := range t.Rows {
		row := Row{
			OldCode: rec[cols.OldCode],
			OldName: rec[cols.OldName],
			NewCode: rec[cols.NewCode],
			NewName: rec[cols.NewName],
		}
		mt.Rows = append(mt.Rows, row)
		mt.CodeMapping[row.OldCode] = row.NewCode
		mt.NameMapping[row.OldCode] = row.NewName
		if row.NewCode != "" {
			mt.ReverseCode[row.NewCode] = row.OldCode
		}
	}
	return mt
}

// Method is the terminal state of one data record after reconciliation.
type Method int

const (
	MethodNone Method = iota
	MethodExact
	MethodReverse
	MethodFuzzy
)

func (m Method) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodReverse:
		return "reverse"
	case MethodFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Resolution is the immutable per-record outcome computed before any cell is
// written. OldCode is the mapping-table key the record resolved to.
type Resolution struct {
	Method     Method
	OldCode    string
	Similarity float64
}

// Stats is the aggregate result of one reconciliation run.
type Stats struct {
	MatchedCount        int `json:"matched_count"`
	TotalCount          int `json:"total_count"`
	ExactMatchedCount   int `json:"exact_matched_count"`
	ReverseMatchedCount int `json:"reverse_matched_count"`
	FuzzyMatchedCount   int `json:"fuzzy_matched_count"`
}

// MissingColumnsError: the mapping sheet could not resolve all four logical
// columns and has no usable positional fallback.
type MissingColumnsError struct {
	Missing []string
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("mapping file is missing required columns: %s. Available columns: %s",
		strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

// MissingProductCodeError: the data sheet has no resolvable product-code column.
type MissingProductCodeError struct {
	Headers []string
}

func (e *MissingProductCodeError) Error() string {
	return fmt.Sprintf("data file must contain a %q column or similar. Available columns: %s",
		CodeColumn, strings.Join(e.Headers, ", "))
}
