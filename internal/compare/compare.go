package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/duksosleepy/restate-server/internal/fileio"
)

// keyCandidates are tried in order when no key column is given explicitly.
var keyCandidates = []string{"Số điện thoại", "Phone", "ID", "Code", "Mã"}

const (
	sampleLimit       = 5
	valueDiffKeyLimit = 100
)

type Options struct {
	Key string // comparison key column; auto-detected when empty
}

type ValueDiff struct {
	Key    string `json:"key"`
	Column string `json:"column"`
	A      string `json:"a"`
	B      string `json:"b"`
}

type FrequencyDiff struct {
	Key    string `json:"key"`
	CountA int    `json:"count_a"`
	CountB int    `json:"count_b"`
	Delta  int    `json:"delta"`
}

type Report struct {
	RowsA         int `json:"rows_a"`
	RowsB         int `json:"rows_b"`
	RowDifference int `json:"row_difference"`

	CommonColumns []string `json:"common_columns"`
	OnlyAColumns  []string `json:"only_a_columns"`
	OnlyBColumns  []string `json:"only_b_columns"`

	Key            string   `json:"key"`
	OnlyInACount   int      `json:"only_in_a_count"`
	OnlyInBCount   int      `json:"only_in_b_count"`
	CommonKeyCount int      `json:"common_key_count"`
	OnlyInASample  []string `json:"only_in_a_sample"`
	OnlyInBSample  []string `json:"only_in_b_sample"`

	ValueDiffs     []ValueDiff     `json:"value_diffs"`
	FrequencyDiffs []FrequencyDiff `json:"frequency_diffs"`

	EmptyRowsA int `json:"empty_rows_a"`
	EmptyRowsB int `json:"empty_rows_b"`
	EmptyKeyA  int `json:"empty_key_a"`
	EmptyKeyB  int `json:"empty_key_b"`
}

// Run compares two tables: column overlap, key-based record diff, value
// differences on common keys and per-key frequency histograms.
func Run(a, b *fileio.Table, opt Options) *Report {
	rep := &Report{
		RowsA:         len(a.Rows),
		RowsB:         len(b.Rows),
		RowDifference: abs(len(a.Rows) - len(b.Rows)),
	}

	setB := make(map[string]bool, len(b.Headers))
	for _, h := range b.Headers {
		setB[h] = true
	}
	setA := make(map[string]bool, len(a.Headers))
	for _, h := range a.Headers {
		setA[h] = true
	}
	for _, h := range a.Headers {
		if setB[h] {
			rep.CommonColumns = append(rep.CommonColumns, h)
		} else {
			rep.OnlyAColumns = append(rep.OnlyAColumns, h)
		}
	}
	for _, h := range b.Headers {
		if !setA[h] {
			rep.OnlyBColumns = append(rep.OnlyBColumns, h)
		}
	}

	rep.Key = detectKey(rep.CommonColumns, opt.Key)
	rep.EmptyRowsA = countEmptyRows(a)
	rep.EmptyRowsB = countEmptyRows(b)
	if rep.Key == "" {
		return rep
	}

	keysA := keySet(a, rep.Key)
	keysB := keySet(b, rep.Key)
	rep.EmptyKeyA = countEmptyKey(a, rep.Key)
	rep.EmptyKeyB = countEmptyKey(b, rep.Key)

	var onlyA, onlyB []string
	for k := range keysA {
		if _, ok := keysB[k]; !ok {
			onlyA = append(onlyA, k)
		} else {
			rep.CommonKeyCount++
		}
	}
	for k := range keysB {
		if _, ok := keysA[k]; !ok {
			onlyB = append(onlyB, k)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	rep.OnlyInACount = len(onlyA)
	rep.OnlyInBCount = len(onlyB)
	rep.OnlyInASample = sample(onlyA)
	rep.OnlyInBSample = sample(onlyB)

	rep.ValueDiffs = valueDiffs(a, b, rep.Key, rep.CommonColumns, keysA, keysB)
	rep.FrequencyDiffs = frequencyDiffs(keysA, keysB)

	return rep
}

func detectKey(common []string, explicit string) string {
	if explicit != "" {
		for _, c := range common {
			if c == explicit {
				return explicit
			}
		}
		return ""
	}
	for _, cand := range keyCandidates {
		for _, c := range common {
			if c == cand {
				return cand
			}
		}
	}
	if len(common) > 0 {
		return common[0]
	}
	return ""
}

// keySet maps each non-empty key value to its row indexes.
func keySet(t *fileio.Table, key string) map[string][]int {
	m := make(map[string][]int)
	for i, row := range t.Rows {
		if v := strings.TrimSpace(row[key]); v != "" {
			m[v] = append(m[v], i)
		}
	}
	return m
}

// valueDiffs compares every common non-key column for keys unique in both
// tables, capped to the first keys in sorted order.
func valueDiffs(a, b *fileio.Table, key string, common []string, keysA, keysB map[string][]int) []ValueDiff {
	shared := make([]string, 0)
	for k := range keysA {
		if _, ok := keysB[k]; ok {
			shared = append(shared, k)
		}
	}
	sort.Strings(shared)
	if len(shared) > valueDiffKeyLimit {
		shared = shared[:valueDiffKeyLimit]
	}

	var diffs []ValueDiff
	for _, k := range shared {
		ia, ib := keysA[k], keysB[k]
		if len(ia) != 1 || len(ib) != 1 {
			continue
		}
		rowA, rowB := a.Rows[ia[0]], b.Rows[ib[0]]
		for _, col := range common {
			if col == key {
				continue
			}
			va, vb := rowA[col], rowB[col]
			if va != vb {
				diffs = append(diffs, ValueDiff{Key: k, Column: col, A: va, B: vb})
			}
		}
	}
	return diffs
}

// frequencyDiffs lists keys whose occurrence counts differ, largest delta first.
func frequencyDiffs(keysA, keysB map[string][]int) []FrequencyDiff {
	var diffs []FrequencyDiff
	seen := make(map[string]bool)
	for k, ia := range keysA {
		seen[k] = true
		if ca, cb := len(ia), len(keysB[k]); ca != cb {
			diffs = append(diffs, FrequencyDiff{Key: k, CountA: ca, CountB: cb, Delta: ca - cb})
		}
	}
	for k, ib := range keysB {
		if !seen[k] {
			diffs = append(diffs, FrequencyDiff{Key: k, CountA: 0, CountB: len(ib), Delta: -len(ib)})
		}
	}
	sort.Slice(diffs, func(i, j int) bool {
		di, dj := abs(diffs[i].Delta), abs(diffs[j].Delta)
		if di != dj {
			return di > dj
		}
		return diffs[i].Key < diffs[j].Key
	})
	return diffs
}

func countEmptyRows(t *fileio.Table) int {
	n := 0
	for _, row := range t.Rows {
		empty := true
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if empty {
			n++
		}
	}
	return n
}

func countEmptyKey(t *fileio.Table, key string) int {
	n := 0
	for _, row := range t.Rows {
		if strings.TrimSpace(row[key]) == "" {
			n++
		}
	}
	return n
}

func sample(keys []string) []string {
	if len(keys) > sampleLimit {
		keys = keys[:sampleLimit]
	}
	return append([]string{}, keys...)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Text renders the report for the CLI.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows: A=%d B=%d (diff %d)\n", r.RowsA, r.RowsB, r.RowDifference)
	fmt.Fprintf(&b, "columns: common=%d onlyA=%v onlyB=%v\n", len(r.CommonColumns), r.OnlyAColumns, r.OnlyBColumns)
	if r.Key == "" {
		b.WriteString("no comparison key available\n")
		return b.String()
	}
	fmt.Fprintf(&b, "key: %q\n", r.Key)
	fmt.Fprintf(&b, "records: onlyA=%d onlyB=%d common=%d\n", r.OnlyInACount, r.OnlyInBCount, r.CommonKeyCount)
	if len(r.OnlyInASample) > 0 {
		fmt.Fprintf(&b, "sample only in A: %v\n", r.OnlyInASample)
	}
	if len(r.OnlyInBSample) > 0 {
		fmt.Fprintf(&b, "sample only in B: %v\n", r.OnlyInBSample)
	}
	fmt.Fprintf(&b, "value differences: %d\n", len(r.ValueDiffs))
	for _, d := range r.ValueDiffs {
		fmt.Fprintf(&b, "  key=%s col=%s a=%q b=%q\n", d.Key, d.Column, d.A, d.B)
	}
	fmt.Fprintf(&b, "frequency differences: %d\n", len(r.FrequencyDiffs))
	for _, d := range r.FrequencyDiffs {
		fmt.Fprintf(&b, "  key=%s a=%d b=%d delta=%d\n", d.Key, d.CountA, d.CountB, d.Delta)
	}
	fmt.Fprintf(&b, "empty rows: A=%d B=%d; empty keys: A=%d B=%d\n", r.EmptyRowsA, r.EmptyRowsB, r.EmptyKeyA, r.EmptyKeyB)
	return b.String()
}
