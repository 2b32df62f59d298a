// compare prints a structural and record-level diff of two spreadsheets and
// optionally writes the exclusive rows of each side to CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/duksosleepy/restate-server/internal/compare"
	"github.com/duksosleepy/restate-server/internal/fileio"
)

func main() {
	pathA := flag.String("a", "", "first spreadsheet")
	pathB := flag.String("b", "", "second spreadsheet")
	key := flag.String("key", "", "comparison key column (auto-detected when empty)")
	csvDir := flag.String("csv-dir", "", "write only-in-A/only-in-B rows as CSV into this directory")
	flag.Parse()

	if *pathA == "" || *pathB == "" {
		fmt.Fprintln(os.Stderr, "usage: compare -a file1.xlsx -b file2.xlsx [-key col] [-csv-dir dir]")
		os.Exit(2)
	}

	a, err := readTable(*pathA)
	if err != nil {
		fatal("read %s: %v", *pathA, err)
	}
	b, err := readTable(*pathB)
	if err != nil {
		fatal("read %s: %v", *pathB, err)
	}

	rep := compare.Run(a, b, compare.Options{Key: *key})
	fmt.Printf("Comparing %s vs %s\n", filepath.Base(*pathA), filepath.Base(*pathB))
	fmt.Print(rep.Text())

	if *csvDir != "" && rep.Key != "" {
		if err := os.MkdirAll(*csvDir, 0o755); err != nil {
			fatal("create %s: %v", *csvDir, err)
		}
		if rep.OnlyInACount > 0 {
			name := filepath.Join(*csvDir, "only_in_"+stem(*pathA)+".csv")
			if err := writeExclusive(name, a, rep.Key, b); err != nil {
				fatal("write %s: %v", name, err)
			}
			fmt.Printf("saved records only in A to %s\n", name)
		}
		if rep.OnlyInBCount > 0 {
			name := filepath.Join(*csvDir, "only_in_"+stem(*pathB)+".csv")
			if err := writeExclusive(name, b, rep.Key, a); err != nil {
				fatal("write %s: %v", name, err)
			}
			fmt.Printf("saved records only in B to %s\n", name)
		}
	}
}

func readTable(path string) (*fileio.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fileio.ReadAny(f, filepath.Base(path), 1)
}

// writeExclusive writes the rows of t whose key value does not occur in other.
func writeExclusive(path string, t *fileio.Table, key string, other *fileio.Table) error {
	present := make(map[string]bool, len(other.Rows))
	for _, row := range other.Rows {
		if v := strings.TrimSpace(row[key]); v != "" {
			present[v] = true
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		v := strings.TrimSpace(row[key])
		if v == "" || present[v] {
			continue
		}
		rec := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			rec[i] = row[h]
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
