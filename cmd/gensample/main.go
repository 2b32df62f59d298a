// gensample generates a synthetic mapping.xlsx + data.xlsx pair for local
// testing: exact old codes, already-migrated new codes, typo'd codes and
// unknown codes, so one run exercises every matching phase.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/duksosleepy/restate-server/internal/fileio"
)

func main() {
	dir := flag.String("dir", ".", "output directory")
	rows := flag.Int("rows", 200, "data rows to generate")
	noise := flag.Float64("noise", 0.3, "fraction of non-exact rows (migrated/typo/unknown)")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	mappingRows := *rows
	if mappingRows < 1 {
		mappingRows = 1
	}

	mapping := &fileio.Table{Headers: []string{"Mã gốc", "Tên gốc", "Mã mới", "Tên mới"}}
	oldCodes := make([]string, 0, mappingRows)
	newCodes := make([]string, 0, mappingRows)
	names := make([]string, 0, mappingRows)
	for i := 0; i < mappingRows; i++ {
		oldCode := fmt.Sprintf("SP%04d", i+1)
		newCode := fmt.Sprintf("NP%04d", i+1)
		name := gofakeit.ProductName()
		oldCodes = append(oldCodes, oldCode)
		newCodes = append(newCodes, newCode)
		names = append(names, name)
		mapping.Rows = append(mapping.Rows, map[string]string{
			"Mã gốc":  oldCode,
			"Tên gốc": name,
			"Mã mới":  newCode,
			"Tên mới": name + " (new)",
		})
	}

	data := &fileio.Table{Headers: []string{"Mã hàng", "Tên hàng", "Số lượng", "Doanh thu"}}
	for i := 0; i < *rows; i++ {
		idx := i % mappingRows
		code := oldCodes[idx]
		if gofakeit.Float64Range(0, 1) < *noise {
			switch gofakeit.Number(0, 2) {
			case 0:
				code = newCodes[idx] // already migrated
			case 1:
				code = mutate(newCodes[idx]) // one-character typo
			default:
				code = fmt.Sprintf("XX%04d", gofakeit.Number(1000, 9999)) // unknown
			}
		}
		data.Rows = append(data.Rows, map[string]string{
			"Mã hàng":   code,
			"Tên hàng":  names[idx],
			"Số lượng":  fmt.Sprintf("%d", gofakeit.Number(1, 20)),
			"Doanh thu": fmt.Sprintf("%d", gofakeit.Number(100000, 20000000)),
		})
	}

	if err := writeTable(filepath.Join(*dir, "mapping.xlsx"), mapping); err != nil {
		fatal("write mapping.xlsx: %v", err)
	}
	if err := writeTable(filepath.Join(*dir, "data.xlsx"), data); err != nil {
		fatal("write data.xlsx: %v", err)
	}
	fmt.Printf("generated %d mapping rows and %d data rows in %s\n", mappingRows, *rows, *dir)
}

// mutate swaps one character past the shared prefix so the code still passes
// the fuzzy matcher's prefix filter.
func mutate(code string) string {
	if len(code) < 4 {
		return code + "X"
	}
	b := []byte(code)
	i := gofakeit.Number(3, len(b)-1)
	b[i] = byte('0' + gofakeit.Number(0, 9))
	return string(b)
}

func writeTable(path string, t *fileio.Table) error {
	out, err := fileio.WriteXLSX(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
