// remap applies a product-code mapping spreadsheet to a data spreadsheet and
// writes the transformed workbook.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/duksosleepy/restate-server/internal/config"
	"github.com/duksosleepy/restate-server/internal/fileio"
	mapSvc "github.com/duksosleepy/restate-server/internal/mapping/service"
)

func main() {
	mappingPath := flag.String("mapping", "", "mapping spreadsheet (old/new codes)")
	dataPath := flag.String("data", "", "data spreadsheet to transform")
	outPath := flag.String("out", "mapped_result.xlsx", "output xlsx path")
	statsJSON := flag.Bool("stats-json", false, "print statistics as JSON")
	engine := flag.String("engine", "levenshtein", "fuzzy distance engine (levenshtein|builtin)")
	flag.Parse()

	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	if *mappingPath == "" || *dataPath == "" {
		fmt.Fprintln(os.Stderr, "usage: remap -mapping mapping.xlsx -data data.xlsx [-out result.xlsx]")
		os.Exit(2)
	}
	for _, p := range []string{*mappingPath, *dataPath} {
		if _, err := os.Stat(p); err != nil {
			logger.Fatal().Err(err).Str("path", p).Msg("input file not found")
		}
	}

	mapping, err := readTable(*mappingPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *mappingPath).Msg("read mapping file")
	}
	data, err := readTable(*dataPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *dataPath).Msg("read data file")
	}

	stats, err := mapSvc.Process(mapping, data, *engine, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("mapping failed")
	}

	out, err := fileio.WriteXLSX(data)
	if err != nil {
		logger.Fatal().Err(err).Msg("write output workbook")
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		logger.Fatal().Err(err).Str("path", *outPath).Msg("write output file")
	}

	if *statsJSON {
		b, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(b))
	}
	logger.Info().Str("out", *outPath).Msg("done")
}

func readTable(path string) (*fileio.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fileio.ReadAny(f, filepath.Base(path), 1)
}
