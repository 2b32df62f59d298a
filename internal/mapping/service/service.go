package service

import (
	"github.com/rs/zerolog"

	"github.com/duksosleepy/restate-server/internal/fileio"
	"github.com/duksosleepy/restate-server/internal/mapping/model"
)

// Process resolves columns on both sheets and runs one reconciliation. The
// data table's code/name cells are rewritten in place; the caller serializes
// it afterwards. Errors are the structural ones from column resolution.
func Process(mapping, data *fileio.Table, engine string, logger zerolog.Logger) (*model.Stats, error) {
	logger.Info().Strs("headers", mapping.Headers).Msg("mapping file columns")

	cols, err := IdentifyMappingColumns(mapping.Headers, logger)
	if err != nil {
		return nil, err
	}

	table := model.BuildTable(mapping, cols)
	logger.Info().Int("codes", len(table.CodeMapping)).Msg("mapping table built")

	if err := ResolveDataColumns(data, logger); err != nil {
		return nil, err
	}
	logger.Info().Strs("headers", data.Headers).Msg("data file columns")

	p := NewProcessor(table, ResolveDistance(engine), logger)
	return p.Apply(data), nil
}
