package service

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/duksosleepy/restate-server/internal/fileio"
	"github.com/duksosleepy/restate-server/internal/mapping/model"
)

const (
	// SimilarityThreshold is the minimum fuzzy score that resolves a record.
	SimilarityThreshold = 0.70
	// prefixLength bounds the cheap candidate pre-filter on new codes.
	prefixLength = 3
)

// Processor runs one reconciliation: three sequential phases over the data
// table, each touching only records the earlier phases left unresolved.
// It owns nothing shared; independent runs need no locking.
type Processor struct {
	table    *model.Table
	distance DistanceFunc
	logger   zerolog.Logger
}

func NewProcessor(table *model.Table, distance DistanceFunc, logger zerolog.Logger) *Processor {
	return &Processor{table: table, distance: distance, logger: logger}
}

// Apply computes one immutable Resolution per record, then writes all cells in
// a single final pass. Unmatched records keep their original code and name.
func (p *Processor) Apply(data *fileio.Table) *model.Stats {
	res := make([]model.Resolution, len(data.Rows))

	// Phase 1: exact forward match on the old code.
	for i, rec := range data.Rows {
		code := rec[model.CodeColumn]
		if nc, ok := p.table.CodeMapping[code]; ok && nc != "" {
			res[i] = model.Resolution{Method: model.MethodExact, OldCode: code}
		}
	}

	// Phase 2: the record's code is already some row's new code.
	for i, rec := range data.Rows {
		if res[i].Method != model.MethodNone {
			continue
		}
		code := rec[model.CodeColumn]
		if code == "" {
			continue
		}
		if oc, ok := p.table.ReverseCode[code]; ok {
			res[i] = model.Resolution{Method: model.MethodReverse, OldCode: oc}
		}
	}

	// Phase 3: fuzzy match against new codes.
	for i, rec := range data.Rows {
		if res[i].Method != model.MethodNone {
			continue
		}
		code := rec[model.CodeColumn]
		if code == "" {
			continue
		}
		if oc, sim, ok := p.closestMatch(code); ok {
			res[i] = model.Resolution{Method: model.MethodFuzzy, OldCode: oc, Similarity: sim}
		}
	}

	// Final pass: apply resolutions and tally. Counts are disjoint by
	// construction since each record carries exactly one method.
	stats := &model.Stats{TotalCount: len(data.Rows)}
	hasName := data.HasHeader(model.NameColumn)
	for i, rec := range data.Rows {
		switch res[i].Method {
		case model.MethodExact:
			stats.ExactMatchedCount++
		case model.MethodReverse:
			stats.ReverseMatchedCount++
		case model.MethodFuzzy:
			stats.FuzzyMatchedCount++
		default:
			continue
		}
		if nc := p.table.CodeMapping[res[i].OldCode]; nc != "" {
			rec[model.CodeColumn] = nc
		}
		if hasName {
			if nn := p.table.NameMapping[res[i].OldCode]; nn != "" {
				rec[model.NameColumn] = nn
			}
		}
		p.logger.Debug().
			Str("old_code", res[i].OldCode).
			Str("method", res[i].Method.String()).
			Float64("similarity", res[i].Similarity).
			Msg("record resolved")
	}
	stats.MatchedCount = stats.ExactMatchedCount + stats.ReverseMatchedCount + stats.FuzzyMatchedCount

	p.logger.Info().
		Int("total", stats.TotalCount).
		Int("exact", stats.ExactMatchedCount).
		Int("reverse", stats.ReverseMatchedCount).
		Int("fuzzy", stats.FuzzyMatchedCount).
		Msg("mapping applied")

	return stats
}

// closestMatch finds the mapping row whose new code is most similar to code.
// Candidates are restricted to rows sharing the first min(3,len) runes with the
// input; if that filter yields nothing, the full table is scanned. Ties go to
// the first encountered maximum, so results follow the sheet's row order.
func (p *Processor) closestMatch(code string) (string, float64, bool) {
	valid := make([]model.Row, 0, len(p.table.Rows))
	for _, r := range p.table.Rows {
		if r.NewCode != "" {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return "", 0, false
	}

	runes := []rune(code)
	n := prefixLength
	if len(runes) < n {
		n = len(runes)
	}
	if n > 0 {
		prefix := string(runes[:n])
		filtered := make([]model.Row, 0, len(valid))
		for _, r := range valid {
			if strings.HasPrefix(r.NewCode, prefix) {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) > 0 {
			valid = filtered
		}
	}

	best := ""
	highest := 0.0
	for _, r := range valid {
		sim := Similarity(p.distance, code, r.NewCode)
		if sim > highest {
			highest = sim
			best = r.OldCode
		}
	}
	if best != "" && highest >= SimilarityThreshold {
		return best, highest, true
	}
	return "", 0, false
}
