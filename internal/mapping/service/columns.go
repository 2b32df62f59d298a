package service

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/duksosleepy/restate-server/internal/fileio"
	"github.com/duksosleepy/restate-server/internal/mapping/model"
)

// A family is one logical column's header patterns in priority order. Matching
// runs against normalized headers first, then falls back to a raw
// case-insensitive substring check.
type family struct {
	raw []string
	re  []*regexp.Regexp
}

func newFamily(pats ...string) family {
	f := family{raw: pats}
	for _, p := range pats {
		f.re = append(f.re, regexp.MustCompile(p))
	}
	return f
}

var (
	oldCodeFamily = newFamily(`mã\s*gốc`, `ma\s*goc`, `old.*code`, `code.*old`, `mã\s*cũ`, `ma\s*cu`)
	oldNameFamily = newFamily(`tên\s*gốc`, `ten\s*goc`, `old.*name`, `name.*old`, `tên\s*cũ`, `ten\s*cu`)
	newCodeFamily = newFamily(`mã\s*mới`, `ma\s*moi`, `new.*code`, `code.*new`, `mã\s*thay`, `ma\s*thay`)
	newNameFamily = newFamily(`tên\s*mới`, `ten\s*moi`, `new.*name`, `name.*new`, `tên\s*thay`, `ten\s*thay`)
)

// findColumn returns the first header matching the family, or "".
func findColumn(headers []string, f family) string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}
	for _, re := range f.re {
		for i, n := range normalized {
			if re.MatchString(n) {
				return headers[i]
			}
		}
	}
	for _, p := range f.raw {
		lp := strings.ToLower(p)
		for _, h := range headers {
			if strings.Contains(strings.ToLower(h), lp) {
				return h
			}
		}
	}
	return ""
}

// IdentifyMappingColumns resolves the four logical columns of the mapping
// sheet. When any of them is missing and the sheet has at least four columns,
// the first four are taken positionally; otherwise the error names the missing
// columns and lists the available headers verbatim.
func IdentifyMappingColumns(headers []string, logger zerolog.Logger) (*model.Columns, error) {
	cols := &model.Columns{
		OldCode: findColumn(headers, oldCodeFamily),
		OldName: findColumn(headers, oldNameFamily),
		NewCode: findColumn(headers, newCodeFamily),
		NewName: findColumn(headers, newNameFamily),
	}

	var missing []string
	if cols.OldCode == "" {
		missing = append(missing, "Mã gốc")
	}
	if cols.OldName == "" {
		missing = append(missing, "Tên gốc")
	}
	if cols.NewCode == "" {
		missing = append(missing, "Mã mới")
	}
	if cols.NewName == "" {
		missing = append(missing, "Tên mới")
	}

	if len(missing) > 0 {
		if len(headers) >= 4 {
			logger.Warn().
				Strs("missing", missing).
				Strs("headers", headers).
				Msg("mapping columns not found by name, using first 4 columns")
			return &model.Columns{
				OldCode: headers[0],
				OldName: headers[1],
				NewCode: headers[2],
				NewName: headers[3],
			}, nil
		}
		return nil, &model.MissingColumnsError{Missing: missing, Headers: headers}
	}

	return cols, nil
}

// ResolveDataColumns canonicalizes the data sheet's code and name columns,
// renaming pattern-matched headers in place. A missing code column is fatal;
// a missing name column just disables renaming in the output.
func ResolveDataColumns(t *fileio.Table, logger zerolog.Logger) error {
	if !t.HasHeader(model.CodeColumn) {
		logger.Warn().Msgf("column %q not found in data file", model.CodeColumn)
		f := family{
			raw: append(append([]string{}, oldCodeFamily.raw...), `ma.*hang`, `code`),
			re:  append(append([]*regexp.Regexp{}, oldCodeFamily.re...), regexp.MustCompile(`ma.*hang`), regexp.MustCompile(`code`)),
		}
		col := findColumn(t.Headers, f)
		if col == "" {
			return &model.MissingProductCodeError{Headers: t.Headers}
		}
		logger.Info().Str("column", col).Msgf("using as product code column")
		t.Rename(col, model.CodeColumn)
	}

	if !t.HasHeader(model.NameColumn) {
		f := family{
			raw: append(append([]string{}, oldNameFamily.raw...), `ten.*hang`, `name`),
			re:  append(append([]*regexp.Regexp{}, oldNameFamily.re...), regexp.MustCompile(`ten.*hang`), regexp.MustCompile(`name`)),
		}
		if col := findColumn(t.Headers, f); col != "" {
			logger.Info().Str("column", col).Msgf("using as product name column")
			t.Rename(col, model.NameColumn)
		}
	}

	return nil
}
