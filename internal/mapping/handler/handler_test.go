package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duksosleepy/restate-server/internal/config"
	"github.com/duksosleepy/restate-server/internal/fileio"
	"github.com/duksosleepy/restate-server/internal/mapping/model"
)

func workbook(t *testing.T, headers []string, rows ...[]string) []byte {
	t.Helper()
	tbl := &fileio.Table{Headers: headers}
	for _, r := range rows {
		m := map[string]string{}
		for i, h := range headers {
			if i < len(r) {
				m[h] = r[i]
			}
		}
		tbl.Rows = append(tbl.Rows, m)
	}
	out, err := fileio.WriteXLSX(tbl)
	require.NoError(t, err)
	return out
}

func multipartRequest(t *testing.T, url string, mapping, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	mf, err := w.CreateFormFile("mapping_file", "mapping.xlsx")
	require.NoError(t, err)
	_, err = mf.Write(mapping)
	require.NoError(t, err)

	df, err := w.CreateFormFile("data_file", "data.xlsx")
	require.NoError(t, err)
	_, err = df.Write(data)
	require.NoError(t, err)

	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func testCfg() config.Config {
	return config.Config{MaxUploadMB: 10}
}

func TestApplyReturnsWorkbook(t *testing.T) {
	mapping := workbook(t,
		[]string{"Mã gốc", "Tên gốc", "Mã mới", "Tên mới"},
		[]string{"SP001", "Cũ A", "SP100", "Mới A"},
	)
	data := workbook(t,
		[]string{"Mã hàng", "Tên hàng", "Số lượng"},
		[]string{"SP001", "", "2"},
		[]string{"XX999", "", "1"},
	)

	rec := httptest.NewRecorder()
	Apply(testCfg(), zerolog.Nop())(rec, multipartRequest(t, "/mapping/apply", mapping, data))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "mapped_result.xlsx")

	var stats model.Stats
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("X-Mapping-Stats")), &stats))
	assert.Equal(t, 1, stats.ExactMatchedCount)
	assert.Equal(t, 2, stats.TotalCount)

	got, err := fileio.ReadAny(bytes.NewReader(rec.Body.Bytes()), "out.xlsx", 1)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "SP100", got.Rows[0]["Mã hàng"])
	assert.Equal(t, "Mới A", got.Rows[0]["Tên hàng"])
	assert.Equal(t, "XX999", got.Rows[1]["Mã hàng"])
}

func TestApplyJSONOutput(t *testing.T) {
	mapping := workbook(t,
		[]string{"Mã gốc", "Tên gốc", "Mã mới", "Tên mới"},
		[]string{"SP001", "Cũ A", "SP100", "Mới A"},
	)
	data := workbook(t,
		[]string{"Mã hàng", "Tên hàng"},
		[]string{"SP001", ""},
	)

	rec := httptest.NewRecorder()
	Apply(testCfg(), zerolog.Nop())(rec, multipartRequest(t, "/mapping/apply?output=json", mapping, data))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var stats model.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.MatchedCount)
	assert.Equal(t, 1, stats.TotalCount)
}

func TestApplyMissingMappingColumns(t *testing.T) {
	mapping := workbook(t, []string{"A", "B", "C"}, []string{"1", "2", "3"})
	data := workbook(t, []string{"Mã hàng"}, []string{"SP001"})

	rec := httptest.NewRecorder()
	Apply(testCfg(), zerolog.Nop())(rec, multipartRequest(t, "/mapping/apply", mapping, data))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required columns")
}

func TestApplyMissingProductCodeColumn(t *testing.T) {
	mapping := workbook(t,
		[]string{"Mã gốc", "Tên gốc", "Mã mới", "Tên mới"},
		[]string{"SP001", "Cũ A", "SP100", "Mới A"},
	)
	data := workbook(t, []string{"Số lượng", "Doanh thu"}, []string{"1", "2"})

	rec := httptest.NewRecorder()
	Apply(testCfg(), zerolog.Nop())(rec, multipartRequest(t, "/mapping/apply", mapping, data))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestApplyMissingFiles(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/mapping/apply", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	Apply(testCfg(), zerolog.Nop())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
