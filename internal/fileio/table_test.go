package fileio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameKeepsPositionAndMovesValues(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Product Code", "Qty"},
		Rows: []map[string]string{
			{"Product Code": "SP001", "Qty": "2"},
			{"Product Code": "SP002", "Qty": "5"},
		},
	}
	tbl.Rename("Product Code", "Mã hàng")

	assert.Equal(t, []string{"Mã hàng", "Qty"}, tbl.Headers)
	assert.Equal(t, "SP001", tbl.Rows[0]["Mã hàng"])
	assert.NotContains(t, tbl.Rows[0], "Product Code")
	assert.Equal(t, "5", tbl.Rows[1]["Qty"])
}

func TestRenameSameNameNoop(t *testing.T) {
	tbl := &Table{Headers: []string{"A"}, Rows: []map[string]string{{"A": "1"}}}
	tbl.Rename("A", "A")
	assert.Equal(t, []string{"A"}, tbl.Headers)
	assert.Equal(t, "1", tbl.Rows[0]["A"])
}

func TestHasHeader(t *testing.T) {
	tbl := &Table{Headers: []string{"Mã hàng", "Tên hàng"}}
	assert.True(t, tbl.HasHeader("Tên hàng"))
	assert.False(t, tbl.HasHeader("Doanh thu"))
}

func TestReadAnyUnsupportedExtension(t *testing.T) {
	_, err := ReadAny(strings.NewReader("x"), "report.pdf", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.pdf")
}

func TestXLSXRoundTrip(t *testing.T) {
	in := &Table{
		Headers: []string{"Mã hàng", "Tên hàng", "Số lượng"},
		Rows: []map[string]string{
			{"Mã hàng": "SP001", "Tên hàng": "Bàn phím", "Số lượng": "3"},
			{"Mã hàng": "SP002", "Tên hàng": "Chuột", "Số lượng": "1"},
		},
	}
	out, err := WriteXLSX(in)
	require.NoError(t, err)

	got, err := ReadAny(bytes.NewReader(out), "result.xlsx", 1)
	require.NoError(t, err)
	assert.Equal(t, in.Headers, got.Headers)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Bàn phím", got.Rows[0]["Tên hàng"])
	assert.Equal(t, "SP002", got.Rows[1]["Mã hàng"])
}

func TestXLSXBlankHeaderGetsColumnName(t *testing.T) {
	in := &Table{
		Headers: []string{"Mã hàng", "", "Số lượng"},
		Rows:    []map[string]string{{"Mã hàng": "SP001", "": "x", "Số lượng": "2"}},
	}
	out, err := WriteXLSX(in)
	require.NoError(t, err)

	got, err := ReadAny(bytes.NewReader(out), "f.xlsx", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mã hàng", "Column 2", "Số lượng"}, got.Headers)
	assert.Equal(t, "x", got.Rows[0]["Column 2"])
}

func TestXLSXSkipsEmptyRows(t *testing.T) {
	in := &Table{
		Headers: []string{"Mã hàng"},
		Rows: []map[string]string{
			{"Mã hàng": "SP001"},
			{"Mã hàng": "   "},
			{"Mã hàng": "SP002"},
		},
	}
	out, err := WriteXLSX(in)
	require.NoError(t, err)

	got, err := ReadAny(bytes.NewReader(out), "f.xlsx", 1)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "SP001", got.Rows[0]["Mã hàng"])
	assert.Equal(t, "SP002", got.Rows[1]["Mã hàng"])
}

func TestCSVRead(t *testing.T) {
	src := "Mã hàng,Tên hàng\nSP001,Bàn phím\nSP002,Chuột\n"
	got, err := ReadAny(strings.NewReader(src), "data.csv", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mã hàng", "Tên hàng"}, got.Headers)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Chuột", got.Rows[1]["Tên hàng"])
}

func TestCSVRaggedRows(t *testing.T) {
	src := "A,B,C\n1,2\n3,4,5,6\n"
	got, err := ReadAny(strings.NewReader(src), "data.csv", 1)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "", got.Rows[0]["C"])
	assert.Equal(t, "5", got.Rows[1]["C"])
}

func TestCSVHeaderOnSecondRow(t *testing.T) {
	src := "Báo cáo tháng 8,,\nMã hàng,Tên hàng,Số lượng\nSP001,Bàn phím,2\n"
	got, err := ReadAny(strings.NewReader(src), "data.csv", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mã hàng", "Tên hàng", "Số lượng"}, got.Headers)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "SP001", got.Rows[0]["Mã hàng"])
}

func TestCSVEmptyInput(t *testing.T) {
	got, err := ReadAny(strings.NewReader(""), "data.csv", 1)
	require.NoError(t, err)
	assert.Empty(t, got.Headers)
	assert.Empty(t, got.Rows)
}
