package report

import (
	"fmt"
	"time"

	excelize "github.com/xuri/excelize/v2"
)

const sheetName = "Non-Existing Codes"

var columns = []string{"Product Code", "Status", "Detected At", "Action Required"}

var columnWidths = map[string]float64{
	"A": 15, // Product Code
	"B": 12, // Status
	"C": 20, // Detected At
	"D": 25, // Action Required
}

// BuildWorkbook renders the non-existing-codes report: one row per code with
// status and the detection timestamp, bold header on a green fill, thin
// borders throughout.
func BuildWorkbook(codes []string, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"D7E4BC"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	detectedAt := now.Format("2006-01-02 15:04:05")
	for i, code := range codes {
		row := i + 2
		values := []interface{}{code, "Not Found", detectedAt, "Verify & Add to System"}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
			_ = f.SetCellStyle(sheetName, cell, cell, cellStyle)
		}
	}

	for col, w := range columnWidths {
		_ = f.SetColWidth(sheetName, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
