package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "Timetable"

// XLSXExporter renders sheets as an Excel workbook with a merged title row.
type XLSXExporter struct{}

// NewXLSXExporter constructs an Excel exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType reports the MIME type of rendered output.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render writes the sheet into a single-sheet workbook.
func (e *XLSXExporter) Render(sheet Sheet) ([]byte, error) {
	if err := sheet.validate(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(sheet.Headers))
	if err != nil {
		return nil, fmt.Errorf("resolve column: %w", err)
	}
	if err := f.SetColWidth(xlsxSheetName, "A", "A", 14); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if len(sheet.Headers) > 1 {
		if err := f.SetColWidth(xlsxSheetName, "B", lastCol, 24); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	row := 1
	if sheet.Title != "" {
		if err := f.SetCellValue(xlsxSheetName, "A1", sheet.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		if err := f.MergeCell(xlsxSheetName, "A1", lastCol+"1"); err != nil {
			return nil, fmt.Errorf("merge title: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheetName, "A1", lastCol+"1", headerStyle); err != nil {
			return nil, fmt.Errorf("style title: %w", err)
		}
		row++
	}

	headerCell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(xlsxSheetName, headerCell, &sheet.Headers); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheetName, headerCell, fmt.Sprintf("%s%d", lastCol, row), headerStyle); err != nil {
		return nil, fmt.Errorf("style headers: %w", err)
	}
	row++

	for _, values := range sheet.Rows {
		values := values
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(xlsxSheetName, start, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		if err := f.SetCellStyle(xlsxSheetName, start, fmt.Sprintf("%s%d", lastCol, row), cellStyle); err != nil {
			return nil, fmt.Errorf("style row %d: %w", row, err)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
