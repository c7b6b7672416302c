package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, table Table) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if table.Name != "" && table.Name != sheet {
		if err := file.SetSheetName(sheet, table.Name); err != nil {
			return fmt.Errorf("rename excel sheet: %w", err)
		}
		sheet = table.Name
	}

	headers := append([]string(nil), table.Headers...)
	if err := file.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("set excel headers: %w", err)
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := file.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("style excel headers: %w", err)
		}
	}

	for i, row := range table.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := append([]string(nil), row...)
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("set excel row %s: %w", cell, err)
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}
