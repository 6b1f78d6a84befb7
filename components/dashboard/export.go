package dashboard

import (
	"fmt"
	"io"

	"github.com/ettle/strcase"
	"github.com/xuri/excelize/v2"
)

const defaultExportSheet = "Sheet1"

// ExportXLSX writes the dataset's table view to w as an Excel workbook.
// Cells carry the same formatted text as the table, so "change" keeps its sign prefix.
func ExportXLSX(w io.Writer, ds Dataset) error {
	table := BuildTable(ds)
	f := excelize.NewFile()
	defer f.Close()

	sheet := strcase.ToPascal(string(ds.Type))
	if sheet == "" {
		sheet = defaultExportSheet
	}
	if err := f.SetSheetName(defaultExportSheet, sheet); err != nil {
		return fmt.Errorf("dashboard: export sheet: %w", err)
	}
	if len(table.Columns) == 0 {
		return f.Write(w)
	}

	header := make([]any, len(table.Columns))
	for i, label := range table.Headers() {
		header[i] = label
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("dashboard: export header: %w", err)
	}
	styles, err := newExportStyles(f)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(table.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
		return fmt.Errorf("dashboard: export header style: %w", err)
	}

	for r, row := range table.Rows {
		values := make([]any, len(row))
		for c, cell := range row {
			values[c] = cell.Text
		}
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("dashboard: export row %d: %w", r+1, err)
		}
		for c, cell := range row {
			style, ok := styles.byClass[cell.Class]
			if !ok {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, name, name, style); err != nil {
				return fmt.Errorf("dashboard: export cell style: %w", err)
			}
		}
	}
	return f.Write(w)
}

type exportStyles struct {
	header  int
	byClass map[string]int
}

func newExportStyles(f *excelize.File) (exportStyles, error) {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return exportStyles{}, fmt.Errorf("dashboard: export style: %w", err)
	}
	positive, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "16A34A"}})
	if err != nil {
		return exportStyles{}, fmt.Errorf("dashboard: export style: %w", err)
	}
	negative, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "DC2626"}})
	if err != nil {
		return exportStyles{}, fmt.Errorf("dashboard: export style: %w", err)
	}
	return exportStyles{
		header:  header,
		byClass: map[string]int{classPositive: positive, classNegative: negative},
	}, nil
}
