package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/barcut/barcut/internal/model"
)

// ExportExcel writes the cutting plan to an Excel workbook with two sheets:
// "Cutting Plan" lists every segment with its bar and position, "Summary"
// holds the aggregate statistics and the per-stock breakdown.
func ExportExcel(path string, result model.OptimizeResult, constraints model.Constraints) error {
	if len(result.Cuts) == 0 {
		return fmt.Errorf("no cuts to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	planSheet := "Cutting Plan"
	if err := f.SetSheetName(f.GetSheetName(0), planSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := []any{"Bar", "Stock (mm)", "Segment", "Length (mm)", "Position (mm)", "Work Order", "Profile", "Remnant (mm)", "Waste Category"}
	if err := f.SetSheetRow(planSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	rowNum := 2
	for barIdx, cut := range result.Cuts {
		for segIdx, s := range cut.Segments {
			row := []any{
				barIdx + 1,
				cut.StockLength,
				segIdx + 1,
				s.Length,
				s.Position,
				s.WorkOrderID,
				s.ProfileType,
				cut.RemainingLength,
				string(cut.WasteCategory),
			}
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return fmt.Errorf("computing cell: %w", err)
			}
			if err := f.SetSheetRow(planSheet, cell, &row); err != nil {
				return fmt.Errorf("writing row %d: %w", rowNum, err)
			}
			rowNum++
		}
	}

	if err := writeSummarySheet(f, result, constraints); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, result model.OptimizeResult, c model.Constraints) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	rows := [][]any{
		{"Total Bars", result.TotalBars()},
		{"Efficiency (%)", result.Efficiency},
		{"Total Waste (mm)", result.TotalWaste},
		{"Total Cost", result.TotalCost},
		{"Quality Score", result.QualityScore},
		{"Confidence", result.Confidence},
		{"Strategy", string(result.Strategy)},
		{},
		{"Kerf Width (mm)", c.KerfWidth},
		{"Start Safety (mm)", c.StartSafety},
		{"End Safety (mm)", c.EndSafety},
		{"Min Scrap (mm)", c.MinScrapLength},
		{},
		{"Stock Length (mm)", "Bars Used", "Waste (mm)", "Efficiency (%)"},
	}
	for _, usage := range result.StockUsage {
		rows = append(rows, []any{usage.StockLength, usage.BarsUsed, usage.TotalWaste, usage.Efficiency})
	}
	if len(result.Warnings) > 0 {
		rows = append(rows, []any{})
		rows = append(rows, []any{"Warnings"})
		for _, w := range result.Warnings {
			rows = append(rows, []any{w})
		}
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing cell: %w", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}
	return nil
}
