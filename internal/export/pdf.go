// Package export provides functionality for exporting cutting plans to
// various file formats.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/barcut/barcut/internal/model"
)

// segmentColor represents an RGB color for a placed segment.
type segmentColor struct {
	R, G, B int
}

// segmentColors assigns one color per distinct piece length so equal pieces
// are recognizable across bars.
var segmentColors = []segmentColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	barHeight    = 14.0
	barSpacing   = 10.0
	barsPerPage  = 8
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a PDF document containing the cutting plan. Bars are
// rendered as horizontal strips with colored segments and hatched safety
// margins, followed by a summary page with overall statistics.
func ExportPDF(path string, result model.OptimizeResult, constraints model.Constraints) error {
	if len(result.Cuts) == 0 {
		return fmt.Errorf("no cuts to export")
	}

	colors := buildColorMap(result)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, cut := range result.Cuts {
		if i%barsPerPage == 0 {
			pdf.AddPage()
			renderPageHeader(pdf, result, i/barsPerPage+1)
		}
		y := drawAreaTop + float64(i%barsPerPage)*(barHeight+barSpacing)
		renderBar(pdf, cut, constraints, colors, i+1, y)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, constraints)

	return pdf.OutputFileAndClose(path)
}

// buildColorMap assigns a stable color index to each distinct piece length,
// longest first.
func buildColorMap(result model.OptimizeResult) map[float64]segmentColor {
	var lengths []float64
	seen := make(map[float64]bool)
	for _, cut := range result.Cuts {
		for _, s := range cut.Segments {
			if !seen[s.Length] {
				seen[s.Length] = true
				lengths = append(lengths, s.Length)
			}
		}
	}
	// Longest first so the color order is independent of placement order.
	for i := 0; i < len(lengths); i++ {
		for j := i + 1; j < len(lengths); j++ {
			if lengths[j] > lengths[i] {
				lengths[i], lengths[j] = lengths[j], lengths[i]
			}
		}
	}
	colors := make(map[float64]segmentColor, len(lengths))
	for i, l := range lengths {
		colors[l] = segmentColors[i%len(segmentColors)]
	}
	return colors
}

func renderPageHeader(pdf *fpdf.Fpdf, result model.OptimizeResult, pageNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Cutting Plan - Page %d", pageNum)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Bars: %d | Efficiency: %.1f%% | Waste: %.0f mm | Strategy: %s",
		result.TotalBars(), result.Efficiency, result.TotalWaste, result.Strategy)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")
}

// renderBar draws one stock bar as a horizontal strip: hatched safety
// margins, colored segments with kerf gaps, and the remnant.
func renderBar(pdf *fpdf.Fpdf, cut *model.Cut, c model.Constraints, colors map[float64]segmentColor, barNum int, y float64) {
	drawWidth := pageWidth - marginLeft - marginRight
	scale := drawWidth / cut.StockLength

	// Bar caption
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y-4)
	caption := fmt.Sprintf("Bar %d - %s", barNum, cut.PlanLabel)
	pdf.CellFormat(drawWidth, 4, caption, "", 0, "L", false, 0, "")

	// Stock background
	pdf.SetFillColor(225, 225, 225)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(marginLeft, y, drawWidth, barHeight, "FD")

	// Safety margins at both ends
	drawMarginZone(pdf, marginLeft, y, c.StartSafety*scale)
	drawMarginZone(pdf, marginLeft+drawWidth-c.EndSafety*scale, y, c.EndSafety*scale)

	// Segments
	for _, s := range cut.Segments {
		col := colors[s.Length]
		sx := marginLeft + s.Position*scale
		sw := s.Length * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Rect(sx, y, sw, barHeight, "FD")

		if sw > 12 {
			pdf.SetFont("Helvetica", "", segmentFontSize(sw))
			pdf.SetTextColor(0, 0, 0)
			label := fmt.Sprintf("%.0f", s.Length)
			labelW := pdf.GetStringWidth(label)
			if labelW < sw-1 {
				pdf.SetXY(sx+(sw-labelW)/2, y+barHeight/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	// Remnant annotation at the right end of the strip
	if cut.RemainingLength > 0 {
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(120, 120, 120)
		note := fmt.Sprintf("rest %.0f mm (%s)", cut.RemainingLength, cut.WasteCategory)
		noteW := pdf.GetStringWidth(note)
		pdf.SetXY(marginLeft+drawWidth-noteW, y+barHeight+0.5)
		pdf.CellFormat(noteW, 3.5, note, "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

// drawMarginZone hatches a safety margin area of the bar strip.
func drawMarginZone(pdf *fpdf.Fpdf, x, y, w float64) {
	if w <= 0 {
		return
	}
	pdf.SetFillColor(255, 200, 200)
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)
	pdf.Rect(x, y, w, barHeight, "FD")

	spacing := 2.0
	for d := spacing; d < w+barHeight; d += spacing {
		x1 := x + math.Max(0, d-barHeight)
		y1 := y + math.Min(barHeight, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.OptimizeResult, c model.Constraints) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cutting Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Total Bars Used", fmt.Sprintf("%d", result.TotalBars())},
		{"Overall Efficiency", fmt.Sprintf("%.1f%%", result.Efficiency)},
		{"Total Waste", fmt.Sprintf("%.0f mm", result.TotalWaste)},
		{"Total Cost", fmt.Sprintf("%.2f", result.TotalCost)},
		{"Quality Score", fmt.Sprintf("%.1f", result.QualityScore)},
		{"Strategy", string(result.Strategy)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-stock-length breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Stock Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{50, 40, 45, 45}
	headers := []string{"Stock Length", "Bars Used", "Waste", "Efficiency"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, usage := range result.StockUsage {
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%.0f mm", usage.StockLength),
			fmt.Sprintf("%d", usage.BarsUsed),
			fmt.Sprintf("%.0f mm", usage.TotalWaste),
			fmt.Sprintf("%.1f%%", usage.Efficiency),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Warnings
	if len(result.Warnings) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 120, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "Warnings", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, warning := range result.Warnings {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, "- "+warning, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	// Saw settings summary
	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Saw Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Kerf Width", fmt.Sprintf("%.1f mm", c.KerfWidth)},
		{"Start Safety", fmt.Sprintf("%.1f mm", c.StartSafety)},
		{"End Safety", fmt.Sprintf("%.1f mm", c.EndSafety)},
		{"Min Scrap Length", fmt.Sprintf("%.1f mm", c.MinScrapLength)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by BarCut - Profile Cutting Optimizer", "", 0, "C", false, 0, "")
}

// segmentFontSize returns an appropriate font size for a segment width.
func segmentFontSize(w float64) float64 {
	switch {
	case w > 40:
		return 8
	case w > 20:
		return 7
	default:
		return 6
	}
}
