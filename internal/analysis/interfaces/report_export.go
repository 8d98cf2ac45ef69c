package interfaces

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	analysis "carbonsite-engine/internal/analysis/domain"
)

// BuildReportPDF renders an analysis report as a PDF.
func BuildReportPDF(report *analysis.Report) ([]byte, error) {
	if report == nil {
		return nil, analysis.ErrReportNotFound
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Site Analysis Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Report: %s", report.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", report.ProjectType))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Target Capacity (tpy): %.0f", report.TargetCapacityTPY))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	// Site comparison table
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(10, 6, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Site", "1", 0, "C", false, 0, "")
	pdf.CellFormat(15, 6, "Score", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "NPV (EUR)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "IRR (%)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Payback", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Risk", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, site := range report.Sites {
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", site.Ranking), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 6, fmt.Sprintf("%s (%s)", site.Site.Name, site.Site.Country), "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprintf("%.1f", site.Site.Scores.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.0f", site.Financial.NPVEUR), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, formatMetric(site.Financial.IRRPercent, "%.1f"), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", site.Financial.PaybackPeriodYears), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, site.OverallRisk, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Recommendations")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	for _, rec := range report.Recommendations {
		pdf.MultiCell(0, 5, "- "+rec, "", "L", false)
	}

	if len(report.Failures) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Skipped Sites")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		for _, failure := range report.Failures {
			pdf.MultiCell(0, 5, fmt.Sprintf("- %s: %s", failure.SiteID, failure.Error), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders an analysis report as a workbook with a summary,
// a site comparison sheet, a recommendations sheet and one detail sheet
// per analyzed site.
func BuildReportXLSX(report *analysis.Report) ([]byte, error) {
	if report == nil {
		return nil, analysis.ErrReportNotFound
	}
	f := excelize.NewFile()
	summarySheet := "Summary"
	comparisonSheet := "Site_Comparison"
	recommendationsSheet := "Recommendations"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(comparisonSheet)
	f.NewSheet(recommendationsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Site Analysis Report")
	_ = f.SetCellValue(summarySheet, "A3", "Report")
	_ = f.SetCellValue(summarySheet, "B3", report.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Project Type")
	_ = f.SetCellValue(summarySheet, "B4", report.ProjectType)
	_ = f.SetCellValue(summarySheet, "A5", "Target Capacity (tpy)")
	_ = f.SetCellValue(summarySheet, "B5", report.TargetCapacityTPY)
	_ = f.SetCellValue(summarySheet, "A6", "Generated")
	_ = f.SetCellValue(summarySheet, "B6", report.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A7", "Sites Analyzed")
	_ = f.SetCellValue(summarySheet, "B7", len(report.Sites))
	_ = f.SetCellValue(summarySheet, "A8", "Sites Skipped")
	_ = f.SetCellValue(summarySheet, "B8", len(report.Failures))

	headers := []string{
		"Rank", "Site", "Country", "Total Score",
		"CO2 Score", "Energy Score", "Policy Score", "Infrastructure Score", "Financial Score",
		"NPV (EUR)", "IRR (%)", "Payback (years)", "Overall Risk",
	}
	for i, header := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetCellValue(comparisonSheet, col+"1", header)
	}
	for i, site := range report.Sites {
		row := i + 2
		values := []any{
			site.Ranking, site.Site.Name, site.Site.Country, site.Site.Scores.Total,
			site.Site.Scores.CO2Availability, site.Site.Scores.Energy, site.Site.Scores.Policy,
			site.Site.Scores.Infrastructure, site.Site.Scores.Financial,
			site.Financial.NPVEUR, cellMetric(site.Financial.IRRPercent),
			site.Financial.PaybackPeriodYears, site.OverallRisk,
		}
		for j, value := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			_ = f.SetCellValue(comparisonSheet, fmt.Sprintf("%s%d", col, row), value)
		}
	}

	_ = f.SetCellValue(recommendationsSheet, "A1", "Recommendation")
	for i, rec := range report.Recommendations {
		_ = f.SetCellValue(recommendationsSheet, fmt.Sprintf("A%d", i+2), rec)
	}

	for _, site := range report.Sites {
		writeSiteSheet(f, site)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSiteSheet(f *excelize.File, site analysis.SiteResult) {
	sheet := siteSheetName(site)
	f.NewSheet(sheet)

	_ = f.SetCellValue(sheet, "A1", site.Site.Name)
	_ = f.SetCellValue(sheet, "A3", "NPV (EUR)")
	_ = f.SetCellValue(sheet, "B3", site.Financial.NPVEUR)
	_ = f.SetCellValue(sheet, "A4", "IRR (%)")
	_ = f.SetCellValue(sheet, "B4", cellMetric(site.Financial.IRRPercent))
	_ = f.SetCellValue(sheet, "A5", "Payback (years)")
	_ = f.SetCellValue(sheet, "B5", site.Financial.PaybackPeriodYears)
	_ = f.SetCellValue(sheet, "A6", "Total CAPEX (EUR)")
	_ = f.SetCellValue(sheet, "B6", site.Financial.TotalCapexEUR)
	_ = f.SetCellValue(sheet, "A7", "Annual Revenue (EUR)")
	_ = f.SetCellValue(sheet, "B7", site.Financial.AnnualRevenueEUR)
	_ = f.SetCellValue(sheet, "A8", "Annual OPEX (EUR)")
	_ = f.SetCellValue(sheet, "B8", site.Financial.AnnualOpexEUR)
	_ = f.SetCellValue(sheet, "A9", "Policy Stability")
	_ = f.SetCellValue(sheet, "B9", site.Policy.PolicyStability)
	_ = f.SetCellValue(sheet, "A10", "Policy Risk")
	_ = f.SetCellValue(sheet, "B10", string(site.Policy.RiskLevel))

	_ = f.SetCellValue(sheet, "A12", "Year")
	_ = f.SetCellValue(sheet, "B12", "Period")
	_ = f.SetCellValue(sheet, "C12", "CAPEX")
	_ = f.SetCellValue(sheet, "D12", "OPEX")
	_ = f.SetCellValue(sheet, "E12", "Revenue")
	_ = f.SetCellValue(sheet, "F12", "Net")
	_ = f.SetCellValue(sheet, "G12", "Cumulative")
	for i, entry := range site.CashFlows {
		row := i + 13
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), entry.Year)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.Period)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), entry.Capex)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), entry.Opex)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), entry.Revenue)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), entry.NetCashFlow)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), entry.CumulativeCashFlow)
	}
}

// siteSheetName keeps sheet names inside the 31-char workbook limit.
func siteSheetName(site analysis.SiteResult) string {
	name := fmt.Sprintf("%d_%s", site.Ranking, site.Site.SiteID)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func formatMetric(v float64, format string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

// cellMetric maps an undefined metric to an empty cell.
func cellMetric(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}
