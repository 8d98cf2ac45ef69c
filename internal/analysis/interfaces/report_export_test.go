package interfaces

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	analysis "carbonsite-engine/internal/analysis/domain"
	finance "carbonsite-engine/internal/finance/domain"
	"carbonsite-engine/internal/policy"
	screening "carbonsite-engine/internal/screening/domain"
)

func exportReport() *analysis.Report {
	site := screening.ScoredSite{
		Site: screening.Site{
			SiteID: "DE001", Name: "BASF Ludwigshafen", Country: "DE",
		},
		Scores: screening.Scores{
			CO2Availability: 94.4, Energy: 64.9, Policy: 87.5,
			Infrastructure: 100, Financial: 51, Total: 79.3,
		},
		Ranking: 1,
	}
	return &analysis.Report{
		ID:                "report-test",
		ProjectType:       "CO2 to Methanol",
		TargetCapacityTPY: 100_000,
		Weights:           screening.DefaultWeights(),
		GeneratedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Sites: []analysis.SiteResult{
			{
				Ranking: 1,
				Site:    site,
				Financial: finance.Metrics{
					NPVEUR:             1_500_000,
					IRRPercent:         math.NaN(),
					PaybackPeriodYears: 7,
					TotalCapexEUR:      2_900_000,
					AnnualRevenueEUR:   57_000,
					AnnualOpexEUR:      143_375,
					Undefined:          []string{finance.MetricIRR},
				},
				CashFlows: []finance.CashFlowEntry{
					{Year: 1, Period: "Construction 1", Capex: -1_450_000, NetCashFlow: -1_450_000, CumulativeCashFlow: -1_450_000},
					{Year: 2, Period: "Construction 2", Capex: -1_450_000, NetCashFlow: -1_450_000, CumulativeCashFlow: -2_900_000},
				},
				Policy: policy.Metrics{
					Country: "DE", PolicyStability: 90, RiskLevel: policy.RiskHigh,
				},
				OverallRisk: "Medium",
				Risks:       []string{"Long payback period may affect financing"},
				Mitigations: []string{"Explore government grants and incentives"},
			},
		},
		Failures:        []analysis.SiteFailure{{SiteID: "US001", Error: "policy metrics: country not covered"}},
		Recommendations: []string{"Primary recommendation: Deploy at BASF Ludwigshafen (DE) with score 79.3/100"},
	}
}

func TestBuildReportXLSX(t *testing.T) {
	data, err := BuildReportXLSX(exportReport())
	if err != nil {
		t.Fatalf("BuildReportXLSX: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Summary", "Site_Comparison", "Recommendations", "1_DE001"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	name, err := f.GetCellValue("Site_Comparison", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if name != "BASF Ludwigshafen" {
		t.Errorf("comparison B2 = %q, want site name", name)
	}

	// Undefined IRR must stay an empty cell, not NaN.
	irr, err := f.GetCellValue("Site_Comparison", "K2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if irr != "" {
		t.Errorf("comparison K2 = %q, want empty", irr)
	}
}

func TestBuildReportPDF(t *testing.T) {
	data, err := BuildReportPDF(exportReport())
	if err != nil {
		t.Fatalf("BuildReportPDF: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty pdf")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header")
	}
}

func TestBuildReportNil(t *testing.T) {
	if _, err := BuildReportXLSX(nil); err == nil {
		t.Error("xlsx: expected error for nil report")
	}
	if _, err := BuildReportPDF(nil); err == nil {
		t.Error("pdf: expected error for nil report")
	}
}
