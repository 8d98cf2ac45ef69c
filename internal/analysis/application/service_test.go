package application

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"strings"
	"testing"

	analysis "carbonsite-engine/internal/analysis/domain"
	"carbonsite-engine/internal/policy"
	screening "carbonsite-engine/internal/screening/domain"
)

type stubSiteSource struct {
	sites []screening.Site
	err   error
}

func (s *stubSiteSource) ListSites(ctx context.Context) ([]screening.Site, error) {
	return s.sites, s.err
}

type memReportStore struct {
	reports map[string]*analysis.Report
}

func newMemReportStore() *memReportStore {
	return &memReportStore{reports: map[string]*analysis.Report{}}
}

func (m *memReportStore) Save(ctx context.Context, report *analysis.Report) error {
	if report.ID == "" {
		return analysis.ErrEmptyReportID
	}
	m.reports[report.ID] = report
	return nil
}

func (m *memReportStore) Get(ctx context.Context, id string) (*analysis.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, analysis.ErrReportNotFound
	}
	return report, nil
}

func (m *memReportStore) ListHeaders(ctx context.Context, limit int) ([]analysis.Report, error) {
	var headers []analysis.Report
	for _, report := range m.reports {
		header := *report
		header.Sites = nil
		header.Failures = nil
		headers = append(headers, header)
	}
	sort.Slice(headers, func(i, j int) bool {
		return headers[i].GeneratedAt.After(headers[j].GeneratedAt)
	})
	if limit > 0 && len(headers) > limit {
		headers = headers[:limit]
	}
	return headers, nil
}

func testSites() []screening.Site {
	return []screening.Site{
		{
			SiteID: "DE001", Name: "BASF Ludwigshafen", Country: "DE", Region: "Rhineland-Palatinate",
			Latitude: 49.4811, Longitude: 8.4353,
			CO2VolumeTPY: 3_200_000, CO2Concentration: 85, CO2Impurities: "Low",
			PowerPriceEURMWh: 75, PowerAvailability: 99.5, RenewableEnergyShare: 25,
			EmissionsIntensity: 450, EUETSPrice: 85, CBAMApplicable: true,
			IndustrialZone: screening.ZoneChemical, UtilityAvailability: screening.RatingExcellent,
			TransportAccess: screening.RatingExcellent,
			LaborCosts:      35, LandCosts: 200, TaxIncentives: 15,
		},
		{
			SiteID: "NL001", Name: "Shell Pernis Refinery", Country: "NL", Region: "South Holland",
			Latitude: 51.9225, Longitude: 4.4792,
			CO2VolumeTPY: 2_800_000, CO2Concentration: 90, CO2Impurities: "Medium",
			PowerPriceEURMWh: 82, PowerAvailability: 99.8, RenewableEnergyShare: 30,
			EmissionsIntensity: 520, EUETSPrice: 88, CBAMApplicable: true,
			IndustrialZone: screening.ZoneRefinery, UtilityAvailability: screening.RatingExcellent,
			TransportAccess: screening.RatingExcellent,
			LaborCosts:      38, LandCosts: 250, TaxIncentives: 20,
		},
		{
			SiteID: "IT001", Name: "Eni Porto Marghera", Country: "IT", Region: "Veneto",
			Latitude: 45.4371, Longitude: 12.3326,
			CO2VolumeTPY: 1_500_000, CO2Concentration: 80, CO2Impurities: "High",
			PowerPriceEURMWh: 95, PowerAvailability: 98.5, RenewableEnergyShare: 28,
			EmissionsIntensity: 550, EUETSPrice: 84, CBAMApplicable: true,
			IndustrialZone: screening.ZoneRefinery, UtilityAvailability: screening.RatingGood,
			TransportAccess: screening.RatingGood,
			LaborCosts:      28, LandCosts: 150, TaxIncentives: 10,
		},
	}
}

func newTestService(t *testing.T, sites []screening.Site) (*Service, *memReportStore) {
	t.Helper()
	store := newMemReportStore()
	svc, err := NewService(
		&stubSiteSource{sites: sites},
		policy.NewStaticProvider(),
		store,
		DefaultFinanceDefaults(),
		DefaultTopN,
		log.New(testWriter{t}, "", 0),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func TestRunProducesRankedReport(t *testing.T) {
	svc, store := newTestService(t, testSites())

	report, err := svc.Run(context.Background(), Request{TargetCapacityTPY: 100_000})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Sites) != 3 {
		t.Fatalf("sites = %d, want 3", len(report.Sites))
	}
	if len(report.Failures) != 0 {
		t.Fatalf("failures = %v, want none", report.Failures)
	}
	for i, result := range report.Sites {
		if result.Ranking != i+1 {
			t.Errorf("site %d ranking = %d, want %d", i, result.Ranking, i+1)
		}
		if i > 0 && result.Site.Scores.Total > report.Sites[i-1].Site.Scores.Total {
			t.Errorf("site %d breaks descending order", i)
		}
		if got := len(result.CashFlows); got != 20 {
			t.Errorf("site %s cash flow years = %d, want 20", result.Site.SiteID, got)
		}
		if result.Policy.Country != result.Site.Country {
			t.Errorf("site %s policy country = %q", result.Site.SiteID, result.Policy.Country)
		}
		if result.OverallRisk == "" {
			t.Errorf("site %s missing overall risk", result.Site.SiteID)
		}
	}
	if report.Sites[0].Site.SiteID != "DE001" {
		t.Errorf("top site = %s, want DE001", report.Sites[0].Site.SiteID)
	}

	if len(report.Recommendations) == 0 {
		t.Fatal("no recommendations")
	}
	if !strings.Contains(report.Recommendations[0], "BASF Ludwigshafen") {
		t.Errorf("primary recommendation %q does not name the top site", report.Recommendations[0])
	}

	stored, err := store.Get(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("report not persisted: %v", err)
	}
	if len(stored.Sites) != len(report.Sites) {
		t.Errorf("stored report has %d sites, want %d", len(stored.Sites), len(report.Sites))
	}
}

func TestRunAppliesTopN(t *testing.T) {
	svc, _ := newTestService(t, testSites())

	report, err := svc.Run(context.Background(), Request{TargetCapacityTPY: 100_000, TopN: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Sites) != 2 {
		t.Fatalf("sites = %d, want 2", len(report.Sites))
	}
}

func TestRunIsolatesSiteFailures(t *testing.T) {
	sites := testSites()
	sites[2].Country = "US"
	svc, _ := newTestService(t, sites)

	report, err := svc.Run(context.Background(), Request{TargetCapacityTPY: 100_000})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Sites) != 2 {
		t.Fatalf("succeeded sites = %d, want 2", len(report.Sites))
	}
	if len(report.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(report.Failures))
	}
	if report.Failures[0].SiteID != "IT001" {
		t.Errorf("failed site = %s, want IT001", report.Failures[0].SiteID)
	}
	if !strings.Contains(report.Failures[0].Error, "policy") {
		t.Errorf("failure reason %q does not mention the policy stage", report.Failures[0].Error)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t, testSites())
	ctx := context.Background()

	if _, err := svc.Run(ctx, Request{}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("zero capacity: err = %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.Run(ctx, Request{TargetCapacityTPY: 100, TopN: -1}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("negative top n: err = %v, want ErrInvalidRequest", err)
	}

	badWeights := screening.Weights{CO2Availability: 0.5, Energy: 0.2}
	if _, err := svc.Run(ctx, Request{TargetCapacityTPY: 100, Weights: badWeights}); !errors.Is(err, screening.ErrInvalidWeights) {
		t.Errorf("partial weights: err = %v, want ErrInvalidWeights", err)
	}
}

func TestRunEmptySiteSet(t *testing.T) {
	svc, _ := newTestService(t, nil)

	if _, err := svc.Run(context.Background(), Request{TargetCapacityTPY: 100}); !errors.Is(err, screening.ErrNoSites) {
		t.Errorf("err = %v, want ErrNoSites", err)
	}
}

func TestWhatIfProductPrice(t *testing.T) {
	svc, _ := newTestService(t, testSites())
	ctx := context.Background()

	report, err := svc.Run(ctx, Request{TargetCapacityTPY: 100_000})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	base, err := report.SiteResult("DE001")
	if err != nil {
		t.Fatalf("SiteResult: %v", err)
	}

	result, err := svc.WhatIf(ctx, WhatIfRequest{
		ReportID:           report.ID,
		SiteID:             "DE001",
		ProductPriceEURTon: DefaultFinanceDefaults().ProductPriceEURTon * 2,
	})
	if err != nil {
		t.Fatalf("WhatIf: %v", err)
	}
	if result.Metrics.NPVEUR <= base.Financial.NPVEUR {
		t.Errorf("npv did not improve: base %.0f, modified %.0f", base.Financial.NPVEUR, result.Metrics.NPVEUR)
	}
	delta, ok := result.Deltas["npv_eur"]
	if !ok {
		t.Fatal("missing npv delta")
	}
	if delta.Change <= 0 {
		t.Errorf("npv delta = %.0f, want positive", delta.Change)
	}
	if math.Abs(delta.Modified-result.Metrics.NPVEUR) > 1e-6 {
		t.Errorf("delta modified %.2f != metrics npv %.2f", delta.Modified, result.Metrics.NPVEUR)
	}

	stored, err := svc.Get(ctx, report.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	kept, err := stored.SiteResult("DE001")
	if err != nil {
		t.Fatalf("SiteResult: %v", err)
	}
	if kept.Financial.NPVEUR != base.Financial.NPVEUR {
		t.Error("what-if mutated the stored report")
	}
}

func TestListReturnsStoredHeaders(t *testing.T) {
	svc, _ := newTestService(t, testSites())

	first, err := svc.Run(context.Background(), Request{TargetCapacityTPY: 500})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := svc.Run(context.Background(), Request{TargetCapacityTPY: 1000})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	headers, err := svc.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(headers) != 2 {
		t.Fatalf("headers = %d, want 2", len(headers))
	}
	ids := map[string]bool{headers[0].ID: true, headers[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Fatalf("headers missing run ids: %+v", headers)
	}
	for _, header := range headers {
		if len(header.Sites) != 0 {
			t.Fatalf("header %s carries site payloads", header.ID)
		}
	}

	limited, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited headers = %d, want 1", len(limited))
	}
}

func TestWhatIfUnknownReportAndSite(t *testing.T) {
	svc, _ := newTestService(t, testSites())
	ctx := context.Background()

	if _, err := svc.WhatIf(ctx, WhatIfRequest{ReportID: "missing", SiteID: "DE001"}); !errors.Is(err, analysis.ErrReportNotFound) {
		t.Errorf("err = %v, want ErrReportNotFound", err)
	}

	report, err := svc.Run(ctx, Request{TargetCapacityTPY: 100_000})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := svc.WhatIf(ctx, WhatIfRequest{ReportID: report.ID, SiteID: "XX999"}); !errors.Is(err, analysis.ErrSiteNotInReport) {
		t.Errorf("err = %v, want ErrSiteNotInReport", err)
	}
	if _, err := svc.WhatIf(ctx, WhatIfRequest{ReportID: report.ID, SiteID: "DE001", CO2InputTPY: -1}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}
