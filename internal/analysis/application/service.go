package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	analysis "carbonsite-engine/internal/analysis/domain"
	finance "carbonsite-engine/internal/finance/domain"
	"carbonsite-engine/internal/policy"
	screening "carbonsite-engine/internal/screening/domain"
)

// DefaultTopN is the number of ranked sites analyzed when unspecified.
const DefaultTopN = 5

var (
	// ErrInvalidRequest is returned for a malformed analysis request.
	ErrInvalidRequest = errors.New("analysis service: invalid request")
)

// FinanceDefaults parameterize the per-site financial model. Equipment cost
// scales linearly from the reference capacity.
type FinanceDefaults struct {
	BaseEquipmentCostEUR      float64 `yaml:"base_equipment_cost_eur"`
	ReferenceCapacityTPY      float64 `yaml:"reference_capacity_tpy"`
	ConversionEfficiency      float64 `yaml:"conversion_efficiency"`
	PowerConsumptionMWhPerTon float64 `yaml:"power_consumption_mwh_per_ton"`
	WaterConsumptionM3PerTon  float64 `yaml:"water_consumption_m3_per_ton"`
	WaterPriceEURM3           float64 `yaml:"water_price_eur_m3"`
	LaborHoursPerTon          float64 `yaml:"labor_hours_per_ton"`
	ProductPriceEURTon        float64 `yaml:"product_price_eur_ton"`
}

// DefaultFinanceDefaults returns the reference plant assumptions.
func DefaultFinanceDefaults() FinanceDefaults {
	return FinanceDefaults{
		BaseEquipmentCostEUR:      2_000_000,
		ReferenceCapacityTPY:      100,
		ConversionEfficiency:      0.5,
		PowerConsumptionMWhPerTon: 2.5,
		WaterConsumptionM3PerTon:  5,
		WaterPriceEURM3:           2,
		LaborHoursPerTon:          10,
		ProductPriceEURTon:        800,
	}
}

// Validate checks the assumptions before a run.
func (d FinanceDefaults) Validate() error {
	if d.BaseEquipmentCostEUR <= 0 {
		return fmt.Errorf("%w: non-positive base equipment cost", ErrInvalidRequest)
	}
	if d.ReferenceCapacityTPY <= 0 {
		return fmt.Errorf("%w: non-positive reference capacity", ErrInvalidRequest)
	}
	if d.ConversionEfficiency <= 0 || d.ConversionEfficiency > 1 {
		return fmt.Errorf("%w: conversion efficiency out of (0,1]", ErrInvalidRequest)
	}
	if d.ProductPriceEURTon < 0 {
		return fmt.Errorf("%w: negative product price", ErrInvalidRequest)
	}
	return nil
}

// Request describes one comprehensive analysis run. A zero Weights vector
// selects the default weighting; a partial one is rejected by the engine.
type Request struct {
	ProjectType       string            `json:"project_type"`
	TargetCapacityTPY float64           `json:"target_capacity_tpy"`
	TopN              int               `json:"top_n"`
	Weights           screening.Weights `json:"weights"`
}

// SiteSource lists the candidate sites to analyze.
type SiteSource interface {
	ListSites(ctx context.Context) ([]screening.Site, error)
}

// ReportStore persists and retrieves analysis reports.
type ReportStore interface {
	Save(ctx context.Context, report *analysis.Report) error
	Get(ctx context.Context, id string) (*analysis.Report, error)
	ListHeaders(ctx context.Context, limit int) ([]analysis.Report, error)
}

// Service runs comprehensive siting analyses: screening, per-site financial
// modeling, policy metrics, risk flags and recommendations.
type Service struct {
	sites    SiteSource
	policies policy.Provider
	reports  ReportStore
	defaults FinanceDefaults
	logger   *log.Logger
	topN     int
}

// NewService constructs a Service. topN is the number of ranked sites
// analyzed when a request leaves it unset; zero falls back to DefaultTopN.
func NewService(sites SiteSource, policies policy.Provider, reports ReportStore, defaults FinanceDefaults, topN int, logger *log.Logger) (*Service, error) {
	if sites == nil {
		return nil, errors.New("analysis service: nil site source")
	}
	if policies == nil {
		return nil, errors.New("analysis service: nil policy provider")
	}
	if reports == nil {
		return nil, errors.New("analysis service: nil report store")
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	if topN < 0 {
		return nil, errors.New("analysis service: negative top n")
	}
	if topN == 0 {
		topN = DefaultTopN
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		sites:    sites,
		policies: policies,
		reports:  reports,
		defaults: defaults,
		logger:   logger,
		topN:     topN,
	}, nil
}

// Run executes the full pipeline and persists the resulting report. A site
// whose financial or policy stage fails is recorded as a failure without
// disturbing the results of the other sites; an empty site set or a bad
// weight vector fails the whole run before any site is analyzed.
func (s *Service) Run(ctx context.Context, req Request) (*analysis.Report, error) {
	if req.TargetCapacityTPY <= 0 {
		return nil, fmt.Errorf("%w: non-positive target capacity", ErrInvalidRequest)
	}
	if req.TopN < 0 {
		return nil, fmt.Errorf("%w: negative top n", ErrInvalidRequest)
	}
	if req.TopN == 0 {
		req.TopN = s.topN
	}
	if req.ProjectType == "" {
		req.ProjectType = "CO2 to Methanol"
	}
	if (req.Weights == screening.Weights{}) {
		req.Weights = screening.DefaultWeights()
	}

	engine, err := screening.NewEngine(req.Weights)
	if err != nil {
		return nil, err
	}

	sites, err := s.sites.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis service: list sites: %w", err)
	}
	if len(sites) == 0 {
		return nil, screening.ErrNoSites
	}
	if err := engine.AddSites(sites); err != nil {
		return nil, err
	}
	if _, err := engine.EvaluateAll(); err != nil {
		return nil, err
	}
	top, err := engine.TopN(req.TopN)
	if err != nil {
		return nil, err
	}

	report := &analysis.Report{
		ID:                analysis.NewReportID(),
		ProjectType:       req.ProjectType,
		TargetCapacityTPY: req.TargetCapacityTPY,
		Weights:           req.Weights,
		GeneratedAt:       time.Now().UTC(),
	}

	for _, site := range top {
		result, err := s.analyzeSite(ctx, site, req)
		if err != nil {
			s.logger.Printf("analysis: site %s failed: %v", site.SiteID, err)
			report.Failures = append(report.Failures, analysis.SiteFailure{
				SiteID: site.SiteID,
				Error:  err.Error(),
			})
			continue
		}
		report.Sites = append(report.Sites, result)
	}

	report.Recommendations = overallRecommendations(report.Sites, req.ProjectType, req.TargetCapacityTPY)

	if err := s.reports.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("analysis service: save report: %w", err)
	}
	s.logger.Printf("analysis: report %s generated, %d sites, %d failures",
		report.ID, len(report.Sites), len(report.Failures))
	return report, nil
}

// Get loads a stored report.
func (s *Service) Get(ctx context.Context, id string) (*analysis.Report, error) {
	if id == "" {
		return nil, analysis.ErrEmptyReportID
	}
	return s.reports.Get(ctx, id)
}

// List returns stored report headers without site payloads, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]analysis.Report, error) {
	return s.reports.ListHeaders(ctx, limit)
}

func (s *Service) analyzeSite(ctx context.Context, site screening.ScoredSite, req Request) (analysis.SiteResult, error) {
	model, err := s.buildModel(site.Site, modelInputs{
		projectName:        fmt.Sprintf("%s - %s", req.ProjectType, site.Name),
		co2InputTPY:        req.TargetCapacityTPY,
		coOutputTPY:        req.TargetCapacityTPY * s.defaults.ConversionEfficiency,
		equipmentCostEUR:   s.defaults.BaseEquipmentCostEUR * req.TargetCapacityTPY / s.defaults.ReferenceCapacityTPY,
		powerPriceEURMWh:   site.PowerPriceEURMWh,
		laborRateEURHour:   site.LaborCosts,
		productPriceEURTon: s.defaults.ProductPriceEURTon,
	})
	if err != nil {
		return analysis.SiteResult{}, err
	}

	cashFlows, err := model.GenerateCashFlows()
	if err != nil {
		return analysis.SiteResult{}, err
	}
	metrics, err := model.ComputeMetrics()
	if err != nil {
		return analysis.SiteResult{}, err
	}

	policyMetrics, err := s.policies.MetricsFor(ctx, site.Country, model.Parameters().ProjectLifetimeYears)
	if err != nil {
		return analysis.SiteResult{}, fmt.Errorf("policy metrics: %w", err)
	}

	risks := identifyRisks(site, metrics, policyMetrics)
	return analysis.SiteResult{
		Ranking:     site.Ranking,
		Site:        site,
		Financial:   metrics,
		CashFlows:   cashFlows,
		Policy:      policyMetrics,
		OverallRisk: site.OverallRisk(),
		Risks:       risks,
		Mitigations: mitigationStrategies(site, metrics, policyMetrics),
	}, nil
}

type modelInputs struct {
	projectName        string
	co2InputTPY        float64
	coOutputTPY        float64
	equipmentCostEUR   float64
	powerPriceEURMWh   float64
	laborRateEURHour   float64
	productPriceEURTon float64
}

func (s *Service) buildModel(site screening.Site, in modelInputs) (*finance.Model, error) {
	params, err := finance.NewProjectParameters(in.projectName, site.Name, in.co2InputTPY, in.coOutputTPY)
	if err != nil {
		return nil, err
	}
	model, err := finance.NewModel(params)
	if err != nil {
		return nil, err
	}
	if err := model.ComputeCapex(in.equipmentCostEUR); err != nil {
		return nil, err
	}
	if err := model.ComputeOpex(finance.OpexInputs{
		PowerPriceEURMWh:          in.powerPriceEURMWh,
		PowerConsumptionMWhPerTon: s.defaults.PowerConsumptionMWhPerTon,
		WaterConsumptionM3PerTon:  s.defaults.WaterConsumptionM3PerTon,
		WaterPriceEURM3:           s.defaults.WaterPriceEURM3,
		LaborHoursPerTon:          s.defaults.LaborHoursPerTon,
		LaborRateEURPerHour:       in.laborRateEURHour,
	}); err != nil {
		return nil, err
	}
	if err := model.ComputeRevenue(in.productPriceEURTon, 0); err != nil {
		return nil, err
	}
	return model, nil
}
