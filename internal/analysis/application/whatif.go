package application

import (
	"context"
	"fmt"
	"math"

	finance "carbonsite-engine/internal/finance/domain"
)

// WhatIfRequest tweaks selected assumptions of a stored site analysis.
// Zero-valued fields keep the assumption used by the original report.
type WhatIfRequest struct {
	ReportID           string  `json:"report_id"`
	SiteID             string  `json:"site_id"`
	EquipmentCostEUR   float64 `json:"equipment_cost_eur,omitempty"`
	PowerPriceEURMWh   float64 `json:"power_price_eur_mwh,omitempty"`
	ProductPriceEURTon float64 `json:"product_price_eur_ton,omitempty"`
	CO2InputTPY        float64 `json:"co2_input_tpy,omitempty"`
}

// MetricDelta compares one metric between the stored report and the
// what-if scenario.
type MetricDelta struct {
	Base          float64 `json:"base"`
	Modified      float64 `json:"modified"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// WhatIfResult holds the recomputed financials for one scenario. Deltas
// omits any metric that is undefined on either side.
type WhatIfResult struct {
	ReportID  string                  `json:"report_id"`
	SiteID    string                  `json:"site_id"`
	Metrics   finance.Metrics         `json:"metrics"`
	CashFlows []finance.CashFlowEntry `json:"cash_flows"`
	Deltas    map[string]MetricDelta  `json:"deltas"`
}

// WhatIf reruns the financial model for one site of a stored report with
// modified assumptions. The stored report is not changed.
func (s *Service) WhatIf(ctx context.Context, req WhatIfRequest) (*WhatIfResult, error) {
	if req.EquipmentCostEUR < 0 || req.PowerPriceEURMWh < 0 || req.ProductPriceEURTon < 0 || req.CO2InputTPY < 0 {
		return nil, fmt.Errorf("%w: negative what-if override", ErrInvalidRequest)
	}

	report, err := s.Get(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}
	base, err := report.SiteResult(req.SiteID)
	if err != nil {
		return nil, err
	}

	in := modelInputs{
		projectName:        fmt.Sprintf("%s - %s (what-if)", report.ProjectType, base.Site.Name),
		co2InputTPY:        report.TargetCapacityTPY,
		coOutputTPY:        0,
		equipmentCostEUR:   s.defaults.BaseEquipmentCostEUR * report.TargetCapacityTPY / s.defaults.ReferenceCapacityTPY,
		powerPriceEURMWh:   base.Site.PowerPriceEURMWh,
		laborRateEURHour:   base.Site.LaborCosts,
		productPriceEURTon: s.defaults.ProductPriceEURTon,
	}
	if req.CO2InputTPY > 0 {
		in.co2InputTPY = req.CO2InputTPY
		in.equipmentCostEUR = s.defaults.BaseEquipmentCostEUR * req.CO2InputTPY / s.defaults.ReferenceCapacityTPY
	}
	if req.EquipmentCostEUR > 0 {
		in.equipmentCostEUR = req.EquipmentCostEUR
	}
	if req.PowerPriceEURMWh > 0 {
		in.powerPriceEURMWh = req.PowerPriceEURMWh
	}
	if req.ProductPriceEURTon > 0 {
		in.productPriceEURTon = req.ProductPriceEURTon
	}
	in.coOutputTPY = in.co2InputTPY * s.defaults.ConversionEfficiency

	model, err := s.buildModel(base.Site.Site, in)
	if err != nil {
		return nil, err
	}
	cashFlows, err := model.GenerateCashFlows()
	if err != nil {
		return nil, err
	}
	metrics, err := model.ComputeMetrics()
	if err != nil {
		return nil, err
	}

	deltas := map[string]MetricDelta{}
	addDelta(deltas, "npv_eur", base.Financial.NPVEUR, metrics.NPVEUR)
	addDelta(deltas, finance.MetricIRR, base.Financial.IRRPercent, metrics.IRRPercent)
	addDelta(deltas, "payback_period_years",
		float64(base.Financial.PaybackPeriodYears), float64(metrics.PaybackPeriodYears))
	addDelta(deltas, finance.MetricAnnualROI, base.Financial.AnnualROIPercent, metrics.AnnualROIPercent)

	return &WhatIfResult{
		ReportID:  report.ID,
		SiteID:    req.SiteID,
		Metrics:   metrics,
		CashFlows: cashFlows,
		Deltas:    deltas,
	}, nil
}

func addDelta(deltas map[string]MetricDelta, name string, base, modified float64) {
	if math.IsNaN(base) || math.IsInf(base, 0) || math.IsNaN(modified) || math.IsInf(modified, 0) {
		return
	}
	d := MetricDelta{Base: base, Modified: modified, Change: modified - base}
	if base != 0 {
		d.ChangePercent = (modified - base) / math.Abs(base) * 100
	}
	deltas[name] = d
}
