package finance

import (
	"encoding/json"
	"math"
)

// Metric names reported in Metrics.Undefined when a value is degenerate.
const (
	MetricIRR               = "irr_percent"
	MetricProfitabilityIdx  = "profitability_index"
	MetricAnnualROI         = "annual_roi_percent"
	MetricCostPerTonAvoided = "cost_per_ton_co2_avoided_eur"
	MetricRevenuePerTon     = "revenue_per_ton_product_eur"
)

// Metrics are the derived investment metrics of one model run. Metrics whose
// inputs are degenerate (zero capex, zero output, no IRR sign change) are
// NaN and listed by name in Undefined instead of causing a runtime error;
// they encode as JSON null.
type Metrics struct {
	NPVEUR                  float64 `json:"npv_eur"`
	IRRPercent              float64 `json:"irr_percent"`
	PaybackPeriodYears      int     `json:"payback_period_years"`
	ProfitabilityIndex      float64 `json:"profitability_index"`
	AnnualROIPercent        float64 `json:"annual_roi_percent"`
	CostPerTonCO2AvoidedEUR float64 `json:"cost_per_ton_co2_avoided_eur"`
	RevenuePerTonProductEUR float64 `json:"revenue_per_ton_product_eur"`

	TotalCapexEUR    float64 `json:"total_capex_eur"`
	AnnualRevenueEUR float64 `json:"annual_revenue_eur"`
	AnnualOpexEUR    float64 `json:"annual_opex_eur"`
	AnnualProfitEUR  float64 `json:"annual_profit_eur"`

	Undefined []string `json:"undefined,omitempty"`
}

// IsUndefined reports whether the named metric is degenerate.
func (m Metrics) IsUndefined(name string) bool {
	for _, entry := range m.Undefined {
		if entry == name {
			return true
		}
	}
	return false
}

// MarshalJSON encodes NaN metrics as null; encoding/json rejects NaN.
func (m Metrics) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"npv_eur":                      floatOrNil(m.NPVEUR),
		"irr_percent":                  floatOrNil(m.IRRPercent),
		"payback_period_years":         m.PaybackPeriodYears,
		"profitability_index":          floatOrNil(m.ProfitabilityIndex),
		"annual_roi_percent":           floatOrNil(m.AnnualROIPercent),
		"cost_per_ton_co2_avoided_eur": floatOrNil(m.CostPerTonCO2AvoidedEUR),
		"revenue_per_ton_product_eur":  floatOrNil(m.RevenuePerTonProductEUR),
		"total_capex_eur":              floatOrNil(m.TotalCapexEUR),
		"annual_revenue_eur":           floatOrNil(m.AnnualRevenueEUR),
		"annual_opex_eur":              floatOrNil(m.AnnualOpexEUR),
		"annual_profit_eur":            floatOrNil(m.AnnualProfitEUR),
	}
	if len(m.Undefined) > 0 {
		out["undefined"] = m.Undefined
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null for metrics encoded by MarshalJSON.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw struct {
		NPVEUR                  *float64 `json:"npv_eur"`
		IRRPercent              *float64 `json:"irr_percent"`
		PaybackPeriodYears      int      `json:"payback_period_years"`
		ProfitabilityIndex      *float64 `json:"profitability_index"`
		AnnualROIPercent        *float64 `json:"annual_roi_percent"`
		CostPerTonCO2AvoidedEUR *float64 `json:"cost_per_ton_co2_avoided_eur"`
		RevenuePerTonProductEUR *float64 `json:"revenue_per_ton_product_eur"`
		TotalCapexEUR           *float64 `json:"total_capex_eur"`
		AnnualRevenueEUR        *float64 `json:"annual_revenue_eur"`
		AnnualOpexEUR           *float64 `json:"annual_opex_eur"`
		AnnualProfitEUR         *float64 `json:"annual_profit_eur"`
		Undefined               []string `json:"undefined"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metrics{
		NPVEUR:                  floatOrNaN(raw.NPVEUR),
		IRRPercent:              floatOrNaN(raw.IRRPercent),
		PaybackPeriodYears:      raw.PaybackPeriodYears,
		ProfitabilityIndex:      floatOrNaN(raw.ProfitabilityIndex),
		AnnualROIPercent:        floatOrNaN(raw.AnnualROIPercent),
		CostPerTonCO2AvoidedEUR: floatOrNaN(raw.CostPerTonCO2AvoidedEUR),
		RevenuePerTonProductEUR: floatOrNaN(raw.RevenuePerTonProductEUR),
		TotalCapexEUR:           floatOrNaN(raw.TotalCapexEUR),
		AnnualRevenueEUR:        floatOrNaN(raw.AnnualRevenueEUR),
		AnnualOpexEUR:           floatOrNaN(raw.AnnualOpexEUR),
		AnnualProfitEUR:         floatOrNaN(raw.AnnualProfitEUR),
		Undefined:               raw.Undefined,
	}
	return nil
}

func floatOrNil(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// ComputeMetrics derives the investment metrics from the generated schedule.
func (m *Model) ComputeMetrics() (Metrics, error) {
	if len(m.cashFlows) == 0 {
		return Metrics{}, ErrNoCashFlows
	}

	nets := make([]float64, len(m.cashFlows))
	for i, entry := range m.cashFlows {
		nets[i] = entry.NetCashFlow
	}

	metrics := Metrics{
		NPVEUR:             npv(nets, m.params.DiscountRate),
		PaybackPeriodYears: paybackPeriod(m.cashFlows),
		TotalCapexEUR:      m.costs.TotalCapex,
		AnnualRevenueEUR:   m.costs.TotalRevenue,
		AnnualOpexEUR:      m.costs.TotalOpex,
		AnnualProfitEUR:    m.costs.TotalRevenue - m.costs.TotalOpex,
	}

	irr, ok := solveIRR(nets)
	if ok {
		metrics.IRRPercent = irr * 100
	} else {
		metrics.IRRPercent = math.NaN()
		metrics.Undefined = append(metrics.Undefined, MetricIRR)
	}

	if m.costs.TotalCapex > 0 {
		metrics.ProfitabilityIndex = (metrics.NPVEUR + m.costs.TotalCapex) / m.costs.TotalCapex
		metrics.AnnualROIPercent = metrics.AnnualProfitEUR / m.costs.TotalCapex * 100
	} else {
		metrics.ProfitabilityIndex = math.NaN()
		metrics.AnnualROIPercent = math.NaN()
		metrics.Undefined = append(metrics.Undefined, MetricProfitabilityIdx, MetricAnnualROI)
	}

	if m.params.CO2InputTPY > 0 {
		metrics.CostPerTonCO2AvoidedEUR = -metrics.NPVEUR /
			(m.params.CO2InputTPY * float64(m.params.ProjectLifetimeYears))
	} else {
		metrics.CostPerTonCO2AvoidedEUR = math.NaN()
		metrics.Undefined = append(metrics.Undefined, MetricCostPerTonAvoided)
	}

	if m.params.COOutputTPY > 0 {
		metrics.RevenuePerTonProductEUR = m.costs.ProductSalesRevenue / m.params.COOutputTPY
	} else {
		metrics.RevenuePerTonProductEUR = math.NaN()
		metrics.Undefined = append(metrics.Undefined, MetricRevenuePerTon)
	}

	return metrics, nil
}

// npv discounts the net cash flows at the given annual rate; year 0 is
// undiscounted.
func npv(nets []float64, rate float64) float64 {
	total := 0.0
	for i, cf := range nets {
		total += cf / math.Pow(1+rate, float64(i))
	}
	return total
}

// IRR solver bounds and tolerances.
const (
	irrLowerBound = -0.99
	irrUpperBound = 10.0
	irrTolerance  = 1e-7
	irrMaxIter    = 200
)

// solveIRR finds the rate where NPV crosses zero by bisection over
// [irrLowerBound, irrUpperBound]. Returns false when NPV has no sign change
// in that range (all-negative or all-positive schedules have no IRR).
func solveIRR(nets []float64) (float64, bool) {
	lo, hi := irrLowerBound, irrUpperBound
	npvLo, npvHi := npv(nets, lo), npv(nets, hi)
	if npvLo == 0 {
		return lo, true
	}
	if npvHi == 0 {
		return hi, true
	}
	if (npvLo > 0) == (npvHi > 0) {
		return 0, false
	}

	for i := 0; i < irrMaxIter; i++ {
		mid := (lo + hi) / 2
		npvMid := npv(nets, mid)
		if math.Abs(npvMid) < irrTolerance || hi-lo < irrTolerance {
			return mid, true
		}
		if (npvMid > 0) == (npvLo > 0) {
			lo, npvLo = mid, npvMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}

// paybackPeriod returns the first year whose cumulative cash flow reaches
// zero, or the schedule length when the project never pays back.
func paybackPeriod(schedule []CashFlowEntry) int {
	for i, entry := range schedule {
		if entry.CumulativeCashFlow >= 0 {
			return i
		}
	}
	return len(schedule)
}
