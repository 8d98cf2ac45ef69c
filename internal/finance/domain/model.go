package finance

import "fmt"

// RampUpFactor is the fraction of nameplate capacity reached during ramp-up.
const RampUpFactor = 0.5

// CashFlowEntry is one project year of the schedule. Capex and opex are
// recorded as negative outflows; CumulativeCashFlow is the running sum of
// net cash flow in chronological order.
type CashFlowEntry struct {
	Year               int     `json:"year"`
	Period             string  `json:"period"`
	Capex              float64 `json:"capex"`
	Opex               float64 `json:"opex"`
	Revenue            float64 `json:"revenue"`
	NetCashFlow        float64 `json:"net_cash_flow"`
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`
}

// Model computes the cost structure, cash-flow schedule and investment
// metrics for one candidate deployment. Steps must run in order: capex,
// opex, revenue, cash flows, metrics. A Model is single-use and never
// shared across sites.
type Model struct {
	params ProjectParameters
	costs  CostStructure

	capexDone   bool
	opexDone    bool
	revenueDone bool

	cashFlows []CashFlowEntry
}

// NewModel constructs a Model for validated project parameters.
func NewModel(params ProjectParameters) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Model{params: params}, nil
}

// Parameters returns the project parameters.
func (m *Model) Parameters() ProjectParameters { return m.params }

// Costs returns the cost structure in its current stage of completion.
func (m *Model) Costs() CostStructure { return m.costs }

// ComputeCapex fills the capital-cost breakdown. Installation, engineering
// and contingency are fixed fractions of the equipment cost.
func (m *Model) ComputeCapex(equipmentCost float64, opts ...CapexOption) error {
	if equipmentCost < 0 {
		return fmt.Errorf("%w: %.2f", ErrNegativeEquipmentCost, equipmentCost)
	}
	factors := capexFactors{
		installation: DefaultInstallationFactor,
		engineering:  DefaultEngineeringFactor,
		contingency:  DefaultContingencyFactor,
	}
	for _, opt := range opts {
		opt(&factors)
	}

	m.costs.EquipmentCapex = equipmentCost
	m.costs.InstallationCapex = equipmentCost * factors.installation
	m.costs.EngineeringCapex = equipmentCost * factors.engineering
	m.costs.ContingencyCapex = equipmentCost * factors.contingency
	m.costs.TotalCapex = m.costs.EquipmentCapex + m.costs.InstallationCapex +
		m.costs.EngineeringCapex + m.costs.ContingencyCapex

	m.capexDone = true
	m.cashFlows = nil
	return nil
}

// ComputeOpex fills the operating-cost breakdown. Electricity, water and
// labor scale with product output; maintenance and insurance scale with
// total capex, so capex must be computed first.
func (m *Model) ComputeOpex(in OpexInputs) error {
	if !m.capexDone {
		return ErrCapexNotComputed
	}
	if err := in.validate(); err != nil {
		return err
	}
	if in.MaintenanceFactor == 0 {
		in.MaintenanceFactor = DefaultMaintenanceFactor
	}
	if in.InsuranceFactor == 0 {
		in.InsuranceFactor = DefaultInsuranceFactor
	}

	output := m.params.COOutputTPY
	m.costs.ElectricityCost = output * in.PowerConsumptionMWhPerTon * in.PowerPriceEURMWh
	m.costs.WaterCost = output * in.WaterConsumptionM3PerTon * in.WaterPriceEURM3
	m.costs.LaborCost = output * in.LaborHoursPerTon * in.LaborRateEURPerHour
	m.costs.MaintenanceCost = m.costs.TotalCapex * in.MaintenanceFactor
	m.costs.InsuranceCost = m.costs.TotalCapex * in.InsuranceFactor
	m.costs.TotalOpex = m.costs.ElectricityCost + m.costs.WaterCost +
		m.costs.LaborCost + m.costs.MaintenanceCost + m.costs.InsuranceCost

	m.opexDone = true
	m.cashFlows = nil
	return nil
}

// ComputeRevenue fills the revenue breakdown: product sales at the given
// price, carbon credits on the credited volume (defaulting to the CO2 input
// when zero) and avoided EU ETS costs on the CO2 input. Opex must be
// computed first.
func (m *Model) ComputeRevenue(productPriceEURTon, carbonCreditVolumeTPY float64) error {
	if !m.opexDone {
		return ErrOpexNotComputed
	}
	if productPriceEURTon < 0 || carbonCreditVolumeTPY < 0 {
		return ErrInvalidRevenueInput
	}
	if carbonCreditVolumeTPY == 0 {
		carbonCreditVolumeTPY = m.params.CO2InputTPY
	}

	m.costs.ProductSalesRevenue = m.params.COOutputTPY * productPriceEURTon
	m.costs.CarbonCreditsRevenue = carbonCreditVolumeTPY * m.params.CarbonCreditPriceEURTon
	m.costs.AvoidedCO2Costs = m.params.CO2InputTPY * m.params.EUETSPriceEURTon
	m.costs.TotalRevenue = m.costs.ProductSalesRevenue +
		m.costs.CarbonCreditsRevenue + m.costs.AvoidedCO2Costs

	m.revenueDone = true
	m.cashFlows = nil
	return nil
}

// GenerateCashFlows builds the annual schedule in three phases: construction
// (capex spread evenly, no operations), ramp-up (revenue and opex at
// RampUpFactor of nameplate) and full operation. The schedule has exactly
// ProjectLifetimeYears entries.
func (m *Model) GenerateCashFlows() ([]CashFlowEntry, error) {
	if !m.capexDone {
		return nil, ErrCapexNotComputed
	}
	if !m.opexDone {
		return nil, ErrOpexNotComputed
	}
	if !m.revenueDone {
		return nil, ErrRevenueNotComputed
	}

	schedule := make([]CashFlowEntry, 0, m.params.ProjectLifetimeYears)
	year := 0
	cumulative := 0.0

	annualCapex := m.costs.TotalCapex / float64(m.params.ConstructionPeriodYears)
	for i := 0; i < m.params.ConstructionPeriodYears; i++ {
		cumulative -= annualCapex
		schedule = append(schedule, CashFlowEntry{
			Year:               year,
			Period:             fmt.Sprintf("Construction %d", i+1),
			Capex:              -annualCapex,
			NetCashFlow:        -annualCapex,
			CumulativeCashFlow: cumulative,
		})
		year++
	}

	for i := 0; i < m.params.RampUpPeriodYears; i++ {
		revenue := m.costs.TotalRevenue * RampUpFactor
		opex := m.costs.TotalOpex * RampUpFactor
		net := revenue - opex
		cumulative += net
		schedule = append(schedule, CashFlowEntry{
			Year:               year,
			Period:             fmt.Sprintf("Ramp-up %d", i+1),
			Opex:               -opex,
			Revenue:            revenue,
			NetCashFlow:        net,
			CumulativeCashFlow: cumulative,
		})
		year++
	}

	for i := 0; i < m.params.OperatingYears(); i++ {
		net := m.costs.TotalRevenue - m.costs.TotalOpex
		cumulative += net
		schedule = append(schedule, CashFlowEntry{
			Year:               year,
			Period:             fmt.Sprintf("Operation %d", i+1),
			Opex:               -m.costs.TotalOpex,
			Revenue:            m.costs.TotalRevenue,
			NetCashFlow:        net,
			CumulativeCashFlow: cumulative,
		})
		year++
	}

	m.cashFlows = schedule
	return m.CashFlows(), nil
}

// CashFlows returns a copy of the generated schedule, or nil before
// GenerateCashFlows runs.
func (m *Model) CashFlows() []CashFlowEntry {
	if m.cashFlows == nil {
		return nil
	}
	out := make([]CashFlowEntry, len(m.cashFlows))
	copy(out, m.cashFlows)
	return out
}
