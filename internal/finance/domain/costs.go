package finance

// Default cost factors, as fractions of equipment cost (capex) or total
// capex (opex).
const (
	DefaultInstallationFactor = 0.15
	DefaultEngineeringFactor  = 0.10
	DefaultContingencyFactor  = 0.20
	DefaultMaintenanceFactor  = 0.03
	DefaultInsuranceFactor    = 0.01
)

// CostStructure is the staged cost and revenue breakdown of one deployment.
// Capex fields are filled by ComputeCapex, opex fields by ComputeOpex and
// revenue fields by ComputeRevenue; each stage's fields are zero until its
// step runs.
type CostStructure struct {
	// Capital costs (EUR)
	EquipmentCapex    float64 `json:"equipment_capex"`
	InstallationCapex float64 `json:"installation_capex"`
	EngineeringCapex  float64 `json:"engineering_capex"`
	ContingencyCapex  float64 `json:"contingency_capex"`
	TotalCapex        float64 `json:"total_capex"`

	// Operating costs (EUR/year)
	ElectricityCost float64 `json:"electricity_cost"`
	WaterCost       float64 `json:"water_cost"`
	LaborCost       float64 `json:"labor_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`
	InsuranceCost   float64 `json:"insurance_cost"`
	TotalOpex       float64 `json:"total_opex"`

	// Revenue streams (EUR/year)
	ProductSalesRevenue  float64 `json:"product_sales_revenue"`
	CarbonCreditsRevenue float64 `json:"carbon_credits_revenue"`
	AvoidedCO2Costs      float64 `json:"avoided_co2_costs"`
	TotalRevenue         float64 `json:"total_revenue"`
}

// CapexOption adjusts the capex factors from their defaults.
type CapexOption func(*capexFactors)

type capexFactors struct {
	installation float64
	engineering  float64
	contingency  float64
}

// WithInstallationFactor overrides the installation fraction of equipment cost.
func WithInstallationFactor(f float64) CapexOption {
	return func(c *capexFactors) {
		if f >= 0 {
			c.installation = f
		}
	}
}

// WithEngineeringFactor overrides the engineering fraction of equipment cost.
func WithEngineeringFactor(f float64) CapexOption {
	return func(c *capexFactors) {
		if f >= 0 {
			c.engineering = f
		}
	}
}

// WithContingencyFactor overrides the contingency fraction of equipment cost.
func WithContingencyFactor(f float64) CapexOption {
	return func(c *capexFactors) {
		if f >= 0 {
			c.contingency = f
		}
	}
}

// OpexInputs parameterizes the operating-cost step. Zero-valued maintenance
// and insurance factors take the defaults.
type OpexInputs struct {
	PowerPriceEURMWh          float64 `json:"power_price_eur_mwh"`
	PowerConsumptionMWhPerTon float64 `json:"power_consumption_mwh_per_ton"`
	WaterConsumptionM3PerTon  float64 `json:"water_consumption_m3_per_ton"`
	WaterPriceEURM3           float64 `json:"water_price_eur_m3"`
	LaborHoursPerTon          float64 `json:"labor_hours_per_ton"`
	LaborRateEURPerHour       float64 `json:"labor_rate_eur_per_hour"`
	MaintenanceFactor         float64 `json:"maintenance_factor"`
	InsuranceFactor           float64 `json:"insurance_factor"`
}

func (in OpexInputs) validate() error {
	if in.PowerPriceEURMWh < 0 || in.PowerConsumptionMWhPerTon < 0 ||
		in.WaterConsumptionM3PerTon < 0 || in.WaterPriceEURM3 < 0 ||
		in.LaborHoursPerTon < 0 || in.LaborRateEURPerHour < 0 ||
		in.MaintenanceFactor < 0 || in.InsuranceFactor < 0 {
		return ErrInvalidOpexInput
	}
	return nil
}
