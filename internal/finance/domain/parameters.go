package finance

import "fmt"

// Defaults applied by NewProjectParameters.
const (
	DefaultProjectLifetimeYears    = 20
	DefaultConstructionPeriodYears = 2
	DefaultRampUpPeriodYears       = 1
	DefaultDiscountRate            = 0.10
	DefaultEUETSPriceEURTon        = 85.0
	DefaultCarbonCreditPriceEURTon = 85.0
)

// ProjectParameters are the immutable inputs of one financial model run.
// Construction and ramp-up years are counted inside ProjectLifetimeYears:
// the cash-flow schedule always has exactly ProjectLifetimeYears entries and
// full operation covers the remainder after both initial phases.
type ProjectParameters struct {
	ProjectName string  `json:"project_name"`
	SiteName    string  `json:"site_name"`
	CO2InputTPY float64 `json:"co2_input_tpy"`
	COOutputTPY float64 `json:"co_output_tpy"`

	ProjectLifetimeYears    int `json:"project_lifetime_years"`
	ConstructionPeriodYears int `json:"construction_period_years"`
	RampUpPeriodYears       int `json:"ramp_up_period_years"`

	DiscountRate            float64 `json:"discount_rate"`
	EUETSPriceEURTon        float64 `json:"eu_ets_price_eur_ton"`
	CarbonCreditPriceEURTon float64 `json:"carbon_credit_price_eur_ton"`
}

// NewProjectParameters builds parameters with the standard defaults applied
// and validated.
func NewProjectParameters(projectName, siteName string, co2InputTPY, coOutputTPY float64) (ProjectParameters, error) {
	params := ProjectParameters{
		ProjectName:             projectName,
		SiteName:                siteName,
		CO2InputTPY:             co2InputTPY,
		COOutputTPY:             coOutputTPY,
		ProjectLifetimeYears:    DefaultProjectLifetimeYears,
		ConstructionPeriodYears: DefaultConstructionPeriodYears,
		RampUpPeriodYears:       DefaultRampUpPeriodYears,
		DiscountRate:            DefaultDiscountRate,
		EUETSPriceEURTon:        DefaultEUETSPriceEURTon,
		CarbonCreditPriceEURTon: DefaultCarbonCreditPriceEURTon,
	}
	if err := params.Validate(); err != nil {
		return ProjectParameters{}, err
	}
	return params, nil
}

// Validate checks parameter consistency before a model is built.
func (p ProjectParameters) Validate() error {
	if p.ProjectName == "" {
		return fmt.Errorf("%w: empty project name", ErrInvalidParameters)
	}
	if p.CO2InputTPY < 0 {
		return fmt.Errorf("%w: negative co2 input", ErrInvalidParameters)
	}
	if p.COOutputTPY < 0 {
		return fmt.Errorf("%w: negative product output", ErrInvalidParameters)
	}
	if p.ConstructionPeriodYears <= 0 {
		return fmt.Errorf("%w: construction period must be positive", ErrInvalidParameters)
	}
	if p.RampUpPeriodYears < 0 {
		return fmt.Errorf("%w: negative ramp-up period", ErrInvalidParameters)
	}
	if p.ProjectLifetimeYears <= p.ConstructionPeriodYears+p.RampUpPeriodYears {
		return fmt.Errorf("%w: lifetime %d leaves no operating years after %d construction + %d ramp-up",
			ErrInvalidParameters, p.ProjectLifetimeYears, p.ConstructionPeriodYears, p.RampUpPeriodYears)
	}
	if p.DiscountRate <= -1 {
		return fmt.Errorf("%w: discount rate must exceed -100%%", ErrInvalidParameters)
	}
	if p.EUETSPriceEURTon < 0 || p.CarbonCreditPriceEURTon < 0 {
		return fmt.Errorf("%w: negative carbon price", ErrInvalidParameters)
	}
	return nil
}

// OperatingYears is the number of full-operation years in the schedule.
func (p ProjectParameters) OperatingYears() int {
	return p.ProjectLifetimeYears - p.ConstructionPeriodYears - p.RampUpPeriodYears
}
