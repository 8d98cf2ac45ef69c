package screening

import "fmt"

// Industrial zone categories recognized by the infrastructure score.
const (
	ZoneChemical = "Chemical"
	ZoneRefinery = "Refinery"
	ZoneSteel    = "Steel"
	ZoneCement   = "Cement"
	ZonePower    = "Power"
	ZoneOther    = "Other"
)

// Qualitative ratings for utilities and transport access.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
)

// Site holds the raw attributes of a candidate capture site.
// Attributes are immutable once registered; scores live on ScoredSite.
type Site struct {
	SiteID    string  `json:"site_id"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Region    string  `json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// CO2 source
	CO2VolumeTPY     float64 `json:"co2_volume_tpy"`
	CO2Concentration float64 `json:"co2_concentration"`
	CO2Impurities    string  `json:"co2_impurities"`

	// Power and energy
	PowerPriceEURMWh     float64 `json:"power_price_eur_mwh"`
	PowerAvailability    float64 `json:"power_availability"`
	RenewableEnergyShare float64 `json:"renewable_energy_share"`

	// Emissions and policy
	EmissionsIntensity float64 `json:"emissions_intensity"`
	EUETSPrice         float64 `json:"eu_ets_price"`
	CBAMApplicable     bool    `json:"cbam_applicable"`

	// Infrastructure
	IndustrialZone      string `json:"industrial_zone"`
	UtilityAvailability string `json:"utility_availability"`
	TransportAccess     string `json:"transport_access"`

	// Local cost base
	LaborCosts    float64 `json:"labor_costs"`
	LandCosts     float64 `json:"land_costs"`
	TaxIncentives float64 `json:"tax_incentives"`
}

// Validate checks the raw attributes a scoring run depends on.
func (s Site) Validate() error {
	if s.SiteID == "" {
		return fmt.Errorf("%w: empty site id", ErrInvalidSite)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: site %s: empty name", ErrInvalidSite, s.SiteID)
	}
	if s.Country == "" {
		return fmt.Errorf("%w: site %s: empty country", ErrInvalidSite, s.SiteID)
	}
	if s.CO2VolumeTPY < 0 {
		return fmt.Errorf("%w: site %s: negative co2 volume", ErrInvalidSite, s.SiteID)
	}
	if s.CO2Concentration < 0 || s.CO2Concentration > 100 {
		return fmt.Errorf("%w: site %s: co2 concentration out of range", ErrInvalidSite, s.SiteID)
	}
	if s.PowerPriceEURMWh < 0 {
		return fmt.Errorf("%w: site %s: negative power price", ErrInvalidSite, s.SiteID)
	}
	if s.PowerAvailability < 0 || s.PowerAvailability > 100 {
		return fmt.Errorf("%w: site %s: power availability out of range", ErrInvalidSite, s.SiteID)
	}
	if s.RenewableEnergyShare < 0 || s.RenewableEnergyShare > 100 {
		return fmt.Errorf("%w: site %s: renewable share out of range", ErrInvalidSite, s.SiteID)
	}
	if s.EmissionsIntensity < 0 {
		return fmt.Errorf("%w: site %s: negative emissions intensity", ErrInvalidSite, s.SiteID)
	}
	if s.EUETSPrice < 0 {
		return fmt.Errorf("%w: site %s: negative ets price", ErrInvalidSite, s.SiteID)
	}
	if s.LaborCosts < 0 {
		return fmt.Errorf("%w: site %s: negative labor costs", ErrInvalidSite, s.SiteID)
	}
	if s.LandCosts < 0 {
		return fmt.Errorf("%w: site %s: negative land costs", ErrInvalidSite, s.SiteID)
	}
	if s.TaxIncentives < 0 {
		return fmt.Errorf("%w: site %s: negative tax incentives", ErrInvalidSite, s.SiteID)
	}
	return nil
}

// Scores carries the five dimension scores and the weighted total, each 0-100.
type Scores struct {
	CO2Availability float64 `json:"co2_availability"`
	Energy          float64 `json:"energy"`
	Policy          float64 `json:"policy"`
	Infrastructure  float64 `json:"infrastructure"`
	Financial       float64 `json:"financial"`
	Total           float64 `json:"total"`
}

// ScoredSite is the evaluation output for one site. Ranking is 1-based
// and only meaningful relative to the full evaluated set.
type ScoredSite struct {
	Site
	Scores  Scores `json:"scores"`
	Ranking int    `json:"ranking"`
}

// OverallRisk bands the total score the way the screening reports present it.
func (s ScoredSite) OverallRisk() string {
	switch {
	case s.Scores.Total >= 80:
		return "Low"
	case s.Scores.Total >= 60:
		return "Medium"
	default:
		return "High"
	}
}
