package screening

import "math"

// rampScore interpolates a sub-score between two breakpoints and clamps the
// result to [0, maxPoints]. bestAt is the value at which the full maxPoints
// is awarded, worstAt the value at which the score reaches zero; the two may
// be given in either order, so the same helper serves rising ramps (EU ETS
// price) and falling ramps (power price, labor, land, emissions intensity).
func rampScore(value, bestAt, worstAt, maxPoints float64) float64 {
	score := maxPoints * (worstAt - value) / (worstAt - bestAt)
	return math.Min(maxPoints, math.Max(0, score))
}

func clampScore(score float64) float64 {
	return math.Min(100, math.Max(0, score))
}

// CO2Score rates CO2 feedstock availability (0-100): up to 50 points for
// volume (saturating at 1000 TPY), up to 30 for concentration between 20%
// and 100%, plus a flat 20-point impurity allowance. The source data carries
// no usable impurity model, so that component stays a constant rather than
// an invented formula.
func CO2Score(site Site) float64 {
	volumeScore := math.Min(50, site.CO2VolumeTPY/1000*50)
	concentrationScore := rampScore(site.CO2Concentration, 100, 20, 30)
	const impurityScore = 20
	return clampScore(volumeScore + concentrationScore + impurityScore)
}

// EnergyScore rates power cost and supply (0-100): 50 points at <=EUR 50/MWh
// falling to zero at EUR 150/MWh, 0.3 points per renewable-share percent and
// 0.2 points per availability percent.
func EnergyScore(site Site) float64 {
	priceScore := rampScore(site.PowerPriceEURMWh, 50, 150, 50)
	renewableScore := site.RenewableEnergyShare * 0.3
	availabilityScore := site.PowerAvailability * 0.2
	return clampScore(priceScore + renewableScore + availabilityScore)
}

// PolicyScore rates EU policy alignment (0-100): EU ETS price ramps from zero
// at EUR 40/t to 40 points at EUR 80/t, CBAM applicability is worth a flat 30
// points, and grid emissions intensity ramps from 30 points at 200 kg/MWh
// down to zero at 800 kg/MWh.
func PolicyScore(site Site) float64 {
	etsScore := rampScore(site.EUETSPrice, 80, 40, 40)
	var cbamScore float64
	if site.CBAMApplicable {
		cbamScore = 30
	}
	intensityScore := rampScore(site.EmissionsIntensity, 200, 800, 30)
	return clampScore(etsScore + cbamScore + intensityScore)
}

var zoneScores = map[string]float64{
	ZoneChemical: 40,
	ZoneRefinery: 35,
	ZoneSteel:    30,
	ZoneCement:   25,
	ZonePower:    20,
	ZoneOther:    15,
}

var ratingScores = map[string]float64{
	RatingExcellent: 30,
	RatingGood:      25,
	RatingFair:      20,
	RatingPoor:      10,
}

// InfrastructureScore rates co-location quality (0-100) from three
// categorical tables: industrial zone type, utility availability and
// transport access. Unknown categories fall back to the lowest tier.
func InfrastructureScore(site Site) float64 {
	zoneScore, ok := zoneScores[site.IndustrialZone]
	if !ok {
		zoneScore = 15
	}
	utilityScore, ok := ratingScores[site.UtilityAvailability]
	if !ok {
		utilityScore = 15
	}
	transportScore, ok := ratingScores[site.TransportAccess]
	if !ok {
		transportScore = 15
	}
	return clampScore(zoneScore + utilityScore + transportScore)
}

// FinancialScore rates the local cost base (0-100): labor ramps from 40
// points at <=EUR 25/h to zero at EUR 50/h, land from 30 points at
// <=EUR 100/m2 to zero at EUR 500/m2, and tax incentives add 0.3 points per
// percent up to 30.
func FinancialScore(site Site) float64 {
	laborScore := rampScore(site.LaborCosts, 25, 50, 40)
	landScore := rampScore(site.LandCosts, 100, 500, 30)
	incentiveScore := math.Min(30, site.TaxIncentives*0.3)
	return clampScore(laborScore + landScore + incentiveScore)
}
