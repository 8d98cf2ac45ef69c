package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	screening "carbonsite-engine/internal/screening/domain"
)

// SiteRepository persists candidate sites.
type SiteRepository struct {
	db *sql.DB
}

// NewSiteRepository constructs a repository.
func NewSiteRepository(db *sql.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// Save inserts a new site; a duplicate id is rejected.
func (r *SiteRepository) Save(ctx context.Context, site screening.Site) error {
	if r == nil || r.db == nil {
		return errors.New("site repo: nil db")
	}
	if err := site.Validate(); err != nil {
		return err
	}

	var exists bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM candidate_sites WHERE site_id = $1)`, site.SiteID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", screening.ErrDuplicateSite, site.SiteID)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO candidate_sites (
	site_id, name, country, region, latitude, longitude,
	co2_volume_tpy, co2_concentration, co2_impurities,
	power_price_eur_mwh, power_availability, renewable_energy_share,
	emissions_intensity, eu_ets_price, cbam_applicable,
	industrial_zone, utility_availability, transport_access,
	labor_costs, land_costs, tax_incentives
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21
)`,
		site.SiteID, site.Name, site.Country, site.Region, site.Latitude, site.Longitude,
		site.CO2VolumeTPY, site.CO2Concentration, site.CO2Impurities,
		site.PowerPriceEURMWh, site.PowerAvailability, site.RenewableEnergyShare,
		site.EmissionsIntensity, site.EUETSPrice, site.CBAMApplicable,
		site.IndustrialZone, site.UtilityAvailability, site.TransportAccess,
		site.LaborCosts, site.LandCosts, site.TaxIncentives,
	)
	return err
}

// Get fetches one site.
func (r *SiteRepository) Get(ctx context.Context, siteID string) (screening.Site, error) {
	if r == nil || r.db == nil {
		return screening.Site{}, errors.New("site repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT site_id, name, country, region, latitude, longitude,
	co2_volume_tpy, co2_concentration, co2_impurities,
	power_price_eur_mwh, power_availability, renewable_energy_share,
	emissions_intensity, eu_ets_price, cbam_applicable,
	industrial_zone, utility_availability, transport_access,
	labor_costs, land_costs, tax_incentives
FROM candidate_sites
WHERE site_id = $1
LIMIT 1`, siteID)
	return scanSite(row)
}

// List returns all sites ordered by id.
func (r *SiteRepository) List(ctx context.Context) ([]screening.Site, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("site repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT site_id, name, country, region, latitude, longitude,
	co2_volume_tpy, co2_concentration, co2_impurities,
	power_price_eur_mwh, power_availability, renewable_energy_share,
	emissions_intensity, eu_ets_price, cbam_applicable,
	industrial_zone, utility_availability, transport_access,
	labor_costs, land_costs, tax_incentives
FROM candidate_sites
ORDER BY site_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []screening.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sites, nil
}

// Count returns the number of stored sites.
func (r *SiteRepository) Count(ctx context.Context) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("site repo: nil db")
	}
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidate_sites`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (screening.Site, error) {
	var site screening.Site
	err := row.Scan(
		&site.SiteID, &site.Name, &site.Country, &site.Region, &site.Latitude, &site.Longitude,
		&site.CO2VolumeTPY, &site.CO2Concentration, &site.CO2Impurities,
		&site.PowerPriceEURMWh, &site.PowerAvailability, &site.RenewableEnergyShare,
		&site.EmissionsIntensity, &site.EUETSPrice, &site.CBAMApplicable,
		&site.IndustrialZone, &site.UtilityAvailability, &site.TransportAccess,
		&site.LaborCosts, &site.LandCosts, &site.TaxIncentives,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return screening.Site{}, screening.ErrSiteNotFound
	}
	return site, err
}
