// Command seed loads the demonstration set of European industrial sites
// into the candidate_sites table.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"

	screening "carbonsite-engine/internal/screening/domain"
	"carbonsite-engine/internal/screening/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	dsn := flag.String("dsn", getenvDefault("DATABASE_URL", os.Getenv("PG_DSN")), "postgres dsn")
	skipExisting := flag.Bool("skip-existing", true, "skip sites that are already registered")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	repo := postgres.NewSiteRepository(db)
	ctx := context.Background()

	seeded := 0
	for _, site := range sampleSites() {
		err := repo.Save(ctx, site)
		if errors.Is(err, screening.ErrDuplicateSite) && *skipExisting {
			log.Printf("skip %s: already registered", site.SiteID)
			continue
		}
		if err != nil {
			log.Fatalf("seed %s: %v", site.SiteID, err)
		}
		seeded++
	}

	total, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("count sites: %v", err)
	}
	log.Printf("seeded %d sites, %d registered in total", seeded, total)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func sampleSites() []screening.Site {
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
			SiteID: "BE001", Name: "Total Antwerp", Country: "BE", Region: "Antwerp",
			Latitude: 51.2194, Longitude: 4.4025,
			CO2VolumeTPY: 2_100_000, CO2Concentration: 88, CO2Impurities: "Low",
			PowerPriceEURMWh: 78, PowerAvailability: 99.2, RenewableEnergyShare: 22,
			EmissionsIntensity: 480, EUETSPrice: 87, CBAMApplicable: true,
			IndustrialZone: screening.ZoneRefinery, UtilityAvailability: screening.RatingExcellent,
			TransportAccess: screening.RatingExcellent,
			LaborCosts:      36, LandCosts: 220, TaxIncentives: 18,
		},
		{
			SiteID: "FR001", Name: "ExxonMobil Le Havre", Country: "FR", Region: "Normandy",
			Latitude: 49.4944, Longitude: 0.1079,
			CO2VolumeTPY: 1_800_000, CO2Concentration: 82, CO2Impurities: "Medium",
			PowerPriceEURMWh: 68, PowerAvailability: 98.8, RenewableEnergyShare: 35,
			EmissionsIntensity: 380, EUETSPrice: 86, CBAMApplicable: true,
			IndustrialZone: screening.ZoneRefinery, UtilityAvailability: screening.RatingGood,
			TransportAccess: screening.RatingGood,
			LaborCosts:      32, LandCosts: 180, TaxIncentives: 12,
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
