// Package config loads engine configuration from yaml and environment.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	analysisapp "carbonsite-engine/internal/analysis/application"
	screening "carbonsite-engine/internal/screening/domain"
)

// Config defines engine configuration. A yaml file pointed to by
// ENGINE_CONFIG overrides the defaults; environment variables fill
// anything the file leaves zero.
type Config struct {
	Weights screening.Weights           `yaml:"weights"`
	Finance analysisapp.FinanceDefaults `yaml:"finance"`
	TopN    int                         `yaml:"top_n"`
}

// Load builds the configuration. The yaml file wins, then environment
// variables fill the fields it leaves zero, then the built-in defaults.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("ENGINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if (cfg.Weights == screening.Weights{}) {
		cfg.Weights = screening.DefaultWeights()
	}
	applyFinanceEnv(&cfg.Finance)
	if cfg.TopN <= 0 {
		cfg.TopN = getenvIntDefault("ENGINE_TOP_N", analysisapp.DefaultTopN)
	}

	if err := cfg.Weights.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.Finance.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFinanceEnv(f *analysisapp.FinanceDefaults) {
	defaults := analysisapp.DefaultFinanceDefaults()
	if f.BaseEquipmentCostEUR == 0 {
		f.BaseEquipmentCostEUR = getenvFloatDefault("ENGINE_BASE_EQUIPMENT_COST_EUR", defaults.BaseEquipmentCostEUR)
	}
	if f.ReferenceCapacityTPY == 0 {
		f.ReferenceCapacityTPY = getenvFloatDefault("ENGINE_REFERENCE_CAPACITY_TPY", defaults.ReferenceCapacityTPY)
	}
	if f.ConversionEfficiency == 0 {
		f.ConversionEfficiency = getenvFloatDefault("ENGINE_CONVERSION_EFFICIENCY", defaults.ConversionEfficiency)
	}
	if f.PowerConsumptionMWhPerTon == 0 {
		f.PowerConsumptionMWhPerTon = getenvFloatDefault("ENGINE_POWER_CONSUMPTION_MWH_PER_TON", defaults.PowerConsumptionMWhPerTon)
	}
	if f.WaterConsumptionM3PerTon == 0 {
		f.WaterConsumptionM3PerTon = getenvFloatDefault("ENGINE_WATER_CONSUMPTION_M3_PER_TON", defaults.WaterConsumptionM3PerTon)
	}
	if f.WaterPriceEURM3 == 0 {
		f.WaterPriceEURM3 = getenvFloatDefault("ENGINE_WATER_PRICE_EUR_M3", defaults.WaterPriceEURM3)
	}
	if f.LaborHoursPerTon == 0 {
		f.LaborHoursPerTon = getenvFloatDefault("ENGINE_LABOR_HOURS_PER_TON", defaults.LaborHoursPerTon)
	}
	if f.ProductPriceEURTon == 0 {
		f.ProductPriceEURTon = getenvFloatDefault("ENGINE_PRODUCT_PRICE_EUR_TON", defaults.ProductPriceEURTon)
	}
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
