package policy

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

const defaultProfilesTable = "policy_profiles"

// PostgresProvider resolves policy metrics from a curated profiles table,
// falling back to a secondary provider for countries without a stored row.
type PostgresProvider struct {
	db       *sql.DB
	table    string
	fallback Provider
}

// PostgresOption configures the provider.
type PostgresOption func(*PostgresProvider)

// WithProfilesTable overrides the profiles table name.
func WithProfilesTable(table string) PostgresOption {
	return func(p *PostgresProvider) {
		if table != "" {
			p.table = table
		}
	}
}

// WithFallback sets the provider used when no profile row exists.
func WithFallback(fallback Provider) PostgresOption {
	return func(p *PostgresProvider) {
		p.fallback = fallback
	}
}

// NewPostgresProvider constructs a provider.
func NewPostgresProvider(db *sql.DB, opts ...PostgresOption) *PostgresProvider {
	p := &PostgresProvider{db: db, table: defaultProfilesTable}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MetricsFor loads the stored profile for a country, recomputing the
// lifetime-dependent risk fields per request.
func (p *PostgresProvider) MetricsFor(ctx context.Context, country string, projectLifetimeYears int) (Metrics, error) {
	if p == nil || p.db == nil {
		return Metrics{}, errors.New("policy provider: nil db")
	}
	if projectLifetimeYears <= 0 {
		return Metrics{}, ErrInvalidLifetime
	}
	if country == "" {
		return Metrics{}, ErrCountryNotCovered
	}

	var (
		stability     float64
		taxIncentives float64
		grantsCSV     sql.NullString
	)
	err := p.db.QueryRowContext(ctx, `
SELECT policy_stability, tax_incentives_percent, grants
FROM `+p.table+`
WHERE country = $1
LIMIT 1`, country).Scan(&stability, &taxIncentives, &grantsCSV)
	if errors.Is(err, sql.ErrNoRows) {
		if p.fallback != nil {
			return p.fallback.MetricsFor(ctx, country, projectLifetimeYears)
		}
		return Metrics{}, ErrProfileNotFound
	}
	if err != nil {
		return Metrics{}, err
	}

	riskScore := RiskScoreForLifetime(projectLifetimeYears)
	metrics := Metrics{
		Country:              country,
		RiskScore:            riskScore,
		RiskLevel:            RiskLevelForScore(riskScore),
		PolicyStability:      stability,
		TaxIncentivesPercent: taxIncentives,
		OverallScore:         (stability + (100 - riskScore)) / 2,
	}
	if grantsCSV.Valid && grantsCSV.String != "" {
		metrics.AvailableGrants = splitCSV(grantsCSV.String)
	}
	return metrics, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
