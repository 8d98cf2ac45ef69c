// Package analysis holds the report aggregate produced by a comprehensive
// siting analysis run.
package analysis

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	finance "carbonsite-engine/internal/finance/domain"
	"carbonsite-engine/internal/policy"
	screening "carbonsite-engine/internal/screening/domain"
)

var (
	// ErrEmptyReportID is returned when persisting a report without identity.
	ErrEmptyReportID = errors.New("analysis: empty report id")
	// ErrReportNotFound is returned when a stored report does not exist.
	ErrReportNotFound = errors.New("analysis: report not found")
	// ErrSiteNotInReport is returned when a report has no result for a site.
	ErrSiteNotInReport = errors.New("analysis: site not in report")
)

// NewReportID generates a random report id.
func NewReportID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "report-" + hex.EncodeToString(buf)
}

// SiteResult bundles everything the analysis computed for one ranked site.
type SiteResult struct {
	Ranking     int                     `json:"ranking"`
	Site        screening.ScoredSite    `json:"site"`
	Financial   finance.Metrics         `json:"financial"`
	CashFlows   []finance.CashFlowEntry `json:"cash_flows"`
	Policy      policy.Metrics          `json:"policy"`
	OverallRisk string                  `json:"overall_risk"`
	Risks       []string                `json:"risks"`
	Mitigations []string                `json:"mitigations"`
}

// SiteFailure records a site whose pipeline failed; failures never remove
// other sites from the report.
type SiteFailure struct {
	SiteID string `json:"site_id"`
	Error  string `json:"error"`
}

// Report is the aggregated outcome of one analysis run.
type Report struct {
	ID                string            `json:"id"`
	ProjectType       string            `json:"project_type"`
	TargetCapacityTPY float64           `json:"target_capacity_tpy"`
	Weights           screening.Weights `json:"weights"`
	GeneratedAt       time.Time         `json:"generated_at"`
	Sites             []SiteResult      `json:"sites"`
	Failures          []SiteFailure     `json:"failures,omitempty"`
	Recommendations   []string          `json:"recommendations"`
}

// SiteResult finds the result for a site id.
func (r *Report) SiteResult(siteID string) (*SiteResult, error) {
	if r == nil {
		return nil, ErrReportNotFound
	}
	for i := range r.Sites {
		if r.Sites[i].Site.SiteID == siteID {
			return &r.Sites[i], nil
		}
	}
	return nil, ErrSiteNotInReport
}
