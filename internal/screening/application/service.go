package application

import (
	"context"
	"errors"
	"fmt"
	"log"

	screening "carbonsite-engine/internal/screening/domain"
)

// SiteRepository abstracts candidate site persistence.
type SiteRepository interface {
	Save(ctx context.Context, site screening.Site) error
	Get(ctx context.Context, siteID string) (screening.Site, error)
	List(ctx context.Context) ([]screening.Site, error)
}

// Service registers candidate sites and runs screening evaluations
// against the stored set.
type Service struct {
	repo    SiteRepository
	weights screening.Weights
	logger  *log.Logger
}

// NewService constructs a Service. The weights are the default vector
// used when a request does not carry its own.
func NewService(repo SiteRepository, weights screening.Weights, logger *log.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("screening service: nil repository")
	}
	if (weights == screening.Weights{}) {
		weights = screening.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{repo: repo, weights: weights, logger: logger}, nil
}

// AddSite validates and stores a new candidate site.
func (s *Service) AddSite(ctx context.Context, site screening.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, site); err != nil {
		return err
	}
	s.logger.Printf("screening: site %s registered (%s, %s)", site.SiteID, site.Name, site.Country)
	return nil
}

// GetSite loads one stored site.
func (s *Service) GetSite(ctx context.Context, siteID string) (screening.Site, error) {
	return s.repo.Get(ctx, siteID)
}

// ListSites returns all stored sites.
func (s *Service) ListSites(ctx context.Context) ([]screening.Site, error) {
	return s.repo.List(ctx)
}

// EvaluateAll scores and ranks every stored site. A zero weight vector
// selects the service default.
func (s *Service) EvaluateAll(ctx context.Context, weights screening.Weights) ([]screening.ScoredSite, error) {
	engine, err := s.engineFor(ctx, weights)
	if err != nil {
		return nil, err
	}
	return engine.EvaluateAll()
}

// TopN returns the n best-ranked stored sites.
func (s *Service) TopN(ctx context.Context, weights screening.Weights, n int) ([]screening.ScoredSite, error) {
	engine, err := s.engineFor(ctx, weights)
	if err != nil {
		return nil, err
	}
	return engine.TopN(n)
}

// Filter evaluates all stored sites and applies the filter.
func (s *Service) Filter(ctx context.Context, weights screening.Weights, f screening.Filter) ([]screening.ScoredSite, error) {
	engine, err := s.engineFor(ctx, weights)
	if err != nil {
		return nil, err
	}
	return engine.FilterSites(f)
}

func (s *Service) engineFor(ctx context.Context, weights screening.Weights) (*screening.Engine, error) {
	if (weights == screening.Weights{}) {
		weights = s.weights
	}
	engine, err := screening.NewEngine(weights)
	if err != nil {
		return nil, err
	}
	sites, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("screening service: list sites: %w", err)
	}
	if err := engine.AddSites(sites); err != nil {
		return nil, err
	}
	return engine, nil
}
