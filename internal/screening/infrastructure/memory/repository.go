package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	screening "carbonsite-engine/internal/screening/domain"
)

// SiteRepository is an in-memory repository for candidate sites.
type SiteRepository struct {
	mu   sync.RWMutex
	data map[string]screening.Site
}

// NewSiteRepository constructs a repository.
func NewSiteRepository() *SiteRepository {
	return &SiteRepository{data: make(map[string]screening.Site)}
}

// Save stores a new site; a duplicate id is rejected.
func (r *SiteRepository) Save(ctx context.Context, site screening.Site) error {
	_ = ctx
	if err := site.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[site.SiteID]; ok {
		return fmt.Errorf("%w: %s", screening.ErrDuplicateSite, site.SiteID)
	}
	r.data[site.SiteID] = site
	return nil
}

// Get loads one site by id.
func (r *SiteRepository) Get(ctx context.Context, siteID string) (screening.Site, error) {
	_ = ctx
	r.mu.RLock()
	site, ok := r.data[siteID]
	r.mu.RUnlock()
	if !ok {
		return screening.Site{}, fmt.Errorf("%w: %s", screening.ErrSiteNotFound, siteID)
	}
	return site, nil
}

// List returns all sites ordered by id.
func (r *SiteRepository) List(ctx context.Context) ([]screening.Site, error) {
	_ = ctx
	r.mu.RLock()
	sites := make([]screening.Site, 0, len(r.data))
	for _, site := range r.data {
		sites = append(sites, site)
	}
	r.mu.RUnlock()

	sort.Slice(sites, func(i, j int) bool { return sites[i].SiteID < sites[j].SiteID })
	return sites, nil
}
