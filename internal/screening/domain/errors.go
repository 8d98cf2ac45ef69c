package screening

import "errors"

var (
	// ErrInvalidSite is returned when a site record fails validation.
	ErrInvalidSite = errors.New("screening: invalid site")
	// ErrDuplicateSite is returned when a site id is already registered.
	ErrDuplicateSite = errors.New("screening: duplicate site id")
	// ErrInvalidWeights is returned when the weight vector is malformed.
	ErrInvalidWeights = errors.New("screening: invalid weights")
	// ErrNoSites is returned when an operation needs a non-empty site set.
	ErrNoSites = errors.New("screening: no sites")
	// ErrSiteNotFound is returned when a requested site is not registered.
	ErrSiteNotFound = errors.New("screening: site not found")
)
