package plan

import "errors"

var (
	// ErrLimitReached is returned by guards when a resource cap is hit.
	ErrLimitReached = errors.New("plan limit reached")

	// ErrFeatureNotAvailable is returned when a plan lacks a feature.
	ErrFeatureNotAvailable = errors.New("feature not available on current plan")

	// ErrFailedToLoadCatalog is returned when a catalog source cannot be read.
	ErrFailedToLoadCatalog = errors.New("failed to load plan catalog")

	// ErrInvalidCatalog is returned for structurally invalid catalog data.
	ErrInvalidCatalog = errors.New("invalid plan catalog")
)
