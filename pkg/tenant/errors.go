package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrNoTenantInContext is returned when a handler requires tenant
	// context that the router did not attach.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrInactiveTenant is returned when a tenant account is disabled.
	ErrInactiveTenant = errors.New("tenant is inactive")
)
