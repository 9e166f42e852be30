// Package menu manages a venue's menu items and enforces the
// tenant plan's menu_items limit before anything is written.
package menu

import (
	"time"

	"github.com/google/uuid"
)

// Item is a single dish or drink on a venue menu.
type Item struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	VenueID     uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Category    string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateItemParams carries the caller-supplied fields for a new item.
type CreateItemParams struct {
	VenueID     uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Category    string
}
