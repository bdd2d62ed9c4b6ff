package models

import (
	"time"

	"github.com/google/uuid"
)

// Kinds of entities that get mirrored into the accounting service
const (
	ExternalEntityCustomer = "customer"
	ExternalEntityItem     = "item"
)

// ExternalRef maps a local entity to its record in the accounting service.
// Kept locally so repeat check-ins don't re-resolve by display name and
// name collisions in the remote system stay harmless.
type ExternalRef struct {
	EntityType  string
	LocalID     uuid.UUID
	ExternalID  string
	DisplayName string
	CreatedAt   time.Time
}
