package models

import (
	"time"

	"github.com/google/uuid"
)

// Billing states of a check-in.
// A check-in always exists regardless of billing outcome: billing is a
// side effect that must never block attendance recording.
const (
	BillingStatusPending = "PENDING"
	BillingStatusBilled  = "BILLED"
	BillingStatusFailed  = "FAILED"
	BillingStatusSkipped = "SKIPPED"
)

type CheckIn struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	SessionType string // session type name, not a foreign key
	CheckedInAt time.Time
	Notes       string
	IsManual    bool

	// Invoice id in the accounting service, set opportunistically.
	// nil means billing has not completed, not that an error occurred.
	InvoiceID     *string
	BillingStatus string
}
