package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CustomerTypeInPerson = "in-person"
	CustomerTypeRemote   = "remote"
)

type Customer struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	CustomerType string

	// Value encoded into the customer's personal QR pass.
	// Scanned at the front desk to identify the customer on check-in.
	QRCodeValue string

	CreatedAt time.Time
}

// DisplayName is the name the customer is known by in the accounting service
func (c Customer) DisplayName() string {
	return c.FirstName + " " + c.LastName
}
