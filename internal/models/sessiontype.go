package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SessionType struct {
	ID        uuid.UUID
	Name      string
	Price     decimal.Decimal
	Duration  int // minutes
	CreatedAt time.Time
}
