package models

import (
	"time"

	"github.com/google/uuid"
)

// Staff account operating the studio dashboard
type Staff struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	HashedPassword string
}
