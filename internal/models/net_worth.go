package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NetWorth is one snapshot of a user's total net worth on a calendar
// day. Saving again for the same day overwrites the amount.
type NetWorth struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"index"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2)"`
	Month     int
	Day       int
	Year      int
	CreatedAt time.Time
}
