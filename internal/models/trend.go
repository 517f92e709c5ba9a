package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TrendTypeCash        = "cash"
	TrendTypeCreditCards = "credit cards"
	TrendTypeLoans       = "loans"
	TrendTypeInvestments = "investments"
)

// Trend is one balance snapshot per (user, date, type), used for
// plotting balances over time. Saving again for the same triple
// overwrites the value.
type Trend struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"index"`
	Date      string          // 1989-11-29
	Value     decimal.Decimal `gorm:"type:decimal(10,2)"`
	Type      string
	CreatedAt time.Time
}

func IsValidTrendType(trendType string) bool {
	switch trendType {
	case TrendTypeCash, TrendTypeCreditCards, TrendTypeLoans, TrendTypeInvestments:
		return true
	}
	return false
}
