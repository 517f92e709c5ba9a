package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"index"`
	InstitutionID uuid.UUID `gorm:"index"`

	// ProviderAccountID is the join key the sync service correlates
	// provider records against. The provider may reissue it if it cannot
	// reconcile the underlying account.
	ProviderAccountID   string `gorm:"index"`
	Name                *string
	OfficialName        *string
	PersistentAccountID *string
	Type                *string
	Subtype             *string

	AvailableBalance *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CurrentBalance   *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreditLimit      *decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsoCurrencyCode  *string

	LastUpdatedDatetime *string
	LastSync            *time.Time
	CreatedAt           time.Time
}
