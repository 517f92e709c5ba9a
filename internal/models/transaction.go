package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction splits into two field groups. The local-only group
// (CustomName, IsHidden, CategoryID, IsModified) is set by the user and
// never overwritten by a sync merge. The provider-sourced group is
// overwritten wholesale on every modify-merge. ProviderTransactionID is
// the sole correlation key between a provider record and a local row;
// when nil the transaction is a manual entry and sync never touches it.
type Transaction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Local-only fields.
	CustomName *string
	IsHidden   bool `gorm:"default:false"`
	IsModified bool `gorm:"default:false"`
	CategoryID *uuid.UUID
	Category   *Category

	AccountID     *uuid.UUID `gorm:"index"`
	InstitutionID *uuid.UUID `gorm:"index"`
	UserID        uuid.UUID  `gorm:"index"`

	// Provider-sourced fields.
	Amount              decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsoCurrencyCode     *string
	Date                string
	DateTime            *string
	AuthorizedDate      *string
	AuthorizedDateTime  *string
	Name                string
	MerchantName        *string
	MerchantAddress     *string
	MerchantCity        *string
	MerchantRegion      *string
	MerchantPostalCode  *string
	MerchantCountry     *string
	MerchantLat         *float64
	MerchantLon         *float64
	MerchantStoreNumber *string
	Pending             bool `gorm:"default:false"`
	PaymentChannel      *string

	ProviderTransactionID *string `gorm:"uniqueIndex"`

	CreatedAt time.Time
}
