package provider

import "github.com/shopspring/decimal"

// TransactionRecord is one transaction as reported by the provider's
// change feed. Dates arrive as calendar-date strings already resolved
// to the account's locale and are carried through opaquely.
type TransactionRecord struct {
	TransactionID      string          `json:"transaction_id"`
	AccountID          string          `json:"account_id"`
	Amount             decimal.Decimal `json:"amount"`
	IsoCurrencyCode    *string         `json:"iso_currency_code"`
	Date               string          `json:"date"`
	DateTime           *string         `json:"datetime"`
	AuthorizedDate     *string         `json:"authorized_date"`
	AuthorizedDateTime *string         `json:"authorized_datetime"`
	Name               string          `json:"name"`
	MerchantName       *string         `json:"merchant_name"`
	Location           Location        `json:"location"`
	Pending            bool            `json:"pending"`
	PaymentChannel     *string         `json:"payment_channel"`
}

// Location holds the merchant location sub-fields, all optional.
type Location struct {
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	Region      *string  `json:"region"`
	PostalCode  *string  `json:"postal_code"`
	Country     *string  `json:"country"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	StoreNumber *string  `json:"store_number"`
}

// RemovedRecord identifies a transaction the provider has deleted from
// the feed.
type RemovedRecord struct {
	TransactionID string `json:"transaction_id"`
}

// SyncPage is one page of the provider change feed. NextCursor must be
// fed back as the cursor of the following call; the NextCursor of the
// page with HasMore=false is the value to persist on the institution.
type SyncPage struct {
	Added      []TransactionRecord `json:"added"`
	Modified   []TransactionRecord `json:"modified"`
	Removed    []RemovedRecord     `json:"removed"`
	NextCursor string              `json:"next_cursor"`
	HasMore    bool                `json:"has_more"`
}

// AccountRecord is one account as reported by the provider.
type AccountRecord struct {
	AccountID           string          `json:"account_id"`
	Name                *string         `json:"name"`
	OfficialName        *string         `json:"official_name"`
	PersistentAccountID *string         `json:"persistent_account_id"`
	Type                *string         `json:"type"`
	Subtype             *string         `json:"subtype"`
	Balances            AccountBalances `json:"balances"`
}

type AccountBalances struct {
	Available           *decimal.Decimal `json:"available"`
	Current             *decimal.Decimal `json:"current"`
	Limit               *decimal.Decimal `json:"limit"`
	IsoCurrencyCode     *string          `json:"iso_currency_code"`
	LastUpdatedDatetime *string          `json:"last_updated_datetime"`
}
