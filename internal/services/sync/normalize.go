package sync

import (
	"finance-aggregation-backend/internal/models"
	"finance-aggregation-backend/internal/provider"
)

// applyProviderFields copies the provider-sourced field group from a
// feed record onto a transaction. Local-only fields (custom name,
// hidden flag, category, modified flag) are never touched here, for
// new and existing rows alike. Amounts stay exact decimals and dates
// stay opaque calendar-date strings; absent sub-fields stay nil.
func applyProviderFields(t *models.Transaction, rec provider.TransactionRecord) {
	t.Amount = rec.Amount
	t.IsoCurrencyCode = rec.IsoCurrencyCode
	t.Date = rec.Date
	t.DateTime = rec.DateTime
	t.AuthorizedDate = rec.AuthorizedDate
	t.AuthorizedDateTime = rec.AuthorizedDateTime
	t.Name = rec.Name
	t.MerchantName = rec.MerchantName
	t.MerchantAddress = rec.Location.Address
	t.MerchantCity = rec.Location.City
	t.MerchantRegion = rec.Location.Region
	t.MerchantPostalCode = rec.Location.PostalCode
	t.MerchantCountry = rec.Location.Country
	t.MerchantLat = rec.Location.Lat
	t.MerchantLon = rec.Location.Lon
	t.MerchantStoreNumber = rec.Location.StoreNumber
	t.Pending = rec.Pending
	t.PaymentChannel = rec.PaymentChannel

	providerID := rec.TransactionID
	t.ProviderTransactionID = &providerID
}
