package sync

import (
	"testing"

	"finance-aggregation-backend/internal/models"
	"finance-aggregation-backend/internal/provider"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyProviderFields_CopiesProviderGroup(t *testing.T) {
	lat := 40.740352
	lon := -74.001761
	rec := provider.TransactionRecord{
		TransactionID:      "tx-1",
		AccountID:          "acc-1",
		Amount:             decimal.RequireFromString("2307.21"),
		IsoCurrencyCode:    strPtr("USD"),
		Date:               "2023-01-29",
		DateTime:           strPtr("2023-01-27T11:00:00Z"),
		AuthorizedDate:     strPtr("2023-01-27"),
		AuthorizedDateTime: strPtr("2023-01-27T10:34:50Z"),
		Name:               "Apple Store",
		MerchantName:       strPtr("Apple"),
		Location: provider.Location{
			Address:     strPtr("300 Post St"),
			City:        strPtr("San Francisco"),
			Region:      strPtr("CA"),
			PostalCode:  strPtr("94108"),
			Country:     strPtr("US"),
			Lat:         &lat,
			Lon:         &lon,
			StoreNumber: strPtr("1235"),
		},
		Pending:        true,
		PaymentChannel: strPtr("in store"),
	}

	var transaction models.Transaction
	applyProviderFields(&transaction, rec)

	assert.True(t, transaction.Amount.Equal(decimal.RequireFromString("2307.21")))
	assert.Equal(t, "USD", *transaction.IsoCurrencyCode)
	assert.Equal(t, "2023-01-29", transaction.Date)
	assert.Equal(t, "2023-01-27", *transaction.AuthorizedDate)
	assert.Equal(t, "Apple Store", transaction.Name)
	assert.Equal(t, "Apple", *transaction.MerchantName)
	assert.Equal(t, "300 Post St", *transaction.MerchantAddress)
	assert.Equal(t, "San Francisco", *transaction.MerchantCity)
	assert.Equal(t, "94108", *transaction.MerchantPostalCode)
	assert.Equal(t, lat, *transaction.MerchantLat)
	assert.Equal(t, lon, *transaction.MerchantLon)
	assert.Equal(t, "1235", *transaction.MerchantStoreNumber)
	assert.True(t, transaction.Pending)
	assert.Equal(t, "in store", *transaction.PaymentChannel)
	assert.Equal(t, "tx-1", *transaction.ProviderTransactionID)
}

func TestApplyProviderFields_LeavesLocalFieldsAlone(t *testing.T) {
	categoryID := uuid.New()
	transaction := models.Transaction{
		CustomName: strPtr("Groceries run"),
		IsHidden:   true,
		IsModified: true,
		CategoryID: &categoryID,
	}

	applyProviderFields(&transaction, provider.TransactionRecord{
		TransactionID: "tx-1",
		Amount:        decimal.RequireFromString("10.00"),
		Date:          "2023-03-01",
		Name:          "Store",
	})

	assert.Equal(t, "Groceries run", *transaction.CustomName)
	assert.True(t, transaction.IsHidden)
	assert.True(t, transaction.IsModified)
	assert.Equal(t, categoryID, *transaction.CategoryID)
}

func TestApplyProviderFields_AbsentSubFieldsStayNil(t *testing.T) {
	var transaction models.Transaction
	applyProviderFields(&transaction, provider.TransactionRecord{
		TransactionID: "tx-2",
		Amount:        decimal.RequireFromString("1.00"),
		Date:          "2023-03-01",
		Name:          "Kiosk",
	})

	assert.Nil(t, transaction.MerchantName)
	assert.Nil(t, transaction.MerchantAddress)
	assert.Nil(t, transaction.MerchantLat)
	assert.Nil(t, transaction.IsoCurrencyCode)
	assert.Nil(t, transaction.PaymentChannel)
}
