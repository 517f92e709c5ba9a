package sync

import (
	"context"
	"errors"
	"testing"

	"finance-aggregation-backend/internal/models"
	"finance-aggregation-backend/internal/provider"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func seedInstitution(store *fakeStore, cursor string) models.Institution {
	institution := models.Institution{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		ProviderItemID: "item-1",
		AccessToken:    "access-token",
	}
	if cursor != "" {
		institution.Cursor = &cursor
	}
	store.institutions[institution.ID] = institution
	return institution
}

func addedRecord(id, accountID, amount string) provider.TransactionRecord {
	return provider.TransactionRecord{
		TransactionID:   id,
		AccountID:       accountID,
		Amount:          decimal.RequireFromString(amount),
		IsoCurrencyCode: strPtr("USD"),
		Date:            "2023-01-29",
		Name:            "Apple Store",
		MerchantName:    strPtr("Apple"),
		Location: provider.Location{
			City:   strPtr("San Francisco"),
			Region: strPtr("CA"),
		},
		PaymentChannel: strPtr("in store"),
	}
}

func TestSyncTransactions_EndToEnd(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	client := &fakeFeedClient{pages: []*provider.SyncPage{
		{
			Added:      []provider.TransactionRecord{addedRecord("t1", "acc-1", "12.50")},
			NextCursor: "C1",
			HasMore:    false,
		},
	}}

	service := NewService(store, client)
	result, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, "C1", result.NewCursor)

	// First fetch must use the stored cursor.
	assert.Equal(t, []string{"C0"}, client.cursors)

	stored, ok := store.transactions["t1"]
	assert.True(t, ok)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("12.50")),
		"amount must be exactly 12.50, got %s", stored.Amount)
	assert.Equal(t, "2023-01-29", stored.Date)
	assert.Equal(t, institution.UserID, stored.UserID)
	assert.False(t, stored.IsModified)

	assert.Equal(t, "C1", *store.institutions[institution.ID].Cursor)
}

func TestSyncTransactions_PaginatesUntilHasMoreFalse(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "")
	client := &fakeFeedClient{pages: []*provider.SyncPage{
		{
			Added:      []provider.TransactionRecord{addedRecord("t1", "acc-1", "1.00")},
			NextCursor: "C1",
			HasMore:    true,
		},
		{
			Added:      []provider.TransactionRecord{addedRecord("t2", "acc-1", "2.00")},
			NextCursor: "C2",
			HasMore:    true,
		},
		{
			Added:      []provider.TransactionRecord{addedRecord("t3", "acc-1", "3.00")},
			NextCursor: "C3",
			HasMore:    false,
		},
	}}

	service := NewService(store, client)
	result, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Applied)
	assert.Len(t, store.transactions, 3)

	// Each page's next cursor feeds the following request; only the
	// final page's cursor is persisted.
	assert.Equal(t, []string{"", "C1", "C2"}, client.cursors)
	assert.Equal(t, "C3", *store.institutions[institution.ID].Cursor)
}

func TestSyncTransactions_PreservesLocalFieldsOnModify(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	categoryID := uuid.New()
	store.transactions["t1"] = models.Transaction{
		ID:                    uuid.New(),
		UserID:                institution.UserID,
		InstitutionID:         &institution.ID,
		ProviderTransactionID: strPtr("t1"),
		CustomName:            strPtr("Rent"),
		CategoryID:            &categoryID,
		IsHidden:              true,
		IsModified:            true,
		Amount:                decimal.RequireFromString("1200.00"),
		Name:                  "ACME PROPERTY LLC",
		Date:                  "2023-01-01",
	}

	modified := addedRecord("t1", "acc-1", "1250.00")
	modified.Name = "ACME PROPERTY MGMT"
	modified.Date = "2023-02-01"
	client := &fakeFeedClient{pages: []*provider.SyncPage{
		{
			Modified:   []provider.TransactionRecord{modified},
			NextCursor: "C1",
			HasMore:    false,
		},
	}}

	service := NewService(store, client)
	result, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Applied)

	stored := store.transactions["t1"]
	// Provider fields reflect the new record.
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("1250.00")))
	assert.Equal(t, "ACME PROPERTY MGMT", stored.Name)
	assert.Equal(t, "2023-02-01", stored.Date)
	// Local-only fields survive untouched.
	assert.Equal(t, "Rent", *stored.CustomName)
	assert.Equal(t, categoryID, *stored.CategoryID)
	assert.True(t, stored.IsHidden)
	assert.True(t, stored.IsModified)
}

func TestSyncTransactions_SkipsModifyForUnknownTransaction(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	store.transactions["t1"] = models.Transaction{
		ID:                    uuid.New(),
		UserID:                institution.UserID,
		ProviderTransactionID: strPtr("t1"),
		Amount:                decimal.RequireFromString("5.00"),
		Name:                  "Coffee",
	}

	client := &fakeFeedClient{pages: []*provider.SyncPage{
		{
			Modified:   []provider.TransactionRecord{addedRecord("t-unknown", "acc-1", "9.99")},
			NextCursor: "C1",
			HasMore:    false,
		},
	}}

	service := NewService(store, client)
	result, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, result.Skipped)

	// The unrelated transaction is untouched and nothing new appeared.
	assert.Len(t, store.transactions, 1)
	assert.Equal(t, "Coffee", store.transactions["t1"].Name)
	assert.Equal(t, "C1", *store.institutions[institution.ID].Cursor)
}

func TestSyncTransactions_RemovesReportedTransaction(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	store.transactions["t1"] = models.Transaction{
		ID:                    uuid.New(),
		UserID:                institution.UserID,
		ProviderTransactionID: strPtr("t1"),
		Amount:                decimal.RequireFromString("5.00"),
	}

	client := &fakeFeedClient{pages: []*provider.SyncPage{
		{
			Removed:    []provider.RemovedRecord{{TransactionID: "t1"}},
			NextCursor: "C2",
			HasMore:    false,
		},
	}}

	service := NewService(store, client)
	result, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	assert.NotContains(t, store.transactions, "t1")
	assert.Equal(t, "C2", *store.institutions[institution.ID].Cursor)
}

func TestSyncTransactions_AddThenRemoveInSameBatchNeverLands(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")

	client := &fakeFeedClient{pages: []*provider.SyncPage{
		{
			Added:      []provider.TransactionRecord{addedRecord("t1", "acc-1", "12.50")},
			Removed:    []provider.RemovedRecord{{TransactionID: "t1"}},
			NextCursor: "C1",
			HasMore:    false,
		},
	}}

	service := NewService(store, client)
	result, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 0, result.Removed)
	assert.NotContains(t, store.transactions, "t1")
	assert.Equal(t, "C1", *store.institutions[institution.ID].Cursor)
}

func TestSyncTransactions_RemoveOfUnknownTransactionIsNoop(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")

	client := &fakeFeedClient{pages: []*provider.SyncPage{
		{
			Removed:    []provider.RemovedRecord{{TransactionID: "t-gone"}},
			NextCursor: "C1",
			HasMore:    false,
		},
	}}

	service := NewService(store, client)
	result, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, "C1", *store.institutions[institution.ID].Cursor)
}

func TestSyncTransactions_CursorUnchangedWhenApplyFails(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	store.saveErr = errors.New("database unavailable")

	client := &fakeFeedClient{pages: []*provider.SyncPage{
		{
			Added:      []provider.TransactionRecord{addedRecord("t1", "acc-1", "12.50")},
			NextCursor: "C1",
			HasMore:    false,
		},
	}}

	service := NewService(store, client)
	_, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.Error(t, err)
	assert.Equal(t, "C0", *store.institutions[institution.ID].Cursor)
	assert.Empty(t, store.transactions)
}

func TestSyncTransactions_FeedFailureMutatesNothing(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	client := &fakeFeedClient{err: errors.New("rate limited")}

	service := NewService(store, client)
	_, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.Error(t, err)
	assert.Equal(t, "C0", *store.institutions[institution.ID].Cursor)
	assert.Empty(t, store.transactions)
}

func TestSyncTransactions_ReplayedBatchIsIdempotent(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	page := func() *provider.SyncPage {
		return &provider.SyncPage{
			Added:      []provider.TransactionRecord{addedRecord("t1", "acc-1", "12.50")},
			Removed:    []provider.RemovedRecord{{TransactionID: "t-old"}},
			NextCursor: "C1",
			HasMore:    false,
		}
	}
	store.transactions["t-old"] = models.Transaction{
		ID:                    uuid.New(),
		UserID:                institution.UserID,
		ProviderTransactionID: strPtr("t-old"),
	}

	service := NewService(store, client(page()))
	_, err := service.SyncTransactions(context.Background(), institution.ID)
	assert.NoError(t, err)

	firstState := store.transactions["t1"]

	// Replay the identical batch, as a retry after a lost response
	// would.
	service = NewService(store, client(page()))
	result, err := service.SyncTransactions(context.Background(), institution.ID)
	assert.NoError(t, err)

	assert.Len(t, store.transactions, 1)
	secondState := store.transactions["t1"]
	assert.Equal(t, firstState.ID, secondState.ID, "replayed add must update, not duplicate")
	assert.True(t, secondState.Amount.Equal(firstState.Amount))
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, "C1", *store.institutions[institution.ID].Cursor)
}

func client(pages ...*provider.SyncPage) *fakeFeedClient {
	return &fakeFeedClient{pages: pages}
}

func TestSyncTransactions_UnknownAccountToleratedUnlinked(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")

	feed := client(&provider.SyncPage{
		Added:      []provider.TransactionRecord{addedRecord("t1", "acc-never-seen", "4.20")},
		NextCursor: "C1",
		HasMore:    false,
	})

	service := NewService(store, feed)
	result, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	stored := store.transactions["t1"]
	assert.Nil(t, stored.AccountID)
}

func TestSyncTransactions_LinksAccountAndDefaultCategory(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	account := models.Account{
		ID:                uuid.New(),
		UserID:            institution.UserID,
		InstitutionID:     institution.ID,
		ProviderAccountID: "acc-1",
	}
	store.accounts = append(store.accounts, account)
	category := models.Category{
		ID:     uuid.New(),
		UserID: institution.UserID,
		Name:   models.DefaultCategoryName,
	}
	store.categories = append(store.categories, category)

	feed := client(&provider.SyncPage{
		Added:      []provider.TransactionRecord{addedRecord("t1", "acc-1", "4.20")},
		NextCursor: "C1",
		HasMore:    false,
	})

	service := NewService(store, feed)
	_, err := service.SyncTransactions(context.Background(), institution.ID)

	assert.NoError(t, err)
	stored := store.transactions["t1"]
	assert.Equal(t, account.ID, *stored.AccountID)
	assert.Equal(t, category.ID, *stored.CategoryID)
	assert.Equal(t, institution.ID, *stored.InstitutionID)
}

func TestSyncTransactions_RejectsConcurrentSyncForSameInstitution(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")
	feed := &blockingFeedClient{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	service := NewService(store, feed)

	done := make(chan error, 1)
	go func() {
		_, err := service.SyncTransactions(context.Background(), institution.ID)
		done <- err
	}()

	// Wait until the first sync is mid-fetch, then race a second one.
	<-feed.entered
	_, err := service.SyncTransactions(context.Background(), institution.ID)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(feed.release)
	assert.NoError(t, <-done)
	assert.Equal(t, "C1", *store.institutions[institution.ID].Cursor)
}

func TestSyncTransactions_RecordsSyncRuns(t *testing.T) {
	store := newFakeStore()
	institution := seedInstitution(store, "C0")

	feed := client(&provider.SyncPage{
		Added:      []provider.TransactionRecord{addedRecord("t1", "acc-1", "1.00")},
		NextCursor: "C1",
		HasMore:    false,
	})
	service := NewService(store, feed)
	_, err := service.SyncTransactions(context.Background(), institution.ID)
	assert.NoError(t, err)

	assert.Len(t, store.runs, 1)
	assert.Equal(t, "completed", store.runs[0].Status)
	assert.Equal(t, 1, store.runs[0].AddedCount)

	// A failing sync leaves a failed run behind.
	service = NewService(store, &fakeFeedClient{err: errors.New("credential revoked")})
	_, err = service.SyncTransactions(context.Background(), institution.ID)
	assert.Error(t, err)
	assert.Len(t, store.runs, 2)
	assert.Equal(t, "failed", store.runs[1].Status)
	assert.NotNil(t, store.runs[1].Error)
}
