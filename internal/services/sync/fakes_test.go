package sync

import (
	"context"
	"errors"

	"finance-aggregation-backend/internal/models"
	"finance-aggregation-backend/internal/provider"
	"finance-aggregation-backend/internal/repository"

	"github.com/google/uuid"
)

// fakeStore is an in-memory repository.Store with value semantics close
// to a real database: lookups hand out copies, and Atomically rolls the
// store back when the grouped operations fail.
type fakeStore struct {
	institutions map[uuid.UUID]models.Institution
	accounts     []models.Account
	transactions map[string]models.Transaction
	categories   []models.Category
	runs         []models.SyncRun

	saveErr   error
	removeErr error
	cursorErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		institutions: make(map[uuid.UUID]models.Institution),
		transactions: make(map[string]models.Transaction),
	}
}

func (f *fakeStore) FindInstitutionByID(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	institution, ok := f.institutions[id]
	if !ok {
		return nil, errors.New("institution not found")
	}
	copied := institution
	return &copied, nil
}

func (f *fakeStore) FindAccountsByInstitution(ctx context.Context, institutionID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	for _, a := range f.accounts {
		if a.InstitutionID == institutionID {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (f *fakeStore) FindTransactionByProviderID(ctx context.Context, providerID string) (*models.Transaction, error) {
	transaction, ok := f.transactions[providerID]
	if !ok {
		return nil, nil
	}
	copied := transaction
	return &copied, nil
}

func (f *fakeStore) FindDefaultCategory(ctx context.Context, userID uuid.UUID) (*models.Category, error) {
	for _, c := range f.categories {
		if c.UserID == userID && c.Name == models.DefaultCategoryName {
			copied := c
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveTransactionsBatch(ctx context.Context, transactions []*models.Transaction) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	for _, t := range transactions {
		f.transactions[*t.ProviderTransactionID] = *t
	}
	return nil
}

func (f *fakeStore) RemoveTransactionsBatch(ctx context.Context, transactions []*models.Transaction) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, t := range transactions {
		delete(f.transactions, *t.ProviderTransactionID)
	}
	return nil
}

func (f *fakeStore) SaveInstitutionCursor(ctx context.Context, institutionID uuid.UUID, cursor string) error {
	if f.cursorErr != nil {
		return f.cursorErr
	}
	institution, ok := f.institutions[institutionID]
	if !ok {
		return errors.New("institution not found")
	}
	institution.Cursor = &cursor
	f.institutions[institutionID] = institution
	return nil
}

func (f *fakeStore) RecordSyncRun(ctx context.Context, run *models.SyncRun) error {
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeStore) Atomically(ctx context.Context, fn func(repository.Store) error) error {
	transactionsSnapshot := make(map[string]models.Transaction, len(f.transactions))
	for k, v := range f.transactions {
		transactionsSnapshot[k] = v
	}
	institutionsSnapshot := make(map[uuid.UUID]models.Institution, len(f.institutions))
	for k, v := range f.institutions {
		institutionsSnapshot[k] = v
	}

	if err := fn(f); err != nil {
		f.transactions = transactionsSnapshot
		f.institutions = institutionsSnapshot
		return err
	}
	return nil
}

// fakeFeedClient replays scripted pages and records the cursor of each
// call.
type fakeFeedClient struct {
	pages   []*provider.SyncPage
	err     error
	cursors []string
	call    int
}

func (f *fakeFeedClient) FetchPage(ctx context.Context, accessToken, cursor string) (*provider.SyncPage, error) {
	f.cursors = append(f.cursors, cursor)
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.call]
	f.call++
	return page, nil
}

// blockingFeedClient parks inside FetchPage until released, for
// exercising concurrent sync requests.
type blockingFeedClient struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingFeedClient) FetchPage(ctx context.Context, accessToken, cursor string) (*provider.SyncPage, error) {
	b.entered <- struct{}{}
	<-b.release
	return &provider.SyncPage{NextCursor: "C1", HasMore: false}, nil
}
