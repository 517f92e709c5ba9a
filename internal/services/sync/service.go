package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	gosync "sync"
	"time"

	"finance-aggregation-backend/internal/models"
	"finance-aggregation-backend/internal/provider"
	"finance-aggregation-backend/internal/repository"

	"github.com/google/uuid"
)

// ErrSyncInProgress is returned when a sync is requested for an
// institution whose previous sync has not yet completed. Two concurrent
// syncs would read the same stored cursor and the batch committing
// second would silently drop the other's changes.
var ErrSyncInProgress = errors.New("a sync is already running for this institution")

// ChangeFeedClient is the provider operation the sync service depends
// on. Network retries are the client's concern.
type ChangeFeedClient interface {
	FetchPage(ctx context.Context, accessToken, cursor string) (*provider.SyncPage, error)
}

// Result reports what one completed sync applied.
type Result struct {
	Applied   int    `json:"applied"`
	Removed   int    `json:"removed"`
	Skipped   int    `json:"skipped"`
	NewCursor string `json:"new_cursor"`
}

// Service reconciles the provider change feed against the local store.
type Service struct {
	store  repository.Store
	client ChangeFeedClient

	mu     gosync.Mutex
	active map[uuid.UUID]bool
}

func NewService(store repository.Store, client ChangeFeedClient) *Service {
	return &Service{
		store:  store,
		client: client,
		active: make(map[uuid.UUID]bool),
	}
}

// SyncTransactions drains the provider change feed for an institution
// and merges it into the local store. The stored cursor advances only
// after the entire batch has committed; any failure leaves the
// institution exactly as it was, safe to retry from the previous
// cursor. Re-observed adds merge as modifies and re-observed removes
// are no-ops, so retries are harmless.
func (s *Service) SyncTransactions(ctx context.Context, institutionID uuid.UUID) (*Result, error) {
	if !s.acquire(institutionID) {
		return nil, ErrSyncInProgress
	}
	defer s.release(institutionID)

	startedAt := time.Now()

	institution, err := s.store.FindInstitutionByID(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load institution: %w", err)
	}

	batch, pages, err := s.drainFeed(ctx, institution)
	if err != nil {
		s.recordFailure(ctx, institutionID, startedAt, err)
		return nil, err
	}

	result, counts, err := s.merge(ctx, institution, batch)
	if err != nil {
		s.recordFailure(ctx, institutionID, startedAt, err)
		return nil, err
	}

	s.recordSuccess(ctx, institutionID, startedAt, pages, result, counts)

	log.Printf("sync: institution %s applied=%d removed=%d skipped=%d pages=%d",
		institutionID, result.Applied, result.Removed, result.Skipped, pages)

	return result, nil
}

// feedBatch is the full set of records accumulated across every page of
// one sync session, together with the cursor to persist once the merge
// commits.
type feedBatch struct {
	added    []provider.TransactionRecord
	modified []provider.TransactionRecord
	removed  []provider.RemovedRecord
	cursor   string
}

// drainFeed pages through the change feed until the provider reports no
// more data. The loop is inherently serial: each request needs the
// cursor returned by the previous page. Draining fully before merging
// means the cursor moves exactly once per session, so a mid-session
// crash can never leave the store behind an advanced cursor.
func (s *Service) drainFeed(ctx context.Context, institution *models.Institution) (*feedBatch, int, error) {
	batch := &feedBatch{}
	if institution.Cursor != nil {
		batch.cursor = *institution.Cursor
	}

	pages := 0
	hasMore := true
	for hasMore {
		page, err := s.client.FetchPage(ctx, institution.AccessToken, batch.cursor)
		if err != nil {
			return nil, pages, fmt.Errorf("failed to fetch change feed page: %w", err)
		}
		batch.added = append(batch.added, page.Added...)
		batch.modified = append(batch.modified, page.Modified...)
		batch.removed = append(batch.removed, page.Removed...)
		batch.cursor = page.NextCursor
		hasMore = page.HasMore
		pages++
	}

	return batch, pages, nil
}

type mergeCounts struct {
	created  int
	modified int
}

// merge classifies the batch against the store's current snapshot and
// applies it in one atomic step: the upsert batch, the removal batch
// and the cursor write either all commit or none do.
func (s *Service) merge(ctx context.Context, institution *models.Institution, batch *feedBatch) (*Result, *mergeCounts, error) {
	accounts, err := s.store.FindAccountsByInstitution(ctx, institution.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	accountsByProviderID := make(map[string]*models.Account, len(accounts))
	for i := range accounts {
		accountsByProviderID[accounts[i].ProviderAccountID] = &accounts[i]
	}

	defaultCategory, err := s.store.FindDefaultCategory(ctx, institution.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load default category: %w", err)
	}

	var (
		upserts        []*models.Transaction
		removals       []*models.Transaction
		pending        = make(map[string]*models.Transaction, len(batch.added)+len(batch.modified))
		createdInBatch = make(map[string]bool)
		counts         mergeCounts
		skipped        int
	)

	for _, rec := range batch.added {
		if existing := pending[rec.TransactionID]; existing != nil {
			applyProviderFields(existing, rec)
			continue
		}
		existing, err := s.store.FindTransactionByProviderID(ctx, rec.TransactionID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up transaction %s: %w", rec.TransactionID, err)
		}
		if existing != nil {
			// Replayed add, e.g. a retry after a committed batch whose
			// response was lost. Merge it as a modify.
			applyProviderFields(existing, rec)
			pending[rec.TransactionID] = existing
			upserts = append(upserts, existing)
			counts.modified++
			continue
		}

		t := &models.Transaction{
			ID:            uuid.New(),
			UserID:        institution.UserID,
			InstitutionID: &institution.ID,
			IsModified:    false,
		}
		if account, ok := accountsByProviderID[rec.AccountID]; ok {
			t.AccountID = &account.ID
		} else {
			// Accounts and transactions sync independently; an account
			// the store has not seen yet must not abort the batch.
			log.Printf("sync: institution %s: no local account for provider account %s, transaction %s kept unlinked",
				institution.ID, rec.AccountID, rec.TransactionID)
		}
		if defaultCategory != nil {
			t.CategoryID = &defaultCategory.ID
		}
		applyProviderFields(t, rec)
		pending[rec.TransactionID] = t
		createdInBatch[rec.TransactionID] = true
		upserts = append(upserts, t)
		counts.created++
	}

	for _, rec := range batch.modified {
		t := pending[rec.TransactionID]
		if t == nil {
			t, err = s.store.FindTransactionByProviderID(ctx, rec.TransactionID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to look up transaction %s: %w", rec.TransactionID, err)
			}
			if t == nil {
				log.Printf("sync: institution %s: modify for unknown transaction %s skipped",
					institution.ID, rec.TransactionID)
				skipped++
				continue
			}
			pending[rec.TransactionID] = t
			upserts = append(upserts, t)
			counts.modified++
		}
		applyProviderFields(t, rec)
	}

	for _, rec := range batch.removed {
		if t := pending[rec.TransactionID]; t != nil {
			// Added or modified earlier in this same batch; the removal
			// wins, matching the state of applying the feed in order.
			delete(pending, rec.TransactionID)
			upserts = dropTransaction(upserts, t)
			if createdInBatch[rec.TransactionID] {
				delete(createdInBatch, rec.TransactionID)
				counts.created--
			} else {
				counts.modified--
			}
		}
		stored, err := s.store.FindTransactionByProviderID(ctx, rec.TransactionID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up transaction %s: %w", rec.TransactionID, err)
		}
		if stored == nil {
			// Already gone; removal is idempotent.
			continue
		}
		removals = append(removals, stored)
	}

	err = s.store.Atomically(ctx, func(store repository.Store) error {
		if err := store.SaveTransactionsBatch(ctx, upserts); err != nil {
			return fmt.Errorf("failed to save transaction batch: %w", err)
		}
		if err := store.RemoveTransactionsBatch(ctx, removals); err != nil {
			return fmt.Errorf("failed to remove transaction batch: %w", err)
		}
		if err := store.SaveInstitutionCursor(ctx, institution.ID, batch.cursor); err != nil {
			return fmt.Errorf("failed to save cursor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	result := &Result{
		Applied:   len(upserts),
		Removed:   len(removals),
		Skipped:   skipped,
		NewCursor: batch.cursor,
	}
	return result, &counts, nil
}

func dropTransaction(transactions []*models.Transaction, target *models.Transaction) []*models.Transaction {
	kept := transactions[:0]
	for _, t := range transactions {
		if t != target {
			kept = append(kept, t)
		}
	}
	return kept
}

func (s *Service) acquire(institutionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[institutionID] {
		return false
	}
	s.active[institutionID] = true
	return true
}

func (s *Service) release(institutionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, institutionID)
}

func (s *Service) recordSuccess(ctx context.Context, institutionID uuid.UUID, startedAt time.Time, pages int, result *Result, counts *mergeCounts) {
	completedAt := time.Now()
	details, _ := json.Marshal(map[string]any{
		"pages":      pages,
		"new_cursor": result.NewCursor,
	})
	run := &models.SyncRun{
		ID:            uuid.New(),
		InstitutionID: institutionID,
		Status:        "completed",
		AddedCount:    counts.created,
		ModifiedCount: counts.modified,
		RemovedCount:  result.Removed,
		SkippedCount:  result.Skipped,
		Details:       details,
		StartedAt:     startedAt,
		CompletedAt:   &completedAt,
	}
	if err := s.store.RecordSyncRun(ctx, run); err != nil {
		log.Printf("sync: institution %s: failed to record sync run: %v", institutionID, err)
	}
}

func (s *Service) recordFailure(ctx context.Context, institutionID uuid.UUID, startedAt time.Time, syncErr error) {
	completedAt := time.Now()
	message := syncErr.Error()
	run := &models.SyncRun{
		ID:            uuid.New(),
		InstitutionID: institutionID,
		Status:        "failed",
		Error:         &message,
		StartedAt:     startedAt,
		CompletedAt:   &completedAt,
	}
	if err := s.store.RecordSyncRun(ctx, run); err != nil {
		log.Printf("sync: institution %s: failed to record sync run: %v", institutionID, err)
	}
}
