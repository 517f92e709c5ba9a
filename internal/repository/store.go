package repository

import (
	"context"
	"errors"

	"finance-aggregation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence surface the sync service depends on. It is
// injected rather than reached through package globals so tests can
// substitute an in-memory fake. Atomically groups the batch operations
// and the cursor write into a single transaction: the cursor must never
// advance unless every save and removal in the batch committed.
type Store interface {
	FindInstitutionByID(ctx context.Context, id uuid.UUID) (*models.Institution, error)
	FindAccountsByInstitution(ctx context.Context, institutionID uuid.UUID) ([]models.Account, error)
	FindTransactionByProviderID(ctx context.Context, providerID string) (*models.Transaction, error)
	FindDefaultCategory(ctx context.Context, userID uuid.UUID) (*models.Category, error)
	SaveTransactionsBatch(ctx context.Context, transactions []*models.Transaction) error
	RemoveTransactionsBatch(ctx context.Context, transactions []*models.Transaction) error
	SaveInstitutionCursor(ctx context.Context, institutionID uuid.UUID, cursor string) error
	RecordSyncRun(ctx context.Context, run *models.SyncRun) error
	Atomically(ctx context.Context, fn func(Store) error) error
}

// GormStore implements Store against the application database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindInstitutionByID(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	var institution models.Institution
	err := s.db.WithContext(ctx).First(&institution, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &institution, nil
}

func (s *GormStore) FindAccountsByInstitution(ctx context.Context, institutionID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.WithContext(ctx).Where("institution_id = ?", institutionID).Find(&accounts).Error
	return accounts, err
}

// FindTransactionByProviderID returns (nil, nil) when no transaction
// carries the provider id.
func (s *GormStore) FindTransactionByProviderID(ctx context.Context, providerID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.WithContext(ctx).First(&transaction, "provider_transaction_id = ?", providerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// FindDefaultCategory returns (nil, nil) when the user has no
// uncategorized category.
func (s *GormStore) FindDefaultCategory(ctx context.Context, userID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).First(&category, "user_id = ? AND name = ?", userID, models.DefaultCategoryName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *GormStore) SaveTransactionsBatch(ctx context.Context, transactions []*models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Save(transactions).Error
}

func (s *GormStore) RemoveTransactionsBatch(ctx context.Context, transactions []*models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(transactions))
	for _, t := range transactions {
		ids = append(ids, t.ID)
	}
	return s.db.WithContext(ctx).Delete(&models.Transaction{}, "id IN ?", ids).Error
}

func (s *GormStore) SaveInstitutionCursor(ctx context.Context, institutionID uuid.UUID, cursor string) error {
	return s.db.WithContext(ctx).Model(&models.Institution{}).
		Where("id = ?", institutionID).
		Update("cursor", cursor).
		Error
}

func (s *GormStore) RecordSyncRun(ctx context.Context, run *models.SyncRun) error {
	return s.db.WithContext(ctx).Save(run).Error
}

func (s *GormStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
