package repository

import (
	"errors"

	"finance-aggregation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Save(account *models.Account) error {
	return r.db.Save(account).Error
}

func (r *AccountRepository) ListByUser(userID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Where("user_id = ?", userID).Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) ListByInstitution(institutionID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Where("institution_id = ?", institutionID).Find(&accounts).Error
	return accounts, err
}

// GetByProviderID returns (nil, nil) when the provider account id is
// unknown.
func (r *AccountRepository) GetByProviderID(providerAccountID string) (*models.Account, error) {
	var account models.Account
	err := r.db.First(&account, "provider_account_id = ?", providerAccountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
