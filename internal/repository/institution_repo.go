package repository

import (
	"finance-aggregation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstitutionRepository struct {
	db *gorm.DB
}

func NewInstitutionRepository(db *gorm.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

func (r *InstitutionRepository) Create(institution *models.Institution) error {
	return r.db.Create(institution).Error
}

func (r *InstitutionRepository) GetByID(id uuid.UUID) (*models.Institution, error) {
	var institution models.Institution
	if err := r.db.First(&institution, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &institution, nil
}

func (r *InstitutionRepository) ListByUser(userID uuid.UUID) ([]models.Institution, error) {
	var institutions []models.Institution
	err := r.db.Where("user_id = ?", userID).Find(&institutions).Error
	return institutions, err
}

// Delete removes an institution together with its accounts and
// transactions.
func (r *InstitutionRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Transaction{}, "institution_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Account{}, "institution_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Institution{}, "id = ?", id).Error
	})
}
