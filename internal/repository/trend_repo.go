package repository

import (
	"errors"

	"finance-aggregation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrendRepository struct {
	db *gorm.DB
}

func NewTrendRepository(db *gorm.DB) *TrendRepository {
	return &TrendRepository{db: db}
}

func (r *TrendRepository) Save(trend *models.Trend) error {
	return r.db.Save(trend).Error
}

// GetByUserDateType returns (nil, nil) when no trend point exists for
// the (user, date, type) triple.
func (r *TrendRepository) GetByUserDateType(userID uuid.UUID, date, trendType string) (*models.Trend, error) {
	var trend models.Trend
	err := r.db.First(&trend, "user_id = ? AND date = ? AND type = ?", userID, date, trendType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trend, nil
}

func (r *TrendRepository) ListByUser(userID uuid.UUID) ([]models.Trend, error) {
	var trends []models.Trend
	err := r.db.Where("user_id = ?", userID).Order("date ASC").Find(&trends).Error
	return trends, err
}
