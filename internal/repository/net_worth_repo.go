package repository

import (
	"errors"

	"finance-aggregation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NetWorthRepository struct {
	db *gorm.DB
}

func NewNetWorthRepository(db *gorm.DB) *NetWorthRepository {
	return &NetWorthRepository{db: db}
}

func (r *NetWorthRepository) Save(netWorth *models.NetWorth) error {
	return r.db.Save(netWorth).Error
}

// GetByUserAndDate returns (nil, nil) when the user has no snapshot for
// the day.
func (r *NetWorthRepository) GetByUserAndDate(userID uuid.UUID, month, day, year int) (*models.NetWorth, error) {
	var netWorth models.NetWorth
	err := r.db.First(&netWorth, "user_id = ? AND month = ? AND day = ? AND year = ?", userID, month, day, year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &netWorth, nil
}

func (r *NetWorthRepository) ListByUser(userID uuid.UUID) ([]models.NetWorth, error) {
	var netWorths []models.NetWorth
	err := r.db.Where("user_id = ?", userID).
		Order("year ASC, month ASC, day ASC").
		Find(&netWorths).Error
	return netWorths, err
}
