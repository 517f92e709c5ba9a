package repository

import (
	"finance-aggregation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncRunRepository struct {
	db *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

func (r *SyncRunRepository) ListByInstitution(institutionID uuid.UUID, limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	err := r.db.Where("institution_id = ?", institutionID).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
