package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryName is assigned to transactions created by sync when
// the owning user has a category with this name.
const DefaultCategoryName = "uncategorized"

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"index"`
	Name      string
	CreatedAt time.Time
}
