package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SyncRun records one invocation of the transaction sync for an
// institution. Run history is observability only; it carries no state
// the reconciler depends on.
type SyncRun struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	InstitutionID uuid.UUID `gorm:"index"`
	Status        string    `gorm:"index"`
	AddedCount    int
	ModifiedCount int
	RemovedCount  int
	SkippedCount  int
	Error         *string
	Details       datatypes.JSON
	StartedAt     time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
}
