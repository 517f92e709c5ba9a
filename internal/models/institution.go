package models

import (
	"time"

	"github.com/google/uuid"
)

// Institution is one linked connection to an external account-holding
// entity. AccessToken is provider-issued and never leaves the server.
// Cursor marks the position in the provider change feed; nil means the
// next sync is a full resync. Only the sync service writes it, and only
// after a merge batch has fully committed.
type Institution struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID                uuid.UUID `gorm:"index"`
	ProviderItemID        string    `gorm:"index"`
	ProviderInstitutionID *string
	Name                  *string
	AccessToken           string `json:"-"`
	Cursor                *string
	CreatedAt             time.Time
}
