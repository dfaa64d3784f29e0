package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationToken stores a single-use magic-link token. Only the SHA-256
// digest of the token is persisted; the raw value exists solely inside the
// link delivered to the user.
type VerificationToken struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	// Identifier is the normalized email the token was issued for. At most
	// one live token exists per identifier; issuance deletes prior rows.
	Identifier string `gorm:"not null;index;uniqueIndex:idx_identifier_token" json:"identifier"`
	TokenHash  string `gorm:"not null;uniqueIndex:idx_identifier_token" json:"-"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (t *VerificationToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
