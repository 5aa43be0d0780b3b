package models

import (
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(100);not null"`
	KeyHash     string    `gorm:"type:varchar(64);uniqueIndex;not null"` // SHA-256 of plaintext
	Permissions string    `gorm:"type:text;not null"`                    // JSON array
	Revoked     bool      `gorm:"not null;default:false"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User User `gorm:"foreignKey:UserID"`
}
