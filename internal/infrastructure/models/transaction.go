package models

import (
	"time"

	"github.com/google/uuid"
)

type Transaction struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"type:varchar(20);not null"`
	Amount      int64      `gorm:"not null"`
	Status      string     `gorm:"type:varchar(20);not null"`
	Reference   *string    `gorm:"type:varchar(255);uniqueIndex"` // idempotency key, unique when present
	SenderID    *uuid.UUID `gorm:"type:uuid;index"`
	RecipientID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time  `gorm:"index"`
	UpdatedAt   time.Time
}
