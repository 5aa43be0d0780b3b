package entities

import (
	"time"

	"github.com/google/uuid"
)

// Wallet represents a user's custodial balance. Balance is held in the
// smallest currency unit and is never negative at a committed state.
type Wallet struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Balance   int64      `json:"balance"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-"`

	// Joins
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TransferInput represents input for a wallet-to-wallet transfer
type TransferInput struct {
	RecipientWalletID string `json:"recipientWalletId" binding:"required"`
	Amount            int64  `json:"amount" binding:"required"`
}

// TransferResult represents the outcome of a completed transfer
type TransferResult struct {
	TransactionID uuid.UUID `json:"transactionId"`
	SenderBalance int64     `json:"senderBalance"`
}

// BalanceResponse represents a balance query result
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}
