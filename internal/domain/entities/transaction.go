package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionType represents the kind of balance-affecting event
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// TransactionStatus represents transaction status
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is the immutable ledger entry for one balance-affecting event.
// Balances are derived state; transaction rows are the audit trail.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"userId"`
	Type        TransactionType   `json:"type"`
	Amount      int64             `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Reference   null.String       `json:"reference,omitempty"`
	SenderID    *uuid.UUID        `json:"senderId,omitempty"`
	RecipientID *uuid.UUID        `json:"recipientId,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// TransactionView is the projection returned by the history endpoint.
type TransactionView struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

// View projects a transaction into its history representation.
func (t *Transaction) View() TransactionView {
	return TransactionView{
		Type:   strings.ToLower(string(t.Type)),
		Amount: t.Amount,
		Status: strings.ToLower(string(t.Status)),
	}
}
