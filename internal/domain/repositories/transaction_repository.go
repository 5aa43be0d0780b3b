package repositories

import (
	"context"

	"github.com/google/uuid"
	"wallet-core.backend/internal/domain/entities"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*entities.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error
	// ListByUser returns transactions where the user is the originating party
	// or the given wallet is the transfer recipient, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, walletID *uuid.UUID) ([]*entities.Transaction, error)
}
