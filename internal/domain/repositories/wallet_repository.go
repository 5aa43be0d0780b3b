package repositories

import (
	"context"

	"github.com/google/uuid"
	"wallet-core.backend/internal/domain/entities"
)

type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	List(ctx context.Context) ([]*entities.Wallet, error)
	// AddBalance applies a signed delta to the wallet balance. Callers must
	// hold the wallet row lock (UnitOfWork.WithLock) when racing writers are
	// possible.
	AddBalance(ctx context.Context, id uuid.UUID, delta int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}
