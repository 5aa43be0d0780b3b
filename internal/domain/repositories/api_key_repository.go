package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"wallet-core.backend/internal/domain/entities"
)

type ApiKeyRepository interface {
	Create(ctx context.Context, apiKey *entities.ApiKey) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error)
	FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error)
	// CountActive counts keys that are neither revoked nor expired at now.
	CountActive(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}
