package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"wallet-core.backend/internal/domain/entities"
	domainerrors "wallet-core.backend/internal/domain/errors"
	"wallet-core.backend/internal/domain/repositories"
	"wallet-core.backend/pkg/crypto"
)

// MaxActiveKeysPerUser caps simultaneously active keys per owner.
const MaxActiveKeysPerUser = 5

const keyPrefix = "sk_live_"

// ApiKeyUsecase manages the service credential lifecycle: issuance, rollover,
// revocation and authentication. Plaintext secrets leave this type exactly
// once, in the issuance response.
type ApiKeyUsecase struct {
	apiKeyRepo repositories.ApiKeyRepository
	userRepo   repositories.UserRepository
	uow        repositories.UnitOfWork
}

// NewApiKeyUsecase creates a new API key usecase
func NewApiKeyUsecase(
	apiKeyRepo repositories.ApiKeyRepository,
	userRepo repositories.UserRepository,
	uow repositories.UnitOfWork,
) *ApiKeyUsecase {
	return &ApiKeyUsecase{
		apiKeyRepo: apiKeyRepo,
		userRepo:   userRepo,
		uow:        uow,
	}
}

// parseExpiry converts a spec like "1H", "7D", "3M", "1Y" to an absolute
// expiry timestamp.
func parseExpiry(spec string, now time.Time) (time.Time, error) {
	if len(spec) < 2 {
		return time.Time{}, fmt.Errorf("expiry must be a number followed by H, D, M or Y")
	}
	magnitude, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil || magnitude <= 0 {
		return time.Time{}, fmt.Errorf("expiry magnitude must be a positive integer")
	}

	switch strings.ToUpper(spec[len(spec)-1:]) {
	case "H":
		return now.Add(time.Duration(magnitude) * time.Hour), nil
	case "D":
		return now.AddDate(0, 0, magnitude), nil
	case "M":
		return now.AddDate(0, magnitude, 0), nil
	case "Y":
		return now.AddDate(magnitude, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("expiry must be one of: nH, nD, nM, nY")
}

// generateKey mints a fresh plaintext secret and its storage hash.
func generateKey() (plain, hash string) {
	plain = keyPrefix + strings.ReplaceAll(uuid.New().String(), "-", "")
	return plain, crypto.SHA256Hex([]byte(plain))
}

// Issue creates a new API key for the user and returns the plaintext once.
func (u *ApiKeyUsecase) Issue(ctx context.Context, userID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	perms := make([]entities.Permission, 0, len(input.Permissions))
	for _, p := range input.Permissions {
		perm := entities.Permission(strings.ToUpper(p))
		if !entities.ValidPermission(perm) {
			return nil, domainerrors.BadRequest(fmt.Sprintf("invalid permission: %s", p))
		}
		perms = append(perms, perm)
	}

	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.BadRequest("user with provided id does not exist")
		}
		return nil, err
	}

	now := time.Now()
	expiresAt, err := parseExpiry(input.Expiry, now)
	if err != nil {
		return nil, domainerrors.BadRequest(err.Error())
	}

	plain, hash := generateKey()
	key := &entities.ApiKey{
		UserID:      userID,
		Name:        input.Name,
		KeyHash:     hash,
		Permissions: perms,
		ExpiresAt:   expiresAt,
	}

	// Quota check and insert run in one transaction with the user's key rows
	// locked, so two racing issue calls cannot over-issue.
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		active, err := u.apiKeyRepo.CountActive(lockCtx, userID, now)
		if err != nil {
			return err
		}
		if active >= MaxActiveKeysPerUser {
			return domainerrors.QuotaExceeded(fmt.Sprintf("max %d active api keys reached", MaxActiveKeysPerUser))
		}

		return u.apiKeyRepo.Create(txCtx, key)
	})
	if err != nil {
		return nil, err
	}

	return &entities.CreateApiKeyResponse{
		ID:          key.ID,
		Name:        key.Name,
		ApiKey:      plain,
		Permissions: key.Permissions,
		ExpiresAt:   key.ExpiresAt,
		CreatedAt:   key.CreatedAt,
	}, nil
}

// Rollover revokes an expired key and issues a replacement carrying the same
// name, permissions and owner. Both steps commit in one transaction so a
// failure cannot leave the owner with the old key revoked and no replacement.
func (u *ApiKeyUsecase) Rollover(ctx context.Context, keyID uuid.UUID, expirySpec string) (*entities.CreateApiKeyResponse, error) {
	now := time.Now()
	expiresAt, err := parseExpiry(expirySpec, now)
	if err != nil {
		return nil, domainerrors.BadRequest(err.Error())
	}

	plain, hash := generateKey()
	var newKey *entities.ApiKey

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		oldKey, err := u.apiKeyRepo.FindByID(lockCtx, keyID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NotFound("api key not found")
			}
			return err
		}
		if oldKey.ExpiresAt.After(now) {
			return domainerrors.InvalidState("key is not yet expired")
		}

		if err := u.apiKeyRepo.Revoke(txCtx, oldKey.ID); err != nil {
			return err
		}

		newKey = &entities.ApiKey{
			UserID:      oldKey.UserID,
			Name:        oldKey.Name,
			KeyHash:     hash,
			Permissions: oldKey.Permissions,
			ExpiresAt:   expiresAt,
		}
		return u.apiKeyRepo.Create(txCtx, newKey)
	})
	if err != nil {
		return nil, err
	}

	return &entities.CreateApiKeyResponse{
		ID:          newKey.ID,
		Name:        newKey.Name,
		ApiKey:      plain,
		Permissions: newKey.Permissions,
		ExpiresAt:   newKey.ExpiresAt,
		CreatedAt:   newKey.CreatedAt,
	}, nil
}

// Authenticate resolves a presented plaintext to its key record.
func (u *ApiKeyUsecase) Authenticate(ctx context.Context, plaintext string) (*entities.ApiKey, error) {
	key, err := u.apiKeyRepo.FindByKeyHash(ctx, crypto.SHA256Hex([]byte(plaintext)))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid api key")
		}
		return nil, err
	}
	if key.Revoked {
		return nil, domainerrors.Forbidden("api key revoked")
	}
	if !key.ExpiresAt.After(time.Now()) {
		return nil, domainerrors.Forbidden("api key expired")
	}
	return key, nil
}

// Authorize reports whether the key carries the required permission.
func (u *ApiKeyUsecase) Authorize(key *entities.ApiKey, required entities.Permission) bool {
	return key.HasPermission(required)
}

// List returns the user's key records. Plaintext secrets are never
// retrievable; records expose only hash-backed metadata.
func (u *ApiKeyUsecase) List(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	return u.apiKeyRepo.FindByUserID(ctx, userID)
}

// Revoke permanently revokes a key owned by the user.
func (u *ApiKeyUsecase) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	key, err := u.apiKeyRepo.FindByID(ctx, keyID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("api key not found")
		}
		return err
	}
	if key.UserID != userID {
		return domainerrors.Forbidden("not owner of api key")
	}
	return u.apiKeyRepo.Revoke(ctx, keyID)
}
