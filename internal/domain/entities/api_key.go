package entities

import (
	"time"

	"github.com/google/uuid"
)

// Permission gates a specific ledger operation.
type Permission string

const (
	PermissionRead     Permission = "READ"
	PermissionDeposit  Permission = "DEPOSIT"
	PermissionTransfer Permission = "TRANSFER"
)

// ValidPermission reports whether p is a member of the closed permission set.
func ValidPermission(p Permission) bool {
	switch p {
	case PermissionRead, PermissionDeposit, PermissionTransfer:
		return true
	}
	return false
}

// ApiKey represents a service credential owned by a user. Only the SHA-256
// hash of the secret is ever persisted.
type ApiKey struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	Name        string       `json:"name"`
	KeyHash     string       `json:"-"`
	Permissions []Permission `json:"permissions"`
	Revoked     bool         `json:"revoked"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Active reports whether the key can still authenticate at the given instant.
func (k *ApiKey) Active(now time.Time) bool {
	return !k.Revoked && k.ExpiresAt.After(now)
}

// HasPermission reports whether the key carries the given permission.
func (k *ApiKey) HasPermission(p Permission) bool {
	for _, held := range k.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// CreateApiKeyInput represents input for issuing a new API key
type CreateApiKeyInput struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Permissions []string `json:"permissions" binding:"required,min=1"`
	Expiry      string   `json:"expiry" binding:"required"`
}

// RolloverApiKeyInput represents input for rolling over an expired key
type RolloverApiKeyInput struct {
	Expiry string `json:"expiry" binding:"required"`
}

// CreateApiKeyResponse carries the plaintext exactly once; it is never
// persisted or logged.
type CreateApiKeyResponse struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	ApiKey      string       `json:"apiKey"`
	Permissions []Permission `json:"permissions"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	CreatedAt   time.Time    `json:"createdAt"`
}
