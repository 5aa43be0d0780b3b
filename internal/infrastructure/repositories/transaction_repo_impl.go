package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"wallet-core.backend/internal/domain/entities"
	domainerrors "wallet-core.backend/internal/domain/errors"
	"wallet-core.backend/internal/infrastructure/models"
)

// TransactionRepository implements transaction history operations
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a transaction row. The unique index on reference is the
// store-level idempotency guard for provider-initiated deposits.
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	m := &models.Transaction{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Status:      string(tx.Status),
		SenderID:    tx.SenderID,
		RecipientID: tx.RecipientID,
	}
	if tx.Reference.Valid {
		ref := tx.Reference.String
		m.Reference = &ref
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	tx.ID = m.ID
	tx.CreatedAt = m.CreatedAt
	return nil
}

// GetByID gets a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	var m models.Transaction
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByReference gets a transaction by its external reference
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*entities.Transaction, error) {
	var m models.Transaction
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("reference = ?", reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// UpdateStatus sets the status of a transaction
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListByUser returns transactions originated by the user or received by the
// given wallet, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, walletID *uuid.UUID) ([]*entities.Transaction, error) {
	var txModels []models.Transaction
	db := GetDB(ctx, r.db)

	query := db.WithContext(ctx).Order("created_at DESC")
	if walletID != nil {
		query = query.Where("user_id = ? OR recipient_id = ?", userID, *walletID)
	} else {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}

	txs := make([]*entities.Transaction, 0, len(txModels))
	for i := range txModels {
		txs = append(txs, r.toEntity(&txModels[i]))
	}
	return txs, nil
}

func (r *TransactionRepository) toEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:          m.ID,
		UserID:      m.UserID,
		Type:        entities.TransactionType(m.Type),
		Amount:      m.Amount,
		Status:      entities.TransactionStatus(m.Status),
		Reference:   null.StringFromPtr(m.Reference),
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
