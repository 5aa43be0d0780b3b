package usecases

import (
	"bytes"
	"context"
	"errors"

	"github.com/google/uuid"
	"wallet-core.backend/internal/domain/entities"
	domainerrors "wallet-core.backend/internal/domain/errors"
	"wallet-core.backend/internal/domain/repositories"
)

// WalletUsecase owns balance mutation. All wallet writes in the system go
// through here or through the deposit usecase; nothing else touches balances.
type WalletUsecase struct {
	walletRepo repositories.WalletRepository
	txRepo     repositories.TransactionRepository
	userRepo   repositories.UserRepository
	uow        repositories.UnitOfWork
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
	userRepo repositories.UserRepository,
	uow repositories.UnitOfWork,
) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		userRepo:   userRepo,
		uow:        uow,
	}
}

// CreateWallet creates a zero-balance wallet for the user
func (u *WalletUsecase) CreateWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.BadRequest("user with provided id does not exist")
		}
		return nil, err
	}

	if _, err := u.walletRepo.GetByUserID(ctx, userID); err == nil {
		return nil, domainerrors.AlreadyExists("wallet already exists for this user")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	wallet := &entities.Wallet{UserID: userID}
	if err := u.walletRepo.Create(ctx, wallet); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("wallet already exists for this user")
		}
		return nil, err
	}
	return wallet, nil
}

// GetBalance returns the wallet balance for a user
func (u *WalletUsecase) GetBalance(ctx context.Context, userID uuid.UUID) (*entities.BalanceResponse, error) {
	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("wallet not found")
		}
		return nil, err
	}
	return &entities.BalanceResponse{Balance: wallet.Balance}, nil
}

// GetWallet returns a wallet by id
func (u *WalletUsecase) GetWallet(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	wallet, err := u.walletRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("wallet not found")
		}
		return nil, err
	}
	return wallet, nil
}

// ListWallets lists all wallets
func (u *WalletUsecase) ListWallets(ctx context.Context) ([]*entities.Wallet, error) {
	return u.walletRepo.List(ctx)
}

// Transfer atomically moves amount from the sender's wallet to the recipient
// wallet and appends one SUCCESS transaction row. Debit, credit and history
// commit as a single unit; both wallet rows are locked, in id order, so the
// balance invariant holds under concurrent transfers.
func (u *WalletUsecase) Transfer(ctx context.Context, senderUserID, recipientWalletID uuid.UUID, amount int64) (*entities.TransferResult, error) {
	if amount <= 0 {
		return nil, domainerrors.BadRequest("transfer amount must be positive")
	}

	var result *entities.TransferResult
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		senderWallet, err := u.walletRepo.GetByUserID(txCtx, senderUserID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NotFound("sender or recipient wallet not found")
			}
			return err
		}
		recipientWallet, err := u.walletRepo.GetByID(txCtx, recipientWalletID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NotFound("sender or recipient wallet not found")
			}
			return err
		}

		// Re-read both rows under lock, smaller id first, so two transfers
		// crossing the same wallet pair cannot deadlock.
		first, second := senderWallet.ID, recipientWallet.ID
		if bytes.Compare(second[:], first[:]) < 0 {
			first, second = second, first
		}
		if _, err := u.walletRepo.GetByID(lockCtx, first); err != nil {
			return err
		}
		if first != second {
			if _, err := u.walletRepo.GetByID(lockCtx, second); err != nil {
				return err
			}
		}

		senderWallet, err = u.walletRepo.GetByUserID(txCtx, senderUserID)
		if err != nil {
			return err
		}
		if senderWallet.Balance < amount {
			return domainerrors.InsufficientFunds("insufficient balance")
		}

		if err := u.walletRepo.AddBalance(lockCtx, senderWallet.ID, -amount); err != nil {
			return err
		}
		if err := u.walletRepo.AddBalance(lockCtx, recipientWallet.ID, amount); err != nil {
			return err
		}

		senderID := senderWallet.ID
		recipientID := recipientWallet.ID
		tx := &entities.Transaction{
			UserID:      senderUserID,
			Type:        entities.TransactionTypeTransfer,
			Amount:      amount,
			Status:      entities.TransactionStatusSuccess,
			SenderID:    &senderID,
			RecipientID: &recipientID,
		}
		if err := u.txRepo.Create(txCtx, tx); err != nil {
			return err
		}

		result = &entities.TransferResult{
			TransactionID: tx.ID,
			SenderBalance: senderWallet.Balance - amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTransactions returns the user's transaction history, newest first. It
// includes rows the user originated and transfers received by their wallet.
func (u *WalletUsecase) GetTransactions(ctx context.Context, userID uuid.UUID) ([]entities.TransactionView, error) {
	var walletID *uuid.UUID
	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err == nil {
		walletID = &wallet.ID
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	txs, err := u.txRepo.ListByUser(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}

	views := make([]entities.TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, tx.View())
	}
	return views, nil
}
