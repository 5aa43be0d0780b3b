package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"wallet-core.backend/internal/domain/entities"
	domainerrors "wallet-core.backend/internal/domain/errors"
	"wallet-core.backend/internal/domain/repositories"
	"wallet-core.backend/internal/infrastructure/jobs"
	"wallet-core.backend/internal/infrastructure/paystack"
	"wallet-core.backend/pkg/logger"
)

// PaymentProvider is the outbound side of the payment integration.
type PaymentProvider interface {
	Initialize(ctx context.Context, req *paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResponse, error)
	VerifySignature(rawBody []byte, signature string) bool
}

// JobEnqueuer hands verified webhook payloads to the asynchronous runner.
type JobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// DepositUsecase reconciles the payment provider's asynchronous notification
// protocol into exactly-once wallet credits.
type DepositUsecase struct {
	provider   PaymentProvider
	queue      JobEnqueuer
	userRepo   repositories.UserRepository
	walletRepo repositories.WalletRepository
	txRepo     repositories.TransactionRepository
	uow        repositories.UnitOfWork
}

// NewDepositUsecase creates a new deposit usecase
func NewDepositUsecase(
	provider PaymentProvider,
	queue JobEnqueuer,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
	uow repositories.UnitOfWork,
) *DepositUsecase {
	return &DepositUsecase{
		provider:   provider,
		queue:      queue,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		uow:        uow,
	}
}

// InitializeDeposit starts a hosted payment for the user. A PENDING
// transaction keyed by the generated reference is persisted before the
// redirect URL is returned.
func (u *DepositUsecase) InitializeDeposit(ctx context.Context, userID uuid.UUID, email string, amount int64) (*entities.InitializeDepositResponse, error) {
	if amount <= 0 {
		return nil, domainerrors.BadRequest("deposit amount must be positive")
	}

	reference := fmt.Sprintf("wallet_%s_%d", userID, time.Now().UnixMilli())

	resp, err := u.provider.Initialize(ctx, &paystack.InitializeRequest{
		Email:     email,
		Amount:    amount,
		Reference: reference,
	})
	if err != nil {
		return nil, err
	}

	tx := &entities.Transaction{
		UserID:    userID,
		Type:      entities.TransactionTypeDeposit,
		Amount:    amount,
		Status:    entities.TransactionStatusPending,
		Reference: null.StringFrom(reference),
	}
	if err := u.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	return &entities.InitializeDepositResponse{
		Reference:        reference,
		AuthorizationURL: resp.Data.AuthorizationURL,
	}, nil
}

// VerifyDeposit reports the provider-side status of a charge.
func (u *DepositUsecase) VerifyDeposit(ctx context.Context, reference string) (*paystack.VerifyResponse, error) {
	if _, err := u.txRepo.GetByReference(ctx, reference); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("unknown deposit reference")
		}
		return nil, err
	}
	return u.provider.Verify(ctx, reference)
}

// HandleWebhook is the synchronous half of webhook ingestion: it verifies the
// signature over the exact raw body and enqueues the rest. A bad signature is
// a hard rejection; everything after verification runs off the request path.
func (u *DepositUsecase) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if signature == "" || !u.provider.VerifySignature(rawBody, signature) {
		return domainerrors.BadSignature("invalid webhook signature")
	}

	// Reject bodies that do not even parse before queueing.
	var event entities.PaymentEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return domainerrors.BadRequest("malformed webhook payload")
	}

	return u.queue.Enqueue(jobs.Job{
		Kind:    jobs.JobKindHandleWebhook,
		Payload: rawBody,
	})
}

// ProcessPaymentEvent is the asynchronous half: it applies a verified event
// to the ledger. Duplicate delivery of the same reference is a silent no-op;
// at most one credit is ever applied per reference. A returned error means
// the job runner should retry.
func (u *DepositUsecase) ProcessPaymentEvent(ctx context.Context, payload []byte) error {
	var event entities.PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// Not retryable; the payload will not get better.
		logger.Error(ctx, "dropping undecodable payment event", zap.Error(err))
		return nil
	}

	if event.Event != entities.EventChargeSuccess {
		logger.Debug(ctx, "ignoring payment event", zap.String("event", event.Event))
		return nil
	}

	reference := event.Data.Reference
	amount := event.Data.Amount
	if reference == "" || amount <= 0 {
		logger.Error(ctx, "dropping charge event with invalid data",
			zap.String("reference", reference),
			zap.Int64("amount", amount))
		return nil
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		// Idempotency gate: the transaction row for this reference is read
		// under lock, so two workers holding the same duplicate serialize
		// here and the second sees SUCCESS.
		existing, err := u.txRepo.GetByReference(lockCtx, reference)
		if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		if existing != nil && existing.Status == entities.TransactionStatusSuccess {
			return nil
		}

		user, err := u.userRepo.GetByEmail(txCtx, event.Data.Customer.Email)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				// A missing user will not appear by retrying. Log and drop.
				logger.Error(txCtx, "dropping charge for unknown payer",
					zap.String("reference", reference),
					zap.String("email", event.Data.Customer.Email))
				return nil
			}
			return err
		}

		wallet, err := u.walletRepo.GetByUserID(lockCtx, user.ID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				logger.Error(txCtx, "dropping charge for user without wallet",
					zap.String("reference", reference),
					zap.String("userId", user.ID.String()))
				return nil
			}
			return err
		}

		if err := u.walletRepo.AddBalance(lockCtx, wallet.ID, amount); err != nil {
			return err
		}

		if existing != nil {
			return u.txRepo.UpdateStatus(txCtx, existing.ID, entities.TransactionStatusSuccess)
		}

		// No PENDING row was pre-created; upsert by reference. The unique
		// index on reference backstops a concurrent duplicate: the loser's
		// insert fails and the whole credit rolls back.
		walletID := wallet.ID
		return u.txRepo.Create(txCtx, &entities.Transaction{
			UserID:      user.ID,
			Type:        entities.TransactionTypeDeposit,
			Amount:      amount,
			Status:      entities.TransactionStatusSuccess,
			Reference:   null.StringFrom(reference),
			SenderID:    &walletID,
			RecipientID: &walletID,
		})
	})
	if errors.Is(err, domainerrors.ErrAlreadyExists) {
		// Lost a race against another worker holding the same reference.
		logger.Info(ctx, "duplicate charge delivery ignored", zap.String("reference", reference))
		return nil
	}
	return err
}
