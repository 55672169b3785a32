package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/domain/repositories"
	"open-wallet.backend/pkg/logger"
	"open-wallet.backend/pkg/metrics"
	"open-wallet.backend/pkg/utils"
)

// TransferUsecase orchestrates paired debit+credit legs between two
// wallets. There is no transfer row; the shared transfer ID on both
// legs is the correlation key.
type TransferUsecase struct {
	walletRepo repositories.WalletRepository
	recorder   *TransactionRecorder
	cfg        LedgerConfig
}

// NewTransferUsecase creates a new transfer usecase
func NewTransferUsecase(walletRepo repositories.WalletRepository, recorder *TransactionRecorder, cfg LedgerConfig) *TransferUsecase {
	return &TransferUsecase{walletRepo: walletRepo, recorder: recorder, cfg: cfg}
}

func newTransferID() string {
	return "transfer_" + utils.GenerateUUIDv7().String()
}

// Transfer moves funds between two wallets as a debit leg followed by a
// credit leg. A failed credit leg is compensated by re-crediting the
// source wallet; only when that compensation also fails does the ledger
// surface a partial failure.
func (u *TransferUsecase) Transfer(ctx context.Context, fromWalletID uuid.UUID, input *entities.TransferInput) (*entities.TransferReceipt, error) {
	toWalletID, err := uuid.Parse(input.ToWalletID)
	if err != nil {
		return nil, fmt.Errorf("%w: toWalletId must be a UUID", domainerrors.ErrInvalidInput)
	}

	description := input.Description
	if description == "" {
		description = "Wallet transfer"
	}

	return u.execute(ctx, fromWalletID, toWalletID, input.Amount, description, legTypes{
		debit:  entities.TransactionTypeTransferOut,
		credit: entities.TransactionTypeTransferIn,
	}, entities.Correlation{Metadata: input.Metadata})
}

type legTypes struct {
	debit  entities.TransactionType
	credit entities.TransactionType
}

// execute runs the two-leg sequence. Every exit path leaves both leg
// records in a terminal status; the debit record stays pending until
// the credit leg has resolved one way or the other.
func (u *TransferUsecase) execute(ctx context.Context, fromWalletID, toWalletID uuid.UUID, amount decimal.Decimal, description string, legs legTypes, corr entities.Correlation) (*entities.TransferReceipt, error) {
	if err := validatePositiveAmount(amount, u.cfg.Precision); err != nil {
		return nil, err
	}
	if fromWalletID == toWalletID {
		return nil, domainerrors.ErrSelfTransfer
	}

	from, err := u.walletRepo.GetByID(ctx, fromWalletID)
	if err != nil {
		return nil, fmt.Errorf("source wallet: %w", err)
	}
	to, err := u.walletRepo.GetByID(ctx, toWalletID)
	if err != nil {
		return nil, fmt.Errorf("destination wallet: %w", err)
	}
	if !from.IsActive() {
		return nil, fmt.Errorf("source wallet: %w", domainerrors.ErrInactiveWallet)
	}
	if !to.IsActive() {
		return nil, fmt.Errorf("destination wallet: %w", domainerrors.ErrInactiveWallet)
	}
	if from.Currency != to.Currency {
		return nil, fmt.Errorf("%w: wallets hold different currencies (%s, %s)",
			domainerrors.ErrInvalidInput, from.Currency, to.Currency)
	}

	corr.TransferID = newTransferID()
	bounds := repositories.BalanceBounds{Min: u.cfg.MinBalance, Max: u.cfg.MaxBalance}

	debitRecord, err := u.recorder.Record(ctx, from.ID, legs.debit, amount.Neg(), from.Currency, description, corr)
	if err != nil {
		return nil, err
	}

	debitBalance, err := u.walletRepo.IncrementBalance(ctx, from.ID, amount.Neg(), bounds)
	if err != nil {
		if failErr := u.recorder.Fail(ctx, debitRecord.ID, err.Error()); failErr != nil {
			logger.Error(ctx, "failed to mark debit leg failed",
				zap.String("transfer_id", corr.TransferID), zap.Error(failErr))
		}
		metrics.TransfersTotal.WithLabelValues(metrics.TransferFailed).Inc()
		return nil, err
	}

	creditRecord, err := u.recorder.Record(ctx, to.ID, legs.credit, amount, to.Currency, description, corr)
	if err != nil {
		return nil, u.compensate(ctx, from.ID, amount, bounds, debitRecord.ID, debitBalance, corr.TransferID, err)
	}

	creditBalance, err := u.walletRepo.IncrementBalance(ctx, to.ID, amount, bounds)
	if err != nil {
		if failErr := u.recorder.Fail(ctx, creditRecord.ID, err.Error()); failErr != nil {
			logger.Error(ctx, "failed to mark credit leg failed",
				zap.String("transfer_id", corr.TransferID), zap.Error(failErr))
		}
		return nil, u.compensate(ctx, from.ID, amount, bounds, debitRecord.ID, debitBalance, corr.TransferID, err)
	}

	if err := u.recorder.Complete(ctx, creditRecord.ID, creditBalance); err != nil {
		return nil, err
	}
	if err := u.recorder.Complete(ctx, debitRecord.ID, debitBalance); err != nil {
		return nil, err
	}

	metrics.TransfersTotal.WithLabelValues(metrics.TransferCompleted).Inc()
	return &entities.TransferReceipt{
		TransferID:          corr.TransferID,
		FromWalletID:        from.ID,
		ToWalletID:          to.ID,
		Amount:              amount,
		DebitTransactionID:  debitRecord.ID,
		CreditTransactionID: creditRecord.ID,
		Status:              entities.TransactionStatusCompleted,
	}, nil
}

// compensate re-credits the source wallet after a failed credit leg.
// When the re-credit itself fails the debit stands: the record is
// completed so the ledger matches the balance, and the caller gets a
// partial-failure error naming the transfer for manual follow-up.
func (u *TransferUsecase) compensate(ctx context.Context, fromWalletID uuid.UUID, amount decimal.Decimal, bounds repositories.BalanceBounds, debitRecordID uuid.UUID, debitBalance decimal.Decimal, transferID string, cause error) error {
	if _, err := u.walletRepo.IncrementBalance(ctx, fromWalletID, amount, bounds); err != nil {
		logger.Error(ctx, "transfer compensation failed, debit stands",
			zap.String("transfer_id", transferID),
			zap.String("wallet_id", fromWalletID.String()),
			zap.Error(err))
		if completeErr := u.recorder.Complete(ctx, debitRecordID, debitBalance); completeErr != nil {
			logger.Error(ctx, "failed to complete uncompensated debit leg",
				zap.String("transfer_id", transferID), zap.Error(completeErr))
		}
		metrics.TransfersTotal.WithLabelValues(metrics.TransferPartial).Inc()
		return fmt.Errorf("%w: transfer %s debited but not credited (%v)",
			domainerrors.ErrPartialTransferFailure, transferID, cause)
	}

	metrics.TransfersTotal.WithLabelValues(metrics.TransferCompensated).Inc()
	logger.Warn(ctx, "transfer credit leg failed, debit compensated",
		zap.String("transfer_id", transferID), zap.Error(cause))
	if failErr := u.recorder.Fail(ctx, debitRecordID, fmt.Sprintf("credit leg failed, debit compensated: %v", cause)); failErr != nil {
		logger.Error(ctx, "failed to mark compensated debit leg failed",
			zap.String("transfer_id", transferID), zap.Error(failErr))
	}
	return cause
}
