package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/domain/repositories"
)

// RefundUsecase returns funds from a completed debit-like transaction
// to the wallet it debited. Partial refunds are allowed as long as the
// cumulative refunded amount never exceeds the original debit.
type RefundUsecase struct {
	walletRepo repositories.WalletRepository
	txRepo     repositories.TransactionRepository
	recorder   *TransactionRecorder
	cfg        LedgerConfig
}

// NewRefundUsecase creates a new refund usecase
func NewRefundUsecase(walletRepo repositories.WalletRepository, txRepo repositories.TransactionRepository, recorder *TransactionRecorder, cfg LedgerConfig) *RefundUsecase {
	return &RefundUsecase{walletRepo: walletRepo, txRepo: txRepo, recorder: recorder, cfg: cfg}
}

// Refund credits the wallet behind a completed debit-like transaction.
// An omitted amount refunds whatever remains refundable.
func (u *RefundUsecase) Refund(ctx context.Context, input *entities.RefundInput) (*entities.MutationResult, error) {
	originalID, err := uuid.Parse(input.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: transactionId must be a UUID", domainerrors.ErrInvalidInput)
	}
	if !entities.ValidRefundReason(input.Reason) {
		return nil, fmt.Errorf("%w: reason must be one of %s",
			domainerrors.ErrInvalidInput, strings.Join(entities.RefundReasons, ", "))
	}

	original, err := u.txRepo.GetByID(ctx, originalID)
	if err != nil {
		return nil, fmt.Errorf("original transaction: %w", err)
	}
	if original.Status != entities.TransactionStatusCompleted {
		return nil, fmt.Errorf("%w: only completed transactions can be refunded", domainerrors.ErrInvalidStatus)
	}
	if !original.Amount.IsNegative() || original.Type == entities.TransactionTypeRefund {
		return nil, fmt.Errorf("%w: transaction %s is not refundable", domainerrors.ErrInvalidInput, originalID)
	}

	alreadyRefunded, err := u.txRepo.SumRefunded(ctx, originalID)
	if err != nil {
		return nil, err
	}
	refundable := original.Amount.Abs().Sub(alreadyRefunded)

	amount := input.Amount
	if amount.IsZero() {
		amount = refundable
	}
	if err := validatePositiveAmount(amount, u.cfg.Precision); err != nil {
		return nil, err
	}
	if amount.GreaterThan(refundable) {
		return nil, fmt.Errorf("%w: %s exceeds the refundable amount %s",
			domainerrors.ErrInvalidAmount, amount, refundable)
	}

	wallet, err := u.walletRepo.GetByID(ctx, original.WalletID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, domainerrors.ErrInactiveWallet
	}

	record, err := u.recorder.Record(ctx, wallet.ID, entities.TransactionTypeRefund, amount, wallet.Currency,
		fmt.Sprintf("Refund of %s", originalID), entities.Correlation{
			RefundID: originalID.String(),
			Metadata: map[string]string{"reason": input.Reason},
		})
	if err != nil {
		return nil, err
	}

	newBalance, err := u.walletRepo.IncrementBalance(ctx, wallet.ID, amount,
		repositories.BalanceBounds{Min: u.cfg.MinBalance, Max: u.cfg.MaxBalance})
	if err != nil {
		if failErr := u.recorder.Fail(ctx, record.ID, err.Error()); failErr != nil {
			return nil, fmt.Errorf("refund failed (%w); could not fail record %s: %v", err, record.ID, failErr)
		}
		return nil, err
	}
	if err := u.recorder.Complete(ctx, record.ID, newBalance); err != nil {
		return nil, err
	}

	return &entities.MutationResult{
		TransactionID: record.ID,
		Amount:        amount,
		NewBalance:    newBalance,
		Status:        entities.TransactionStatusCompleted,
	}, nil
}
