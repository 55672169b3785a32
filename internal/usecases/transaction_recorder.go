package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"open-wallet.backend/internal/domain/entities"
	"open-wallet.backend/internal/domain/repositories"
)

// TransactionRecorder pairs every balance mutation with exactly one
// audit record. Callers must resolve each record to a terminal status
// on every exit path; a dangling pending record is an inconsistency
// picked up by the reconciliation job.
type TransactionRecorder struct {
	txRepo repositories.TransactionRepository
}

// NewTransactionRecorder creates a new transaction recorder
func NewTransactionRecorder(txRepo repositories.TransactionRepository) *TransactionRecorder {
	return &TransactionRecorder{txRepo: txRepo}
}

func buildRecord(walletID uuid.UUID, txType entities.TransactionType, amount decimal.Decimal, currency, description string, corr entities.Correlation) *entities.Transaction {
	tx := &entities.Transaction{
		WalletID:      walletID,
		Type:          txType,
		Amount:        amount,
		Currency:      currency,
		Status:        entities.TransactionStatusPending,
		Description:   description,
		AgentID:       corr.AgentID,
		CounterpartyAgentID: corr.CounterpartyAgentID,
		IntentPayload: corr.IntentPayload,
		Metadata:      corr.Metadata,
	}
	if corr.PaymentToken != "" {
		tx.PaymentToken = null.StringFrom(corr.PaymentToken)
	}
	if corr.TransferID != "" {
		tx.TransferID = null.StringFrom(corr.TransferID)
	}
	if corr.RefundID != "" {
		tx.RefundID = null.StringFrom(corr.RefundID)
	}
	if corr.ChainTxHash != "" {
		tx.ChainTxHash = null.StringFrom(corr.ChainTxHash)
	}
	if corr.Network != "" {
		tx.Network = null.StringFrom(corr.Network)
	}
	if corr.GasUsed != nil {
		tx.GasUsed = null.Int64From(*corr.GasUsed)
	}
	return tx
}

// Record creates a pending transaction record for a mutation about to
// be applied.
func (r *TransactionRecorder) Record(ctx context.Context, walletID uuid.UUID, txType entities.TransactionType, amount decimal.Decimal, currency, description string, corr entities.Correlation) (*entities.Transaction, error) {
	tx := buildRecord(walletID, txType, amount, currency, description, corr)
	if err := r.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// RecordCompleted creates a record directly in completed state. Used
// for mutations that are part of the same store write as the record
// itself, such as initial wallet funding.
func (r *TransactionRecorder) RecordCompleted(ctx context.Context, walletID uuid.UUID, txType entities.TransactionType, amount decimal.Decimal, currency, description string, balanceAfter decimal.Decimal, corr entities.Correlation) (*entities.Transaction, error) {
	tx := buildRecord(walletID, txType, amount, currency, description, corr)
	now := time.Now()
	tx.Status = entities.TransactionStatusCompleted
	tx.BalanceAfter = decimal.NewNullDecimal(balanceAfter)
	tx.CompletedAt = &now
	if err := r.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Complete transitions a pending record to completed, stamping the
// balance observed immediately after the paired mutation.
func (r *TransactionRecorder) Complete(ctx context.Context, id uuid.UUID, balanceAfter decimal.Decimal) error {
	return r.txRepo.Complete(ctx, id, balanceAfter, time.Now())
}

// Fail transitions a pending record to failed.
func (r *TransactionRecorder) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return r.txRepo.Fail(ctx, id, errorMessage, time.Now())
}
