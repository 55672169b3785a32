package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"open-wallet.backend/internal/domain/entities"
)

// TransactionRepository defines transaction record data operations.
// Records transition pending -> completed/failed and never backward;
// the Complete/Fail operations must reject terminal records.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	GetByTransferID(ctx context.Context, transferID string) ([]*entities.Transaction, error)
	// Complete transitions a pending record to completed, stamping
	// balanceAfter and the completion time.
	Complete(ctx context.Context, id uuid.UUID, balanceAfter decimal.Decimal, at time.Time) error
	// Fail transitions a pending record to failed with an error message.
	Fail(ctx context.Context, id uuid.UUID, errorMessage string, at time.Time) error
	List(ctx context.Context, filter entities.TransactionFilter, limit, offset int) ([]*entities.Transaction, int64, error)
	// SumRefunded returns the total of completed refund amounts recorded
	// against the given original transaction.
	SumRefunded(ctx context.Context, refundOfID uuid.UUID) (decimal.Decimal, error)
	Stats(ctx context.Context, walletID uuid.UUID) (*entities.WalletStats, error)
	// FailStalePending fails every pending record created before cutoff,
	// returning how many rows were transitioned.
	FailStalePending(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error)
}
