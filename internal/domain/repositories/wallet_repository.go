package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"open-wallet.backend/internal/domain/entities"
)

// BalanceBounds carries the configured balance range enforced by the
// store on every increment.
type BalanceBounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// WalletRepository defines wallet data operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entities.Wallet, error)
	// IncrementBalance applies delta as a single atomic guarded update:
	// the wallet must be active and the resulting balance must stay within
	// bounds, or the balance is untouched. Returns the balance observed
	// immediately after the mutation.
	IncrementBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal, bounds BalanceBounds) (decimal.Decimal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.WalletStatus) error
}
