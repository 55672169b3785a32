package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyLimitTracker accumulates agent spend over a calendar day so the
// policy engine can enforce rolling daily limits across instances.
type DailyLimitTracker interface {
	// Consume adds amount to the agent's spend for the current day and
	// returns the new daily total.
	Consume(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	// Release subtracts a previously consumed amount, used when the
	// guarded operation fails after the limit was reserved.
	Release(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error
	// Spent returns the agent's accumulated spend for the current day.
	Spent(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error)
}
