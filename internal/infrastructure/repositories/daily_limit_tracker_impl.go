package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"open-wallet.backend/pkg/redis"
)

// dailyLimitTTL keeps yesterday's counter around long enough for any
// in-flight release straddling midnight.
const dailyLimitTTL = 48 * time.Hour

// Injectable for testing
var (
	incrByFn   = redis.IncrBy
	decrByFn   = redis.DecrBy
	expireFn   = redis.Expire
	getInt64Fn = redis.GetInt64
	nowFn      = time.Now
)

// RedisDailyLimitTracker counts agent spend per UTC day in minor
// currency units so the counter stays an integer under INCRBY.
type RedisDailyLimitTracker struct {
	precision int32
}

// NewRedisDailyLimitTracker creates a tracker that stores amounts with
// the given number of fractional digits.
func NewRedisDailyLimitTracker(precision int32) *RedisDailyLimitTracker {
	return &RedisDailyLimitTracker{precision: precision}
}

func (t *RedisDailyLimitTracker) key(agentID uuid.UUID) string {
	return fmt.Sprintf("agent_daily:%s:%s", agentID, nowFn().UTC().Format("2006-01-02"))
}

func (t *RedisDailyLimitTracker) toMinor(amount decimal.Decimal) int64 {
	return amount.Shift(t.precision).IntPart()
}

func (t *RedisDailyLimitTracker) fromMinor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-t.precision)
}

// Consume adds amount to today's counter and returns the new total.
func (t *RedisDailyLimitTracker) Consume(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	key := t.key(agentID)
	total, err := incrByFn(ctx, key, t.toMinor(amount))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if err := expireFn(ctx, key, dailyLimitTTL); err != nil {
		return decimal.Decimal{}, err
	}
	return t.fromMinor(total), nil
}

// Release subtracts amount from today's counter.
func (t *RedisDailyLimitTracker) Release(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error {
	_, err := decrByFn(ctx, t.key(agentID), t.toMinor(amount))
	return err
}

// Spent returns today's accumulated spend for the agent.
func (t *RedisDailyLimitTracker) Spent(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error) {
	total, err := getInt64Fn(ctx, t.key(agentID))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return t.fromMinor(total), nil
}
