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
)

// PolicyEngine checks a proposed agent spend against the sending
// agent's policy. Validate is pure; the daily limit is backed by a
// shared rolling counter so enforcement holds across instances.
type PolicyEngine struct {
	tracker repositories.DailyLimitTracker
}

// NewPolicyEngine creates a new policy engine
func NewPolicyEngine(tracker repositories.DailyLimitTracker) *PolicyEngine {
	return &PolicyEngine{tracker: tracker}
}

// Validate runs the side-effect-free policy checks: agent status,
// per-transaction limit, and the counterparty allowlist. An empty
// allowlist authorizes every counterparty.
func (e *PolicyEngine) Validate(agent *entities.Agent, counterpartyAgentID uuid.UUID, amount decimal.Decimal) error {
	if !agent.IsActive() {
		return domainerrors.ErrInactiveAgent
	}

	if agent.Policy.PerTransactionLimit.IsPositive() && amount.GreaterThan(agent.Policy.PerTransactionLimit) {
		return fmt.Errorf("%w: amount %s exceeds per-transaction limit %s",
			domainerrors.ErrSpendingLimitExceeded, amount, agent.Policy.PerTransactionLimit)
	}

	if !agent.Policy.Authorizes(counterpartyAgentID) {
		return fmt.Errorf("%w: agent %s is not an authorized counterparty",
			domainerrors.ErrUnauthorizedCounterparty, counterpartyAgentID)
	}

	return nil
}

// ReserveDailySpend counts amount against the agent's rolling daily
// window. On a limit breach the reservation is released before the
// error returns, so a rejected transfer never consumes budget.
func (e *PolicyEngine) ReserveDailySpend(ctx context.Context, agent *entities.Agent, amount decimal.Decimal) error {
	if e.tracker == nil || !agent.Policy.DailyLimit.IsPositive() {
		return nil
	}

	total, err := e.tracker.Consume(ctx, agent.ID, amount)
	if err != nil {
		return fmt.Errorf("daily limit tracker: %w", err)
	}
	if total.GreaterThan(agent.Policy.DailyLimit) {
		e.ReleaseDailySpend(ctx, agent, amount)
		return fmt.Errorf("%w: daily spend %s would exceed limit %s",
			domainerrors.ErrDailyLimitExceeded, total, agent.Policy.DailyLimit)
	}
	return nil
}

// ReleaseDailySpend gives back a reservation after the guarded
// operation failed. Tracker errors are logged, not propagated: the
// counter drifting high is safer than a spend escaping the window.
func (e *PolicyEngine) ReleaseDailySpend(ctx context.Context, agent *entities.Agent, amount decimal.Decimal) {
	if e.tracker == nil || !agent.Policy.DailyLimit.IsPositive() {
		return
	}
	if err := e.tracker.Release(ctx, agent.ID, amount); err != nil {
		logger.Error(ctx, "failed to release daily spend reservation",
			zap.String("agent_id", agent.ID.String()),
			zap.String("amount", amount.String()),
			zap.Error(err))
	}
}
