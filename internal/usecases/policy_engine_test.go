package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/usecases"
)

func activeAgent(policy entities.AgentPolicy) *entities.Agent {
	return &entities.Agent{
		ID:       uuid.New(),
		Name:     "shopping-agent",
		OwnerID:  uuid.New(),
		WalletID: uuid.New(),
		Type:     entities.AgentTypePersonal,
		Status:   entities.AgentStatusActive,
		Policy:   policy,
	}
}

func TestValidateInactiveAgent(t *testing.T) {
	engine := usecases.NewPolicyEngine(nil)
	agent := activeAgent(entities.AgentPolicy{})
	agent.Status = entities.AgentStatusSuspended

	err := engine.Validate(agent, uuid.New(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domainerrors.ErrInactiveAgent)
}

func TestValidatePerTransactionLimit(t *testing.T) {
	engine := usecases.NewPolicyEngine(nil)
	agent := activeAgent(entities.AgentPolicy{PerTransactionLimit: decimal.NewFromInt(100)})

	require.NoError(t, engine.Validate(agent, uuid.New(), decimal.NewFromInt(100)))

	err := engine.Validate(agent, uuid.New(), decimal.NewFromFloat(100.01))
	assert.ErrorIs(t, err, domainerrors.ErrSpendingLimitExceeded)
}

func TestValidateZeroLimitMeansUnlimited(t *testing.T) {
	engine := usecases.NewPolicyEngine(nil)
	agent := activeAgent(entities.AgentPolicy{})

	assert.NoError(t, engine.Validate(agent, uuid.New(), decimal.NewFromInt(1000000)))
}

func TestValidateCounterpartyAllowlist(t *testing.T) {
	engine := usecases.NewPolicyEngine(nil)
	allowed := uuid.New()
	agent := activeAgent(entities.AgentPolicy{AuthorizedCounterparties: []uuid.UUID{allowed}})

	require.NoError(t, engine.Validate(agent, allowed, decimal.NewFromInt(10)))

	err := engine.Validate(agent, uuid.New(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorizedCounterparty)

	// Empty allowlist authorizes everyone.
	open := activeAgent(entities.AgentPolicy{})
	assert.NoError(t, engine.Validate(open, uuid.New(), decimal.NewFromInt(10)))
}

func TestReserveDailySpend(t *testing.T) {
	tracker := new(MockDailyLimitTracker)
	engine := usecases.NewPolicyEngine(tracker)
	agent := activeAgent(entities.AgentPolicy{DailyLimit: decimal.NewFromInt(500)})
	amount := decimal.NewFromInt(200)

	tracker.On("Consume", mock.Anything, agent.ID, amount).Return(decimal.NewFromInt(200), nil).Once()
	require.NoError(t, engine.ReserveDailySpend(context.Background(), agent, amount))
	tracker.AssertExpectations(t)
}

func TestReserveDailySpendOverLimitReleases(t *testing.T) {
	tracker := new(MockDailyLimitTracker)
	engine := usecases.NewPolicyEngine(tracker)
	agent := activeAgent(entities.AgentPolicy{DailyLimit: decimal.NewFromInt(500)})
	amount := decimal.NewFromInt(200)

	tracker.On("Consume", mock.Anything, agent.ID, amount).Return(decimal.NewFromInt(600), nil).Once()
	tracker.On("Release", mock.Anything, agent.ID, amount).Return(nil).Once()

	err := engine.ReserveDailySpend(context.Background(), agent, amount)
	assert.ErrorIs(t, err, domainerrors.ErrDailyLimitExceeded)
	tracker.AssertExpectations(t)
}

func TestReserveDailySpendNoLimitSkipsTracker(t *testing.T) {
	tracker := new(MockDailyLimitTracker)
	engine := usecases.NewPolicyEngine(tracker)
	agent := activeAgent(entities.AgentPolicy{})

	require.NoError(t, engine.ReserveDailySpend(context.Background(), agent, decimal.NewFromInt(200)))
	tracker.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
}

func TestReserveDailySpendTrackerError(t *testing.T) {
	tracker := new(MockDailyLimitTracker)
	engine := usecases.NewPolicyEngine(tracker)
	agent := activeAgent(entities.AgentPolicy{DailyLimit: decimal.NewFromInt(500)})

	tracker.On("Consume", mock.Anything, agent.ID, mock.Anything).
		Return(nil, errors.New("redis: connection refused")).Once()

	err := engine.ReserveDailySpend(context.Background(), agent, decimal.NewFromInt(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily limit tracker")
}

func TestReleaseDailySpendSwallowsTrackerError(t *testing.T) {
	tracker := new(MockDailyLimitTracker)
	engine := usecases.NewPolicyEngine(tracker)
	agent := activeAgent(entities.AgentPolicy{DailyLimit: decimal.NewFromInt(500)})

	tracker.On("Release", mock.Anything, agent.ID, mock.Anything).
		Return(errors.New("redis: connection refused")).Once()

	engine.ReleaseDailySpend(context.Background(), agent, decimal.NewFromInt(10))
	tracker.AssertExpectations(t)
}
