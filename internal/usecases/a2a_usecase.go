package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/domain/repositories"
)

// A2AUsecase moves funds between two agents' wallets after the sending
// agent's policy allows it.
type A2AUsecase struct {
	agentRepo repositories.AgentRepository
	policy    *PolicyEngine
	transfers *TransferUsecase
}

// NewA2AUsecase creates a new agent-to-agent transfer usecase
func NewA2AUsecase(agentRepo repositories.AgentRepository, policy *PolicyEngine, transfers *TransferUsecase) *A2AUsecase {
	return &A2AUsecase{agentRepo: agentRepo, policy: policy, transfers: transfers}
}

// Transfer runs an agent-to-agent transfer. Policy checks happen
// before any mutation; a daily-spend reservation taken here is
// released if the wallet transfer fails.
func (u *A2AUsecase) Transfer(ctx context.Context, input *entities.A2ATransferInput) (*entities.A2ATransferResult, error) {
	return u.transfer(ctx, input, nil)
}

func (u *A2AUsecase) transfer(ctx context.Context, input *entities.A2ATransferInput, intentPayload map[string]any) (*entities.A2ATransferResult, error) {
	fromAgentID, err := uuid.Parse(input.FromAgentID)
	if err != nil {
		return nil, fmt.Errorf("%w: fromAgentId must be a UUID", domainerrors.ErrInvalidInput)
	}
	toAgentID, err := uuid.Parse(input.ToAgentID)
	if err != nil {
		return nil, fmt.Errorf("%w: toAgentId must be a UUID", domainerrors.ErrInvalidInput)
	}
	if fromAgentID == toAgentID {
		return nil, domainerrors.ErrSelfTransfer
	}

	fromAgent, err := u.agentRepo.GetByID(ctx, fromAgentID)
	if err != nil {
		return nil, fmt.Errorf("sending agent: %w", err)
	}
	toAgent, err := u.agentRepo.GetByID(ctx, toAgentID)
	if err != nil {
		return nil, fmt.Errorf("receiving agent: %w", err)
	}
	if !toAgent.IsActive() {
		return nil, fmt.Errorf("receiving agent: %w", domainerrors.ErrInactiveAgent)
	}

	if err := u.policy.Validate(fromAgent, toAgent.ID, input.Amount); err != nil {
		return nil, err
	}
	if err := u.policy.ReserveDailySpend(ctx, fromAgent, input.Amount); err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("A2A transfer from %s to %s", fromAgent.Name, toAgent.Name)
	}

	receipt, err := u.transfers.execute(ctx, fromAgent.WalletID, toAgent.WalletID, input.Amount, description, legTypes{
		debit:  entities.TransactionTypeA2ATransfer,
		credit: entities.TransactionTypeA2ATransfer,
	}, entities.Correlation{
		AgentID:             &fromAgent.ID,
		CounterpartyAgentID: &toAgent.ID,
		IntentPayload:       intentPayload,
	})
	if err != nil {
		// On a partial failure the debit stood, so the spend stays
		// counted against the daily window.
		if !errors.Is(err, domainerrors.ErrPartialTransferFailure) {
			u.policy.ReleaseDailySpend(ctx, fromAgent, input.Amount)
		}
		return nil, err
	}

	return &entities.A2ATransferResult{
		TransferID: receipt.TransferID,
		FromAgent:  fromAgent.ID.String(),
		ToAgent:    toAgent.ID.String(),
		Amount:     input.Amount,
		Receipt:    receipt,
	}, nil
}
