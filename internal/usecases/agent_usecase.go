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

// AgentUsecase owns agent registration and policy management. Agents
// are never deleted; status transitions retain the record.
type AgentUsecase struct {
	agentRepo  repositories.AgentRepository
	walletRepo repositories.WalletRepository
	cfg        AgentConfig
}

// NewAgentUsecase creates a new agent usecase
func NewAgentUsecase(agentRepo repositories.AgentRepository, walletRepo repositories.WalletRepository, cfg AgentConfig) *AgentUsecase {
	return &AgentUsecase{agentRepo: agentRepo, walletRepo: walletRepo, cfg: cfg}
}

func parseCounterparties(ids []string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: authorizedCounterparties entry %q is not a UUID", domainerrors.ErrInvalidInput, raw)
		}
		out = append(out, id)
	}
	return out, nil
}

// buildPolicy applies input on top of base, keeping base values for
// nil input fields.
func (u *AgentUsecase) buildPolicy(base entities.AgentPolicy, input *entities.AgentPolicyInput) (entities.AgentPolicy, error) {
	if input == nil {
		return base, nil
	}
	if input.DailyLimit != nil {
		if input.DailyLimit.IsNegative() {
			return entities.AgentPolicy{}, fmt.Errorf("%w: dailyLimit must not be negative", domainerrors.ErrInvalidInput)
		}
		base.DailyLimit = *input.DailyLimit
	}
	if input.PerTransactionLimit != nil {
		if input.PerTransactionLimit.IsNegative() {
			return entities.AgentPolicy{}, fmt.Errorf("%w: perTransactionLimit must not be negative", domainerrors.ErrInvalidInput)
		}
		base.PerTransactionLimit = *input.PerTransactionLimit
	}
	if input.AuthorizedCounterparties != nil {
		counterparties, err := parseCounterparties(input.AuthorizedCounterparties)
		if err != nil {
			return entities.AgentPolicy{}, err
		}
		base.AuthorizedCounterparties = counterparties
	}
	if input.AutoApprove != nil {
		base.AutoApprove = *input.AutoApprove
	}
	return base, nil
}

// RegisterAgent registers an agent against a wallet it will
// exclusively own. The wallet must exist and not already be claimed.
func (u *AgentUsecase) RegisterAgent(ctx context.Context, input *entities.RegisterAgentInput) (*entities.Agent, error) {
	ownerID, err := uuid.Parse(input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: ownerId must be a UUID", domainerrors.ErrInvalidInput)
	}
	walletID, err := uuid.Parse(input.WalletID)
	if err != nil {
		return nil, fmt.Errorf("%w: walletId must be a UUID", domainerrors.ErrInvalidInput)
	}

	agentType := entities.AgentTypePersonal
	if input.Type != "" {
		agentType = entities.AgentType(input.Type)
		if !agentType.Valid() {
			return nil, fmt.Errorf("%w: type must be one of personal, business, service", domainerrors.ErrInvalidInput)
		}
	}

	if _, err := u.walletRepo.GetByID(ctx, walletID); err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}

	existing, err := u.agentRepo.GetByWalletID(ctx, walletID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: wallet %s already has an agent", domainerrors.ErrAlreadyExists, walletID)
	}

	policy, err := u.buildPolicy(entities.AgentPolicy{
		PerTransactionLimit: u.cfg.DefaultPerTransactionLimit,
		AutoApprove:         true,
	}, input.Policy)
	if err != nil {
		return nil, err
	}

	agent := &entities.Agent{
		Name:     input.Name,
		OwnerID:  ownerID,
		WalletID: walletID,
		Type:     agentType,
		Status:   entities.AgentStatusActive,
		Policy:   policy,
		Metadata: input.Metadata,
	}
	if err := u.agentRepo.Create(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

// GetAgent gets an agent by ID
func (u *AgentUsecase) GetAgent(ctx context.Context, agentID uuid.UUID) (*entities.Agent, error) {
	return u.agentRepo.GetByID(ctx, agentID)
}

// ListAgents lists agents matching the filter
func (u *AgentUsecase) ListAgents(ctx context.Context, filter entities.AgentFilter) ([]*entities.Agent, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status filter %q", domainerrors.ErrInvalidInput, filter.Status)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type filter %q", domainerrors.ErrInvalidInput, filter.Type)
	}
	return u.agentRepo.List(ctx, filter)
}

// UpdateAgentPolicy replaces policy fields carried in the input and
// keeps the rest of the current policy.
func (u *AgentUsecase) UpdateAgentPolicy(ctx context.Context, agentID uuid.UUID, input *entities.AgentPolicyInput) (*entities.Agent, error) {
	agent, err := u.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	policy, err := u.buildPolicy(agent.Policy, input)
	if err != nil {
		return nil, err
	}
	if err := u.agentRepo.UpdatePolicy(ctx, agentID, policy); err != nil {
		return nil, err
	}
	agent.Policy = policy
	return agent, nil
}

// UpdateAgentStatus transitions the agent status, idempotent when the
// status is unchanged.
func (u *AgentUsecase) UpdateAgentStatus(ctx context.Context, agentID uuid.UUID, status string) (*entities.Agent, error) {
	next := entities.AgentStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: must be one of active, inactive, suspended", domainerrors.ErrInvalidStatus)
	}

	agent, err := u.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.Status == next {
		return agent, nil
	}

	if err := u.agentRepo.UpdateStatus(ctx, agentID, next); err != nil {
		return nil, err
	}
	agent.Status = next
	return agent, nil
}
