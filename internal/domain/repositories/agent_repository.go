package repositories

import (
	"context"

	"github.com/google/uuid"
	"open-wallet.backend/internal/domain/entities"
)

// AgentRepository defines agent data operations
type AgentRepository interface {
	Create(ctx context.Context, agent *entities.Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Agent, error)
	GetByWalletID(ctx context.Context, walletID uuid.UUID) (*entities.Agent, error)
	List(ctx context.Context, filter entities.AgentFilter) ([]*entities.Agent, error)
	UpdatePolicy(ctx context.Context, id uuid.UUID, policy entities.AgentPolicy) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AgentStatus) error
}
