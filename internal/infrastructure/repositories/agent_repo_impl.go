package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/infrastructure/models"
)

// AgentRepository implements agent data operations
type AgentRepository struct {
	db *gorm.DB
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *gorm.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

func agentToModel(a *entities.Agent) (*models.Agent, error) {
	counterparties, err := json.Marshal(a.Policy.AuthorizedCounterparties)
	if err != nil {
		return nil, err
	}
	metadata := "{}"
	if len(a.Metadata) > 0 {
		raw, err := json.Marshal(a.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = string(raw)
	}
	return &models.Agent{
		ID:                       a.ID,
		Name:                     a.Name,
		OwnerID:                  a.OwnerID,
		WalletID:                 a.WalletID,
		Type:                     string(a.Type),
		Status:                   string(a.Status),
		DailyLimit:               a.Policy.DailyLimit,
		PerTransactionLimit:      a.Policy.PerTransactionLimit,
		AuthorizedCounterparties: string(counterparties),
		AutoApprove:              a.Policy.AutoApprove,
		Metadata:                 metadata,
		CreatedAt:                a.CreatedAt,
		UpdatedAt:                a.UpdatedAt,
	}, nil
}

func agentToEntity(m *models.Agent) *entities.Agent {
	a := &entities.Agent{
		ID:       m.ID,
		Name:     m.Name,
		OwnerID:  m.OwnerID,
		WalletID: m.WalletID,
		Type:     entities.AgentType(m.Type),
		Status:   entities.AgentStatus(m.Status),
		Policy: entities.AgentPolicy{
			DailyLimit:          m.DailyLimit,
			PerTransactionLimit: m.PerTransactionLimit,
			AutoApprove:         m.AutoApprove,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.AuthorizedCounterparties != "" {
		_ = json.Unmarshal([]byte(m.AuthorizedCounterparties), &a.Policy.AuthorizedCounterparties)
	}
	if m.Metadata != "" {
		_ = json.Unmarshal([]byte(m.Metadata), &a.Metadata)
	}
	return a
}

// Create creates a new agent. The unique index on wallet_id enforces
// exclusive wallet ownership at the store level.
func (r *AgentRepository) Create(ctx context.Context, agent *entities.Agent) error {
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	now := time.Now()
	agent.CreatedAt = now
	agent.UpdatedAt = now

	m, err := agentToModel(agent)
	if err != nil {
		return err
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets an agent by ID
func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Agent, error) {
	var m models.Agent
	err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return agentToEntity(&m), nil
}

// GetByWalletID gets the agent that owns a wallet
func (r *AgentRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID) (*entities.Agent, error) {
	var m models.Agent
	err := GetDB(ctx, r.db).Where("wallet_id = ?", walletID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return agentToEntity(&m), nil
}

// List returns agents matching the filter, newest first
func (r *AgentRepository) List(ctx context.Context, filter entities.AgentFilter) ([]*entities.Agent, error) {
	db := GetDB(ctx, r.db).Model(&models.Agent{})
	if filter.OwnerID != nil {
		db = db.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		db = db.Where("type = ?", string(filter.Type))
	}

	var ms []models.Agent
	if err := db.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Agent, 0, len(ms))
	for i := range ms {
		out = append(out, agentToEntity(&ms[i]))
	}
	return out, nil
}

// UpdatePolicy replaces the agent's policy
func (r *AgentRepository) UpdatePolicy(ctx context.Context, id uuid.UUID, policy entities.AgentPolicy) error {
	counterparties, err := json.Marshal(policy.AuthorizedCounterparties)
	if err != nil {
		return err
	}
	res := GetDB(ctx, r.db).Model(&models.Agent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"daily_limit":               policy.DailyLimit,
			"per_transaction_limit":     policy.PerTransactionLimit,
			"authorized_counterparties": string(counterparties),
			"auto_approve":              policy.AutoApprove,
			"updated_at":                time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus updates the agent status; the record is retained for
// every status, there is no hard delete.
func (r *AgentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AgentStatus) error {
	res := GetDB(ctx, r.db).Model(&models.Agent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
