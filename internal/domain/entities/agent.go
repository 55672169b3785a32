package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgentType represents the kind of autonomous agent
type AgentType string

const (
	AgentTypePersonal AgentType = "personal"
	AgentTypeBusiness AgentType = "business"
	AgentTypeService  AgentType = "service"
)

// Valid reports whether the type is a recognized agent type.
func (t AgentType) Valid() bool {
	switch t {
	case AgentTypePersonal, AgentTypeBusiness, AgentTypeService:
		return true
	}
	return false
}

// AgentStatus represents agent lifecycle status
type AgentStatus string

const (
	AgentStatusActive    AgentStatus = "active"
	AgentStatusInactive  AgentStatus = "inactive"
	AgentStatusSuspended AgentStatus = "suspended"
)

// Valid reports whether the status is a recognized agent status.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusActive, AgentStatusInactive, AgentStatusSuspended:
		return true
	}
	return false
}

// AgentPolicy constrains the transfers an agent may initiate.
// A zero limit means unlimited; an empty counterparty list allows anyone.
type AgentPolicy struct {
	DailyLimit               decimal.Decimal `json:"dailyLimit"`
	PerTransactionLimit      decimal.Decimal `json:"perTransactionLimit"`
	AuthorizedCounterparties []uuid.UUID     `json:"authorizedCounterparties"`
	AutoApprove              bool            `json:"autoApprove"`
}

// Authorizes reports whether counterparty is allowed by the policy's
// allowlist. An empty allowlist authorizes every counterparty.
func (p AgentPolicy) Authorizes(counterparty uuid.UUID) bool {
	if len(p.AuthorizedCounterparties) == 0 {
		return true
	}
	for _, id := range p.AuthorizedCounterparties {
		if id == counterparty {
			return true
		}
	}
	return false
}

// Agent represents an autonomous actor that initiates transfers from its
// exclusively-owned wallet on behalf of an owner.
type Agent struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	OwnerID   uuid.UUID         `json:"ownerId"`
	WalletID  uuid.UUID         `json:"walletId"`
	Type      AgentType         `json:"type"`
	Status    AgentStatus       `json:"status"`
	Policy    AgentPolicy       `json:"policy"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// IsActive reports whether the agent may initiate transfers.
func (a *Agent) IsActive() bool {
	return a.Status == AgentStatusActive
}

// RegisterAgentInput represents input for registering an agent
type RegisterAgentInput struct {
	Name     string            `json:"name" binding:"required"`
	OwnerID  string            `json:"ownerId" binding:"required"`
	WalletID string            `json:"walletId" binding:"required"`
	Type     string            `json:"type,omitempty"`
	Policy   *AgentPolicyInput `json:"policy,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AgentPolicyInput carries optional policy fields; nil fields keep the
// configured defaults (registration) or the current values (update).
type AgentPolicyInput struct {
	DailyLimit               *decimal.Decimal `json:"dailyLimit,omitempty"`
	PerTransactionLimit      *decimal.Decimal `json:"perTransactionLimit,omitempty"`
	AuthorizedCounterparties []string         `json:"authorizedCounterparties,omitempty"`
	AutoApprove              *bool            `json:"autoApprove,omitempty"`
}

// UpdateAgentStatusInput represents input for an agent status transition
type UpdateAgentStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// AgentFilter narrows agent listing queries.
type AgentFilter struct {
	OwnerID *uuid.UUID
	Status  AgentStatus
	Type    AgentType
}
