package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/interfaces/http/response"
	"open-wallet.backend/internal/usecases"
)

type agentService interface {
	RegisterAgent(ctx context.Context, input *entities.RegisterAgentInput) (*entities.Agent, error)
	GetAgent(ctx context.Context, agentID uuid.UUID) (*entities.Agent, error)
	ListAgents(ctx context.Context, filter entities.AgentFilter) ([]*entities.Agent, error)
	UpdateAgentPolicy(ctx context.Context, agentID uuid.UUID, input *entities.AgentPolicyInput) (*entities.Agent, error)
	UpdateAgentStatus(ctx context.Context, agentID uuid.UUID, status string) (*entities.Agent, error)
}

type a2aService interface {
	Transfer(ctx context.Context, input *entities.A2ATransferInput) (*entities.A2ATransferResult, error)
}

// AgentHandler handles agent endpoints
type AgentHandler struct {
	agentUsecase agentService
	a2aUsecase   a2aService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agentUsecase *usecases.AgentUsecase, a2aUsecase *usecases.A2AUsecase) *AgentHandler {
	return &AgentHandler{agentUsecase: agentUsecase, a2aUsecase: a2aUsecase}
}

// RegisterAgent registers an agent against a wallet
// POST /api/v1/agents
func (h *AgentHandler) RegisterAgent(c *gin.Context) {
	var input entities.RegisterAgentInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	agent, err := h.agentUsecase.RegisterAgent(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Agent registered successfully",
		"agent":   agent,
	})
}

// GetAgent gets an agent by ID
// GET /api/v1/agents/:id
func (h *AgentHandler) GetAgent(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid agent ID"))
		return
	}

	agent, err := h.agentUsecase.GetAgent(c.Request.Context(), agentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"agent": agent})
}

// ListAgents lists agents matching the query filters
// GET /api/v1/agents
func (h *AgentHandler) ListAgents(c *gin.Context) {
	filter := entities.AgentFilter{
		Status: entities.AgentStatus(c.Query("status")),
		Type:   entities.AgentType(c.Query("type")),
	}
	if raw := c.Query("ownerId"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid ownerId filter"))
			return
		}
		filter.OwnerID = &ownerID
	}

	agents, err := h.agentUsecase.ListAgents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	if agents == nil {
		agents = []*entities.Agent{}
	}

	response.Success(c, http.StatusOK, gin.H{"agents": agents})
}

// UpdateAgentPolicy updates an agent's spending policy
// PUT /api/v1/agents/:id/policy
func (h *AgentHandler) UpdateAgentPolicy(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid agent ID"))
		return
	}

	var input entities.AgentPolicyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	agent, err := h.agentUsecase.UpdateAgentPolicy(c.Request.Context(), agentID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Agent policy updated",
		"agent":   agent,
	})
}

// UpdateAgentStatus transitions the agent status
// PUT /api/v1/agents/:id/status
func (h *AgentHandler) UpdateAgentStatus(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid agent ID"))
		return
	}

	var input entities.UpdateAgentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	agent, err := h.agentUsecase.UpdateAgentStatus(c.Request.Context(), agentID, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Agent status updated",
		"agent":   agent,
	})
}

// A2ATransfer runs an agent-to-agent transfer
// POST /api/v1/agents/transfer
func (h *AgentHandler) A2ATransfer(c *gin.Context) {
	var input entities.A2ATransferInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.a2aUsecase.Transfer(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "A2A transfer completed",
		"result":  result,
	})
}
