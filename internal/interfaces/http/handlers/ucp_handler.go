package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/interfaces/http/response"
	"open-wallet.backend/internal/usecases"
)

type ucpService interface {
	ProcessIntent(ctx context.Context, intent *entities.Intent) (*entities.IntentResult, error)
	Schema() map[string]any
}

// UCPHandler handles commerce-intent endpoints
type UCPHandler struct {
	ucpUsecase ucpService
}

// NewUCPHandler creates a new UCP handler
func NewUCPHandler(ucpUsecase *usecases.UCPUsecase) *UCPHandler {
	return &UCPHandler{ucpUsecase: ucpUsecase}
}

// ProcessIntent validates and dispatches a commerce intent. Rejected
// intents answer with the rejection result at the mapped error status.
// POST /api/v1/ucp/intents
func (h *UCPHandler) ProcessIntent(c *gin.Context) {
	var intent entities.Intent

	if err := c.ShouldBindJSON(&intent); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.ucpUsecase.ProcessIntent(c.Request.Context(), &intent)
	if err != nil {
		appErr := domainerrors.FromDomain(err)
		body := gin.H{
			"code":   appErr.Code,
			"result": result,
		}
		var schemaErr *usecases.SchemaError
		if errors.As(err, &schemaErr) {
			body["violations"] = schemaErr.Violations
		}
		c.JSON(appErr.Status, body)
		return
	}

	status := http.StatusOK
	if result.Status == entities.IntentStatusAccepted {
		status = http.StatusAccepted
	}
	response.Success(c, status, gin.H{"result": result})
}

// Schema serves the machine-readable intent schema
// GET /api/v1/ucp/schema
func (h *UCPHandler) Schema(c *gin.Context) {
	response.Success(c, http.StatusOK, h.ucpUsecase.Schema())
}
