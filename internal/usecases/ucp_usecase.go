package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/pkg/metrics"
)

// SchemaError carries the field-level violations found while
// validating an intent payload.
type SchemaError struct {
	Violations []entities.FieldViolation
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "intent schema violation: " + strings.Join(parts, "; ")
}

// Unwrap ties schema errors to the schema-violation sentinel.
func (e *SchemaError) Unwrap() error {
	return domainerrors.ErrSchemaViolation
}

// UCPUsecase translates commerce-intent messages into ledger
// operations. Monetary intents become agent-to-agent transfers;
// the remaining kinds are acknowledged without mutating the ledger.
type UCPUsecase struct {
	a2a *A2AUsecase
}

// NewUCPUsecase creates a new commerce-intent translator
func NewUCPUsecase(a2a *A2AUsecase) *UCPUsecase {
	return &UCPUsecase{a2a: a2a}
}

// validateSchema checks the intent's shape and collects every
// violation rather than stopping at the first.
func validateSchema(intent *entities.Intent) error {
	var violations []entities.FieldViolation

	if intent.Version == "" {
		violations = append(violations, entities.FieldViolation{Field: "ver", Message: "required"})
	}
	if intent.Kind == "" {
		violations = append(violations, entities.FieldViolation{Field: "intent", Message: "required"})
	} else if !intent.Kind.Valid() {
		violations = append(violations, entities.FieldViolation{
			Field:   "intent",
			Message: fmt.Sprintf("unknown kind %q; must be one of transfer, payment, purchase, request, offer", intent.Kind),
		})
	}
	if intent.Sender == nil || intent.Sender.AgentID == "" {
		violations = append(violations, entities.FieldViolation{Field: "sender.agent_id", Message: "required"})
	} else if _, err := uuid.Parse(intent.Sender.AgentID); err != nil {
		violations = append(violations, entities.FieldViolation{Field: "sender.agent_id", Message: "must be a UUID"})
	}
	if intent.Recipient != nil && intent.Recipient.AgentID != "" {
		if _, err := uuid.Parse(intent.Recipient.AgentID); err != nil {
			violations = append(violations, entities.FieldViolation{Field: "recipient.agent_id", Message: "must be a UUID"})
		}
	}
	if intent.Amount != nil && !intent.Amount.Value.IsPositive() {
		violations = append(violations, entities.FieldViolation{Field: "amount.value", Message: "must be positive"})
	}

	if len(violations) > 0 {
		return &SchemaError{Violations: violations}
	}
	return nil
}

// auditPayload snapshots the intent as a plain map for the transaction
// record, preserving the wire field names.
func auditPayload(intent *entities.Intent) map[string]any {
	raw, err := json.Marshal(intent)
	if err != nil {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}

func rejected(err error) (*entities.IntentResult, error) {
	return &entities.IntentResult{Status: entities.IntentStatusRejected, Message: err.Error()}, err
}

// ProcessIntent validates an intent and dispatches it. The returned
// result always reaches a terminal intent status; on error the result
// carries the rejection alongside the error itself.
func (u *UCPUsecase) ProcessIntent(ctx context.Context, intent *entities.Intent) (*entities.IntentResult, error) {
	result, err := u.processIntent(ctx, intent)
	if result != nil {
		metrics.IntentsTotal.WithLabelValues(string(intent.Kind), result.Status).Inc()
	}
	return result, err
}

func (u *UCPUsecase) processIntent(ctx context.Context, intent *entities.Intent) (*entities.IntentResult, error) {
	if err := validateSchema(intent); err != nil {
		return rejected(err)
	}

	if !intent.Kind.Monetary() {
		return &entities.IntentResult{
			Status:  entities.IntentStatusAccepted,
			Message: fmt.Sprintf("intent %q acknowledged; no ledger operation performed", intent.Kind),
		}, nil
	}

	if intent.Recipient == nil || intent.Recipient.AgentID == "" {
		return rejected(fmt.Errorf("%w: recipient.agent_id is required for %s intents", domainerrors.ErrMissingField, intent.Kind))
	}
	if intent.Amount == nil {
		return rejected(fmt.Errorf("%w: amount.value is required for %s intents", domainerrors.ErrMissingField, intent.Kind))
	}

	result, err := u.a2a.transfer(ctx, &entities.A2ATransferInput{
		FromAgentID: intent.Sender.AgentID,
		ToAgentID:   intent.Recipient.AgentID,
		Amount:      intent.Amount.Value,
		Description: fmt.Sprintf("UCP %s intent", intent.Kind),
	}, auditPayload(intent))
	if err != nil {
		return rejected(err)
	}

	return &entities.IntentResult{
		Status:     entities.IntentStatusTransferred,
		Message:    "intent processed",
		TransferID: result.TransferID,
		Receipt:    result.Receipt,
	}, nil
}

// Schema returns the machine-readable intent schema descriptor served
// to integrating agents.
func (u *UCPUsecase) Schema() map[string]any {
	return map[string]any{
		"ver": "1.0",
		"fields": map[string]any{
			"ver":    map[string]any{"type": "string", "required": true},
			"intent": map[string]any{"type": "string", "required": true, "enum": []string{"transfer", "payment", "purchase", "request", "offer"}},
			"sender": map[string]any{
				"type": "object", "required": true,
				"fields": map[string]any{
					"agent_id":  map[string]any{"type": "uuid", "required": true},
					"wallet_id": map[string]any{"type": "uuid", "required": false},
				},
			},
			"recipient": map[string]any{
				"type": "object", "required": "for transfer and payment intents",
				"fields": map[string]any{
					"agent_id":  map[string]any{"type": "uuid", "required": true},
					"wallet_id": map[string]any{"type": "uuid", "required": false},
				},
			},
			"amount": map[string]any{
				"type": "object", "required": "for transfer and payment intents",
				"fields": map[string]any{
					"value":    map[string]any{"type": "decimal string", "required": true, "minimum": "exclusive 0"},
					"currency": map[string]any{"type": "string", "required": false},
				},
			},
			"data":      map[string]any{"type": "object", "required": false},
			"timestamp": map[string]any{"type": "RFC 3339 string", "required": false},
		},
	}
}
