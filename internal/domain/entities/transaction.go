package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TransactionType represents the kind of balance mutation recorded
type TransactionType string

const (
	TransactionTypeCredit             TransactionType = "credit"
	TransactionTypeDebit              TransactionType = "debit"
	TransactionTypeTransferIn         TransactionType = "transfer_in"
	TransactionTypeTransferOut        TransactionType = "transfer_out"
	TransactionTypeRefund             TransactionType = "refund"
	TransactionTypeA2ATransfer        TransactionType = "a2a_transfer"
	TransactionTypeBlockchainTransfer TransactionType = "blockchain_transfer"
)

// Valid reports whether the type is a recognized transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeCredit, TransactionTypeDebit, TransactionTypeTransferIn,
		TransactionTypeTransferOut, TransactionTypeRefund, TransactionTypeA2ATransfer,
		TransactionTypeBlockchainTransfer:
		return true
	}
	return false
}

// TransactionStatus represents transaction lifecycle status
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// Transaction is an immutable audit record of one balance mutation.
// Amount is signed: positive for credit-like types, negative for debit-like.
type Transaction struct {
	ID                  uuid.UUID           `json:"id"`
	WalletID            uuid.UUID           `json:"walletId"`
	Type                TransactionType     `json:"type"`
	Amount              decimal.Decimal     `json:"amount"`
	Currency            string              `json:"currency"`
	Status              TransactionStatus   `json:"status"`
	Description         string              `json:"description"`
	PaymentToken        null.String         `json:"paymentToken,omitempty"`
	TransferID          null.String         `json:"transferId,omitempty"`
	RefundID            null.String         `json:"refundId,omitempty"`
	AgentID             *uuid.UUID          `json:"agentId,omitempty"`
	CounterpartyAgentID *uuid.UUID          `json:"counterpartyAgentId,omitempty"`
	IntentPayload       map[string]any      `json:"intentPayload,omitempty"`
	ChainTxHash         null.String         `json:"chainTxHash,omitempty"`
	Network             null.String         `json:"network,omitempty"`
	GasUsed             null.Int64          `json:"gasUsed,omitempty"`
	Metadata            map[string]string   `json:"metadata,omitempty"`
	BalanceAfter        decimal.NullDecimal `json:"balanceAfter,omitempty"`
	ErrorMessage        null.String         `json:"errorMessage,omitempty"`
	CompletedAt         *time.Time          `json:"completedAt,omitempty"`
	FailedAt            *time.Time          `json:"failedAt,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// IsPending reports whether the record still awaits a terminal transition.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// Correlation carries the optional audit fields stamped on a transaction
// record at creation time.
type Correlation struct {
	PaymentToken        string
	TransferID          string
	RefundID            string
	AgentID             *uuid.UUID
	CounterpartyAgentID *uuid.UUID
	IntentPayload       map[string]any
	ChainTxHash         string
	Network             string
	GasUsed             *int64
	Metadata            map[string]string
}

// TransactionFilter narrows transaction history queries.
type TransactionFilter struct {
	WalletID uuid.UUID
	Type     TransactionType
	Status   TransactionStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// RefundInput represents input for refunding a completed transaction
type RefundInput struct {
	TransactionID string          `json:"transactionId,omitempty"`
	Amount        decimal.Decimal `json:"amount,omitempty"`
	Reason        string          `json:"reason" binding:"required"`
}

// RefundReasons lists the accepted refund reasons, mirrored from the
// dispute workflow this ledger feeds.
var RefundReasons = []string{
	"customer_request",
	"duplicate_charge",
	"service_not_rendered",
	"agent_error",
	"other",
}

// ValidRefundReason reports whether reason is one of RefundReasons.
func ValidRefundReason(reason string) bool {
	for _, r := range RefundReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// RecordChainTransferInput represents input for recording an already
// executed on-chain transfer against a wallet.
type RecordChainTransferInput struct {
	TxHash      string          `json:"txHash" binding:"required"`
	Network     string          `json:"network" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Direction   string          `json:"direction" binding:"required"` // in, out
	Description string          `json:"description,omitempty"`
}
