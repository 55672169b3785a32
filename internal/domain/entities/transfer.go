package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferInput represents input for a wallet-to-wallet transfer
type TransferInput struct {
	ToWalletID  string            `json:"toWalletId" binding:"required"`
	Amount      decimal.Decimal   `json:"amount" binding:"required"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// TransferReceipt is the caller-facing outcome of a paired debit+credit.
// Both legs share TransferID as their correlation key; the transfer itself
// is never persisted as its own row.
type TransferReceipt struct {
	TransferID          string            `json:"transferId"`
	FromWalletID        uuid.UUID         `json:"fromWalletId"`
	ToWalletID          uuid.UUID         `json:"toWalletId"`
	Amount              decimal.Decimal   `json:"amount"`
	DebitTransactionID  uuid.UUID         `json:"debitTransactionId"`
	CreditTransactionID uuid.UUID         `json:"creditTransactionId"`
	Status              TransactionStatus `json:"status"`
}

// A2ATransferInput represents input for an agent-to-agent transfer
type A2ATransferInput struct {
	FromAgentID string          `json:"fromAgentId" binding:"required"`
	ToAgentID   string          `json:"toAgentId" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description,omitempty"`
}

// A2ATransferResult is the caller-facing outcome of an agent-to-agent
// transfer.
type A2ATransferResult struct {
	TransferID string          `json:"transferId"`
	FromAgent  string          `json:"fromAgent"`
	ToAgent    string          `json:"toAgent"`
	Amount     decimal.Decimal `json:"amount"`
	Receipt    *TransferReceipt `json:"receipt"`
}
