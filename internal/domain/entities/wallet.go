package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletStatus represents wallet lifecycle status
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusSuspended WalletStatus = "suspended"
	WalletStatusClosed    WalletStatus = "closed"
)

// Valid reports whether the status is a recognized wallet status.
func (s WalletStatus) Valid() bool {
	switch s {
	case WalletStatusActive, WalletStatusSuspended, WalletStatusClosed:
		return true
	}
	return false
}

// Wallet represents a balance-bearing account tied to one owner.
// Balance is fixed-point decimal; it is only ever changed through the
// ledger store's atomic increment.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"ownerId"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Status    WalletStatus    `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// IsActive reports whether balance mutations are permitted.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}

// CreateWalletInput represents input for creating a wallet
type CreateWalletInput struct {
	OwnerID        string          `json:"ownerId" binding:"required"`
	Currency       string          `json:"currency,omitempty"`
	InitialBalance decimal.Decimal `json:"initialBalance,omitempty"`
}

// AddFundsInput represents input for crediting a wallet
type AddFundsInput struct {
	Amount       decimal.Decimal   `json:"amount" binding:"required"`
	PaymentToken string            `json:"paymentToken,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// DeductFundsInput represents input for debiting a wallet
type DeductFundsInput struct {
	Amount      decimal.Decimal   `json:"amount" binding:"required"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// UpdateWalletStatusInput represents input for a wallet status transition
type UpdateWalletStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// MutationResult is the caller-facing outcome of a single balance mutation.
type MutationResult struct {
	TransactionID uuid.UUID         `json:"transactionId"`
	Amount        decimal.Decimal   `json:"amount"`
	NewBalance    decimal.Decimal   `json:"newBalance"`
	Status        TransactionStatus `json:"status"`
}

// WalletStats aggregates completed transaction totals for a wallet.
type WalletStats struct {
	WalletID           uuid.UUID       `json:"walletId"`
	CurrentBalance     decimal.Decimal `json:"currentBalance"`
	Currency           string          `json:"currency"`
	TotalCredits       decimal.Decimal `json:"totalCredits"`
	TotalDebits        decimal.Decimal `json:"totalDebits"`
	TransactionCount   int64           `json:"transactionCount"`
	AverageTransaction decimal.Decimal `json:"averageTransaction"`
	LastTransactionAt  *time.Time      `json:"lastTransactionAt,omitempty"`
}
