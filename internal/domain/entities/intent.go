package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntentKind represents the commerce action an intent describes
type IntentKind string

const (
	IntentKindTransfer IntentKind = "transfer"
	IntentKindPayment  IntentKind = "payment"
	IntentKindPurchase IntentKind = "purchase"
	IntentKindRequest  IntentKind = "request"
	IntentKindOffer    IntentKind = "offer"
)

// Valid reports whether the kind is a recognized intent kind.
func (k IntentKind) Valid() bool {
	switch k {
	case IntentKindTransfer, IntentKindPayment, IntentKindPurchase,
		IntentKindRequest, IntentKindOffer:
		return true
	}
	return false
}

// Monetary reports whether the kind moves ledger funds when processed.
func (k IntentKind) Monetary() bool {
	return k == IntentKindTransfer || k == IntentKindPayment
}

// IntentParty identifies one side of a commerce intent.
type IntentParty struct {
	AgentID  string `json:"agent_id"`
	WalletID string `json:"wallet_id,omitempty"`
}

// IntentAmount carries the monetary value of an intent.
type IntentAmount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency,omitempty"`
}

// Intent is the wire shape of a commerce intent message. Field names
// follow the protocol, not this codebase.
type Intent struct {
	Version   string         `json:"ver"`
	Kind      IntentKind     `json:"intent"`
	Sender    *IntentParty   `json:"sender"`
	Recipient *IntentParty   `json:"recipient,omitempty"`
	Amount    *IntentAmount  `json:"amount,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
}

// Intent processing outcome statuses. An intent terminates as either
// transferred (funds moved), accepted (acknowledged no-op) or rejected.
const (
	IntentStatusTransferred = "transferred"
	IntentStatusAccepted    = "accepted"
	IntentStatusRejected    = "rejected"
)

// IntentResult is the caller-facing outcome of processing an intent.
type IntentResult struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	TransferID string           `json:"transferId,omitempty"`
	Receipt    *TransferReceipt `json:"receipt,omitempty"`
}

// FieldViolation describes one schema violation found in an intent payload.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
