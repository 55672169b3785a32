package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Transaction is the persistence shape of a transaction record.
// IntentPayload and Metadata hold serialized JSON.
type Transaction struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey"`
	WalletID            uuid.UUID           `gorm:"type:uuid;not null;index:idx_transactions_wallet_created"`
	Type                string              `gorm:"type:varchar(30);not null;index"`
	Amount              decimal.Decimal     `gorm:"type:decimal(20,8);not null"`
	Currency            string              `gorm:"type:char(3);not null"`
	Status              string              `gorm:"type:varchar(20);not null;index"`
	Description         string              `gorm:"type:varchar(500);not null"`
	PaymentToken        null.String         `gorm:"type:varchar(255)"`
	TransferID          null.String         `gorm:"type:varchar(255);index"`
	RefundID            null.String         `gorm:"type:varchar(255);index"`
	AgentID             *uuid.UUID          `gorm:"type:uuid;index"`
	CounterpartyAgentID *uuid.UUID          `gorm:"type:uuid"`
	IntentPayload       null.String         `gorm:"type:text"`
	ChainTxHash         null.String         `gorm:"type:varchar(66)"`
	Network             null.String         `gorm:"type:varchar(50)"`
	GasUsed             null.Int64          ``
	Metadata            null.String         `gorm:"type:text"`
	BalanceAfter        decimal.NullDecimal `gorm:"type:decimal(20,8)"`
	ErrorMessage        null.String         `gorm:"type:text"`
	CompletedAt         *time.Time
	FailedAt            *time.Time
	CreatedAt           time.Time `gorm:"index:idx_transactions_wallet_created"`
	UpdatedAt           time.Time
}
