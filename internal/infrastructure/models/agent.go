package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Agent is the persistence shape of an agent row. The counterparty
// allowlist and metadata hold serialized JSON. WalletID is unique: an
// agent exclusively owns its wallet.
type Agent struct {
	ID                       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name                     string          `gorm:"type:varchar(255);not null"`
	OwnerID                  uuid.UUID       `gorm:"type:uuid;not null;index:idx_agents_owner_status"`
	WalletID                 uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Type                     string          `gorm:"type:varchar(20);not null"`
	Status                   string          `gorm:"type:varchar(20);not null;index:idx_agents_owner_status"`
	DailyLimit               decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PerTransactionLimit      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	AuthorizedCounterparties string          `gorm:"type:text"`
	AutoApprove              bool            `gorm:"not null;default:false"`
	Metadata                 string          `gorm:"type:text"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}
