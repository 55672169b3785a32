package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is the persistence shape of a wallet row. Wallets are never
// deleted; status moves to closed instead.
type Wallet struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Currency  string          `gorm:"type:char(3);not null"`
	Status    string          `gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
