package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"open-wallet.backend/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL UNIQUE,
		balance NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		description TEXT NOT NULL,
		payment_token TEXT,
		transfer_id TEXT,
		refund_id TEXT,
		agent_id TEXT,
		counterparty_agent_id TEXT,
		intent_payload TEXT,
		chain_tx_hash TEXT,
		network TEXT,
		gas_used INTEGER,
		metadata TEXT,
		balance_after NUMERIC,
		error_message TEXT,
		completed_at DATETIME,
		failed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAgentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		wallet_id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		daily_limit NUMERIC NOT NULL,
		per_transaction_limit NUMERIC NOT NULL,
		authorized_counterparties TEXT,
		auto_approve BOOLEAN NOT NULL DEFAULT 0,
		metadata TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func seedWallet(t *testing.T, repo *WalletRepository, balance decimal.Decimal) *entities.Wallet {
	t.Helper()
	w := &entities.Wallet{
		OwnerID:  uuid.New(),
		Balance:  balance,
		Currency: "USD",
		Status:   entities.WalletStatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), w))
	return w
}
