package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"open-wallet.backend/internal/domain/entities"
)

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	u := &UnitOfWorkImpl{db: db}
	walletRepo := NewWalletRepository(db)

	// commit path
	err := u.Do(context.Background(), func(ctx context.Context) error {
		return walletRepo.Create(ctx, &entities.Wallet{
			OwnerID:  uuid.New(),
			Balance:  decimal.Zero,
			Currency: "USD",
			Status:   entities.WalletStatusActive,
		})
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("wallets").Count(&count).Error)
	require.Equal(t, int64(1), count)

	// rollback path
	err = u.Do(context.Background(), func(ctx context.Context) error {
		if err := walletRepo.Create(ctx, &entities.Wallet{
			OwnerID:  uuid.New(),
			Balance:  decimal.Zero,
			Currency: "USD",
			Status:   entities.WalletStatusActive,
		}); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)

	require.NoError(t, db.Table("wallets").Count(&count).Error)
	require.Equal(t, int64(1), count, "second insert must be rolled back")
}

func TestUnitOfWork_GetDBFallback(t *testing.T) {
	db := newTestDB(t)

	require.Equal(t, db, GetDB(context.Background(), db))

	tx := db.Begin()
	txCtx := context.WithValue(context.Background(), txKey, tx)
	require.Equal(t, tx, GetDB(txCtx, db))
	tx.Rollback()
}
