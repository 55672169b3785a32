package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/usecases"
)

func newTransferFixture() (*fakeLedger, *usecases.TransferUsecase) {
	ledger := newFakeLedger()
	recorder := usecases.NewTransactionRecorder(ledger.txRepo())
	uc := usecases.NewTransferUsecase(ledger.walletRepo(), recorder, usecases.DefaultLedgerConfig())
	return ledger, uc
}

func TestTransferSuccess(t *testing.T) {
	ledger, uc := newTransferFixture()
	from := ledger.addWallet(decimal.NewFromInt(100))
	to := ledger.addWallet(decimal.NewFromInt(50))

	receipt, err := uc.Transfer(context.Background(), from.ID, &entities.TransferInput{
		ToWalletID: to.ID.String(),
		Amount:     decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(receipt.TransferID, "transfer_"))
	assert.Equal(t, entities.TransactionStatusCompleted, receipt.Status)
	assert.True(t, ledger.mustWallet(from.ID).Balance.Equal(decimal.NewFromInt(70)))
	assert.True(t, ledger.mustWallet(to.ID).Balance.Equal(decimal.NewFromInt(80)))

	legs, err := ledger.txRepo().GetByTransferID(context.Background(), receipt.TransferID)
	require.NoError(t, err)
	require.Len(t, legs, 2)

	// Both legs completed, amounts sum to zero.
	sum := decimal.Zero
	for _, leg := range legs {
		assert.Equal(t, entities.TransactionStatusCompleted, leg.Status)
		require.True(t, leg.BalanceAfter.Valid)
		sum = sum.Add(leg.Amount)
	}
	assert.True(t, sum.IsZero())

	debit, credit := legs[0], legs[1]
	assert.Equal(t, entities.TransactionTypeTransferOut, debit.Type)
	assert.Equal(t, entities.TransactionTypeTransferIn, credit.Type)
	assert.True(t, debit.BalanceAfter.Decimal.Equal(decimal.NewFromInt(70)))
	assert.True(t, credit.BalanceAfter.Decimal.Equal(decimal.NewFromInt(80)))
}

func TestTransferInsufficientFunds(t *testing.T) {
	ledger, uc := newTransferFixture()
	from := ledger.addWallet(decimal.NewFromInt(10))
	to := ledger.addWallet(decimal.NewFromInt(0))

	_, err := uc.Transfer(context.Background(), from.ID, &entities.TransferInput{
		ToWalletID: to.ID.String(),
		Amount:     decimal.NewFromInt(50),
	})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)

	// No balance moved anywhere and the only record is the failed debit.
	assert.True(t, ledger.mustWallet(from.ID).Balance.Equal(decimal.NewFromInt(10)))
	assert.True(t, ledger.mustWallet(to.ID).Balance.Equal(decimal.Zero))
	txs, total, err := ledger.txRepo().List(context.Background(), entities.TransactionFilter{WalletID: from.ID}, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, entities.TransactionStatusFailed, txs[0].Status)
}

func TestTransferRecipientOverMax(t *testing.T) {
	ledger, uc := newTransferFixture()
	from := ledger.addWallet(decimal.NewFromInt(500))
	to := ledger.addWallet(decimal.NewFromInt(9900))

	_, err := uc.Transfer(context.Background(), from.ID, &entities.TransferInput{
		ToWalletID: to.ID.String(),
		Amount:     decimal.NewFromInt(200),
	})
	require.ErrorIs(t, err, domainerrors.ErrOutOfRange)

	// Credit leg failed; debit was compensated back.
	assert.True(t, ledger.mustWallet(from.ID).Balance.Equal(decimal.NewFromInt(500)))
	assert.True(t, ledger.mustWallet(to.ID).Balance.Equal(decimal.NewFromInt(9900)))
}

func TestTransferSelf(t *testing.T) {
	ledger, uc := newTransferFixture()
	w := ledger.addWallet(decimal.NewFromInt(100))

	_, err := uc.Transfer(context.Background(), w.ID, &entities.TransferInput{
		ToWalletID: w.ID.String(),
		Amount:     decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domainerrors.ErrSelfTransfer)
}

func TestTransferInactiveDestination(t *testing.T) {
	ledger, uc := newTransferFixture()
	from := ledger.addWallet(decimal.NewFromInt(100))
	to := ledger.addWallet(decimal.NewFromInt(0))
	require.NoError(t, ledger.walletRepo().UpdateStatus(context.Background(), to.ID, entities.WalletStatusSuspended))

	_, err := uc.Transfer(context.Background(), from.ID, &entities.TransferInput{
		ToWalletID: to.ID.String(),
		Amount:     decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, domainerrors.ErrInactiveWallet)
	assert.True(t, ledger.mustWallet(from.ID).Balance.Equal(decimal.NewFromInt(100)))
}

func TestTransferAmountValidation(t *testing.T) {
	ledger, uc := newTransferFixture()
	from := ledger.addWallet(decimal.NewFromInt(100))
	to := ledger.addWallet(decimal.NewFromInt(0))

	for _, amount := range []string{"0", "-5", "1.005"} {
		_, err := uc.Transfer(context.Background(), from.ID, &entities.TransferInput{
			ToWalletID: to.ID.String(),
			Amount:     decimal.RequireFromString(amount),
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount, "amount %s", amount)
	}
}

func TestTransferCreditFailureCompensates(t *testing.T) {
	ledger, uc := newTransferFixture()
	from := ledger.addWallet(decimal.NewFromInt(100))
	to := ledger.addWallet(decimal.NewFromInt(0))

	storeErr := errors.New("connection reset")
	ledger.setIncrementFailure(to.ID, storeErr)

	_, err := uc.Transfer(context.Background(), from.ID, &entities.TransferInput{
		ToWalletID: to.ID.String(),
		Amount:     decimal.NewFromInt(40),
	})
	require.ErrorIs(t, err, storeErr)

	// Source re-credited, both legs terminal and failed.
	assert.True(t, ledger.mustWallet(from.ID).Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, ledger.mustWallet(to.ID).Balance.Equal(decimal.Zero))

	debits, _, err := ledger.txRepo().List(context.Background(), entities.TransactionFilter{WalletID: from.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, debits, 1)
	assert.Equal(t, entities.TransactionStatusFailed, debits[0].Status)
	assert.Contains(t, debits[0].ErrorMessage.String, "debit compensated")

	credits, _, err := ledger.txRepo().List(context.Background(), entities.TransactionFilter{WalletID: to.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, entities.TransactionStatusFailed, credits[0].Status)
}

func TestTransferPartialFailureSurfaces(t *testing.T) {
	ledger, uc := newTransferFixture()
	from := ledger.addWallet(decimal.NewFromInt(100))
	to := ledger.addWallet(decimal.NewFromInt(0))

	ledger.setIncrementFailure(to.ID, errors.New("connection reset"))
	// Second increment on the source is the compensation attempt.
	ledger.setIncrementFailureOnCall(from.ID, 2, errors.New("still down"))

	_, err := uc.Transfer(context.Background(), from.ID, &entities.TransferInput{
		ToWalletID: to.ID.String(),
		Amount:     decimal.NewFromInt(40),
	})
	require.ErrorIs(t, err, domainerrors.ErrPartialTransferFailure)

	// The debit stands and its record is completed so the ledger
	// still matches the wallet balance.
	assert.True(t, ledger.mustWallet(from.ID).Balance.Equal(decimal.NewFromInt(60)))
	debits, _, err := ledger.txRepo().List(context.Background(), entities.TransactionFilter{WalletID: from.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, debits, 1)
	assert.Equal(t, entities.TransactionStatusCompleted, debits[0].Status)
}

func TestTransferConcurrentDrain(t *testing.T) {
	ledger, uc := newTransferFixture()
	from := ledger.addWallet(decimal.NewFromInt(100))
	to := ledger.addWallet(decimal.NewFromInt(0))

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Transfer(context.Background(), from.ID, &entities.TransferInput{
				ToWalletID: to.ID.String(),
				Amount:     decimal.NewFromInt(10),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.True(t, ledger.mustWallet(from.ID).Balance.IsZero())
	assert.True(t, ledger.mustWallet(to.ID).Balance.Equal(decimal.NewFromInt(100)))
}
