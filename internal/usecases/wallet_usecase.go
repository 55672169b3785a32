package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/domain/repositories"
	"open-wallet.backend/internal/infrastructure/blockchain"
	"open-wallet.backend/pkg/metrics"
)

// WalletUsecase is the account manager: it owns wallet lifecycle and is
// the only component that mutates balances.
type WalletUsecase struct {
	walletRepo repositories.WalletRepository
	txRepo     repositories.TransactionRepository
	recorder   *TransactionRecorder
	uow        repositories.UnitOfWork
	chain      blockchain.Client
	cfg        LedgerConfig
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
	recorder *TransactionRecorder,
	uow repositories.UnitOfWork,
	chain blockchain.Client,
	cfg LedgerConfig,
) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		recorder:   recorder,
		uow:        uow,
		chain:      chain,
		cfg:        cfg,
	}
}

func (u *WalletUsecase) bounds() repositories.BalanceBounds {
	return repositories.BalanceBounds{Min: u.cfg.MinBalance, Max: u.cfg.MaxBalance}
}

// CreateWallet creates the single wallet an owner may hold. A positive
// initial balance is logged as an already-completed credit.
func (u *WalletUsecase) CreateWallet(ctx context.Context, input *entities.CreateWalletInput) (*entities.Wallet, error) {
	ownerID, err := uuid.Parse(input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: ownerId must be a UUID", domainerrors.ErrInvalidInput)
	}

	if input.InitialBalance.IsNegative() ||
		input.InitialBalance.LessThan(u.cfg.MinBalance) ||
		input.InitialBalance.GreaterThan(u.cfg.MaxBalance) {
		return nil, fmt.Errorf("%w: initial balance must be between %s and %s",
			domainerrors.ErrOutOfRange, u.cfg.MinBalance, u.cfg.MaxBalance)
	}

	existing, err := u.walletRepo.GetByOwnerID(ctx, ownerID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainerrors.ErrDuplicateWallet
	}

	currency := input.Currency
	if currency == "" {
		currency = u.cfg.DefaultCurrency
	}

	wallet := &entities.Wallet{
		OwnerID:  ownerID,
		Balance:  input.InitialBalance,
		Currency: currency,
		Status:   entities.WalletStatusActive,
	}

	// Wallet row and its initial funding record commit together.
	err = u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.walletRepo.Create(ctx, wallet); err != nil {
			return err
		}
		if input.InitialBalance.IsPositive() {
			_, err := u.recorder.RecordCompleted(ctx, wallet.ID, entities.TransactionTypeCredit,
				input.InitialBalance, currency, "Initial wallet funding", input.InitialBalance,
				entities.Correlation{Metadata: map[string]string{"source": "wallet_creation"}})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetWallet gets a wallet by ID
func (u *WalletUsecase) GetWallet(ctx context.Context, walletID uuid.UUID) (*entities.Wallet, error) {
	return u.walletRepo.GetByID(ctx, walletID)
}

// GetWalletByOwner gets the wallet owned by a user
func (u *WalletUsecase) GetWalletByOwner(ctx context.Context, ownerID uuid.UUID) (*entities.Wallet, error) {
	return u.walletRepo.GetByOwnerID(ctx, ownerID)
}

// MutateBalance applies a signed delta to a wallet balance as one
// atomic store operation and returns the balance observed immediately
// after. Status and bound checks happen inside the same operation.
func (u *WalletUsecase) MutateBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Decimal{}, domainerrors.ErrInvalidAmount
	}
	return u.walletRepo.IncrementBalance(ctx, walletID, delta, u.bounds())
}

// applyMutation runs one recorded balance mutation: pending record,
// atomic increment, then a terminal transition on every path.
func (u *WalletUsecase) applyMutation(ctx context.Context, wallet *entities.Wallet, txType entities.TransactionType, signedAmount decimal.Decimal, description string, corr entities.Correlation) (*entities.MutationResult, error) {
	record, err := u.recorder.Record(ctx, wallet.ID, txType, signedAmount, wallet.Currency, description, corr)
	if err != nil {
		return nil, err
	}

	newBalance, err := u.MutateBalance(ctx, wallet.ID, signedAmount)
	if err != nil {
		if failErr := u.recorder.Fail(ctx, record.ID, err.Error()); failErr != nil {
			return nil, fmt.Errorf("mutation failed (%w); could not fail record %s: %v", err, record.ID, failErr)
		}
		metrics.BalanceMutationsTotal.WithLabelValues(string(txType), string(entities.TransactionStatusFailed)).Inc()
		return nil, err
	}

	if err := u.recorder.Complete(ctx, record.ID, newBalance); err != nil {
		return nil, err
	}
	metrics.BalanceMutationsTotal.WithLabelValues(string(txType), string(entities.TransactionStatusCompleted)).Inc()

	return &entities.MutationResult{
		TransactionID: record.ID,
		Amount:        signedAmount,
		NewBalance:    newBalance,
		Status:        entities.TransactionStatusCompleted,
	}, nil
}

func withBalanceTrail(metadata map[string]string, previous, next decimal.Decimal) map[string]string {
	out := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		out[k] = v
	}
	out["previous_balance"] = previous.String()
	out["new_balance"] = next.String()
	return out
}

// AddFunds credits a wallet from an external funding source.
func (u *WalletUsecase) AddFunds(ctx context.Context, walletID uuid.UUID, input *entities.AddFundsInput) (*entities.MutationResult, error) {
	if err := validatePositiveAmount(input.Amount, u.cfg.Precision); err != nil {
		return nil, err
	}

	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, domainerrors.ErrInactiveWallet
	}

	description := input.Description
	if description == "" {
		description = "Add funds"
	}

	return u.applyMutation(ctx, wallet, entities.TransactionTypeCredit, input.Amount, description, entities.Correlation{
		PaymentToken: input.PaymentToken,
		Metadata:     withBalanceTrail(input.Metadata, wallet.Balance, wallet.Balance.Add(input.Amount)),
	})
}

// DeductFunds debits a wallet for an outbound payment.
func (u *WalletUsecase) DeductFunds(ctx context.Context, walletID uuid.UUID, input *entities.DeductFundsInput) (*entities.MutationResult, error) {
	if err := validatePositiveAmount(input.Amount, u.cfg.Precision); err != nil {
		return nil, err
	}

	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, domainerrors.ErrInactiveWallet
	}

	description := input.Description
	if description == "" {
		description = "Payment"
	}

	return u.applyMutation(ctx, wallet, entities.TransactionTypeDebit, input.Amount.Neg(), description, entities.Correlation{
		Metadata: withBalanceTrail(input.Metadata, wallet.Balance, wallet.Balance.Sub(input.Amount)),
	})
}

// UpdateWalletStatus transitions the wallet status. The transition is
// idempotent when the status is unchanged. Wallets are never deleted;
// closing is the terminal transition.
func (u *WalletUsecase) UpdateWalletStatus(ctx context.Context, walletID uuid.UUID, status string) (*entities.Wallet, error) {
	next := entities.WalletStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: must be one of active, suspended, closed", domainerrors.ErrInvalidStatus)
	}

	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.Status == next {
		return wallet, nil
	}

	if err := u.walletRepo.UpdateStatus(ctx, walletID, next); err != nil {
		return nil, err
	}
	wallet.Status = next
	return wallet, nil
}

// GetTransactions returns the wallet's transaction history, newest
// first, with the total row count for pagination.
func (u *WalletUsecase) GetTransactions(ctx context.Context, walletID uuid.UUID, filter entities.TransactionFilter, limit, offset int) ([]*entities.Transaction, int64, error) {
	if _, err := u.walletRepo.GetByID(ctx, walletID); err != nil {
		return nil, 0, err
	}
	filter.WalletID = walletID
	return u.txRepo.List(ctx, filter, limit, offset)
}

// GetWalletStats aggregates completed transaction totals for a wallet.
func (u *WalletUsecase) GetWalletStats(ctx context.Context, walletID uuid.UUID) (*entities.WalletStats, error) {
	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	stats, err := u.txRepo.Stats(ctx, walletID)
	if err != nil {
		return nil, err
	}
	stats.CurrentBalance = wallet.Balance
	stats.Currency = wallet.Currency
	return stats, nil
}

// RecordChainTransfer records an already-executed on-chain transfer
// against a wallet as a ledger mutation. The chain client only proves
// the transaction; signing never happens here.
func (u *WalletUsecase) RecordChainTransfer(ctx context.Context, walletID uuid.UUID, input *entities.RecordChainTransferInput) (*entities.MutationResult, error) {
	if u.chain == nil {
		return nil, fmt.Errorf("%w: no chain client configured", domainerrors.ErrInvalidInput)
	}
	if err := validatePositiveAmount(input.Amount, u.cfg.Precision); err != nil {
		return nil, err
	}
	if input.Direction != "in" && input.Direction != "out" {
		return nil, fmt.Errorf("%w: direction must be in or out", domainerrors.ErrInvalidInput)
	}

	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive() {
		return nil, domainerrors.ErrInactiveWallet
	}

	proof, err := u.chain.VerifyTransfer(ctx, input.Network, input.TxHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}
	if !proof.Confirmed {
		return nil, fmt.Errorf("%w: transaction %s not confirmed on %s", domainerrors.ErrInvalidInput, input.TxHash, input.Network)
	}

	amount := input.Amount
	if input.Direction == "out" {
		amount = amount.Neg()
	}
	description := input.Description
	if description == "" {
		description = fmt.Sprintf("On-chain transfer %s", input.TxHash)
	}

	gasUsed := proof.GasUsed
	return u.applyMutation(ctx, wallet, entities.TransactionTypeBlockchainTransfer, amount, description, entities.Correlation{
		ChainTxHash: input.TxHash,
		Network:     input.Network,
		GasUsed:     &gasUsed,
		Metadata:    withBalanceTrail(nil, wallet.Balance, wallet.Balance.Add(amount)),
	})
}
