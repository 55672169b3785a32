package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/domain/repositories"
	"open-wallet.backend/internal/infrastructure/blockchain"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// passthroughUOW runs the function without any transaction scope.
type passthroughUOW struct{}

func (passthroughUOW) Do(ctx context.Context, f func(context.Context) error) error {
	return f(ctx)
}

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) IncrementBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal, bounds repositories.BalanceBounds) (decimal.Decimal, error) {
	args := m.Called(ctx, id, delta, bounds)
	if args.Get(0) == nil {
		return decimal.Decimal{}, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.WalletStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Mock TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByTransferID(ctx context.Context, transferID string) ([]*entities.Transaction, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Complete(ctx context.Context, id uuid.UUID, balanceAfter decimal.Decimal, at time.Time) error {
	args := m.Called(ctx, id, balanceAfter, at)
	return args.Error(0)
}

func (m *MockTransactionRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string, at time.Time) error {
	args := m.Called(ctx, id, errorMessage, at)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter entities.TransactionFilter, limit, offset int) ([]*entities.Transaction, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) SumRefunded(ctx context.Context, refundOfID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, refundOfID)
	if args.Get(0) == nil {
		return decimal.Decimal{}, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) Stats(ctx context.Context, walletID uuid.UUID) (*entities.WalletStats, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WalletStats), args.Error(1)
}

func (m *MockTransactionRepository) FailStalePending(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error) {
	args := m.Called(ctx, cutoff, errorMessage)
	return args.Get(0).(int64), args.Error(1)
}

// Mock AgentRepository
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) Create(ctx context.Context, agent *entities.Agent) error {
	args := m.Called(ctx, agent)
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockAgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Agent), args.Error(1)
}

func (m *MockAgentRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID) (*entities.Agent, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Agent), args.Error(1)
}

func (m *MockAgentRepository) List(ctx context.Context, filter entities.AgentFilter) ([]*entities.Agent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Agent), args.Error(1)
}

func (m *MockAgentRepository) UpdatePolicy(ctx context.Context, id uuid.UUID, policy entities.AgentPolicy) error {
	args := m.Called(ctx, id, policy)
	return args.Error(0)
}

func (m *MockAgentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AgentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Mock DailyLimitTracker
type MockDailyLimitTracker struct {
	mock.Mock
}

func (m *MockDailyLimitTracker) Consume(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, agentID, amount)
	if args.Get(0) == nil {
		return decimal.Decimal{}, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDailyLimitTracker) Release(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, agentID, amount)
	return args.Error(0)
}

func (m *MockDailyLimitTracker) Spent(ctx context.Context, agentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return decimal.Decimal{}, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// Mock ChainClient
type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) VerifyTransfer(ctx context.Context, network, txHash string) (*blockchain.TransferProof, error) {
	args := m.Called(ctx, network, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blockchain.TransferProof), args.Error(1)
}

// fakeLedger is a mutex-guarded in-memory wallet + transaction store
// with real guarded-increment semantics. Transfer and concurrency
// tests run against it instead of scripting every store call.
type fakeLedger struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*entities.Wallet
	txs     map[uuid.UUID]*entities.Transaction
	order   []uuid.UUID

	// failIncrementFor makes IncrementBalance fail for one wallet.
	failIncrementFor map[uuid.UUID]error
	// failIncrementOnCall fails the nth increment call (1-based) for a
	// wallet, so a later compensation attempt can be failed without
	// failing the initial leg.
	failIncrementOnCall map[uuid.UUID]map[int]error
	incrementCalls      map[uuid.UUID]int
	// failCreateForType makes record creation fail for one tx type.
	failCreateForType map[entities.TransactionType]error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		wallets:             make(map[uuid.UUID]*entities.Wallet),
		txs:                 make(map[uuid.UUID]*entities.Transaction),
		failIncrementFor:    make(map[uuid.UUID]error),
		failIncrementOnCall: make(map[uuid.UUID]map[int]error),
		incrementCalls:      make(map[uuid.UUID]int),
		failCreateForType:   make(map[entities.TransactionType]error),
	}
}

func (f *fakeLedger) addWallet(balance decimal.Decimal) *entities.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &entities.Wallet{
		ID:       uuid.New(),
		OwnerID:  uuid.New(),
		Balance:  balance,
		Currency: "USD",
		Status:   entities.WalletStatusActive,
	}
	f.wallets[w.ID] = w
	return w
}

func (f *fakeLedger) Create(ctx context.Context, wallet *entities.Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}
	for _, w := range f.wallets {
		if w.OwnerID == wallet.OwnerID {
			return domainerrors.ErrDuplicateWallet
		}
	}
	cp := *wallet
	f.wallets[wallet.ID] = &cp
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id uuid.UUID) (*entities.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeLedger) GetByOwnerID(_ context.Context, ownerID uuid.UUID) (*entities.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wallets {
		if w.OwnerID == ownerID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (f *fakeLedger) IncrementBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal, bounds repositories.BalanceBounds) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incrementCalls[id]++
	if err := f.failIncrementOnCall[id][f.incrementCalls[id]]; err != nil {
		return decimal.Decimal{}, err
	}
	if err := f.failIncrementFor[id]; err != nil {
		return decimal.Decimal{}, err
	}
	w, ok := f.wallets[id]
	if !ok {
		return decimal.Decimal{}, domainerrors.ErrNotFound
	}
	if w.Status != entities.WalletStatusActive {
		return decimal.Decimal{}, domainerrors.ErrInactiveWallet
	}
	next := w.Balance.Add(delta)
	if next.LessThan(bounds.Min) {
		if delta.IsNegative() && next.IsNegative() {
			return decimal.Decimal{}, domainerrors.ErrInsufficientFunds
		}
		return decimal.Decimal{}, domainerrors.ErrOutOfRange
	}
	if next.GreaterThan(bounds.Max) {
		return decimal.Decimal{}, domainerrors.ErrOutOfRange
	}
	w.Balance = next
	return next, nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, id uuid.UUID, status entities.WalletStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	w.Status = status
	return nil
}

func (f *fakeLedger) CreateTx(ctx context.Context, tx *entities.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failCreateForType[tx.Type]; err != nil {
		return err
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()
	cp := *tx
	f.txs[tx.ID] = &cp
	f.order = append(f.order, tx.ID)
	return nil
}

func (f *fakeLedger) GetTxByID(_ context.Context, id uuid.UUID) (*entities.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeLedger) GetByTransferID(_ context.Context, transferID string) ([]*entities.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Transaction
	for _, id := range f.order {
		tx := f.txs[id]
		if tx.TransferID.Valid && tx.TransferID.String == transferID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLedger) Complete(_ context.Context, id uuid.UUID, balanceAfter decimal.Decimal, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if tx.Status != entities.TransactionStatusPending {
		return domainerrors.ErrAlreadyTerminal
	}
	tx.Status = entities.TransactionStatusCompleted
	tx.BalanceAfter = decimal.NewNullDecimal(balanceAfter)
	tx.CompletedAt = &at
	return nil
}

func (f *fakeLedger) Fail(_ context.Context, id uuid.UUID, errorMessage string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if tx.Status != entities.TransactionStatusPending {
		return domainerrors.ErrAlreadyTerminal
	}
	tx.Status = entities.TransactionStatusFailed
	tx.ErrorMessage.SetValid(errorMessage)
	tx.FailedAt = &at
	return nil
}

func (f *fakeLedger) List(_ context.Context, filter entities.TransactionFilter, limit, offset int) ([]*entities.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Transaction
	for _, id := range f.order {
		tx := f.txs[id]
		if tx.WalletID != filter.WalletID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeLedger) SumRefunded(_ context.Context, refundOfID uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for _, tx := range f.txs {
		if tx.Type == entities.TransactionTypeRefund &&
			tx.Status == entities.TransactionStatusCompleted &&
			tx.RefundID.Valid && tx.RefundID.String == refundOfID.String() {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func (f *fakeLedger) Stats(_ context.Context, walletID uuid.UUID) (*entities.WalletStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &entities.WalletStats{WalletID: walletID, TotalCredits: decimal.Zero, TotalDebits: decimal.Zero, AverageTransaction: decimal.Zero}
	for _, tx := range f.txs {
		if tx.WalletID != walletID || tx.Status != entities.TransactionStatusCompleted {
			continue
		}
		stats.TransactionCount++
		if tx.Amount.IsPositive() {
			stats.TotalCredits = stats.TotalCredits.Add(tx.Amount)
		} else {
			stats.TotalDebits = stats.TotalDebits.Add(tx.Amount.Abs())
		}
	}
	return stats, nil
}

func (f *fakeLedger) FailStalePending(_ context.Context, cutoff time.Time, errorMessage string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	now := time.Now()
	for _, tx := range f.txs {
		if tx.Status == entities.TransactionStatusPending && tx.CreatedAt.Before(cutoff) {
			tx.Status = entities.TransactionStatusFailed
			tx.ErrorMessage.SetValid(errorMessage)
			tx.FailedAt = &now
			count++
		}
	}
	return count, nil
}

// walletRepoView adapts fakeLedger to the wallet repository interface.
type walletRepoView struct{ *fakeLedger }

// txRepoView adapts fakeLedger to the transaction repository interface,
// renaming the methods that collide with the wallet side.
type txRepoView struct{ *fakeLedger }

func (v txRepoView) Create(ctx context.Context, tx *entities.Transaction) error {
	return v.CreateTx(ctx, tx)
}

func (v txRepoView) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return v.GetTxByID(ctx, id)
}

func (f *fakeLedger) walletRepo() repositories.WalletRepository { return walletRepoView{f} }
func (f *fakeLedger) txRepo() repositories.TransactionRepository { return txRepoView{f} }

func (f *fakeLedger) setIncrementFailure(walletID uuid.UUID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failIncrementFor[walletID] = err
}

func (f *fakeLedger) setIncrementFailureOnCall(walletID uuid.UUID, call int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIncrementOnCall[walletID] == nil {
		f.failIncrementOnCall[walletID] = make(map[int]error)
	}
	f.failIncrementOnCall[walletID][call] = err
}

func (f *fakeLedger) mustWallet(id uuid.UUID) *entities.Wallet {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[id]
	if !ok {
		panic(fmt.Sprintf("wallet %s not in fake ledger", id))
	}
	cp := *w
	return &cp
}
