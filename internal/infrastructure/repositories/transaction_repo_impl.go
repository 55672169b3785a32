package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/infrastructure/models"
)

// TransactionRepository implements transaction record data operations
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func transactionToModel(t *entities.Transaction) (*models.Transaction, error) {
	m := &models.Transaction{
		ID:                  t.ID,
		WalletID:            t.WalletID,
		Type:                string(t.Type),
		Amount:              t.Amount,
		Currency:            t.Currency,
		Status:              string(t.Status),
		Description:         t.Description,
		PaymentToken:        t.PaymentToken,
		TransferID:          t.TransferID,
		RefundID:            t.RefundID,
		AgentID:             t.AgentID,
		CounterpartyAgentID: t.CounterpartyAgentID,
		ChainTxHash:         t.ChainTxHash,
		Network:             t.Network,
		GasUsed:             t.GasUsed,
		BalanceAfter:        t.BalanceAfter,
		ErrorMessage:        t.ErrorMessage,
		CompletedAt:         t.CompletedAt,
		FailedAt:            t.FailedAt,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
	if len(t.IntentPayload) > 0 {
		raw, err := json.Marshal(t.IntentPayload)
		if err != nil {
			return nil, err
		}
		m.IntentPayload = null.StringFrom(string(raw))
	}
	if len(t.Metadata) > 0 {
		raw, err := json.Marshal(t.Metadata)
		if err != nil {
			return nil, err
		}
		m.Metadata = null.StringFrom(string(raw))
	}
	return m, nil
}

func transactionToEntity(m *models.Transaction) *entities.Transaction {
	t := &entities.Transaction{
		ID:                  m.ID,
		WalletID:            m.WalletID,
		Type:                entities.TransactionType(m.Type),
		Amount:              m.Amount,
		Currency:            m.Currency,
		Status:              entities.TransactionStatus(m.Status),
		Description:         m.Description,
		PaymentToken:        m.PaymentToken,
		TransferID:          m.TransferID,
		RefundID:            m.RefundID,
		AgentID:             m.AgentID,
		CounterpartyAgentID: m.CounterpartyAgentID,
		ChainTxHash:         m.ChainTxHash,
		Network:             m.Network,
		GasUsed:             m.GasUsed,
		BalanceAfter:        m.BalanceAfter,
		ErrorMessage:        m.ErrorMessage,
		CompletedAt:         m.CompletedAt,
		FailedAt:            m.FailedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.IntentPayload.Valid {
		_ = json.Unmarshal([]byte(m.IntentPayload.String), &t.IntentPayload)
	}
	if m.Metadata.Valid {
		_ = json.Unmarshal([]byte(m.Metadata.String), &t.Metadata)
	}
	return t
}

// Create creates a new transaction record
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	m, err := transactionToModel(tx)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a transaction record by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	var m models.Transaction
	err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return transactionToEntity(&m), nil
}

// GetByTransferID gets both legs recorded under one transfer id
func (r *TransactionRepository) GetByTransferID(ctx context.Context, transferID string) ([]*entities.Transaction, error) {
	var ms []models.Transaction
	if err := GetDB(ctx, r.db).Where("transfer_id = ?", transferID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, transactionToEntity(&ms[i]))
	}
	return out, nil
}

// terminalGuard runs an update restricted to pending rows and maps a
// zero row count to NotFound or AlreadyTerminal.
func (r *TransactionRepository) terminalGuard(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	db := GetDB(ctx, r.db)
	res := db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, string(entities.TransactionStatusPending)).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.Transaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
		return domainerrors.ErrAlreadyTerminal
	}
	return nil
}

// Complete transitions a pending record to completed
func (r *TransactionRepository) Complete(ctx context.Context, id uuid.UUID, balanceAfter decimal.Decimal, at time.Time) error {
	return r.terminalGuard(ctx, id, map[string]interface{}{
		"status":        string(entities.TransactionStatusCompleted),
		"balance_after": balanceAfter,
		"completed_at":  at,
		"updated_at":    at,
	})
}

// Fail transitions a pending record to failed
func (r *TransactionRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string, at time.Time) error {
	return r.terminalGuard(ctx, id, map[string]interface{}{
		"status":        string(entities.TransactionStatusFailed),
		"error_message": errorMessage,
		"failed_at":     at,
		"updated_at":    at,
	})
}

// List returns transaction history for a filter, newest first, with the
// total row count for pagination.
func (r *TransactionRepository) List(ctx context.Context, filter entities.TransactionFilter, limit, offset int) ([]*entities.Transaction, int64, error) {
	db := GetDB(ctx, r.db).Model(&models.Transaction{}).Where("wallet_id = ?", filter.WalletID)
	if filter.Type != "" {
		db = db.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		db = db.Where("status = ?", string(filter.Status))
	}
	if filter.DateFrom != nil {
		db = db.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order("created_at DESC")
	if limit > 0 {
		db = db.Limit(limit).Offset(offset)
	}

	var ms []models.Transaction
	if err := db.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, transactionToEntity(&ms[i]))
	}
	return out, total, nil
}

// SumRefunded totals the completed refund amounts recorded against one
// original transaction.
func (r *TransactionRepository) SumRefunded(ctx context.Context, refundOfID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("refund_id = ? AND type = ? AND status = ?",
			refundOfID.String(), string(entities.TransactionTypeRefund), string(entities.TransactionStatusCompleted)).
		Scan(&row).Error
	if err != nil {
		return decimal.Decimal{}, err
	}
	return row.Total, nil
}

// Stats aggregates completed transaction totals for a wallet.
func (r *TransactionRepository) Stats(ctx context.Context, walletID uuid.UUID) (*entities.WalletStats, error) {
	var row struct {
		TotalCredits decimal.Decimal
		TotalDebits  decimal.Decimal
		Count        int64
	}
	db := GetDB(ctx, r.db)
	err := db.Model(&models.Transaction{}).
		Select(`COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS total_credits,
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0) AS total_debits,
			COUNT(*) AS count`).
		Where("wallet_id = ? AND status = ?", walletID, string(entities.TransactionStatusCompleted)).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &entities.WalletStats{
		WalletID:         walletID,
		TotalCredits:     row.TotalCredits,
		TotalDebits:      row.TotalDebits,
		TransactionCount: row.Count,
	}
	if row.Count > 0 {
		var last models.Transaction
		err = db.Where("wallet_id = ? AND status = ?", walletID, string(entities.TransactionStatusCompleted)).
			Order("completed_at DESC").Limit(1).Find(&last).Error
		if err != nil {
			return nil, err
		}
		stats.LastTransactionAt = last.CompletedAt
	}
	if row.Count > 0 {
		stats.AverageTransaction = row.TotalCredits.Add(row.TotalDebits).
			Div(decimal.NewFromInt(row.Count))
	}
	return stats, nil
}

// FailStalePending fails every pending record created before cutoff.
func (r *TransactionRepository) FailStalePending(ctx context.Context, cutoff time.Time, errorMessage string) (int64, error) {
	now := time.Now()
	res := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("status = ? AND created_at < ?", string(entities.TransactionStatusPending), cutoff).
		Updates(map[string]interface{}{
			"status":        string(entities.TransactionStatusFailed),
			"error_message": errorMessage,
			"failed_at":     now,
			"updated_at":    now,
		})
	return res.RowsAffected, res.Error
}
