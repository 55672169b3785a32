package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	domainRepos "open-wallet.backend/internal/domain/repositories"
	"open-wallet.backend/internal/infrastructure/models"
)

// WalletRepository implements wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func walletToEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Balance:   m.Balance,
		Currency:  m.Currency,
		Status:    entities.WalletStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Create creates a new wallet. A unique index on owner_id enforces
// one wallet per owner at the store level.
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}
	now := time.Now()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now

	m := &models.Wallet{
		ID:        wallet.ID,
		OwnerID:   wallet.OwnerID,
		Balance:   wallet.Balance,
		Currency:  wallet.Currency,
		Status:    string(wallet.Status),
		CreatedAt: wallet.CreatedAt,
		UpdatedAt: wallet.UpdatedAt,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrDuplicateWallet
		}
		return err
	}
	return nil
}

// GetByID gets a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return walletToEntity(&m), nil
}

// GetByOwnerID gets the wallet owned by a user
func (r *WalletRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	err := GetDB(ctx, r.db).Where("owner_id = ?", ownerID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return walletToEntity(&m), nil
}

// IncrementBalance applies delta as a single guarded UPDATE so that
// concurrent mutations on the same wallet serialize at the row. The
// guard predicates keep the row untouched unless the wallet is active
// and the resulting balance stays within bounds; a zero row count is
// then disambiguated by re-reading the row.
func (r *WalletRepository) IncrementBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal, bounds domainRepos.BalanceBounds) (decimal.Decimal, error) {
	var newBalance decimal.Decimal

	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Wallet{}).
			Where("id = ? AND status = ?", id, string(entities.WalletStatusActive)).
			Where("balance + ? >= ? AND balance + ? <= ?", delta, bounds.Min, delta, bounds.Max).
			Updates(map[string]interface{}{
				"balance":    gorm.Expr("balance + ?", delta),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var m models.Wallet
			if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainerrors.ErrNotFound
				}
				return err
			}
			if m.Status != string(entities.WalletStatusActive) {
				return domainerrors.ErrInactiveWallet
			}
			if delta.IsNegative() && m.Balance.Add(delta).IsNegative() {
				return domainerrors.ErrInsufficientFunds
			}
			return domainerrors.ErrOutOfRange
		}

		// Within the transaction this read sees our own write and no
		// later concurrent one, so it is the balance immediately after
		// the mutation.
		var m models.Wallet
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		newBalance = m.Balance
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return newBalance, nil
}

// UpdateStatus updates the wallet status. Idempotent when the status
// is unchanged.
func (r *WalletRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.WalletStatus) error {
	res := GetDB(ctx, r.db).Model(&models.Wallet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
