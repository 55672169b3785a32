package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"open-wallet.backend/internal/domain/entities"
	domainerrors "open-wallet.backend/internal/domain/errors"
	"open-wallet.backend/internal/interfaces/http/middleware"
	"open-wallet.backend/internal/interfaces/http/response"
	"open-wallet.backend/internal/usecases"
	"open-wallet.backend/pkg/utils"
)

type walletService interface {
	CreateWallet(ctx context.Context, input *entities.CreateWalletInput) (*entities.Wallet, error)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*entities.Wallet, error)
	GetWalletByOwner(ctx context.Context, ownerID uuid.UUID) (*entities.Wallet, error)
	AddFunds(ctx context.Context, walletID uuid.UUID, input *entities.AddFundsInput) (*entities.MutationResult, error)
	DeductFunds(ctx context.Context, walletID uuid.UUID, input *entities.DeductFundsInput) (*entities.MutationResult, error)
	UpdateWalletStatus(ctx context.Context, walletID uuid.UUID, status string) (*entities.Wallet, error)
	GetTransactions(ctx context.Context, walletID uuid.UUID, filter entities.TransactionFilter, limit, offset int) ([]*entities.Transaction, int64, error)
	GetWalletStats(ctx context.Context, walletID uuid.UUID) (*entities.WalletStats, error)
	RecordChainTransfer(ctx context.Context, walletID uuid.UUID, input *entities.RecordChainTransferInput) (*entities.MutationResult, error)
}

type transferService interface {
	Transfer(ctx context.Context, fromWalletID uuid.UUID, input *entities.TransferInput) (*entities.TransferReceipt, error)
}

type refundService interface {
	Refund(ctx context.Context, input *entities.RefundInput) (*entities.MutationResult, error)
}

// WalletHandler handles wallet endpoints
type WalletHandler struct {
	walletUsecase   walletService
	transferUsecase transferService
	refundUsecase   refundService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletUsecase, transferUsecase *usecases.TransferUsecase, refundUsecase *usecases.RefundUsecase) *WalletHandler {
	return &WalletHandler{
		walletUsecase:   walletUsecase,
		transferUsecase: transferUsecase,
		refundUsecase:   refundUsecase,
	}
}

// CreateWallet creates a wallet for an owner
// POST /api/v1/wallets
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var input entities.CreateWalletInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	wallet, err := h.walletUsecase.CreateWallet(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Wallet created successfully",
		"wallet":  wallet,
	})
}

// GetWallet gets a wallet by ID
// GET /api/v1/wallets/:id
func (h *WalletHandler) GetWallet(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	wallet, err := h.walletUsecase.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": wallet})
}

// GetMyWallet gets the authenticated user's wallet
// GET /api/v1/wallets/me
func (h *WalletHandler) GetMyWallet(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	wallet, err := h.walletUsecase.GetWalletByOwner(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": wallet})
}

// AddFunds credits a wallet
// POST /api/v1/wallets/:id/add-funds
func (h *WalletHandler) AddFunds(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	var input entities.AddFundsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.walletUsecase.AddFunds(c.Request.Context(), walletID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Funds added successfully",
		"result":  result,
	})
}

// DeductFunds debits a wallet
// POST /api/v1/wallets/:id/deduct-funds
func (h *WalletHandler) DeductFunds(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	var input entities.DeductFundsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.walletUsecase.DeductFunds(c.Request.Context(), walletID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Funds deducted successfully",
		"result":  result,
	})
}

// Transfer moves funds to another wallet
// POST /api/v1/wallets/:id/transfer
func (h *WalletHandler) Transfer(c *gin.Context) {
	fromWalletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	var input entities.TransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	receipt, err := h.transferUsecase.Transfer(c.Request.Context(), fromWalletID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Transfer completed successfully",
		"receipt": receipt,
	})
}

// UpdateWalletStatus transitions the wallet status
// PUT /api/v1/wallets/:id/status
func (h *WalletHandler) UpdateWalletStatus(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	var input entities.UpdateWalletStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	wallet, err := h.walletUsecase.UpdateWalletStatus(c.Request.Context(), walletID, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Wallet status updated",
		"wallet":  wallet,
	})
}

// transactionQuery binds the history listing query parameters.
type transactionQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Type   string `form:"type"`
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// GetTransactions lists a wallet's transaction history
// GET /api/v1/wallets/:id/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	var q transactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	filter := entities.TransactionFilter{}
	if q.Type != "" {
		txType := entities.TransactionType(q.Type)
		if !txType.Valid() {
			response.Error(c, domainerrors.BadRequest("Unknown transaction type"))
			return
		}
		filter.Type = txType
	}
	if q.Status != "" {
		status := entities.TransactionStatus(q.Status)
		if !status.Valid() {
			response.Error(c, domainerrors.BadRequest("Unknown transaction status"))
			return
		}
		filter.Status = status
	}
	if q.From != "" {
		from, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid from timestamp, expected RFC 3339"))
			return
		}
		filter.DateFrom = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid to timestamp, expected RFC 3339"))
			return
		}
		filter.DateTo = &to
	}

	params := utils.GetPaginationParams(q.Page, q.Limit)
	transactions, total, err := h.walletUsecase.GetTransactions(c.Request.Context(), walletID, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}

	if transactions == nil {
		transactions = []*entities.Transaction{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"transactions": transactions,
		"pagination":   utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// GetWalletStats returns aggregate transaction totals for a wallet
// GET /api/v1/wallets/:id/stats
func (h *WalletHandler) GetWalletStats(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	stats, err := h.walletUsecase.GetWalletStats(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// RecordChainTransfer records an already-executed on-chain transfer
// POST /api/v1/wallets/:id/chain-transfers
func (h *WalletHandler) RecordChainTransfer(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	var input entities.RecordChainTransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.walletUsecase.RecordChainTransfer(c.Request.Context(), walletID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "On-chain transfer recorded",
		"result":  result,
	})
}

// Refund refunds a completed transaction
// POST /api/v1/transactions/:id/refund
func (h *WalletHandler) Refund(c *gin.Context) {
	transactionID := c.Param("id")
	if _, err := uuid.Parse(transactionID); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid transaction ID"))
		return
	}

	var input entities.RefundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	input.TransactionID = transactionID

	result, err := h.refundUsecase.Refund(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Refund processed successfully",
		"result":  result,
	})
}
