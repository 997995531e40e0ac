package handler

import (
	"net/http"
	"strconv"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Transaction listing limits
const (
	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 500
)

// WalletHandler serves wallet balances and ledger rows
type WalletHandler struct {
	ledger usecase.LedgerUseCase
	logger coreport.Logger
}

// NewWalletHandler creates a new wallet handler instance
func NewWalletHandler(ledger usecase.LedgerUseCase, logger coreport.Logger) *WalletHandler {
	return &WalletHandler{
		ledger: ledger,
		logger: logger,
	}
}

// Me handles GET /wallets/me
func (h *WalletHandler) Me(c *gin.Context) {
	wallet, err := h.ledger.GetWalletByUser(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewWalletResponse(wallet))
}

// Get handles GET /wallets/:walletId
func (h *WalletHandler) Get(c *gin.Context) {
	walletID, err := pathID(c, "walletId")
	if err != nil {
		fail(c, err)
		return
	}

	wallet, err := h.ledger.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewWalletResponse(wallet))
}

// Transactions handles GET /wallets/:walletId/transactions?limit=
func (h *WalletHandler) Transactions(c *gin.Context) {
	walletID, err := pathID(c, "walletId")
	if err != nil {
		fail(c, err)
		return
	}

	limit := DefaultTransactionLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > MaxTransactionLimit {
			fail(c, errs.NewValidationError("limit", raw, "expected an integer between 1 and 500", nil))
			return
		}
	}

	// an unknown wallet is a 404, not an empty list
	if _, err := h.ledger.GetWallet(c.Request.Context(), walletID); err != nil {
		fail(c, err)
		return
	}

	rows, err := h.ledger.ListTransactions(c.Request.Context(), walletID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponses(rows))
}
