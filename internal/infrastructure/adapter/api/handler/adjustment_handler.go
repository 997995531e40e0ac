package handler

import (
	"context"
	"net/http"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdjustmentHandler handles loan term negotiation
type AdjustmentHandler struct {
	adjustments usecase.AdjustmentUseCase
	logger      coreport.Logger
}

// NewAdjustmentHandler creates a new adjustment handler instance
func NewAdjustmentHandler(adjustments usecase.AdjustmentUseCase, logger coreport.Logger) *AdjustmentHandler {
	return &AdjustmentHandler{
		adjustments: adjustments,
		logger:      logger,
	}
}

// Propose handles POST /loans/:loanId/adjustments
func (h *AdjustmentHandler) Propose(c *gin.Context) {
	loanID, err := pathID(c, "loanId")
	if err != nil {
		fail(c, err)
		return
	}

	var req dto.ProposeAdjustmentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	var amount, rate *decimal.Decimal
	if req.AdjustedAmount != nil {
		v, err := entity.ParsePositiveAmount(*req.AdjustedAmount)
		if err != nil {
			fail(c, err)
			return
		}
		amount = &v
	}
	if req.AdjustedInterestRate != nil {
		v, err := entity.ParseInterestRate(*req.AdjustedInterestRate)
		if err != nil {
			fail(c, err)
			return
		}
		rate = &v
	}

	adjustment, err := h.adjustments.Propose(c.Request.Context(), loanID, middleware.ActorID(c), amount, rate)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAdjustmentResponse(adjustment))
}

// List handles GET /loans/:loanId/adjustments
func (h *AdjustmentHandler) List(c *gin.Context) {
	loanID, err := pathID(c, "loanId")
	if err != nil {
		fail(c, err)
		return
	}

	adjustments, err := h.adjustments.ListAdjustments(c.Request.Context(), loanID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAdjustmentResponses(adjustments))
}

// Accept handles POST /adjustments/:adjustmentId/accept
func (h *AdjustmentHandler) Accept(c *gin.Context) {
	h.run(c, h.adjustments.Accept)
}

// Reject handles POST /adjustments/:adjustmentId/reject
func (h *AdjustmentHandler) Reject(c *gin.Context) {
	h.run(c, h.adjustments.Reject)
}

// Readjust handles POST /adjustments/:adjustmentId/readjust
func (h *AdjustmentHandler) Readjust(c *gin.Context) {
	h.run(c, h.adjustments.RequestReadjustment)
}

func (h *AdjustmentHandler) run(c *gin.Context, command func(ctx context.Context, adjustmentID, actorID uint64) (*entity.LoanAdjustment, error)) {
	adjustmentID, err := pathID(c, "adjustmentId")
	if err != nil {
		fail(c, err)
		return
	}

	adjustment, err := command(c.Request.Context(), adjustmentID, middleware.ActorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAdjustmentResponse(adjustment))
}
