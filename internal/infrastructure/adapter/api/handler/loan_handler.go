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
)

// LoanHandler handles loan lifecycle HTTP requests
type LoanHandler struct {
	loans  usecase.LoanUseCase
	logger coreport.Logger
}

// NewLoanHandler creates a new loan handler instance
func NewLoanHandler(loans usecase.LoanUseCase, logger coreport.Logger) *LoanHandler {
	return &LoanHandler{
		loans:  loans,
		logger: logger,
	}
}

// Create handles POST /loans
func (h *LoanHandler) Create(c *gin.Context) {
	var req dto.CreateLoanRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	amount, err := entity.ParsePositiveAmount(req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	rate, err := entity.ParseInterestRate(req.InterestRate)
	if err != nil {
		fail(c, err)
		return
	}

	loan, err := h.loans.RequestLoan(c.Request.Context(), middleware.ActorID(c), amount, rate)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewLoanResponse(loan))
}

// List handles GET /loans
func (h *LoanHandler) List(c *gin.Context) {
	loans, err := h.loans.ListLoans(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLoanResponses(loans))
}

// Get handles GET /loans/:loanId
func (h *LoanHandler) Get(c *gin.Context) {
	loanID, err := pathID(c, "loanId")
	if err != nil {
		fail(c, err)
		return
	}

	loan, err := h.loans.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLoanResponse(loan))
}

// Approve handles POST /loans/:loanId/approve
func (h *LoanHandler) Approve(c *gin.Context) {
	h.run(c, h.loans.Approve)
}

// Reject handles POST /loans/:loanId/reject
func (h *LoanHandler) Reject(c *gin.Context) {
	h.run(c, h.loans.Reject)
}

// Confirm handles POST /loans/:loanId/confirm
func (h *LoanHandler) Confirm(c *gin.Context) {
	h.run(c, h.loans.Confirm)
}

// Repay handles POST /loans/:loanId/repay
func (h *LoanHandler) Repay(c *gin.Context) {
	h.run(c, h.loans.Repay)
}

// Fire handles POST /loans/:loanId/events
func (h *LoanHandler) Fire(c *gin.Context) {
	var req dto.FireEventRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	event, err := entity.ParseLoanEvent(req.Event)
	if err != nil {
		fail(c, err)
		return
	}

	h.run(c, func(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error) {
		return h.loans.Fire(ctx, loanID, actorID, event)
	})
}

func (h *LoanHandler) run(c *gin.Context, command func(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error)) {
	loanID, err := pathID(c, "loanId")
	if err != nil {
		fail(c, err)
		return
	}

	loan, err := command(c.Request.Context(), loanID, middleware.ActorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLoanResponse(loan))
}
