package routes

import (
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the router serves
type Handlers struct {
	Users       *handler.UserHandler
	Wallets     *handler.WalletHandler
	Loans       *handler.LoanHandler
	Adjustments *handler.AdjustmentHandler
	Health      *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", h.Health.Health)
	router.POST("/users", h.Users.CreateUser)

	acting := router.Group("/", middleware.ActingUser())

	wallets := acting.Group("/wallets")
	{
		wallets.GET("/me", h.Wallets.Me)
		wallets.GET("/:walletId", h.Wallets.Get)
		wallets.GET("/:walletId/transactions", h.Wallets.Transactions)
	}

	loans := acting.Group("/loans")
	{
		loans.POST("", h.Loans.Create)
		loans.GET("", h.Loans.List)
		loans.GET("/:loanId", h.Loans.Get)
		loans.POST("/:loanId/approve", h.Loans.Approve)
		loans.POST("/:loanId/reject", h.Loans.Reject)
		loans.POST("/:loanId/confirm", h.Loans.Confirm)
		loans.POST("/:loanId/repay", h.Loans.Repay)
		loans.POST("/:loanId/events", h.Loans.Fire)
		loans.POST("/:loanId/adjustments", h.Adjustments.Propose)
		loans.GET("/:loanId/adjustments", h.Adjustments.List)
	}

	adjustments := acting.Group("/adjustments")
	{
		adjustments.POST("/:adjustmentId/accept", h.Adjustments.Accept)
		adjustments.POST("/:adjustmentId/reject", h.Adjustments.Reject)
		adjustments.POST("/:adjustmentId/readjust", h.Adjustments.Readjust)
	}
}

// SetupMiddlewares configures global middlewares for the API.
// Logger wraps ErrorHandler so it sees the final status.
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider) {
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.ErrorHandler(logger))
}
