package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/loan-ledger/mocks/port/core"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"insufficient funds", errs.NewInsufficientFundsError(1, "10.00", "5.00"), http.StatusUnprocessableEntity},
		{"invalid amount", errs.NewValidationError("amount", "x", "bad", errs.ErrInvalidAmount), http.StatusUnprocessableEntity},
		{"invalid rate", errs.ErrInvalidInterestRate, http.StatusUnprocessableEntity},
		{"empty adjustment", errs.ErrEmptyAdjustment, http.StatusUnprocessableEntity},
		{"malformed input", errs.NewValidationError("loanId", "abc", "bad", errs.ErrInvalidID), http.StatusBadRequest},
		{"same wallet", errs.ErrSameWallet, http.StatusBadRequest},
		{"forbidden", fmt.Errorf("%w: not yours", errs.ErrForbidden), http.StatusForbidden},
		{"missing actor", ErrMissingActor, http.StatusForbidden},
		{"loan not found", errs.ErrLoanNotFound, http.StatusNotFound},
		{"lender not assigned", errs.ErrLenderNotAssigned, http.StatusNotFound},
		{"invalid transition", errs.NewInvalidTransitionError(1, "closed", "approve"), http.StatusConflict},
		{"pending adjustment", errs.ErrPendingAdjustmentExists, http.StatusConflict},
		{"adjustment resolved", errs.ErrAdjustmentNotPending, http.StatusConflict},
		{"duplicate user", errs.ErrDuplicateUser, http.StatusConflict},
		{"concurrent update", errs.ErrConcurrentUpdate, http.StatusConflict},
		{"database down", errs.ErrDatabaseConnection, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func newRouter(logger *coremocks.MockLogger, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(logger))
	router.GET("/", handlers...)
	return router
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(ActingUserHeader, header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestActingUser(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", header: "42", wantStatus: http.StatusOK, wantBody: "42"},
		{name: "surrounding spaces", header: " 7 ", wantStatus: http.StatusOK, wantBody: "7"},
		{name: "missing", header: "", wantStatus: http.StatusForbidden},
		{name: "not a number", header: "abc", wantStatus: http.StatusBadRequest},
		{name: "zero", header: "0", wantStatus: http.StatusBadRequest},
		{name: "negative", header: "-3", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := coremocks.NewMockLogger(t)
			logger.EXPECT().Warn("Request rejected", mock.Anything).Return().Maybe()

			router := newRouter(logger, ActingUser(), func(c *gin.Context) {
				c.String(http.StatusOK, "%d", ActorID(c))
			})

			rec := serve(router, tt.header)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestErrorHandler_RendersAttachedError(t *testing.T) {
	logger := coremocks.NewMockLogger(t)
	logger.EXPECT().Warn("Request rejected", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["status"] == http.StatusConflict && fields["error_code"] == errs.CodeInvalidTransition
	})).Return().Once()

	router := newRouter(logger, func(c *gin.Context) {
		_ = c.Error(errs.NewInvalidTransitionError(3, "closed", "approve"))
	})

	rec := serve(router, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t,
		`{"code":4090,"message":"invalid loan state transition for loan 3: event \"approve\" not allowed from state \"closed\""}`,
		rec.Body.String())
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	logger := coremocks.NewMockLogger(t)
	logger.EXPECT().Error("Request failed", mock.Anything).Return().Once()

	router := newRouter(logger, func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation does not exist"))
	})

	rec := serve(router, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":5000,"message":"Internal server error"}`, rec.Body.String())
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	logger := coremocks.NewMockLogger(t)
	logger.EXPECT().Error("Panic recovered in API request", mock.Anything).Return().Once()

	router := newRouter(logger, func(*gin.Context) {
		panic("unexpected")
	})

	rec := serve(router, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":5000,"message":"Internal server error"}`, rec.Body.String())
}

func TestErrorHandler_LeavesWrittenResponses(t *testing.T) {
	logger := coremocks.NewMockLogger(t)

	router := newRouter(logger, func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
		_ = c.Error(errors.New("late"))
	})

	rec := serve(router, "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}
