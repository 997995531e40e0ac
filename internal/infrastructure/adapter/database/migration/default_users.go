package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
)

// SeedDefaultUsers creates the default lenders and borrowers that don't exist yet
func SeedDefaultUsers(ctx context.Context, users usecase.UserUseCase, logger coreport.Logger) error {
	logger.Info("Seeding default users", nil)
	if err := users.CreateDefaultUsers(ctx); err != nil {
		logger.Error("Failed to create default users", map[string]any{
			"error": err.Error(),
		})
		return err
	}
	return nil
}
