package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"gorm.io/gorm"
)

// indexStatement is a named DDL statement
type indexStatement struct {
	name string
	sql  string
}

// requiredIndexes back invariants the repositories rely on
var requiredIndexes = []indexStatement{
	{
		// at most one pending adjustment per loan
		name: "idx_loan_adjustments_one_pending",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_loan_adjustments_one_pending
			ON loan_adjustments (loan_id) WHERE status = 'pending'`,
	},
	{
		name: "idx_transactions_wallet_id_id",
		sql: `CREATE INDEX IF NOT EXISTS idx_transactions_wallet_id_id
			ON transactions (wallet_id, id DESC)`,
	},
	{
		name: "idx_loans_open",
		sql: `CREATE INDEX IF NOT EXISTS idx_loans_open
			ON loans (id) WHERE state = 'open'`,
	},
	{
		name: "idx_transactions_created_at_brin",
		sql: `CREATE INDEX IF NOT EXISTS idx_transactions_created_at_brin
			ON transactions USING BRIN (created_at)
			WITH (pages_per_range = 32)`,
	},
}

// AdvancedIndexManager manages PostgreSQL-specific indexes gorm tags cannot express
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

// CreateIndexes creates the partial and BRIN indexes
func (m *AdvancedIndexManager) CreateIndexes(ctx context.Context) error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	for _, idx := range requiredIndexes {
		if err := m.db.WithContext(ctx).Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", map[string]any{
		"count": len(requiredIndexes),
	})
	return nil
}

// ApplyPerformanceTweaks tunes the append-only ledger table; failures are only logged
func (m *AdvancedIndexManager) ApplyPerformanceTweaks(ctx context.Context) {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	// ledger rows are never updated, so pages can be packed full
	if err := m.db.WithContext(ctx).Exec(`ALTER TABLE transactions SET (fillfactor = 100)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for transactions table", map[string]any{
			"error": err.Error(),
		})
	}

	// wallets and loans are updated in place on every money movement
	for _, table := range []string{"wallets", "loans"} {
		if err := m.db.WithContext(ctx).Exec(`ALTER TABLE ` + table + ` SET (fillfactor = 90)`).Error; err != nil {
			m.logger.Warn("Failed to set fillfactor", map[string]any{
				"table": table,
				"error": err.Error(),
			})
		}
	}
}
