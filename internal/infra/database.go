package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lunapos/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches for the DDL
// GORM cannot express (partial indexes, check constraints on existing tables).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus the manual schema patches.
// Also used by integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.StockEntry{},
		&model.StockMovement{},
		&model.PaymentMethod{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Payment{},
		&model.CashSession{},
		&model.CashMovement{},
		&model.Expense{},
		&model.ExpensePayment{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open cash session per operator, enforced at the DB level
		// as the backstop for the service pre-check.
		{"partial unique index on open cash sessions", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cash_sessions_open_operator') THEN
    CREATE UNIQUE INDEX uni_cash_sessions_open_operator
        ON cash_sessions (operator_id)
        WHERE status = 'open';
  END IF;
END $$`},
		// Receivable payments are scanned by sale for balance replay.
		{"index payments by sale", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_payments_sale') THEN
    CREATE INDEX idx_payments_sale ON payments (sale_id, created_at);
  END IF;
END $$`},
		// The reconciliation report walks tenders by timestamp.
		{"index cash movements by session", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_movements_session') THEN
    CREATE INDEX idx_cash_movements_session ON cash_movements (cash_session_id, created_at);
  END IF;
END $$`},
		// Outstanding receivables are the hot path of the reminder cron.
		{"partial index on outstanding credit sales", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sales_outstanding') THEN
    CREATE INDEX idx_sales_outstanding
        ON sales (client_id, created_at)
        WHERE sale_type = 'credit' AND outstanding_balance > 0;
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
