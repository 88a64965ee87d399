package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
)

// Open opens (creating if needed) the ledger database file. Foreign keys are
// enabled through the DSN so every pooled connection enforces them.
func Open(path string, logSQL bool) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	gormLogger := logger.Default
	if !logSQL {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// single writer; also keeps the file consistent for backup copies
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates the customers and records tables and their indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Customer{}, &domain.Record{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	_ = db.Exec("CREATE INDEX IF NOT EXISTS idx_records_customer_id ON records(customer_id)").Error
	_ = db.Exec("CREATE INDEX IF NOT EXISTS idx_records_date ON records(date)").Error
	return nil
}
