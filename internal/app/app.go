package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/repo/sqlite"
	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/storage/localfs"
	"github.com/aliosmangurbilek/debt-ledger/internal/usecase"
)

type Config struct {
	DBPath        string
	BackupDir     string
	BackupPrefix  string
	BackupKeep    int
	BackupOnClose bool
	LogLevel      string
	DBLog         bool
}

// LoadConfig reads the environment (after .env has been loaded by main).
func LoadConfig() Config {
	cfg := Config{
		DBPath:       os.Getenv("VERESIYE_DB_PATH"),
		BackupDir:    os.Getenv("VERESIYE_BACKUP_DIR"),
		BackupPrefix: os.Getenv("VERESIYE_BACKUP_PREFIX"),
		BackupKeep:   localfs.DefaultKeep,
		LogLevel:     strings.ToLower(os.Getenv("LOG_LEVEL")),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "veresiye_defteri.db"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "yedek"
	}
	if cfg.BackupPrefix == "" {
		cfg.BackupPrefix = "veresiye_defteri"
	}
	if v := os.Getenv("VERESIYE_BACKUP_KEEP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BackupKeep = n
		}
	}
	cfg.BackupOnClose, _ = strconv.ParseBool(os.Getenv("VERESIYE_BACKUP_ON_CLOSE"))
	cfg.DBLog, _ = strconv.ParseBool(os.Getenv("DB_LOG"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

type App struct {
	DB      *gorm.DB
	Cfg     Config
	Repo    *sqlite.LedgerRepo
	Backups *localfs.BackupManager
	Ledger  *usecase.LedgerUC
}

func NewApp(db *gorm.DB, cfg Config) (*App, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database")
	}
	repo := sqlite.NewLedgerRepo(db, cfg.DBPath)
	backups := localfs.NewBackupManager(cfg.BackupDir, cfg.BackupPrefix, cfg.DBPath, repo).WithKeep(cfg.BackupKeep)

	a := &App{DB: db, Cfg: cfg, Repo: repo, Backups: backups}
	a.Ledger = &usecase.LedgerUC{Ledger: repo, Backups: backups}
	return a, nil
}

func (a *App) Migrate() error {
	return sqlite.Migrate(a.DB)
}

// Close takes the app_close backup when configured and releases the database.
func (a *App) Close(ctx context.Context) error {
	if a.Cfg.BackupOnClose {
		if _, err := a.Ledger.Backup(ctx, usecase.TagAppClose); err != nil {
			log.Warn().Err(err).Msg("closing backup failed")
		}
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
