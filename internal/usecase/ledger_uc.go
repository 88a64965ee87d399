package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
)

// Backup tags recorded in snapshot file names.
const (
	TagAddCustomer    = "add_creditor"
	TagDeleteCustomer = "delete_creditor"
	TagAddRecord      = "add_record"
	TagCleanup        = "cleanup"
	TagImport         = "import"
	TagManual         = "manual"
	TagAppClose       = "app_close"
)

// LedgerUC runs ledger operations and takes a backup after every mutation
// that changed something. Backups is optional.
type LedgerUC struct {
	Ledger  domain.LedgerRepo
	Backups domain.BackupService
}

func (uc *LedgerUC) backup(ctx context.Context, tag string) {
	if uc.Backups == nil {
		return
	}
	uc.Backups.Snapshot(ctx, tag)
}

func (uc *LedgerUC) AddCustomer(ctx context.Context, name string) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: customer name is empty", domain.ErrInvalidInput)
	}
	id, err := uc.Ledger.AddCustomer(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateName) {
			log.Error().Err(err).Str("name", name).Msg("add customer failed")
		}
		return 0, err
	}
	uc.backup(ctx, TagAddCustomer)
	return id, nil
}

// DeleteCustomer removes the customer and its records. It reports false
// without error when the id does not exist.
func (uc *LedgerUC) DeleteCustomer(ctx context.Context, id uint) (bool, error) {
	ok, err := uc.Ledger.DeleteCustomer(ctx, id)
	if err != nil {
		log.Error().Err(err).Uint("customer_id", id).Msg("delete customer failed")
		return false, err
	}
	if ok {
		uc.backup(ctx, TagDeleteCustomer)
	}
	return ok, nil
}

func (uc *LedgerUC) AddRecord(ctx context.Context, r domain.NewRecord) (uint, error) {
	id, err := uc.Ledger.AddRecord(ctx, r)
	if err != nil {
		log.Error().Err(err).Uint("customer_id", r.CustomerID).Msg("add record failed")
		return 0, err
	}
	uc.backup(ctx, TagAddRecord)
	return id, nil
}

func (uc *LedgerUC) CustomerByName(ctx context.Context, name string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is empty", domain.ErrInvalidInput)
	}
	return uc.Ledger.CustomerByName(ctx, name)
}

func (uc *LedgerUC) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	list, err := uc.Ledger.ListCustomers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list customers failed")
		return []domain.Customer{}, err
	}
	return list, nil
}

func (uc *LedgerUC) Records(ctx context.Context, customerID uint) ([]domain.Record, error) {
	list, err := uc.Ledger.Records(ctx, customerID)
	if err != nil {
		log.Error().Err(err).Uint("customer_id", customerID).Msg("list records failed")
		return []domain.Record{}, err
	}
	return list, nil
}

func (uc *LedgerUC) LastPaymentStatus(ctx context.Context, customerID uint) (domain.LastPayment, error) {
	return uc.Ledger.LastPaymentStatus(ctx, customerID)
}

// CleanupOldRecords purges records older than keepDays and backs up only
// when something was deleted.
func (uc *LedgerUC) CleanupOldRecords(ctx context.Context, keepDays int) (int, error) {
	n, err := uc.Ledger.CleanupOldRecords(ctx, keepDays)
	if err != nil {
		log.Error().Err(err).Int("keep_days", keepDays).Msg("cleanup records failed")
		return 0, err
	}
	if n > 0 {
		log.Info().Int("deleted", n).Msg("old records cleaned up")
		uc.backup(ctx, TagCleanup)
	}
	return n, nil
}

func (uc *LedgerUC) Export(ctx context.Context) (*domain.Snapshot, error) {
	return uc.Ledger.Export(ctx)
}

func (uc *LedgerUC) Import(ctx context.Context, s *domain.Snapshot) (domain.ImportResult, error) {
	res, err := uc.Ledger.Import(ctx, s)
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		return res, err
	}
	if res.Customers > 0 || res.Records > 0 {
		uc.backup(ctx, TagImport)
	}
	return res, nil
}

func (uc *LedgerUC) Stats(ctx context.Context) (domain.Stats, error) {
	st, err := uc.Ledger.Stats(ctx)
	if err != nil {
		return st, err
	}
	if uc.Backups != nil {
		if list, err := uc.Backups.List(); err == nil {
			st.BackupCount = len(list)
		}
	}
	return st, nil
}

// Backup takes a snapshot outside of any mutation, e.g. on demand or when
// the application closes.
func (uc *LedgerUC) Backup(ctx context.Context, tag string) (string, error) {
	if uc.Backups == nil {
		return "", errors.New("backups disabled")
	}
	path, ok := uc.Backups.Snapshot(ctx, tag)
	if !ok {
		return "", errors.New("backup failed")
	}
	return path, nil
}

func (uc *LedgerUC) PruneBackups(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep count %d", domain.ErrInvalidInput, keep)
	}
	if uc.Backups == nil {
		return 0, nil
	}
	return uc.Backups.Prune(keep), nil
}
