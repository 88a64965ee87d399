package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
)

type LedgerRepo struct {
	db   *gorm.DB
	path string
	now  func() time.Time
}

func NewLedgerRepo(db *gorm.DB, path string) *LedgerRepo {
	return &LedgerRepo{db: db, path: path, now: time.Now}
}

// WithClock replaces the clock used for timestamps and retention cutoffs.
func (r *LedgerRepo) WithClock(now func() time.Time) *LedgerRepo {
	r.now = now
	return r
}

// Path is the database file backups copy from.
func (r *LedgerRepo) Path() string { return r.path }

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

func (r *LedgerRepo) AddCustomer(ctx context.Context, name string) (uint, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: customer name is empty", domain.ErrInvalidInput)
	}
	now := r.now().UTC()
	c := domain.Customer{Name: name, CreatedAt: now, UpdatedAt: now}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Customer{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateName
		}
		return tx.Create(&c).Error
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateName), errors.Is(err, gorm.ErrDuplicatedKey):
		return 0, domain.ErrDuplicateName
	case err != nil:
		return 0, storageErr("add customer", err)
	}
	return c.ID, nil
}

func (r *LedgerRepo) DeleteCustomer(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&domain.Record{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Customer{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, storageErr("delete customer", err)
	}
	return deleted, nil
}

func (r *LedgerRepo) AddRecord(ctx context.Context, n domain.NewRecord) (uint, error) {
	if err := n.Normalize(); err != nil {
		return 0, err
	}
	now := r.now().UTC()
	rec := domain.Record{
		Ref:           uuid.New(),
		CustomerID:    n.CustomerID,
		Date:          n.Date,
		Description:   n.Description,
		DebtAmount:    n.DebtAmount,
		PaymentAmount: n.PaymentAmount,
		PaymentStatus: n.PaymentStatus,
		ItemCode1:     n.ItemCode1,
		ItemCode2:     n.ItemCode2,
		Unit:          n.Unit,
		CreatedAt:     now,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := customerExists(tx, n.CustomerID); err != nil {
			return err
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Customer{}).Where("id = ?", n.CustomerID).UpdateColumn("updated_at", now).Error
	})
	switch {
	case errors.Is(err, domain.ErrUnknownCustomer):
		return 0, err
	case err != nil:
		return 0, storageErr("add record", err)
	}
	return rec.ID, nil
}

func customerExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&domain.Customer{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrUnknownCustomer, id)
	}
	return nil
}

func (r *LedgerRepo) CustomerByName(ctx context.Context, name string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("find customer", err)
	}
	return &c, nil
}

type amountRow struct {
	CustomerID    uint
	DebtAmount    decimal.Decimal
	PaymentAmount decimal.Decimal
}

func (r *LedgerRepo) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var list []domain.Customer
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, storageErr("list customers", err)
	}
	var rows []amountRow
	if err := r.db.WithContext(ctx).Model(&domain.Record{}).
		Select("customer_id, debt_amount, payment_amount").Find(&rows).Error; err != nil {
		return nil, storageErr("list customers", err)
	}
	idx := make(map[uint]int, len(list))
	for i := range list {
		list[i].TotalDebt = decimal.Zero
		idx[list[i].ID] = i
	}
	for _, row := range rows {
		i, ok := idx[row.CustomerID]
		if !ok {
			continue
		}
		list[i].TotalDebt = list[i].TotalDebt.Add(row.DebtAmount).Sub(row.PaymentAmount)
		list[i].RecordCount++
	}
	return list, nil
}

func (r *LedgerRepo) Records(ctx context.Context, customerID uint) ([]domain.Record, error) {
	var list []domain.Record
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).
		Order("date asc, id asc").Find(&list).Error; err != nil {
		return nil, storageErr("list records", err)
	}
	domain.ApplyRunningBalance(list)
	return list, nil
}

func (r *LedgerRepo) LastPaymentStatus(ctx context.Context, customerID uint) (domain.LastPayment, error) {
	records, err := r.Records(ctx, customerID)
	if err != nil {
		return domain.LastPayment{}, err
	}
	return domain.LastPaymentOf(records), nil
}

// CleanupOldRecords deletes records whose date and creation time are both
// older than keepDays, then drops customers left without records.
func (r *LedgerRepo) CleanupOldRecords(ctx context.Context, keepDays int) (int, error) {
	if keepDays < 0 {
		return 0, fmt.Errorf("%w: keep days %d", domain.ErrInvalidInput, keepDays)
	}
	cutoff := r.now().UTC().AddDate(0, 0, -keepDays)
	cutoffDate := cutoff.Format(domain.DateFormat)

	var deleted int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []domain.Record
		if err := tx.Select("id, created_at").Where("date < ?", cutoffDate).Find(&candidates).Error; err != nil {
			return err
		}
		ids := make([]uint, 0, len(candidates))
		for _, c := range candidates {
			if c.CreatedAt.Before(cutoff) {
				ids = append(ids, c.ID)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Where("id IN ?", ids).Delete(&domain.Record{})
		if res.Error != nil {
			return res.Error
		}
		deleted = int(res.RowsAffected)
		return tx.Where("id NOT IN (?)", tx.Model(&domain.Record{}).Distinct("customer_id")).
			Delete(&domain.Customer{}).Error
	})
	if err != nil {
		return 0, storageErr("cleanup records", err)
	}
	return deleted, nil
}

func (r *LedgerRepo) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	var customers, records int64
	if err := r.db.WithContext(ctx).Model(&domain.Customer{}).Count(&customers).Error; err != nil {
		return st, storageErr("stats", err)
	}
	if err := r.db.WithContext(ctx).Model(&domain.Record{}).Count(&records).Error; err != nil {
		return st, storageErr("stats", err)
	}
	st.CustomerCount = int(customers)
	st.RecordCount = int(records)
	if records > 0 {
		var bounds struct {
			Oldest string
			Newest string
		}
		if err := r.db.WithContext(ctx).Model(&domain.Record{}).
			Select("MIN(date) AS oldest, MAX(date) AS newest").Scan(&bounds).Error; err != nil {
			return st, storageErr("stats", err)
		}
		st.OldestDate, st.NewestDate = bounds.Oldest, bounds.Newest
	}
	if info, err := os.Stat(r.path); err == nil {
		st.SizeBytes = info.Size()
	}
	return st, nil
}
