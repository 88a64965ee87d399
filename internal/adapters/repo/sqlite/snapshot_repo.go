package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
)

// Export dumps every customer (by name) with its records in ledger order.
func (r *LedgerRepo) Export(ctx context.Context) (*domain.Snapshot, error) {
	var customers []domain.Customer
	err := r.db.WithContext(ctx).Order("name asc").
		Preload("Records", func(db *gorm.DB) *gorm.DB { return db.Order("date asc, id asc") }).
		Find(&customers).Error
	if err != nil {
		return nil, storageErr("export", err)
	}

	s := &domain.Snapshot{
		ExportDate: r.now(),
		Customers:  make([]domain.SnapshotCustomer, 0, len(customers)),
	}
	for _, c := range customers {
		domain.SortRecords(c.Records)
		sc := domain.SnapshotCustomer{
			ID:        c.ID,
			Name:      c.Name,
			CreatedAt: c.CreatedAt,
			Records:   make([]domain.SnapshotRecord, 0, len(c.Records)),
		}
		for _, rec := range c.Records {
			sc.Records = append(sc.Records, domain.SnapshotRecord{
				Date:          rec.Date,
				Description:   rec.Description,
				DebtAmount:    rec.DebtAmount,
				PaymentAmount: rec.PaymentAmount,
				PaymentStatus: rec.PaymentStatus,
				CreatedAt:     rec.CreatedAt,
				ItemCode1:     rec.ItemCode1,
				ItemCode2:     rec.ItemCode2,
				Unit:          rec.Unit,
			})
		}
		s.Customers = append(s.Customers, sc)
	}
	return s, nil
}

// Import loads a snapshot in one transaction. Customers are matched by exact
// name and reused; records are always inserted, so importing the same
// document twice duplicates its records.
func (r *LedgerRepo) Import(ctx context.Context, s *domain.Snapshot) (domain.ImportResult, error) {
	var res domain.ImportResult
	if s == nil {
		return res, fmt.Errorf("%w: empty snapshot", domain.ErrInvalidInput)
	}
	now := r.now().UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sc := range s.Customers {
			name := strings.TrimSpace(sc.Name)
			if name == "" {
				return fmt.Errorf("%w: customer name is empty", domain.ErrInvalidInput)
			}
			var c domain.Customer
			err := tx.First(&c, "name = ?", name).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				c = domain.Customer{Name: name, CreatedAt: sc.CreatedAt, UpdatedAt: now}
				if c.CreatedAt.IsZero() {
					c.CreatedAt = now
				}
				if err := tx.Create(&c).Error; err != nil {
					return err
				}
				res.Customers++
			case err != nil:
				return err
			}

			for _, sr := range sc.Records {
				n := domain.NewRecord{
					CustomerID:    c.ID,
					Date:          sr.Date,
					Description:   sr.Description,
					DebtAmount:    sr.DebtAmount,
					PaymentAmount: sr.PaymentAmount,
					PaymentStatus: sr.PaymentStatus,
					ItemCode1:     sr.ItemCode1,
					ItemCode2:     sr.ItemCode2,
					Unit:          sr.Unit,
				}
				if err := n.Normalize(); err != nil {
					return fmt.Errorf("customer %q: %w", name, err)
				}
				rec := domain.Record{
					Ref:           uuid.New(),
					CustomerID:    c.ID,
					Date:          n.Date,
					Description:   n.Description,
					DebtAmount:    n.DebtAmount,
					PaymentAmount: n.PaymentAmount,
					PaymentStatus: n.PaymentStatus,
					ItemCode1:     n.ItemCode1,
					ItemCode2:     n.ItemCode2,
					Unit:          n.Unit,
					CreatedAt:     sr.CreatedAt.UTC(),
				}
				if sr.CreatedAt.IsZero() {
					rec.CreatedAt = now
				}
				if err := tx.Create(&rec).Error; err != nil {
					return err
				}
				res.Records++
			}
			if len(sc.Records) > 0 {
				if err := tx.Model(&domain.Customer{}).Where("id = ?", c.ID).UpdateColumn("updated_at", now).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return domain.ImportResult{}, err
	case err != nil:
		return domain.ImportResult{}, storageErr("import", err)
	}
	return res, nil
}
