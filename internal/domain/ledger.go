package domain

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// SortRecords orders records by date, then by insertion order.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].ID < records[j].ID
	})
}

// ApplyRunningBalance fills RemainingDebt on records that are already in
// ledger order. Balances are never stored; they are derived on every read.
func ApplyRunningBalance(records []Record) {
	running := decimal.Zero
	for i := range records {
		running = running.Add(records[i].DebtAmount).Sub(records[i].PaymentAmount)
		records[i].RemainingDebt = running
	}
}

// TotalDebt is the remaining debt after the last record, or zero.
func TotalDebt(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.DebtAmount).Sub(r.PaymentAmount)
	}
	return total
}

type LastPaymentKind int

const (
	LastPaymentNoRecords LastPaymentKind = iota
	LastPaymentNone
	LastPaymentFound
)

// LastPayment tells apart a customer without records, one with records but
// no payment yet, and the status of the latest payment.
type LastPayment struct {
	Kind   LastPaymentKind
	Status PaymentStatus
}

func (l LastPayment) String() string {
	switch l.Kind {
	case LastPaymentNoRecords:
		return "Kayıt yok"
	case LastPaymentNone:
		return "Ödeme yok"
	}
	return l.Status.Label()
}

// LastPaymentOf scans ledger-ordered records from the newest backwards.
func LastPaymentOf(records []Record) LastPayment {
	if len(records) == 0 {
		return LastPayment{Kind: LastPaymentNoRecords}
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].PaymentAmount.IsPositive() {
			return LastPayment{Kind: LastPaymentFound, Status: records[i].PaymentStatus}
		}
	}
	return LastPayment{Kind: LastPaymentNone}
}

// Stats summarises the store for the settings screen.
type Stats struct {
	CustomerCount int
	RecordCount   int
	OldestDate    string
	NewestDate    string
	SizeBytes     int64
	BackupCount   int
}

type ImportResult struct {
	Customers int
	Records   int
}

type LedgerRepo interface {
	AddCustomer(ctx context.Context, name string) (uint, error)
	DeleteCustomer(ctx context.Context, id uint) (bool, error)
	AddRecord(ctx context.Context, r NewRecord) (uint, error)
	CustomerByName(ctx context.Context, name string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	Records(ctx context.Context, customerID uint) ([]Record, error)
	LastPaymentStatus(ctx context.Context, customerID uint) (LastPayment, error)
	CleanupOldRecords(ctx context.Context, keepDays int) (int, error)
	Export(ctx context.Context) (*Snapshot, error)
	Import(ctx context.Context, s *Snapshot) (ImportResult, error)
	Stats(ctx context.Context) (Stats, error)
}

// Exporter produces the structured document written next to every backup.
type Exporter interface {
	Export(ctx context.Context) (*Snapshot, error)
}

// BackupService takes and prunes point-in-time copies of the store. Its
// methods never fail the caller; problems are logged and reported through
// the boolean or count results.
type BackupService interface {
	Snapshot(ctx context.Context, tag string) (string, bool)
	Prune(keep int) int
	List() ([]Backup, error)
}
