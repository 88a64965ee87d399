package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
)

var base = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func daysAgo(n int) string { return base.AddDate(0, 0, -n).Format(domain.DateFormat) }

func newTestRepo(t *testing.T) (*LedgerRepo, *clock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := Open(path, false)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	c := &clock{t: base}
	return NewLedgerRepo(db, path).WithClock(c.now), c
}

func mustCustomer(t *testing.T, r *LedgerRepo, name string) uint {
	t.Helper()
	id, err := r.AddCustomer(context.Background(), name)
	if err != nil {
		t.Fatalf("AddCustomer(%q) error = %v", name, err)
	}
	return id
}

func mustRecord(t *testing.T, r *LedgerRepo, customerID uint, date string, debt, payment int64) uint {
	t.Helper()
	id, err := r.AddRecord(context.Background(), domain.NewRecord{
		CustomerID:    customerID,
		Date:          date,
		Description:   "kayıt " + date,
		DebtAmount:    decimal.NewFromInt(debt),
		PaymentAmount: decimal.NewFromInt(payment),
	})
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}
	return id
}

func remaining(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RemainingDebt.String()
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunningBalance(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	id := mustCustomer(t, r, "Ali")
	mustRecord(t, r, id, "2025-01-01", 100, 0)
	mustRecord(t, r, id, "2025-01-02", 0, 40)
	mustRecord(t, r, id, "2025-01-03", 50, 0)

	records, err := r.Records(ctx, id)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if got, want := remaining(records), []string{"100", "60", "110"}; !equal(got, want) {
		t.Errorf("remaining debt = %v, want %v", got, want)
	}

	list, err := r.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers() error = %v", err)
	}
	if len(list) != 1 || !list[0].TotalDebt.Equal(decimal.NewFromInt(110)) || list[0].RecordCount != 3 {
		t.Errorf("ListCustomers() = %+v, want total 110 over 3 records", list)
	}
}

func TestRecordsOrderedByDateThenInsertion(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	id := mustCustomer(t, r, "Ayşe")
	late := mustRecord(t, r, id, "2025-02-10", 10, 0)
	first := mustRecord(t, r, id, "2025-02-01", 20, 0)
	second := mustRecord(t, r, id, "2025-02-01", 0, 5)

	records, err := r.Records(ctx, id)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	got := []uint{records[0].ID, records[1].ID, records[2].ID}
	if got[0] != first || got[1] != second || got[2] != late {
		t.Errorf("order = %v, want [%d %d %d]", got, first, second, late)
	}
	if want := []string{"20", "15", "25"}; !equal(remaining(records), want) {
		t.Errorf("remaining debt = %v, want %v", remaining(records), want)
	}
}

func TestNewCustomerHasNoDebt(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	id := mustCustomer(t, r, "Veli")

	list, _ := r.ListCustomers(ctx)
	if len(list) != 1 || !list[0].TotalDebt.IsZero() || list[0].RecordCount != 0 {
		t.Fatalf("ListCustomers() = %+v, want one customer without debt", list)
	}

	last, err := r.LastPaymentStatus(ctx, id)
	if err != nil || last.Kind != domain.LastPaymentNoRecords {
		t.Errorf("LastPaymentStatus() = %+v, %v; want no records", last, err)
	}

	mustRecord(t, r, id, "2025-01-01", 30, 0)
	last, _ = r.LastPaymentStatus(ctx, id)
	if last.Kind != domain.LastPaymentNone {
		t.Errorf("LastPaymentStatus() = %+v, want no payment yet", last)
	}

	mustRecord(t, r, id, "2025-01-02", 0, 10)
	last, _ = r.LastPaymentStatus(ctx, id)
	if last.Kind != domain.LastPaymentFound || last.Status != domain.StatusPaid {
		t.Errorf("LastPaymentStatus() = %+v, want paid", last)
	}
}

func TestAddCustomerDuplicateName(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	mustCustomer(t, r, "Ali")

	if _, err := r.AddCustomer(ctx, "Ali"); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("second AddCustomer() error = %v, want ErrDuplicateName", err)
	}
	// names are case sensitive
	mustCustomer(t, r, "ali")

	list, _ := r.ListCustomers(ctx)
	count := 0
	for _, c := range list {
		if c.Name == "Ali" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("found %d customers named Ali, want 1", count)
	}
}

func TestCustomerByName(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	id := mustCustomer(t, r, "Mehmet")

	c, err := r.CustomerByName(ctx, "Mehmet")
	if err != nil || c.ID != id {
		t.Fatalf("CustomerByName() = %+v, %v; want id %d", c, err, id)
	}
	if _, err := r.CustomerByName(ctx, "mehmet"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("CustomerByName(mehmet) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteCustomerCascades(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	id := mustCustomer(t, r, "Hasan")
	keep := mustCustomer(t, r, "Hüseyin")
	for _, date := range []string{"2025-01-01", "2025-01-02", "2025-01-03"} {
		mustRecord(t, r, id, date, 10, 0)
	}
	mustRecord(t, r, keep, "2025-01-01", 5, 0)

	ok, err := r.DeleteCustomer(ctx, id)
	if err != nil || !ok {
		t.Fatalf("DeleteCustomer() = %v, %v; want true", ok, err)
	}
	records, _ := r.Records(ctx, id)
	if len(records) != 0 {
		t.Errorf("Records() after delete = %d, want 0", len(records))
	}
	list, _ := r.ListCustomers(ctx)
	if len(list) != 1 || list[0].ID != keep {
		t.Errorf("ListCustomers() = %+v, want only Hüseyin", list)
	}

	ok, err = r.DeleteCustomer(ctx, 999)
	if err != nil || ok {
		t.Errorf("DeleteCustomer(999) = %v, %v; want false, nil", ok, err)
	}
	st, _ := r.Stats(ctx)
	if st.CustomerCount != 1 || st.RecordCount != 1 {
		t.Errorf("Stats() = %+v, want 1 customer and 1 record", st)
	}
}

func TestAddRecordUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)

	_, err := r.AddRecord(ctx, domain.NewRecord{
		CustomerID:  999,
		Date:        "2025-01-01",
		Description: "orphan",
		DebtAmount:  decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrUnknownCustomer) {
		t.Fatalf("AddRecord() error = %v, want ErrUnknownCustomer", err)
	}
	st, _ := r.Stats(ctx)
	if st.RecordCount != 0 {
		t.Errorf("RecordCount = %d, want 0", st.RecordCount)
	}
}

func TestAddRecordTouchesCustomer(t *testing.T) {
	ctx := context.Background()
	r, c := newTestRepo(t)
	id := mustCustomer(t, r, "Zeynep")

	c.t = base.Add(2 * time.Hour)
	mustRecord(t, r, id, "2025-01-01", 10, 0)

	cust, err := r.CustomerByName(ctx, "Zeynep")
	if err != nil {
		t.Fatalf("CustomerByName() error = %v", err)
	}
	if !cust.UpdatedAt.Equal(c.t) {
		t.Errorf("UpdatedAt = %v, want %v", cust.UpdatedAt, c.t)
	}
	if !cust.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", cust.CreatedAt, base)
	}
}

func TestCleanupOldRecords(t *testing.T) {
	ctx := context.Background()
	r, c := newTestRepo(t)

	c.t = base.AddDate(0, 0, -50)
	mixed := mustCustomer(t, r, "Karışık")
	old := mustCustomer(t, r, "Eski")
	mustRecord(t, r, mixed, daysAgo(40), 100, 0)
	mustRecord(t, r, mixed, daysAgo(20), 30, 0)
	mustRecord(t, r, old, daysAgo(40), 70, 0)

	// backdated but entered today: created_at keeps it
	c.t = base
	recent := mustCustomer(t, r, "Yeni")
	mustRecord(t, r, recent, daysAgo(40), 5, 0)

	n, err := r.CleanupOldRecords(ctx, 30)
	if err != nil {
		t.Fatalf("CleanupOldRecords() error = %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	list, _ := r.ListCustomers(ctx)
	names := map[string]domain.Customer{}
	for _, cu := range list {
		names[cu.Name] = cu
	}
	if _, ok := names["Eski"]; ok {
		t.Error("customer left without records was not removed")
	}
	if cu, ok := names["Karışık"]; !ok || cu.RecordCount != 1 || !cu.TotalDebt.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Karışık = %+v, want the 20 day old record only", cu)
	}
	if cu, ok := names["Yeni"]; !ok || cu.RecordCount != 1 {
		t.Errorf("Yeni = %+v, want its record kept", cu)
	}

	if n, err := r.CleanupOldRecords(ctx, 30); err != nil || n != 0 {
		t.Errorf("second CleanupOldRecords() = %d, %v; want 0", n, err)
	}
	if _, err := r.CleanupOldRecords(ctx, -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("CleanupOldRecords(-1) error = %v, want ErrInvalidInput", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestRepo(t)
	ali := mustCustomer(t, src, "Ali")
	mustRecord(t, src, ali, "2025-01-03", 50, 0)
	mustRecord(t, src, ali, "2025-01-01", 100, 0)
	mustRecord(t, src, ali, "2025-01-02", 0, 40)
	mustCustomer(t, src, "Boş")
	if _, err := src.AddRecord(ctx, domain.NewRecord{
		CustomerID: ali, Date: "2025-01-04", Description: "un", DebtAmount: decimal.RequireFromString("12.5"),
		ItemCode1: "A-1", Unit: "kg",
	}); err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	snap, err := src.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var decoded domain.Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	dst, _ := newTestRepo(t)
	res, err := dst.Import(ctx, &decoded)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Customers != 2 || res.Records != 4 {
		t.Errorf("Import() = %+v, want 2 customers and 4 records", res)
	}

	want, _ := src.ListCustomers(ctx)
	got, _ := dst.ListCustomers(ctx)
	if len(got) != len(want) {
		t.Fatalf("imported %d customers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name || got[i].RecordCount != want[i].RecordCount || !got[i].TotalDebt.Equal(want[i].TotalDebt) {
			t.Errorf("customer %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	imported, _ := dst.CustomerByName(ctx, "Ali")
	srcRecords, _ := src.Records(ctx, ali)
	dstRecords, _ := dst.Records(ctx, imported.ID)
	if !equal(remaining(dstRecords), remaining(srcRecords)) {
		t.Errorf("imported balances = %v, want %v", remaining(dstRecords), remaining(srcRecords))
	}
	if last := dstRecords[len(dstRecords)-1]; last.ItemCode1 != "A-1" || last.Unit != "kg" {
		t.Errorf("receipt fields = %q %q, want A-1 kg", last.ItemCode1, last.Unit)
	}

	// customers are reused, records are added again
	res, err = dst.Import(ctx, &decoded)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if res.Customers != 0 || res.Records != 4 {
		t.Errorf("second Import() = %+v, want 0 customers and 4 records", res)
	}
	list, _ := dst.ListCustomers(ctx)
	if len(list) != 2 || list[0].RecordCount != 8 {
		t.Errorf("after re-import = %+v, want Ali with 8 records", list)
	}
}

func TestImportRejectsInvalidRecord(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	snap := &domain.Snapshot{Customers: []domain.SnapshotCustomer{{
		Name: "Ali",
		Records: []domain.SnapshotRecord{
			{Date: "2025-01-01", Description: "ok", DebtAmount: decimal.NewFromInt(1)},
			{Date: "2025-01-02", Description: ""},
		},
	}}}
	if _, err := r.Import(ctx, snap); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Import() error = %v, want ErrInvalidInput", err)
	}
	st, _ := r.Stats(ctx)
	if st.CustomerCount != 0 || st.RecordCount != 0 {
		t.Errorf("Stats() = %+v, want nothing written", st)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	st, err := r.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.OldestDate != "" || st.SizeBytes == 0 {
		t.Errorf("empty Stats() = %+v", st)
	}
	id := mustCustomer(t, r, "Ali")
	mustRecord(t, r, id, "2025-03-01", 1, 0)
	mustRecord(t, r, id, "2024-12-31", 1, 0)
	st, _ = r.Stats(ctx)
	if st.OldestDate != "2024-12-31" || st.NewestDate != "2025-03-01" || st.RecordCount != 2 {
		t.Errorf("Stats() = %+v", st)
	}
}
