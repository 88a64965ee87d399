package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
)

const sheetName = "Hesap Dökümü"

var headers = []string{"Tarih", "Açıklama", "Borç", "Ödeme", "Kalan", "Durum", "Kod 1", "Kod 2", "Birim"}

// WriteStatement writes a customer's statement as a spreadsheet. records
// must be in ledger order with RemainingDebt filled.
func WriteStatement(w io.Writer, c domain.Customer, records []domain.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	set := func(col, row int, v any) error {
		ref, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetName, ref, v)
	}

	if err := set(1, 1, c.Name); err != nil {
		return err
	}
	_ = f.SetCellStyle(sheetName, "A1", "A1", bold)

	for i, h := range headers {
		if err := set(i+1, 3, h); err != nil {
			return err
		}
	}
	_ = f.SetCellStyle(sheetName, "A3", "I3", bold)

	row := 4
	for _, r := range records {
		values := []any{
			r.Date,
			r.Description,
			r.DebtAmount.InexactFloat64(),
			r.PaymentAmount.InexactFloat64(),
			r.RemainingDebt.InexactFloat64(),
			r.PaymentStatus.Label(),
			r.ItemCode1,
			r.ItemCode2,
			r.Unit,
		}
		for i, v := range values {
			if err := set(i+1, row, v); err != nil {
				return err
			}
		}
		row++
	}

	row++
	if err := set(4, row, "Toplam"); err != nil {
		return err
	}
	if err := set(5, row, domain.TotalDebt(records).InexactFloat64()); err != nil {
		return err
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 32)
	_ = f.SetColWidth(sheetName, "C", "E", 14)
	_ = f.SetColWidth(sheetName, "F", "I", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
