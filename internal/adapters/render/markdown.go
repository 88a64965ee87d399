// Package render formats ledger data as markdown for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
)

// Money formats an amount in the ledger currency.
func Money(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, domain.Currency).Display()
}

// cell escapes text placed inside a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// CustomersMarkdown renders the customer list with balances.
func CustomersMarkdown(list []domain.Customer) string {
	var b strings.Builder
	b.WriteString("# Veresiye Defteri\n\n")
	if len(list) == 0 {
		b.WriteString("_Kayıtlı borçlu yok._\n")
		return b.String()
	}
	b.WriteString("| Borçlu | Kayıt | Toplam Borç |\n")
	b.WriteString("|:---|---:|---:|\n")
	total := decimal.Zero
	for _, c := range list {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", cell(c.Name), c.RecordCount, Money(c.TotalDebt))
		total = total.Add(c.TotalDebt)
	}
	fmt.Fprintf(&b, "\n**Genel Toplam:** %s\n", Money(total))
	return b.String()
}

// StatementMarkdown renders one customer's records with running balances.
// records must already carry RemainingDebt.
func StatementMarkdown(c domain.Customer, records []domain.Record, last domain.LastPayment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cell(c.Name))
	fmt.Fprintf(&b, "**Toplam Ödenmemiş Borç:** %s  \n", Money(domain.TotalDebt(records)))
	fmt.Fprintf(&b, "**Son Ödeme Durumu:** %s\n\n", last)
	if len(records) == 0 {
		b.WriteString("_Kayıt yok._\n")
		return b.String()
	}
	b.WriteString("| Tarih | Açıklama | Borç | Ödeme | Kalan | Durum |\n")
	b.WriteString("|:---|:---|---:|---:|---:|:---|\n")
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Date, cell(r.Description), Money(r.DebtAmount), Money(r.PaymentAmount),
			Money(r.RemainingDebt), r.PaymentStatus.Label())
	}
	return b.String()
}

// StatsMarkdown renders the database statistics.
func StatsMarkdown(st domain.Stats) string {
	orNone := func(s string) string {
		if s == "" {
			return "Kayıt yok"
		}
		return s
	}
	var b strings.Builder
	b.WriteString("# Veritabanı\n\n")
	b.WriteString("| | |\n|:---|---:|\n")
	fmt.Fprintf(&b, "| Borçlu | %d |\n", st.CustomerCount)
	fmt.Fprintf(&b, "| Kayıt | %d |\n", st.RecordCount)
	fmt.Fprintf(&b, "| En eski kayıt | %s |\n", orNone(st.OldestDate))
	fmt.Fprintf(&b, "| En yeni kayıt | %s |\n", orNone(st.NewestDate))
	fmt.Fprintf(&b, "| Boyut | %.2f MB |\n", float64(st.SizeBytes)/(1024*1024))
	fmt.Fprintf(&b, "| Yedek | %d |\n", st.BackupCount)
	return b.String()
}

// Terminal renders markdown for a terminal, falling back to the raw text.
func Terminal(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
