package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/export/xlsx"
	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/render"
	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
	"github.com/aliosmangurbilek/debt-ledger/internal/usecase"
)

// recordCmd adds a debt line, or a payment line when payment is set.
type recordCmd struct {
	uc      *usecase.LedgerUC
	payment bool

	date        string
	description string
	amount      string
	code1       string
	code2       string
	unit        string
}

func (c *recordCmd) Name() string {
	if c.payment {
		return "pay"
	}
	return "debt"
}

func (c *recordCmd) Synopsis() string {
	if c.payment {
		return "record a payment from a customer"
	}
	return "record a new debt for a customer"
}

func (c *recordCmd) Usage() string {
	return fmt.Sprintf(`veresiye %s -a <amount> -m <description> [-d <date>] <customer>

  Adds a dated line to the customer's ledger.
`, c.Name())
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", today(), "date of the line (YYYY-MM-DD)")
	f.StringVar(&c.description, "m", "", "description")
	f.StringVar(&c.amount, "a", "", "amount, e.g. 100.50 or 100,50")
	f.StringVar(&c.code1, "code1", "", "item code 1 (receipt only)")
	f.StringVar(&c.code2, "code2", "", "item code 2 (receipt only)")
	f.StringVar(&c.unit, "unit", "", "unit (receipt only)")
}

func (c *recordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := nameArg(f.Args())
	if name == "" {
		fmt.Fprintln(os.Stderr, "a customer name is required")
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid amount: %v\n", err)
		return subcommands.ExitUsageError
	}

	cust, err := c.uc.CustomerByName(ctx, name)
	if err != nil {
		return fail("Error finding customer %q: %v", name, err)
	}

	n := domain.NewRecord{
		CustomerID:  cust.ID,
		Date:        c.date,
		Description: c.description,
		ItemCode1:   c.code1,
		ItemCode2:   c.code2,
		Unit:        c.unit,
	}
	if c.payment {
		n.PaymentAmount = amount
		n.PaymentStatus = domain.StatusPaid
	} else {
		n.DebtAmount = amount
		n.PaymentStatus = domain.StatusUnpaid
	}
	if _, err := c.uc.AddRecord(ctx, n); err != nil {
		return fail("Error adding record: %v", err)
	}
	fmt.Printf("Recorded %s %s for %q\n", c.Name(), render.Money(amount), name)
	return subcommands.ExitSuccess
}

type statementCmd struct {
	uc    *usecase.LedgerUC
	xlsx  string
	plain bool
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "show a customer's records with running balance" }
func (*statementCmd) Usage() string {
	return `veresiye statement [-xlsx <file>] [-plain] <customer>

  Prints the customer's ledger ordered by date. With -xlsx the statement is
  also written as a spreadsheet.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.xlsx, "xlsx", "", "write the statement to this .xlsx file")
	f.BoolVar(&c.plain, "plain", false, "print raw markdown")
}

func (c *statementCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := nameArg(f.Args())
	if name == "" {
		fmt.Fprintln(os.Stderr, "a customer name is required")
		return subcommands.ExitUsageError
	}
	cust, err := c.uc.CustomerByName(ctx, name)
	if err != nil {
		return fail("Error finding customer %q: %v", name, err)
	}
	records, err := c.uc.Records(ctx, cust.ID)
	if err != nil {
		return fail("Error loading records: %v", err)
	}
	printMarkdown(render.StatementMarkdown(*cust, records, domain.LastPaymentOf(records)), c.plain)

	if c.xlsx != "" {
		out, err := os.Create(c.xlsx)
		if err != nil {
			return fail("Error creating %q: %v", c.xlsx, err)
		}
		defer out.Close()
		if err := xlsx.WriteStatement(out, *cust, records); err != nil {
			return fail("Error writing %q: %v", c.xlsx, err)
		}
		fmt.Printf("Statement written to %s\n", c.xlsx)
	}
	return subcommands.ExitSuccess
}

type statusCmd struct{ uc *usecase.LedgerUC }

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show the latest payment status of a customer" }
func (*statusCmd) Usage() string {
	return `veresiye status <customer>
`
}
func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (c *statusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := nameArg(f.Args())
	if name == "" {
		fmt.Fprintln(os.Stderr, "a customer name is required")
		return subcommands.ExitUsageError
	}
	cust, err := c.uc.CustomerByName(ctx, name)
	if err != nil {
		return fail("Error finding customer %q: %v", name, err)
	}
	last, err := c.uc.LastPaymentStatus(ctx, cust.ID)
	if err != nil {
		return fail("Error reading payment status: %v", err)
	}
	fmt.Printf("%s: %s\n", cust.Name, last)
	return subcommands.ExitSuccess
}
