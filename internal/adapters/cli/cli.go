// Package cli implements the veresiye command line front-end.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/render"
	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
	"github.com/aliosmangurbilek/debt-ledger/internal/usecase"
)

// Register the subcommands against the ledger use case.
func Register(c *subcommands.Commander, uc *usecase.LedgerUC) {
	c.Register(&customersCmd{uc: uc}, "customers")
	c.Register(&addCustomerCmd{uc: uc}, "customers")
	c.Register(&deleteCustomerCmd{uc: uc}, "customers")

	c.Register(&recordCmd{uc: uc, payment: false}, "records")
	c.Register(&recordCmd{uc: uc, payment: true}, "records")
	c.Register(&statementCmd{uc: uc}, "records")
	c.Register(&statusCmd{uc: uc}, "records")

	c.Register(&backupCmd{uc: uc}, "maintenance")
	c.Register(&pruneCmd{uc: uc}, "maintenance")
	c.Register(&cleanupCmd{uc: uc}, "maintenance")
	c.Register(&exportCmd{uc: uc}, "maintenance")
	c.Register(&importCmd{uc: uc}, "maintenance")
	c.Register(&statsCmd{uc: uc}, "maintenance")
}

func printMarkdown(md string, plain bool) {
	if plain {
		fmt.Print(md)
		return
	}
	fmt.Print(render.Terminal(md))
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

// parseAmount accepts both "100.50" and "100,50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a valid amount", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount cannot be negative")
	}
	return d, nil
}

func today() string { return time.Now().Format(domain.DateFormat) }

func nameArg(args []string) string { return strings.TrimSpace(strings.Join(args, " ")) }
