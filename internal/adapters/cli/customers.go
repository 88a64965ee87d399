package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/render"
	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
	"github.com/aliosmangurbilek/debt-ledger/internal/usecase"
)

type customersCmd struct {
	uc    *usecase.LedgerUC
	plain bool
}

func (*customersCmd) Name() string     { return "customers" }
func (*customersCmd) Synopsis() string { return "list customers with their total debt" }
func (*customersCmd) Usage() string {
	return `veresiye customers [-plain]

  Lists every customer sorted by name with record count and total debt.
`
}

func (c *customersCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "print raw markdown")
}

func (c *customersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	list, err := c.uc.ListCustomers(ctx)
	if err != nil {
		return fail("Error listing customers: %v", err)
	}
	printMarkdown(render.CustomersMarkdown(list), c.plain)
	return subcommands.ExitSuccess
}

type addCustomerCmd struct{ uc *usecase.LedgerUC }

func (*addCustomerCmd) Name() string     { return "add-customer" }
func (*addCustomerCmd) Synopsis() string { return "create a customer" }
func (*addCustomerCmd) Usage() string {
	return `veresiye add-customer <name>
`
}
func (*addCustomerCmd) SetFlags(*flag.FlagSet) {}

func (c *addCustomerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := nameArg(f.Args())
	if name == "" {
		fmt.Fprintln(os.Stderr, "a customer name is required")
		return subcommands.ExitUsageError
	}
	id, err := c.uc.AddCustomer(ctx, name)
	if errors.Is(err, domain.ErrDuplicateName) {
		return fail("A customer named %q already exists", name)
	}
	if err != nil {
		return fail("Error adding customer: %v", err)
	}
	fmt.Printf("Added customer %q (id %d)\n", name, id)
	return subcommands.ExitSuccess
}

type deleteCustomerCmd struct{ uc *usecase.LedgerUC }

func (*deleteCustomerCmd) Name() string     { return "delete-customer" }
func (*deleteCustomerCmd) Synopsis() string { return "delete a customer and all of its records" }
func (*deleteCustomerCmd) Usage() string {
	return `veresiye delete-customer <name>
`
}
func (*deleteCustomerCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteCustomerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := nameArg(f.Args())
	if name == "" {
		fmt.Fprintln(os.Stderr, "a customer name is required")
		return subcommands.ExitUsageError
	}
	cust, err := c.uc.CustomerByName(ctx, name)
	if err != nil {
		return fail("Error finding customer %q: %v", name, err)
	}
	ok, err := c.uc.DeleteCustomer(ctx, cust.ID)
	if err != nil {
		return fail("Error deleting customer: %v", err)
	}
	if !ok {
		return fail("Customer %q was already gone", name)
	}
	fmt.Printf("Deleted customer %q\n", name)
	return subcommands.ExitSuccess
}
