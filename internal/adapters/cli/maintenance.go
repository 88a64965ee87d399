package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/render"
	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/storage/localfs"
	"github.com/aliosmangurbilek/debt-ledger/internal/domain"
	"github.com/aliosmangurbilek/debt-ledger/internal/usecase"
)

type backupCmd struct {
	uc  *usecase.LedgerUC
	tag string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "take a manual backup" }
func (*backupCmd) Usage() string {
	return `veresiye backup [-tag <tag>]
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tag, "tag", usecase.TagManual, "tag embedded in the backup file name")
}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, err := c.uc.Backup(ctx, c.tag)
	if err != nil {
		return fail("Error creating backup: %v", err)
	}
	fmt.Printf("Backup written to %s\n", path)
	return subcommands.ExitSuccess
}

type pruneCmd struct {
	uc   *usecase.LedgerUC
	keep int
}

func (*pruneCmd) Name() string     { return "prune-backups" }
func (*pruneCmd) Synopsis() string { return "delete all but the newest backups" }
func (*pruneCmd) Usage() string {
	return `veresiye prune-backups [-keep <n>]
`
}

func (c *pruneCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.keep, "keep", localfs.DefaultKeep, "number of backups to keep")
}

func (c *pruneCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	n, err := c.uc.PruneBackups(c.keep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid keep count: %v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Printf("Removed %d old backups\n", n)
	return subcommands.ExitSuccess
}

type cleanupCmd struct {
	uc   *usecase.LedgerUC
	days int
}

func (*cleanupCmd) Name() string     { return "cleanup" }
func (*cleanupCmd) Synopsis() string { return "delete records older than a number of days" }
func (*cleanupCmd) Usage() string {
	return `veresiye cleanup [-days <n>]

  Deletes records dated and created more than n days ago, then removes
  customers left without records. This cannot be undone.
`
}

func (c *cleanupCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 365, "keep records from the last n days")
}

func (c *cleanupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	n, err := c.uc.CleanupOldRecords(ctx, c.days)
	if err != nil {
		return fail("Error cleaning up records: %v", err)
	}
	if n == 0 {
		fmt.Println("No old records to delete")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Deleted %d old records\n", n)
	return subcommands.ExitSuccess
}

type exportCmd struct{ uc *usecase.LedgerUC }

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the whole ledger as JSON" }
func (*exportCmd) Usage() string {
	return `veresiye export <file.json>
`
}
func (*exportCmd) SetFlags(*flag.FlagSet) {}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one output file is required")
		return subcommands.ExitUsageError
	}
	s, err := c.uc.Export(ctx)
	if err != nil {
		return fail("Error exporting ledger: %v", err)
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fail("Error encoding export: %v", err)
	}
	if err := os.WriteFile(f.Arg(0), raw, 0o644); err != nil {
		return fail("Error writing %q: %v", f.Arg(0), err)
	}
	fmt.Printf("Exported %d customers to %s\n", len(s.Customers), f.Arg(0))
	return subcommands.ExitSuccess
}

type importCmd struct{ uc *usecase.LedgerUC }

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a JSON export" }
func (*importCmd) Usage() string {
	return `veresiye import <file.json>

  Existing customers are matched by name. Records are always added, so
  importing the same file twice duplicates them.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one input file is required")
		return subcommands.ExitUsageError
	}
	raw, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return fail("Error reading %q: %v", f.Arg(0), err)
	}
	var s domain.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return fail("Error decoding %q: %v", f.Arg(0), err)
	}
	res, err := c.uc.Import(ctx, &s)
	if err != nil {
		return fail("Error importing: %v", err)
	}
	fmt.Printf("Imported %d new customers and %d records\n", res.Customers, res.Records)
	return subcommands.ExitSuccess
}

type statsCmd struct {
	uc    *usecase.LedgerUC
	plain bool
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show database statistics" }
func (*statsCmd) Usage() string {
	return `veresiye stats [-plain]
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "print raw markdown")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := c.uc.Stats(ctx)
	if err != nil {
		return fail("Error reading statistics: %v", err)
	}
	printMarkdown(render.StatsMarkdown(st), c.plain)
	return subcommands.ExitSuccess
}
