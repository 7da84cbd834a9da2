// Command indexcheck audits and repairs the login index against the stored users.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"userstore/config"
	logs "userstore/internal/infra/log"
	"userstore/internal/infra/persistence/docdb"
	"userstore/internal/infra/text"
	"userstore/internal/usecase"
	"userstore/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Supported subcommands:
// - check:  report missing, orphaned and conflicting index entries
// - repair: rewrite the index from the users' login lists

// exitInconsistent is returned by check -strict when drift is found.
const exitInconsistent = 2

func main() {
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	checkStrict := checkCmd.Bool("strict", false, "Exit with status 2 when the index is inconsistent")

	repairCmd := flag.NewFlagSet("repair", flag.ExitOnError)
	repairDryRun := repairCmd.Bool("dry-run", false, "Only report what would be repaired")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flags := indexFlags{
		Check:  checkFlags{cmd: checkCmd, strict: checkStrict},
		Repair: repairFlags{cmd: repairCmd, dryRun: repairDryRun},
	}

	consistent, err := runSubcommand(ctx, &flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !consistent && *flags.Check.strict {
		os.Exit(exitInconsistent)
	}
}

type indexFlags struct {
	Check  checkFlags
	Repair repairFlags
}

type checkFlags struct {
	cmd    *flag.FlagSet
	strict *bool
}

type repairFlags struct {
	cmd    *flag.FlagSet
	dryRun *bool
}

func runSubcommand(ctx context.Context, flags *indexFlags) (bool, error) {
	var run func(usecase.ConsistencyUsecase, context.Context) (*usecase.ConsistencyReport, error)

	switch os.Args[1] {
	case "check":
		if err := flags.Check.cmd.Parse(os.Args[2:]); err != nil {
			return false, errors.Wrap(err, "failed to parse check flags")
		}
		run = usecase.ConsistencyUsecase.Check
	case "repair":
		if err := flags.Repair.cmd.Parse(os.Args[2:]); err != nil {
			return false, errors.Wrap(err, "failed to parse repair flags")
		}
		run = usecase.ConsistencyUsecase.Repair
		if *flags.Repair.dryRun {
			run = usecase.ConsistencyUsecase.Check
		}
	default:
		printUsage()

		return false, errors.New("unknown subcommand")
	}

	report, err := withChecker(ctx, run)
	if err != nil {
		return false, err
	}

	if err := writeReport(os.Stdout, report); err != nil {
		return false, err
	}

	return report.Consistent(), nil
}

// withChecker starts the store dependencies, runs fn and stops them again.
func withChecker(
	ctx context.Context,
	fn func(usecase.ConsistencyUsecase, context.Context) (*usecase.ConsistencyReport, error),
) (*usecase.ConsistencyReport, error) {
	var checker usecase.ConsistencyUsecase

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.NewStderr,
			docdb.New,
			docdb.NewTransactionManager,
			text.NewLookupNormalizer,
			impl.NewConsistencyService,
		),
		fx.Populate(&checker),
	)

	if err := app.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to start")
	}
	defer func() {
		_ = app.Stop(context.WithoutCancel(ctx))
	}()

	return fn(checker, ctx)
}

func writeReport(w io.Writer, report *usecase.ConsistencyReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(report), "failed to write report")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: indexcheck <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  check   [-strict]    Report login index drift")
	fmt.Fprintln(os.Stderr, "  repair  [-dry-run]   Rewrite the login index from user documents")
}
