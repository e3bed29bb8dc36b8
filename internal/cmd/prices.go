package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pricelens/pricelens/internal/core/engine"
	"github.com/pricelens/pricelens/internal/observability"
	"github.com/pricelens/pricelens/internal/output"
)

var pricesCmd = &cobra.Command{
	Use:   "prices [item...]",
	Short: "Price configured items",
	Long: `Run the configured trade search for each item, fetch the first page of
listings and report the average price in chaos orbs.

Without arguments every configured item is priced. Items are processed one at
a time; a failure on one item is reported and does not stop the others.`,
	RunE: runPrices,
}

func init() {
	rootCmd.AddCommand(pricesCmd)

	pricesCmd.Flags().StringSlice("item", nil, "Item names to price (repeatable; same as positional args)")
	pricesCmd.Flags().Bool("fail-on-error", false, "Exit non-zero when any item failed to price")
	addOutputFlags(pricesCmd)
}

func runPrices(cmd *cobra.Command, args []string) error {
	names, err := cmd.Flags().GetStringSlice("item")
	if err != nil {
		return err
	}
	names = append(names, args...)

	failOnError, err := cmd.Flags().GetBool("fail-on-error")
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	format, err := resolveOutputFormat(cmd, cfg.Output.Format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	logger := observability.CLILogger
	service, err := buildService(cfg, db, logger)
	if err != nil {
		return err
	}

	run, err := service.Price(ctx, names...)
	if err != nil {
		return err
	}

	logger.Debug("Price run finished",
		zap.String("run_id", run.RunID),
		zap.String("league", run.League),
		zap.Int("items", len(run.Reports)),
		zap.Int("failed", run.Failed()),
		zap.Duration("elapsed", engine.Elapsed(run)))

	rendered, err := output.NewFormatter(format).FormatRun(run)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, rendered); err != nil {
		return err
	}

	if failOnError && run.Failed() > 0 {
		return fmt.Errorf("%d of %d items failed to price", run.Failed(), len(run.Reports))
	}
	return nil
}
