package cmd

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pricelens/pricelens/internal/observability"
	"github.com/pricelens/pricelens/internal/output"
)

var ratioCmd = &cobra.Command{
	Use:   "ratio",
	Short: "Show the chaos-per-divine exchange ratio",
	Long: `Show the exchange ratio used to convert divine-priced listings to chaos.

The stored ratio is reused until it is older than exchange.max_age, then looked
up again on poe.ninja. Use --refresh to force a lookup.`,
	Args: cobra.NoArgs,
	RunE: runRatio,
}

func init() {
	rootCmd.AddCommand(ratioCmd)

	ratioCmd.Flags().Bool("refresh", false, "Look the ratio up even when the stored one is fresh")
	addOutputFlags(ratioCmd)
}

func runRatio(cmd *cobra.Command, args []string) error {
	refresh, err := cmd.Flags().GetBool("refresh")
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

	clock := clockwork.NewRealClock()
	exchange := buildExchange(cfg, db, observability.CLILogger, clock)

	lookup := exchange.Current
	if refresh {
		lookup = exchange.Refresh
	}
	ratio, err := lookup(ctx, cfg.League)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatRatio(ratio, clock.Now())
	if err != nil {
		return err
	}
	return writeOutput(cmd, rendered)
}
