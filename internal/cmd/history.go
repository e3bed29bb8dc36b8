package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pricelens/pricelens/internal/core/store"
	"github.com/pricelens/pricelens/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored price snapshots",
	Long:  "List price snapshots recorded by earlier runs, newest first.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("item", "", "Only show snapshots for this item")
	historyCmd.Flags().String("run", "", "Only show snapshots from this run id")
	historyCmd.Flags().Bool("all-leagues", false, "Include snapshots from every league")
	historyCmd.Flags().Int("limit", 20, "Maximum snapshots to show")
	addOutputFlags(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	query, err := historyQuery(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	allLeagues, err := cmd.Flags().GetBool("all-leagues")
	if err != nil {
		return err
	}
	if !allLeagues {
		query.League = cfg.League
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

	snapshots, err := db.ListSnapshots(ctx, query)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatHistory(snapshots)
	if err != nil {
		return err
	}
	return writeOutput(cmd, rendered)
}

func historyQuery(cmd *cobra.Command) (store.SnapshotQuery, error) {
	item, err := cmd.Flags().GetString("item")
	if err != nil {
		return store.SnapshotQuery{}, err
	}
	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return store.SnapshotQuery{}, err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return store.SnapshotQuery{}, err
	}
	if limit <= 0 {
		return store.SnapshotQuery{}, fmt.Errorf("--limit must be positive, got %d", limit)
	}
	return store.SnapshotQuery{Item: item, RunID: runID, Limit: limit}, nil
}
