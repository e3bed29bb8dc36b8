package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"

	"github.com/pricelens/pricelens/internal/config"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for full details including Crucible and Go versions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if extended {
			// Extended version output
			fmt.Fprintf(out, "%s %s\n", config.AppName, versionInfo.Version)
			fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(out, "Built: %s\n", versionInfo.BuildDate)
			fmt.Fprintf(out, "Go: %s\n", runtime.Version())
			fmt.Fprintf(out, "\n")

			// Gofulmen and Crucible versions
			version := crucible.GetVersion()
			fmt.Fprintf(out, "Gofulmen: %s\n", version.Gofulmen)
			fmt.Fprintf(out, "Crucible: %s\n", version.Crucible)
		} else {
			// Basic version output
			fmt.Fprintf(out, "%s %s\n", config.AppName, versionInfo.Version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}
