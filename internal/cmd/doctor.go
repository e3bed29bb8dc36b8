package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pricelens/pricelens/internal/config"
	"github.com/pricelens/pricelens/internal/observability"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the local setup and suggest fixes for common issues.

Nothing here calls the trade API; the stored exchange ratio is reported as-is.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger := observability.CLILogger
		logger.Info("=== " + config.AppName + " doctor ===")
		logger.Info("")

		allChecks := true
		totalChecks := 6

		version := crucible.GetVersion()
		logger.Info(fmt.Sprintf("[1/%d] Checking runtime... ✅ %s %s/%s (gofulmen %s)", totalChecks,
			runtime.Version(), runtime.GOOS, runtime.GOARCH, version.Gofulmen))

		if path := configFileInUse(); path != "" {
			logger.Info(fmt.Sprintf("[2/%d] Checking config file... ✅ %s", totalChecks, path), zap.String("config_file", path))
		} else {
			logger.Warn(fmt.Sprintf("[2/%d] Checking config file... ⚠️  none found (run '%s config init')", totalChecks, config.AppName))
		}

		cfg, cfgErr := loadConfig()
		if cfgErr != nil {
			logger.Error(fmt.Sprintf("[3/%d] Checking configuration... ❌ %v", totalChecks, cfgErr))
			allChecks = false
		} else if len(cfg.Items) == 0 {
			logger.Warn(fmt.Sprintf("[3/%d] Checking configuration... ⚠️  league %s, no items configured", totalChecks, cfg.League))
			allChecks = false
		} else {
			logger.Info(fmt.Sprintf("[3/%d] Checking configuration... ✅ league %s, %d items", totalChecks, cfg.League, len(cfg.Items)))
		}

		switch {
		case cfgErr != nil:
			logger.Warn(fmt.Sprintf("[4/%d] Checking trade session... ⚠️  skipped (config not loaded)", totalChecks))
		case cfg.RequireSession() != nil:
			logger.Error(fmt.Sprintf("[4/%d] Checking trade session... ❌ not set (export %s)", totalChecks, config.SessionEnv))
			allChecks = false
		default:
			logger.Info(fmt.Sprintf("[4/%d] Checking trade session... ✅ set", totalChecks))
		}

		if cfgErr != nil {
			logger.Warn(fmt.Sprintf("[5/%d] Checking database... ⚠️  skipped (config not loaded)", totalChecks))
			logger.Warn(fmt.Sprintf("[6/%d] Checking exchange ratio... ⚠️  skipped (config not loaded)", totalChecks))
		} else {
			logger.Info(fmt.Sprintf("[5/%d] Checking database... %s", totalChecks, describeStore(cfg.Store)))

			db, err := openStore(ctx, cfg)
			if err != nil {
				logger.Error(fmt.Sprintf("[6/%d] Checking exchange ratio... ❌ cannot open store", totalChecks), zap.Error(err))
				allChecks = false
			} else {
				defer db.Close() //nolint:errcheck
				ratio, err := db.GetExchangeRatio(ctx, cfg.League)
				switch {
				case err != nil:
					logger.Error(fmt.Sprintf("[6/%d] Checking exchange ratio... ❌ cannot read", totalChecks), zap.Error(err))
					allChecks = false
				case ratio == nil:
					logger.Warn(fmt.Sprintf("[6/%d] Checking exchange ratio... ⚠️  none stored (run '%s ratio')", totalChecks, config.AppName))
				case time.Since(ratio.UpdatedAt) > cfg.Exchange.MaxAge:
					logger.Warn(fmt.Sprintf("[6/%d] Checking exchange ratio... ⚠️  %.1f chaos, stale (%s)", totalChecks, ratio.Ratio, formatTimeAgo(ratio.UpdatedAt)))
				default:
					logger.Info(fmt.Sprintf("[6/%d] Checking exchange ratio... ✅ %.1f chaos (%s)", totalChecks, ratio.Ratio, formatTimeAgo(ratio.UpdatedAt)))
				}
			}
		}

		logger.Info("")
		if allChecks {
			logger.Info(fmt.Sprintf("✅ All checks passed! Your %s installation is healthy.", config.AppName))
		} else {
			logger.Warn("⚠️  Some checks failed. Review the output above for details.")
		}
		logger.Info("")
		logger.Info("=== End Diagnostics ===")
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func describeStore(cfg config.StoreConfig) string {
	if cfg.URL != "" {
		return "✅ " + cfg.URL + " (remote)"
	}

	absPath, _ := filepath.Abs(cfg.Path)
	info, err := os.Stat(absPath)
	switch {
	case err == nil:
		return fmt.Sprintf("✅ %s (%s)", absPath, formatFileSize(info.Size()))
	case os.IsNotExist(err):
		return fmt.Sprintf("✅ %s (created on first run)", absPath)
	default:
		return fmt.Sprintf("⚠️  %s (error: %v)", absPath, err)
	}
}

func formatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// formatTimeAgo returns a human-readable relative time
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d mins ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
