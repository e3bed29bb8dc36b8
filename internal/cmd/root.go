package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pricelens/pricelens/internal/config"
	"github.com/pricelens/pricelens/internal/observability"
)

var (
	cfgFile string
	envFile string
	verbose bool

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Price Path of Exile items from the official trade API",
	Long: `pricelens runs configured trade searches against the Path of Exile trade API,
normalizes listing prices to chaos orbs and reports the average per item.

Requests are paced to the trade API's published limits. Set POESESSID (or
PRICELENS_TRADE_SESSION_ID) to a logged-in session id before pricing.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early to prevent config loading from emitting
	// metrics to stdout. Server mode will initialize proper telemetry later.
	observability.DisableGlobalTelemetry()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/pricelens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().String("league", "", "league to price in (overrides config)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("league", rootCmd.PersistentFlags().Lookup("league"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	observability.InitCLILogger(config.AppName, verbose)
	logger := observability.CLILogger

	// A missing .env is normal; real environment variables always win.
	if err := godotenv.Load(envFile); err == nil {
		logger.Debug("Loaded environment file", zap.String("path", envFile))
	}

	v := viper.GetViper()
	config.SetDefaults(v)
	config.BindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		for _, path := range config.ConfigSearchPaths() {
			v.AddConfigPath(path)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err == nil {
		logger.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		logger.Debug("No config file found, using defaults and environment variables")
	} else if cfgFile != "" {
		ExitWithCode(logger, foundry.ExitConfigInvalid, "Failed to read config file", err)
	} else {
		logger.Warn("Error reading config file", zap.Error(err))
	}
}

// loadConfig decodes and validates the settings collected by initConfig.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// configFileInUse returns the config file viper read, or "" when none was found.
func configFileInUse() string {
	return viper.ConfigFileUsed()
}
