/*
	Copyright 2025 ProWheel Lab
*/

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	buildCmd "github.com/prowheel/wheellab/pkg/cmd/build"
	calcCmd "github.com/prowheel/wheellab/pkg/cmd/calc"
	catalogCmd "github.com/prowheel/wheellab/pkg/cmd/catalog"
	migrateCmd "github.com/prowheel/wheellab/pkg/cmd/migrate"
	recipeCmd "github.com/prowheel/wheellab/pkg/cmd/recipe"
	"github.com/prowheel/wheellab/pkg/config"
	"github.com/prowheel/wheellab/pkg/repository/natskv"
	"github.com/prowheel/wheellab/version"
)

const envPrefix = "WHEELLAB"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "wheellab",
	Short:        "Spoke length calculator and wheel build registry",
	Long:         ``,
	Version:      version.FullVersion,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag definitions
func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.wheellab.yml)")

	pf.StringVar(&config.DB, "db",
		"postgresql://DB_USERNAME:DB_USER_PASSWORD@DB_HOST:5432/wheellab",
		"Connection string for the database")
	pf.StringVar(&config.Store, "store",
		config.StorePostgres,
		"Store for catalog, builds and recipes (postgres, memory)")
	pf.StringVar(&config.CatalogFile, "catalog-file", "",
		"YAML catalog file, replaces the catalog of the store")
	pf.BoolVar(&config.WatchCatalog, "watch-catalog", false,
		"Reload the catalog file on changes")
	pf.StringVar(&config.NatsURL, "nats-url", "",
		"NATS server URL, keeps the recipe archive in JetStream KV if set")
	pf.StringVar(&config.NatsBucket, "nats-bucket", natskv.DefaultBucket,
		"JetStream KV bucket for the recipe archive")
	pf.StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for other services to be ready")
	pf.StringVar(&config.LogLevel, "log-level", "info",
		"controls the log level (debug, info, warn, error, fatal)")
	pf.StringVar(&config.SQLLogLevel, "sql-log-level", "info",
		"controls the log level for sql methods")
	pf.StringVar(&config.LogFormat, "log-format", "text",
		"controls the log output format (json, text)")
	pf.StringVar(&config.LogFilter, "log-filter", "",
		"zapfilter rules, e.g. \"warn+:* debug+:catalog*\"")
	pf.BoolVar(&config.EnableTelemetry, "enable-telemetry", false,
		"enables telemetry")
	pf.StringVar(&config.TelemetryEndpoint, "telemetry-endpoint", "",
		"OTLP grpc endpoint (host:port), stdout exporters if empty")
	pf.StringVar(&config.CatalogCacheTTL, "catalog-cache-ttl", "1m",
		"Duration a catalog snapshot is cached")
	pf.Float64Var(&config.SPOffsetLeft, "sp-offset-left", 0,
		"straight-pull calibration (mm, left) for hubs without own value")
	pf.Float64Var(&config.SPOffsetRight, "sp-offset-right", 0,
		"straight-pull calibration (mm, right) for hubs without own value")

	// add commands here
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
	rootCmd.AddCommand(calcCmd.NewCalcCmd())
	rootCmd.AddCommand(catalogCmd.NewCatalogCmd())
	rootCmd.AddCommand(buildCmd.NewBuildCmd())
	rootCmd.AddCommand(recipeCmd.NewRecipeCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".wheellab" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wheellab")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindAll(rootCmd, viper.GetViper())
}

// bindAll binds the flags of cmd and all of its subcommands
func bindAll(cmd *cobra.Command, v *viper.Viper) {
	bindFlags(cmd, v)
	for _, sub := range cmd.Commands() {
		bindAll(sub, v)
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --log-level to WHEELLAB_LOG_LEVEL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
