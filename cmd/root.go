/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	cacheCmd "github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/cache"
	chartCmd "github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/chart"
	deriveCmd "github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/derive"
	publishCmd "github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/publish"
	watchCmd "github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/watch"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/config"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry/file"
	"github.com/mpapenbr/iracelog-lapanalysis/version"
)

const envPrefix = "ILA"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "ila",
	Short:   "Lap analysis for race sessions: tire age, stints and pit stops",
	Long:    ``,
	Version: version.FullVersion,

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := setupLogger()
		if err != nil {
			return err
		}
		log.ResetDefault(logger)
		cmd.SetContext(log.AddToContext(cmd.Context(), logger))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag definitions
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.ila.yml)")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules, e.g. '*:telemetry.* error:*'")
	rootCmd.PersistentFlags().StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for other services to be ready")

	rootCmd.PersistentFlags().StringVarP(&config.Input,
		"input", "i", "",
		"read laps from this json document")
	rootCmd.PersistentFlags().StringVar(&config.ProviderURL,
		"provider-url", "",
		"fetch laps from this telemetry provider")
	rootCmd.PersistentFlags().StringVar(&config.LapsPath,
		"laps-path", file.DefaultLapsPath,
		"json path of the lap records within the input document")
	rootCmd.PersistentFlags().IntVar(&config.Season,
		"season", 0,
		"season of the session, e.g. 2023")
	rootCmd.PersistentFlags().StringVar(&config.Event,
		"event", "",
		"event name, e.g. Monza")
	rootCmd.PersistentFlags().StringVar(&config.Session,
		"session", "",
		"session (FP1, FP2, FP3, Q, SQ, S, R)")
	rootCmd.PersistentFlags().StringVar(&config.Driver,
		"driver", "",
		"three letter driver code, e.g. VER")
	rootCmd.PersistentFlags().StringVar(&config.CacheDir,
		"cache-dir", "cache",
		"directory of the on-disk cache")
	rootCmd.PersistentFlags().StringVar(&config.CacheTTL,
		"cache-ttl", "0s",
		"cached sessions older than this are fetched again (0s: never)")
	rootCmd.PersistentFlags().BoolVar(&config.NoCache,
		"no-cache", false,
		"do not use the on-disk cache")

	// add commands here
	rootCmd.AddCommand(deriveCmd.NewDeriveCmd())
	rootCmd.AddCommand(chartCmd.NewChartCmd())
	rootCmd.AddCommand(publishCmd.NewPublishCmd())
	rootCmd.AddCommand(watchCmd.NewWatchCmd())
	rootCmd.AddCommand(cacheCmd.NewCacheCmd())
}

func setupLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		filter, err := log.WithFilter(config.LogFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid log filter: %w", err)
		}
		opts = append(opts, filter)
	}
	switch config.LogFormat {
	case "json":
		return log.New(os.Stderr, level, opts...), nil
	default:
		return log.DevLogger(os.Stderr, level, opts...), nil
	}
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

		// Search config in home directory with name ".ila" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ila")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindCommands(rootCmd, viper.GetViper())
}

func bindCommands(cmd *cobra.Command, v *viper.Viper) {
	bindFlags(cmd, v)
	for _, c := range cmd.Commands() {
		bindCommands(c, v)
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --cache-dir to ILA_CACHE_DIR
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
