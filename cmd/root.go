// =============================================================================
// CSV to EDI Mapper - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (edimapper)
//   ├── processCmd (edimapper process)
//   ├── validateCmd (edimapper validate)
//   └── versionCmd (edimapper version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --profile)
//   2. Reading edimapper.yaml, EDIMAPPER_* variables and bound flags
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// If empty, edimapper.yaml is looked up in the working directory.
var cfgFile string

// verbose enables development logging at debug level.
var verbose bool

// v holds every configuration source. Command flags are bound into it.
var v = config.NewViper()

// These are set by initConfig before any command runs.
var (
	mainConfig *config.MainConfig
	logger     *zap.SugaredLogger
	configErr  error
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "edimapper",
	Short: "CSV to EDI Mapper - Populate XML order templates from CSV order exports",
	Long: `CSV to EDI Mapper reads order CSV files exported with ###ORD-HEADER and
###ORD-LINES marker blocks and writes each order into a copy of an XML order
template, ready for EDI upload.

Key Features:
  - Header fields projected onto the template by path, missing elements created
  - One line element per CSV line, cloned from the template's prototype line
  - Line count written to the document trailer
  - Mapping profiles in YAML or XLSX, with optional field transformations
  - Structural CSV validation, strict or advisory

Example Usage:
  edimapper process                          # Process every CSV in the input directory
  edimapper process --csv order.csv          # Process one order
  edimapper process --config ./edimapper.yaml
  edimapper validate order.csv               # Check CSV structure only`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the main configuration file (default is ./edimapper.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	// The profile is shared by process and validate.
	rootCmd.PersistentFlags().String("profile", "", "Mapping profile (.yaml, .yml or .xlsx)")
	if err := v.BindPFlag(config.KeyProfile, rootCmd.PersistentFlags().Lookup("profile")); err != nil {
		panic(fmt.Sprintf("failed to bind flag profile: %v", err))
	}
}

// initConfig loads the main configuration and builds the logger. Errors are
// kept in configErr and reported by the commands that need a configuration.
func initConfig() {
	mainConfig, configErr = config.LoadMainConfig(v, cfgFile)
	if configErr != nil {
		logger = zap.NewNop().Sugar()
		return
	}

	logger, configErr = newLogger(mainConfig.LogLevel, verbose)
	if configErr == nil && v.ConfigFileUsed() != "" {
		logger.Debugw("using config file", "path", v.ConfigFileUsed())
	}
}

// requireConfig returns the loaded configuration or the error that
// prevented loading it.
func requireConfig() (*config.MainConfig, error) {
	if configErr != nil {
		return nil, configErr
	}
	return mainConfig, nil
}

// newLogger builds a development logger when verbose, a production logger at
// the configured level otherwise.
func newLogger(level string, verbose bool) (*zap.SugaredLogger, error) {
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		return l.Sugar(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}

// bindFlag binds a command flag to a configuration key, so the flag wins
// over the config file and environment when set.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}
