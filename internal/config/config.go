// =============================================================================
// CSV to EDI Mapper - Configuration Module
// =============================================================================
//
// This module handles the run configuration. There are two layers:
//
//   1. MAIN CONFIGURATION (edimapper.yaml, EDIMAPPER_* env vars, CLI flags)
//      - Template, input, output and archive locations
//      - Output naming
//      - Logging level and run behavior (strict, archive)
//
//   2. MAPPING PROFILE (profile.go)
//      - Header and line rule tables
//      - Line group layout
//      - Required header fields and field transformations
//
// PRECEDENCE (highest first):
//   CLI flags > environment variables > config file > defaults
//
// EXAMPLE edimapper.yaml:
//
//   template: ./inputs/baseEDI.XML
//   input_dir: ./inputs
//   output_dir: ./outputs
//   archive_dir: ./archive
//   profile: ./profiles/waitrose.yaml
//   output_prefix: WAITROSE      # overrides the profile
//   placeholder: UNKNOWN         # overrides the profile
//   log_level: info
//   strict: false
//   archive: false
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Configuration keys shared by the config file, env vars and CLI flags.
const (
	KeyTemplate      = "template"
	KeyInputDir      = "input_dir"
	KeyOutputDir     = "output_dir"
	KeyArchiveDir    = "archive_dir"
	KeyProfile       = "profile"
	KeyOutputPrefix  = "output_prefix"
	KeyPlaceholder   = "placeholder"
	KeyLogLevel      = "log_level"
	KeyStrict        = "strict"
	KeyArchive       = "archive"
	KeyArchiveByDate = "archive_timestamp_dirs"
)

const (
	// ConfigName is the config file name searched for, without extension.
	ConfigName = "edimapper"

	// EnvPrefix prefixes every environment variable, e.g. EDIMAPPER_OUTPUT_DIR.
	EnvPrefix = "edimapper"
)

// =============================================================================
// MAIN CONFIGURATION
// =============================================================================

// MainConfig represents the main application configuration.
type MainConfig struct {
	// Template is the XML order template populated for every order.
	Template string `mapstructure:"template"`

	// InputDir is scanned for *.csv files when no single file is given.
	InputDir string `mapstructure:"input_dir"`

	// OutputDir is where XML orders and logs are written.
	OutputDir string `mapstructure:"output_dir" validate:"required"`

	// ArchiveDir receives processed input files when Archive is set.
	ArchiveDir string `mapstructure:"archive_dir" validate:"required_if=Archive true"`

	// Profile is an optional mapping profile (.yaml, .yml or .xlsx).
	Profile string `mapstructure:"profile" validate:"omitempty,endswith=.yaml|endswith=.yml|endswith=.xlsx"`

	// OutputPrefix overrides the profile's output file name prefix.
	OutputPrefix string `mapstructure:"output_prefix" validate:"excludesall=/\\"`

	// Placeholder overrides the profile's stand-in for a missing CUST-ORDER.
	Placeholder string `mapstructure:"placeholder" validate:"excludesall=/\\"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// Strict aborts an order whose CSV fails structural validation.
	Strict bool `mapstructure:"strict"`

	// Archive moves each input file to ArchiveDir after a successful write.
	Archive bool `mapstructure:"archive"`

	// ArchiveByDate files archived inputs under ArchiveDir/YYYY/MM/DD.
	ArchiveByDate bool `mapstructure:"archive_timestamp_dirs"`
}

// NewViper returns a viper instance with the mapper's defaults and
// environment binding. The CLI binds its flags into the same instance.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyTemplate, "./inputs/baseEDI.XML")
	v.SetDefault(KeyInputDir, "./inputs")
	v.SetDefault(KeyOutputDir, "./outputs")
	v.SetDefault(KeyArchiveDir, "./archive")
	v.SetDefault(KeyProfile, "")
	v.SetDefault(KeyOutputPrefix, "")
	v.SetDefault(KeyPlaceholder, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyArchive, false)
	v.SetDefault(KeyArchiveByDate, false)

	return v
}

// LoadMainConfig reads the main configuration.
//
// PARAMETERS:
//   - v: The viper instance, usually from NewViper with CLI flags bound.
//   - configPath: An explicit config file. If empty, edimapper.yaml is
//                 searched for in the working directory and may be absent.
//
// RETURNS:
//   - The parsed and validated configuration.
//   - An error if the file cannot be read or the values are invalid.
func LoadMainConfig(v *viper.Viper, configPath string) (*MainConfig, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config MainConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults fills in values left empty by every source.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./outputs"
	}
	config.LogLevel = strings.ToLower(config.LogLevel)
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// validateMainConfig checks the struct tags of MainConfig.
func validateMainConfig(config *MainConfig) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return describe(validate.Struct(config))
}

// describe turns validator errors into one readable error.
func describe(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
	}

	return errors.New(strings.Join(messages, "; "))
}
