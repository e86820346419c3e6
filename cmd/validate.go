// =============================================================================
// CSV to EDI Mapper - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the structure of
// order CSV files without mapping them.
//
// COMMAND USAGE:
//   edimapper validate <file.csv> [more.csv ...]
//
// OUTPUT:
//   PASS order1.csv
//   FAIL order2.csv
//     1. Missing required markers: ###ORD-HEADER-END, ###ORD-LINES
//
// The command exits with status 1 if any file is invalid.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/converter"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/validation"
	"github.com/spf13/cobra"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate <file.csv>...",
	Short: "Check the marker structure of order CSV files",
	Long: `The validate command checks that each CSV carries the four section markers
in the right order, that both sections have content, and that the profile's
required header fields (CUST-ORDER by default) are present and filled.

Nothing is written.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}

		profile, err := converter.LoadProfile(cfg.Profile)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		validator := validation.NewValidatorWithOptions(validation.ValidationOptions{
			RequiredHeaderFields: profile.RequiredHeaderFields,
		})

		if invalid := validateFiles(cmd.OutOrStdout(), validator, args); invalid > 0 {
			return fmt.Errorf("%d of %d file(s) failed validation", invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validateFiles prints a report for each file and returns how many failed.
func validateFiles(out io.Writer, validator *validation.Validator, files []string) int {
	pass := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()

	invalid := 0
	for _, file := range files {
		result := validator.ValidateFile(file)
		if result.IsValid {
			fmt.Fprintf(out, "%s %s\n", pass("PASS"), file)
			continue
		}

		invalid++
		fmt.Fprintf(out, "%s %s\n", fail("FAIL"), file)
		fmt.Fprint(out, validation.FormatErrors(result.Errors))
	}

	return invalid
}
