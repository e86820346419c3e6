// =============================================================================
// CSV to EDI Mapper - Process Command
// =============================================================================
//
// This file defines the 'process' command, which maps order CSV files onto
// the XML template and writes one XML order per CSV.
//
// COMMAND USAGE:
//   edimapper process [flags]
//
// FLAGS:
//   --csv         : Process a single CSV file instead of the input directory
//   --template    : XML order template
//   --input-dir   : Directory scanned for *.csv files
//   --output-dir  : Directory for XML orders and run logs
//   --profile     : Mapping profile (.yaml, .yml or .xlsx), a root flag
//   --strict      : Abort an order whose CSV fails structural validation
//   --dry-run     : Map every order without writing output files
//   --archive     : Move each CSV to the archive directory after writing
//   --archive-by-date : File archived CSVs under YYYY/MM/DD subdirectories
//
// PROCESSING PIPELINE:
//   1. Load the configuration and mapping profile
//   2. Collect the CSV file(s) to process
//   3. Convert each file in turn (see internal/converter)
//   4. Print a line per order and the batch totals
//   5. Write the error log and processing summary to the output directory
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/config"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/converter"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// csvFile is a single CSV file to process. Empty processes the input directory.
var csvFile string

// dryRun maps orders without writing output files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Map CSV orders onto the XML template",
	Long: `The process command reads each order CSV, maps its header and line blocks
onto a fresh copy of the XML template and writes the result to the output
directory as <PREFIX>_<CUST-ORDER>.XML.

Files are processed one after another. A failure in one file does not stop
the others.

On success:
  - The XML order is written to the output directory
  - With --archive, the CSV is moved to the archive directory

On error:
  - The failure is recorded in an error log in the output directory
  - The CSV stays where it is
  - Processing continues with the next file`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		_, err = runBatch(batchOptions{Config: cfg, CSVFile: csvFile, DryRun: dryRun}, cmd.OutOrStdout(), logger)
		return err
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	flags := processCmd.Flags()
	flags.StringVar(&csvFile, "csv", "", "Process a single CSV file instead of the input directory")
	flags.BoolVar(&dryRun, "dry-run", false, "Map orders without writing output files")

	flags.String("template", "", "XML order template")
	flags.String("input-dir", "", "Directory scanned for *.csv files")
	flags.String("output-dir", "", "Directory for XML orders and run logs")
	flags.Bool("strict", false, "Abort an order whose CSV fails structural validation")
	flags.Bool("archive", false, "Move each CSV to the archive directory after writing")
	flags.Bool("archive-by-date", false, "File archived CSVs under YYYY/MM/DD subdirectories")

	bindFlag(processCmd, config.KeyTemplate, "template")
	bindFlag(processCmd, config.KeyInputDir, "input-dir")
	bindFlag(processCmd, config.KeyOutputDir, "output-dir")
	bindFlag(processCmd, config.KeyStrict, "strict")
	bindFlag(processCmd, config.KeyArchive, "archive")
	bindFlag(processCmd, config.KeyArchiveByDate, "archive-by-date")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// batchOptions is one invocation of the process command.
type batchOptions struct {
	Config  *config.MainConfig
	CSVFile string
	DryRun  bool
}

// runBatch converts every selected file and reports on out.
//
// RETURNS:
//   - The run summary.
//   - An error if the run could not start, or if any file failed.
func runBatch(opts batchOptions, out io.Writer, logger *zap.SugaredLogger) (*utils.ProcessingSummary, error) {
	cfg := opts.Config
	summary := &utils.ProcessingSummary{StartTime: time.Now()}

	// =========================================================================
	// STEP 1: LOAD PROFILE
	// =========================================================================

	fmt.Fprintln(out, "=== CSV to EDI Mapper ===")

	if !utils.FileExists(cfg.Template) {
		return nil, fmt.Errorf("template not found: %s", cfg.Template)
	}

	profile, err := converter.LoadProfile(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	fmt.Fprintf(out, "Profile:  %s\n", profile.Name)
	fmt.Fprintf(out, "Template: %s\n", cfg.Template)

	// =========================================================================
	// STEP 2: COLLECT INPUT FILES
	// =========================================================================

	var inputFiles []string
	if opts.CSVFile != "" {
		inputFiles = []string{opts.CSVFile}
	} else {
		fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, "")
		inputFiles, err = fm.DiscoverInputFiles("*.csv")
		if err != nil {
			return nil, fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No CSV files found in the input directory.")
		return summary, nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n\n", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES
	// =========================================================================

	archiveDir := ""
	if cfg.Archive && !opts.DryRun {
		archiveDir = cfg.ArchiveDir
	}

	var errorEntries []utils.ErrorLogEntry

	for _, file := range inputFiles {
		conv := converter.New(converter.Options{
			CSVPath:       file,
			TemplatePath:  cfg.Template,
			OutputDir:     cfg.OutputDir,
			Profile:       profile,
			OutputPrefix:  cfg.OutputPrefix,
			Placeholder:   cfg.Placeholder,
			Strict:        cfg.Strict,
			DryRun:        opts.DryRun,
			ArchiveDir:    archiveDir,
			ArchiveByDate: cfg.ArchiveByDate,
		}, logger)

		result := conv.Run()
		summary.TotalFiles++

		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalLines += result.Stats.LinesExpanded
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   file,
				OutputFile:  result.OutputFile,
				ArchivePath: result.ArchivePath,
				Lines:       result.Stats.LinesExpanded,
				ProcessTime: result.Stats.ProcessingTime,
			})
			printOrder(out, result)
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    file,
			Stage:        string(result.Stage),
			ErrorMessage: result.Err.Error(),
		})
		errorEntries = append(errorEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			RunID:        result.RunID,
			FileName:     file,
			Stage:        string(result.Stage),
			ErrorMessage: result.Err.Error(),
		})
		fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(file), result.Err)
	}

	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Lines written:   %d\n", summary.TotalLines)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	// =========================================================================
	// STEP 5: WRITE RUN LOGS
	// =========================================================================

	if !opts.DryRun {
		if err := writeRunLogs(out, cfg.OutputDir, errorEntries, summary); err != nil {
			logger.Warnw("failed to write run logs", "error", err)
		}
	}

	if summary.FailedFiles > 0 {
		return summary, fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}

	return summary, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// printOrder prints the success line and the order summary for one result.
func printOrder(out io.Writer, result converter.Result) {
	target := result.OutputFile
	if result.DryRun {
		target = fmt.Sprintf("%s (dry run, %d bytes)", target, result.Stats.BytesWritten)
	}
	fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(result.FilePath), target)

	order := result.Header["CUST-ORDER"]
	if order == "" {
		order = "(none)"
	}
	fmt.Fprintf(out, "      order %s: %d header field(s), %d line(s)\n",
		order, result.Stats.HeaderFields, result.Stats.LinesExpanded)

	if len(result.Defects) > 0 {
		fmt.Fprintf(out, "      %d structural warning(s)\n", len(result.Defects))
	}
	if result.ArchivePath != "" {
		fmt.Fprintf(out, "      archived to %s\n", result.ArchivePath)
	}
}

// writeRunLogs writes the error log (if anything failed) and the processing
// summary into the output directory.
func writeRunLogs(out io.Writer, outputDir string, entries []utils.ErrorLogEntry, summary *utils.ProcessingSummary) error {
	if err := utils.NewFileManager("", outputDir, "").EnsureDirectories(); err != nil {
		return err
	}

	errorLog, err := utils.WriteErrorLog(entries, outputDir)
	if err != nil {
		return err
	}
	if errorLog != "" {
		fmt.Fprintf(out, "\nErrors have been logged to %s\n", errorLog)
	}

	if _, err := utils.WriteSummaryLog(*summary, outputDir); err != nil {
		return err
	}

	return nil
}
