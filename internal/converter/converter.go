// =============================================================================
// CSV to EDI Mapper - Converter Module
// =============================================================================
//
// This module orchestrates one order: one CSV file mapped onto one fresh copy
// of the XML template.
//
// CONVERSION PIPELINE:
//   1. Load the XML template                      (fatal: load)
//   2. Read the order CSV                         (fatal: read)
//   3. Check the CSV structure                    (fatal only in strict mode)
//   4. Extract the header and lines sections
//   5. Build the header record and line records
//   6. Apply the profile's transformations        (fatal: transform)
//   7. Project the header record onto the template
//   8. Expand the line prototype, patch the line count
//   9. Serialize and write the output             (fatal: write)
//  10. Archive the input file                     (failure is only logged)
//
// Missing markers, sections or template elements are never fatal: the order
// is written with whatever could be mapped.
//
// CONCURRENCY:
//   A Converter handles a single file and owns its document. Batch runs
//   create one Converter per file and run them one after another.
//
// =============================================================================

package converter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/config"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/csvparser"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/document"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/mapping"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/types"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/validation"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/xlsxparser"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/xmlwriter"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options describes one conversion.
type Options struct {
	// CSVPath is the order CSV.
	CSVPath string

	// TemplatePath is the XML order template.
	TemplatePath string

	// OutputDir receives the XML order. It is created if missing.
	OutputDir string

	// Profile is the mapping profile. Nil uses the built-in profile.
	Profile *config.Profile

	// OutputPrefix and Placeholder override the profile's output naming.
	OutputPrefix string
	Placeholder  string

	// Strict fails the run when the CSV has structural defects.
	Strict bool

	// DryRun maps and serializes the order without writing it.
	DryRun bool

	// ArchiveDir, when set, receives the CSV after a successful write.
	ArchiveDir string

	// ArchiveByDate files the CSV under ArchiveDir/YYYY/MM/DD.
	ArchiveByDate bool
}

// Result represents the outcome of processing a single file.
type Result struct {
	// RunID identifies this run in logs.
	RunID string

	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path written, or the file name in a dry run.
	// This is empty if processing failed before naming.
	OutputFile string

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// DryRun is true when nothing was written.
	DryRun bool

	// Stage is the failed stage. Empty on success.
	Stage Stage

	// Err is the failure, a *StageError. Nil on success.
	Err error

	// Header is the header record after transformation.
	Header types.HeaderRecord

	// Defects are the structural validator's findings.
	Defects []string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of CSV rows read.
	RowsRead int

	// HeaderFields is the number of fields in the header record.
	HeaderFields int

	// LineRecords is the number of line records built.
	LineRecords int

	// HeaderChanges is the number of header writes; ElementsCreated counts
	// the ones that created a missing element.
	HeaderChanges   int
	ElementsCreated int

	// LinesExpanded is the number of line subtrees in the output.
	LinesExpanded int

	// CountUpdated is true when the trailer line count was written.
	CountUpdated bool

	// BytesWritten is the serialized document size.
	BytesWritten int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER
// =============================================================================

// Converter handles the conversion of a single CSV order to XML.
type Converter struct {
	opts    Options
	profile *config.Profile
	logger  *zap.SugaredLogger
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - opts: The files and behavior of this run.
//   - logger: The logger. Nil discards log output.
//
// RETURNS:
//   - A new Converter instance.
func New(opts Options, logger *zap.SugaredLogger) *Converter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	profile := opts.Profile
	if profile == nil {
		profile = config.DefaultProfile()
	}

	return &Converter{
		opts:    opts,
		profile: profile,
		logger:  logger,
	}
}

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result describing the outcome. On failure Stage and Err say where
//     and why, and no output file exists under the final name.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{
		RunID:    uuid.New().String(),
		FilePath: c.opts.CSVPath,
		DryRun:   c.opts.DryRun,
	}
	log := c.logger.With("run_id", result.RunID, "file", c.opts.CSVPath)

	fail := func(err *StageError) Result {
		result.Stage = err.Stage
		result.Err = err
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Errorw("order failed", "stage", err.Stage, "error", err.Err)
		return result
	}

	log.Infow("processing order", "template", c.opts.TemplatePath, "profile", c.profile.Name)

	// =========================================================================
	// STEP 1: LOAD TEMPLATE
	// =========================================================================

	doc, err := document.Load(c.opts.TemplatePath)
	if err != nil {
		return fail(stageError(StageLoad, c.opts.TemplatePath, err))
	}
	log.Debugw("template loaded", "source", doc.Source(), "root", doc.Root().Tag)

	// =========================================================================
	// STEP 2: READ CSV
	// =========================================================================

	rows, err := csvparser.ReadFile(c.opts.CSVPath)
	if err != nil {
		return fail(stageError(StageRead, c.opts.CSVPath, err))
	}
	result.Stats.RowsRead = len(rows)

	// =========================================================================
	// STEP 3: STRUCTURAL CHECK
	// =========================================================================

	validator := validation.NewValidatorWithOptions(validation.ValidationOptions{
		RequiredHeaderFields: c.profile.RequiredHeaderFields,
	})
	check := validator.Validate(rows)
	result.Defects = check.Messages()

	if !check.IsValid {
		if c.opts.Strict {
			return fail(stageError(StageValidate, c.opts.CSVPath,
				fmt.Errorf("%d defect(s): %s", len(check.Errors), strings.Join(result.Defects, "; "))))
		}
		for _, defect := range result.Defects {
			log.Warnw("csv structure defect", "defect", defect)
		}
	}

	// =========================================================================
	// STEPS 4-8: MAP
	// =========================================================================

	mapped, err := c.Map(doc, rows)
	if err != nil {
		return fail(stageError(StageTransform, c.opts.CSVPath, err))
	}

	result.Header = mapped.Header
	result.Stats.HeaderFields = len(mapped.Header)
	result.Stats.LineRecords = mapped.LineRecords
	result.Stats.HeaderChanges = len(mapped.HeaderChanges)
	for _, change := range mapped.HeaderChanges {
		if change.Created {
			result.Stats.ElementsCreated++
		}
	}
	result.Stats.LinesExpanded = mapped.Expansion.Lines
	result.Stats.CountUpdated = mapped.Expansion.CountUpdated

	// =========================================================================
	// STEP 9: SERIALIZE AND WRITE
	// =========================================================================

	data, err := xmlwriter.Serialize(doc)
	if err != nil {
		return fail(stageError(StageWrite, c.opts.OutputDir, err))
	}
	result.Stats.BytesWritten = len(data)

	name := xmlwriter.OutputFileName(c.outputPrefix(), c.placeholder(), mapped.Header)

	if c.opts.DryRun {
		result.OutputFile = name
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Infow("dry run complete", "output", name, "bytes", len(data), "lines", result.Stats.LinesExpanded)
		return result
	}

	outputPath, err := xmlwriter.WriteBytes(data, c.opts.OutputDir, name)
	if err != nil {
		return fail(stageError(StageWrite, filepath.Join(c.opts.OutputDir, name), err))
	}
	result.OutputFile = outputPath

	// =========================================================================
	// STEP 10: ARCHIVE
	// =========================================================================

	if c.opts.ArchiveDir != "" {
		fm := utils.NewFileManager("", "", c.opts.ArchiveDir)
		fm.UseTimestampSubdirs = c.opts.ArchiveByDate
		archived, err := fm.ArchiveInputFile(c.opts.CSVPath)
		if err != nil {
			log.Warnw("failed to archive input", "error", err)
		} else {
			result.ArchivePath = archived
		}
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	log.Infow("order written",
		"output", outputPath,
		"lines", result.Stats.LinesExpanded,
		"duration", result.Stats.ProcessingTime)

	return result
}

// =============================================================================
// MAPPING
// =============================================================================

// Mapped is what Map did to a document.
type Mapped struct {
	// Header is the header record that was projected.
	Header types.HeaderRecord

	// LineRecords is the number of line records built.
	LineRecords int

	// HeaderChanges lists every header write.
	HeaderChanges []mapping.Change

	// Expansion describes the line group expansion.
	Expansion mapping.Expansion
}

// Map populates doc from the CSV rows using the converter's profile. It is
// the whole mapping engine without any file handling.
//
// PARAMETERS:
//   - doc: A freshly loaded template, mutated in place.
//   - rows: The CSV rows.
//
// RETURNS:
//   - What was mapped.
//   - An error only if a profile transformation fails.
func (c *Converter) Map(doc *document.Document, rows []types.Row) (Mapped, error) {
	sections := csvparser.Extract(rows)
	if !sections.HeaderFound {
		c.logger.Warn("no header section found")
	}
	if !sections.LinesFound {
		c.logger.Warn("no lines section found")
	}

	header := csvparser.BuildHeaderRecord(sections.Header)
	lines := csvparser.BuildLineItemRecords(sections.Lines)

	transformer := NewTransformer(c.profile.TransformationRules)
	if !transformer.Empty() {
		var err error
		if header, err = transformer.TransformHeader(header); err != nil {
			return Mapped{}, fmt.Errorf("failed to transform header: %w", err)
		}
		if lines, err = transformer.TransformLines(lines); err != nil {
			return Mapped{}, fmt.Errorf("failed to transform lines: %w", err)
		}
	}

	c.logger.Debugw("built records", "header_fields", len(header), "lines", len(lines))

	projector := mapping.NewProjector(c.profile.HeaderRules, c.logger)
	expander := mapping.NewExpander(c.profile.LineLayout, c.profile.LineRules, c.logger)

	mapped := Mapped{
		Header:      header,
		LineRecords: len(lines),
	}
	mapped.HeaderChanges = projector.Apply(doc, header)
	mapped.Expansion = expander.Expand(doc, lines)

	if len(lines) > 0 && mapped.Expansion.Lines == 0 {
		c.logger.Warnw("template has no line prototype, lines dropped",
			"parent", c.profile.LineLayout.Parent,
			"prototype", c.profile.LineLayout.Prototype)
	}

	return mapped, nil
}

func (c *Converter) outputPrefix() string {
	if c.opts.OutputPrefix != "" {
		return c.opts.OutputPrefix
	}
	return c.profile.Output.Prefix
}

func (c *Converter) placeholder() string {
	if c.opts.Placeholder != "" {
		return c.opts.Placeholder
	}
	return c.profile.Output.Placeholder
}

// =============================================================================
// PROFILE LOADING
// =============================================================================

// LoadProfile loads a mapping profile by file type: .xlsx workbooks through
// the workbook parser, anything else as YAML. An empty path returns the
// built-in profile.
func LoadProfile(path string) (*config.Profile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return config.DefaultProfile(), nil
		}
		return config.LoadProfile(path)
	case ".xlsx":
		return xlsxparser.ParseProfile(path)
	default:
		return config.LoadProfile(path)
	}
}
