package converter

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a run failed in.
type Stage string

const (
	StageLoad      Stage = "load"
	StageRead      Stage = "read"
	StageValidate  Stage = "validate"
	StageTransform Stage = "transform"
	StageWrite     Stage = "write"
)

// Sentinel errors, one per stage. A StageError matches its stage's sentinel
// with errors.Is.
var (
	ErrLoadFailure       = errors.New("template could not be loaded")
	ErrReadFailure       = errors.New("input could not be read")
	ErrValidationFailure = errors.New("input failed validation")
	ErrTransformFailure  = errors.New("field transformation failed")
	ErrWriteFailure      = errors.New("output could not be written")
)

var stageSentinels = map[Stage]error{
	StageLoad:      ErrLoadFailure,
	StageRead:      ErrReadFailure,
	StageValidate:  ErrValidationFailure,
	StageTransform: ErrTransformFailure,
	StageWrite:     ErrWriteFailure,
}

// StageError is a fatal run error tagged with the stage and file involved.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's stage.
func (e *StageError) Is(target error) bool {
	sentinel, ok := stageSentinels[e.Stage]
	return ok && target == sentinel
}

func stageError(stage Stage, path string, err error) *StageError {
	return &StageError{Stage: stage, Path: path, Err: err}
}
