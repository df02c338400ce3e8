package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/image-ocr/internal/ocr"
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitImageNotFound     = 1
	ExitEngineUnavailable = 2
	ExitFailure           = 3
)

// ErrImageNotFound is wrapped by the Validate stage error for a missing input.
var ErrImageNotFound = errors.New("image not found")

// Stage names a step of the pipeline.
type Stage string

const (
	StageValidate   Stage = "validate"
	StagePreprocess Stage = "preprocess"
	StageInvoke     Stage = "invoke"
	StageEmit       Stage = "emit"
)

// Error is a fatal pipeline failure. Its message is the single line written
// to standard error; Code is the process exit code.
type Error struct {
	Stage Stage
	Code  int
	// Path is the input image, used in the not-found message.
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ExitImageNotFound:
		return fmt.Sprintf("Image not found: %s", e.Path)
	case ExitEngineUnavailable:
		return fmt.Sprintf("OCR engine unavailable: %s", engineCause(e.Err))
	default:
		return fmt.Sprintf("OCR error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for err: ExitOK for nil, the code of
// a pipeline Error, and ExitFailure for anything else.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ExitFailure
}

// engineCause drops the leading sentinel text so the message does not repeat
// "OCR engine unavailable".
func engineCause(err error) string {
	if err == nil {
		return "unknown cause"
	}
	return strings.TrimPrefix(err.Error(), ocr.ErrEngineUnavailable.Error()+": ")
}
