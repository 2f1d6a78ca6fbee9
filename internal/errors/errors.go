package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptedFile     = errors.New("file corrupted or unreadable")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrToolNotInstalled  = errors.New("required tool not installed")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMalformedInput    = errors.New("malformed input")
)

// ProcessError represents a failure in an external process
type ProcessError struct {
	Tool     string // "librosa", "demucs", "music21"
	Stage    string // "separation", "extraction", "rendering"
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed at %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed at %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// IsRecoverable returns true if a fallback strategy exists.
// Separation failures fall back to the HPSS band-pass path inside the script,
// so only a hard crash of the whole script lands here.
func (e *ProcessError) IsRecoverable() bool {
	return e.Stage == "separation"
}

// NewProcessError creates a ProcessError
func NewProcessError(tool, stage string, exitCode int, stderr string, cause error) *ProcessError {
	return &ProcessError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   stderr,
		Cause:    cause,
	}
}
