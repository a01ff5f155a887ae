// Package errors provides standardized error handling for protogen.
// It implements structured error types with proper wrapping and
// classification following Go 1.20+ error handling best practices.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// Generation errors
	ErrToolFailed    = errors.New("code generation tool failed")
	ErrToolTimeout   = errors.New("code generation tool timed out")
	ErrToolNotFound  = errors.New("code generation tool not found")
	ErrNoOutput      = errors.New("tool produced no matching output file")
	ErrExtraOutput   = errors.New("tool produced more than one matching output file")
	ErrTargetCollide = errors.New("source files resolve to the same target path")

	// Path and filesystem errors
	ErrBadSourcePath    = errors.New("source path does not carry the expected extension")
	ErrFilesystemFailed = errors.New("filesystem operation failed")

	// Configuration errors
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownCategory = errors.New("unknown category")
)

// GenerationError reports a failed external tool invocation for one source
// file. It aborts the whole batch.
type GenerationError struct {
	Category string
	Source   string
	Output   string // tail of the tool's combined output, for diagnostics
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("category %s: generating %s: %v\n%s", e.Category, e.Source, e.Err, e.Output)
	}
	return fmt.Sprintf("category %s: generating %s: %v", e.Category, e.Source, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// AmbiguousOutputError reports that the tool's scratch directory held zero
// or more than one file matching the output extension. This is a contract
// mismatch with the tool, not a transient failure, and is surfaced
// distinctly from GenerationError.
type AmbiguousOutputError struct {
	Category string
	Source   string
	Matches  int
	Err      error
}

func (e *AmbiguousOutputError) Error() string {
	return fmt.Sprintf("category %s: relocating output of %s: %d matching files in scratch directory: %v",
		e.Category, e.Source, e.Matches, e.Err)
}

func (e *AmbiguousOutputError) Unwrap() error {
	return e.Err
}

// FilesystemError represents an error related to filesystem operations
type FilesystemError struct {
	Path      string
	Operation string
	Err       error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem %s: operation %s: %v", e.Path, e.Operation, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// PathError reports a source path that cannot be mapped to a target.
// Discovery filters by extension, so this is a defensive invariant.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Error wrapping constructors
func WrapGenerationError(category, source, output string, err error) error {
	if err == nil {
		return nil
	}
	return &GenerationError{Category: category, Source: source, Output: output, Err: err}
}

func NewAmbiguousOutputError(category, source string, matches int) error {
	sentinel := ErrNoOutput
	if matches > 1 {
		sentinel = ErrExtraOutput
	}
	return &AmbiguousOutputError{Category: category, Source: source, Matches: matches, Err: sentinel}
}

func WrapFilesystemError(path, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &FilesystemError{Path: path, Operation: operation, Err: fmt.Errorf("%w: %v", ErrFilesystemFailed, err)}
}

func NewPathError(path string) error {
	return &PathError{Path: path, Err: ErrBadSourcePath}
}

func WrapConfigError(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Field: field, Err: err}
}

func NewConfigError(field, reason string) error {
	return &ConfigError{Field: field, Err: fmt.Errorf("%w: %s", ErrInvalidConfig, reason)}
}

// Error classification functions
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

func IsAmbiguousOutputError(err error) bool {
	var ae *AmbiguousOutputError
	return errors.As(err, &ae)
}

func IsFilesystemError(err error) bool {
	var fe *FilesystemError
	return errors.As(err, &fe)
}

func IsPathError(err error) bool {
	var pe *PathError
	return errors.As(err, &pe)
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsFatal reports whether an error must abort the whole batch rather than
// a single target.
func IsFatal(err error) bool {
	return IsGenerationError(err) || IsAmbiguousOutputError(err)
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrToolTimeout)
}

// JoinErrors combines multiple errors into a single error, dropping nils.
func JoinErrors(errs ...error) error {
	var validErrs []error
	for _, err := range errs {
		if err != nil {
			validErrs = append(validErrs, err)
		}
	}

	if len(validErrs) == 0 {
		return nil
	}
	if len(validErrs) == 1 {
		return validErrs[0]
	}
	return errors.Join(validErrs...)
}

// Error extraction helpers
func GetSource(err error) (string, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Source, true
	}
	var ae *AmbiguousOutputError
	if errors.As(err, &ae) {
		return ae.Source, true
	}
	return "", false
}

func GetCategory(err error) (string, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Category, true
	}
	var ae *AmbiguousOutputError
	if errors.As(err, &ae) {
		return ae.Category, true
	}
	return "", false
}
