package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("veloxts: missing configuration")
	// ErrSourceFailed indicates that a schema snapshot could not be read.
	ErrSourceFailed = errors.New("veloxts: snapshot source failed")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("veloxts: code generation failed")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = e.Cause.Error()
		if e.Message != "" {
			msg = e.Message + ": " + msg
		}
	}
	if e.Value != nil {
		return fmt.Sprintf("veloxts: config error for %q (value: %v): %s", e.Option, e.Value, msg)
	}
	return fmt.Sprintf("veloxts: config error for %q: %s", e.Option, msg)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError. The reason is either a
// message string or the error that caused the failure.
func NewConfigError(option string, value any, reason any) *ConfigError {
	e := &ConfigError{Option: option, Value: value}
	switch r := reason.(type) {
	case error:
		e.Cause = r
	case string:
		e.Message = r
	case nil:
	default:
		e.Message = fmt.Sprint(r)
	}
	return e
}

// SourceError represents a failure to obtain or decode a snapshot.
type SourceError struct {
	Source  string // "file", "sql", "rest", etc.
	Target  string // path, DSN-less driver name or URL
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString("veloxts: source error")
	if e.Source != "" {
		b.WriteString(" in ")
		b.WriteString(e.Source)
	}
	if e.Target != "" {
		b.WriteString(" (")
		b.WriteString(e.Target)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SourceError.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceFailed
}

// NewSourceError creates a new SourceError.
func NewSourceError(source, target, message string, cause error) *SourceError {
	return &SourceError{
		Source:  source,
		Target:  target,
		Message: message,
		Cause:   cause,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "synth", "write", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("veloxts: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsSourceError reports whether the error is a SourceError.
func IsSourceError(err error) bool {
	var srcErr *SourceError
	return errors.As(err, &srcErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
