package contract

import "fmt"

// ParseError marks a transcript or rule file that could not be parsed. Readers
// record these as warnings and skip the file; a single bad file never fails
// the run.
type ParseError struct {
	Path string
	Line int // 0 when the failure is file-level
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError wraps a file-level parse failure.
func NewParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Err: err}
}

// ConfigError marks invalid configuration. Config errors are fatal and are
// raised before any trend store write happens.
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

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

// StoreError marks a trend store failure. Scores are still returned when the
// store fails; deltas are omitted and the failure surfaces as a warning.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("trend store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps a store operation failure.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
