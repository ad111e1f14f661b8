package sim

import "fmt"

// ParseError reports malformed model input: a wiring listener that is
// neither a string nor an object, a delay_ms that is neither a number
// nor a dist object, a missing schema-version key, and similar
// structural decode failures.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return "model parse error: " + e.Msg }

func newParseError(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports a structural or semantic violation of one of
// the Model invariants: unknown version, unknown context/event/task
// reference, invalid distribution parameters.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "model validation error: " + e.Msg }

func newValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedVersionError is raised when a schema version outside {1, 2}
// reaches the executor dispatcher.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported model version: %d (expected 1 or 2)", e.Version)
}

// InternalError reports an invariant violation that validation should
// have already excluded, a programmer error rather than a caller error.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "internal error: " + e.Msg }

func newInternalError(format string, args ...any) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
