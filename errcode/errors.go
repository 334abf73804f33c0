package errcode

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
)

// FederationError is a user-facing error tagged with a stable Code
// (spec.md §7, layer 1).
type FederationError struct {
	Code     Code
	Message  string
	Position *ast.Position
}

func New(code Code, format string, args ...any) *FederationError {
	return &FederationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *FederationError) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("%s: %s (at %s:%d)", e.Code.Name, e.Message, e.Position.Src.Name, e.Position.Line)
	}
	return fmt.Sprintf("%s: %s", e.Code.Name, e.Message)
}

func (e *FederationError) WithPosition(pos *ast.Position) *FederationError {
	e.Position = pos
	return e
}

// MultiError aggregates every FederationError raised during a single pass
// (schema construction, extraction, composition) so callers see every defect
// at once instead of stopping at the first one.
type MultiError struct {
	Errors []*FederationError
}

func (m *MultiError) Add(err *FederationError) { m.Errors = append(m.Errors, err) }

func (m *MultiError) HasErrors() bool { return len(m.Errors) > 0 }

// AsError returns m as an error, or nil if m has no errors — so callers can
// write `if err := report.AsError(); err != nil`.
func (m *MultiError) AsError() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s):\n", len(m.Errors))
	for _, e := range m.Errors {
		b.WriteString("  - ")
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	return b.String()
}

// InternalError wraps an invariant-breach failure (spec.md §7, layer 2).
// It never carries a Code: there is no caller action for it, only a bug
// report. The wrapped error carries a stack trace via github.com/pkg/errors
// so the breach can be diagnosed from a single error value.
type InternalError struct {
	cause error
}

func Internal(format string, args ...any) *InternalError {
	return &InternalError{cause: errors.WithStack(fmt.Errorf(format, args...))}
}

func WrapInternal(err error) *InternalError {
	if err == nil {
		return nil
	}
	return &InternalError{cause: errors.WithStack(err)}
}

func (e *InternalError) Error() string { return "internal: " + e.cause.Error() }

func (e *InternalError) Unwrap() error { return e.cause }
