package serrors

import (
	"errors"
	"fmt"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind. It allows distinguishing semantic kinds from ordinary errors.
type Kind interface {
	error
	isKind()
}

// kind is an unexported implementation of Kind used as a sentinel value for a
// semantic error category.
type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind (a sentinel) with the provided
// name. Kinds are comparable and can be used with errors.Is/As through the
// serrors.Error wrapper.
func NewKind(name string) Kind { return kind{s: name} }

// Kinds raised along the link expansion pipeline. Each pipeline stage reports
// its own kind and the orchestrator wraps it into ErrPipelineFailed, so the
// stage that failed stays observable through errors.Is.
var (
	// ErrInvalidInput indicates the caller did not provide a URL.
	ErrInvalidInput = NewKind("INVALID_INPUT")
	// ErrResolutionFailed indicates the redirect chain could not be followed.
	ErrResolutionFailed = NewKind("RESOLUTION_FAILED")
	// ErrExtractionFailed indicates the destination document could not be fetched or parsed.
	ErrExtractionFailed = NewKind("EXTRACTION_FAILED")
	// ErrAssessmentFailed indicates the trust verdict could not be computed.
	ErrAssessmentFailed = NewKind("ASSESSMENT_FAILED")
	// ErrPipelineFailed is the single opaque failure surfaced to callers.
	ErrPipelineFailed = NewKind("PIPELINE_FAILED")
)

// Infrastructure kinds used by clients and storage backends.
var (
	// ErrInternal indicates an internal error.
	ErrInternal = NewKind("INTERNAL")
	// ErrUnavailable indicates an upstream service answered with an unexpected status.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrRateLimited indicates an upstream service rejected the call for quota reasons.
	ErrRateLimited = NewKind("RATE_LIMITED")
)

// Error represents a semantic error carrying a kind (sentinel), an optional
// wrapped error and an optional arbitrary message. It fully supports
// errors.Is/errors.As and unwrapping.
//
// Matching semantics:
//   - errors.Is(err, target) will match if target matches either the kind
//     sentinel or the wrapped error.
//   - errors.As(err, target) will succeed for either the kind sentinel or the
//     wrapped error.
//
// Error string formatting:
//   - If both msg and err are set: "<msg>: <err>"
//   - If only msg is set: "<msg>"
//   - If only err is set: "<err>"
//   - If neither set: the kind's Error() string.
type Error struct {
	kind Kind  // semantic kind sentinel
	err  error // wrapped error (optional)
	msg  string
}

// With constructs a new semantic error with the given kind and an arbitrary
// human-readable message. Use Wrap if you also want to wrap a concrete cause.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a new semantic error with the given kind, wraps the provided
// cause (err) and allows adding an arbitrary message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind without extra
// message or concrete cause.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		if e.kind != nil {
			return e.kind.Error()
		}

		return "unknown error"
	}
}

// Unwrap returns the wrapped error, enabling errors.Unwrap/Is/As to traverse
// the underlying cause chain.
func (e *Error) Unwrap() error { return e.err }

// Is matches against either the semantic kind sentinel or the wrapped error.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	if e.err != nil && errors.Is(e.err, target) {
		return true
	}

	return false
}

// As enables type assertions against either the semantic kind sentinel or the
// wrapped error in the chain.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}
	if e.err != nil && errors.As(e.err, target) {
		return true
	}

	return false
}

// Kind returns the semantic kind sentinel associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the arbitrary message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }

// Innermost walks the chain of err and returns the deepest Kind attached to a
// serrors.Error. It returns nil when err carries no kind. The pipeline uses it
// to recover which stage failed after collapsing the error.
func Innermost(err error) Kind {
	var found Kind
	for err != nil {
		var se *Error
		if !errors.As(err, &se) {
			break
		}
		if se.kind != nil {
			found = se.kind
		}
		err = se.err
	}

	return found
}
