package incremental

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrToken indicates a path token is not valid for its grammar or node.
	ErrToken = errors.New("invalid token")

	// ErrNotFound indicates a key or index on the parent path does not exist.
	ErrNotFound = errors.New("path not found")

	// ErrType indicates a node had the wrong shape for the step taken into it.
	ErrType = errors.New("type mismatch")

	// ErrAction indicates an action precondition failed.
	ErrAction = errors.New("action failed")

	// ErrUnsupportedKind indicates an action kind the surface does not accept.
	ErrUnsupportedKind = errors.New("unsupported action kind")
)

// TokenError is returned when a segment cannot be read as a token, or a
// token cannot be used on the node it meets.
type TokenError struct {
	// Segment is the offending raw segment.
	Segment string
	// Reason describes the problem.
	Reason string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("incremental: token %q is not valid: %s", e.Segment, e.Reason)
}

// Is reports whether target matches this error type.
func (e *TokenError) Is(target error) bool { return target == ErrToken }

// KeyError is returned when a map key on a required path is missing.
type KeyError struct {
	// Path is the dot-joined path up to and including the missing key.
	Path string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("incremental: key not found at %s", e.Path)
}

// Is reports whether target matches this error type.
func (e *KeyError) Is(target error) bool { return target == ErrNotFound }

// IndexError is returned when a sequence index on a required path is out of
// range.
type IndexError struct {
	// Path is the dot-joined path up to and including the failing token.
	Path string
	// Index is the requested index.
	Index int
	// Len is the length of the sequence at the time of the lookup.
	Len int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("incremental: index %d out of range [0,%d) at %s", e.Index, e.Len, e.Path)
}

// Is reports whether target matches this error type.
func (e *IndexError) Is(target error) bool { return target == ErrNotFound }

// TypeError is returned when a step requires one shape and finds another.
type TypeError struct {
	Path string
	Want Shape
	Got  Shape
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("incremental: node %s is a %s, expected a %s", e.Path, e.Got, e.Want)
}

// Is reports whether target matches this error type.
func (e *TypeError) Is(target error) bool { return target == ErrType }

// ActionError is returned when an action's precondition does not hold, such
// as adding over a present key or replacing a missing one.
type ActionError struct {
	Kind   Kind
	Path   string
	Reason string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("incremental: cannot %s %s: %s", e.Kind, e.Path, e.Reason)
}

// Is reports whether target matches this error type.
func (e *ActionError) Is(target error) bool { return target == ErrAction }

// ReplayError wraps the failure of one queued action during a log replay.
type ReplayError struct {
	// ActionIndex is the zero-based position of the action in the queue.
	ActionIndex int
	// Action is the action that failed.
	Action Action
	// Cause is the underlying error.
	Cause error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("incremental: action[%d] %s %q: %v", e.ActionIndex, e.Action.Kind, e.Action.Path.String(), e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ReplayError) Unwrap() error { return e.Cause }
