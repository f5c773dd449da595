package subalign

import "fmt"

// Kind tags the caller-visible failure modes Align can return. It is a
// closed enumeration specific to this engine, not grailbio/base/errors'
// own filesystem-flavored Kind (NotExist, Permission, ...), which doesn't
// have a slot for these.
type Kind int

const (
	// KindEmptyTrack: the incorrect track has no lines (an empty reference
	// is valid input).
	KindEmptyTrack Kind = iota
	// KindNonMonotone: the incorrect track isn't sorted by start time.
	KindNonMonotone
	// KindTimeOverflow: the time horizon extends beyond timeline.TMax.
	KindTimeOverflow
	// KindInvalidSplitPenalty: split_penalty is negative or non-finite.
	KindInvalidSplitPenalty
	// KindInternalInvariant: a bug detector tripped (normalization,
	// monotonicity, domain coverage). User input can never provoke this.
	KindInternalInvariant
	// KindCancelled: Options.Cancel reported true at a phase boundary.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindEmptyTrack:
		return "EmptyTrack"
	case KindNonMonotone:
		return "NonMonotone"
	case KindTimeOverflow:
		return "TimeOverflow"
	case KindInvalidSplitPenalty:
		return "InvalidSplitPenalty"
	case KindInternalInvariant:
		return "InternalInvariant"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the tagged error type Align returns. None of its Kinds is
// retried internally; KindInternalInvariant is fatal and indicates a logic
// error in the engine, never bad input.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("subalign: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("subalign: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}
