// Package timeline provides the fixed-point millisecond time model used
// throughout the aligner: timestamps, durations, and half-open intervals
// with saturating arithmetic and overflow detection.
package timeline

import "github.com/pkg/errors"

// Timestamp is a non-negative integer millisecond offset. It is the unit of
// time for every buffer and line in this module.
type Timestamp int64

// Duration is a non-negative integer millisecond span.
type Duration int64

// TMax is the default horizon beyond which a Timestamp is considered an
// overflow: the full 32-bit millisecond range (roughly 49.7 days), which
// comfortably covers a feature-length reference track plus the longest
// incorrect-line length the overlap builder can shift by.
const TMax Timestamp = 1<<32 - 1

// ErrTimeOverflow is returned by any arithmetic operation whose result
// would exceed a configured horizon.
var ErrTimeOverflow = errors.New("timeline: time overflow")

// Add returns t+d, saturating at the given horizon rather than wrapping.
// It reports ErrTimeOverflow if the unsaturated sum would exceed horizon.
func Add(t Timestamp, d Duration, horizon Timestamp) (Timestamp, error) {
	sum := int64(t) + int64(d)
	if sum > int64(horizon) {
		return horizon, errors.Wrapf(ErrTimeOverflow, "%d + %d exceeds horizon %d", t, d, horizon)
	}
	return Timestamp(sum), nil
}

// Sub returns t-d, saturating at zero on underflow. Time never goes
// negative in this model.
func Sub(t Timestamp, d Duration) Timestamp {
	diff := int64(t) - int64(d)
	if diff < 0 {
		return 0
	}
	return Timestamp(diff)
}

// Interval is a half-open span [Start, End) of milliseconds. The zero value
// is not a valid Interval; callers construct one via NewInterval.
type Interval struct {
	Start Timestamp
	End   Timestamp
}

// NewInterval builds an Interval, returning an error if start >= end or
// start is negative.
func NewInterval(start, end Timestamp) (Interval, error) {
	if start < 0 {
		return Interval{}, errors.Errorf("timeline: negative start %d", start)
	}
	if start >= end {
		return Interval{}, errors.Errorf("timeline: empty or inverted interval [%d,%d)", start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Length returns End-Start.
func (iv Interval) Length() Duration {
	return Duration(iv.End - iv.Start)
}

// Shift translates the interval by delta milliseconds (which may be
// negative), saturating the start at zero.
func (iv Interval) Shift(delta int64) Interval {
	start := int64(iv.Start) + delta
	end := int64(iv.End) + delta
	if start < 0 {
		end -= start
		start = 0
	}
	return Interval{Start: Timestamp(start), End: Timestamp(end)}
}

// Overlap returns the length of the intersection of a and b, or 0 if they
// are disjoint. Both intervals are half-open.
func Overlap(a, b Interval) Duration {
	lo := a.Start
	if b.Start > lo {
		lo = b.Start
	}
	hi := a.End
	if b.End < hi {
		hi = b.End
	}
	if hi <= lo {
		return 0
	}
	return Duration(hi - lo)
}

// Max returns the larger of two durations.
func Max(a, b Duration) Duration {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of two durations.
func Min(a, b Duration) Duration {
	if a < b {
		return a
	}
	return b
}
