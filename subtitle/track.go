// Package subtitle defines the Line and Track types the aligner operates
// on: immutable, half-open-interval subtitle cues, ordered by start time.
// Parsing a track from an on-disk format and emitting a corrected one back
// out are both out of scope here — that belongs to a caller package, not
// this one (see SPEC_FULL.md §10).
package subtitle

import (
	"sort"

	"github.com/pkg/errors"
)

// Line is one subtitle cue, in milliseconds, half-open [Start, End). Lines
// are immutable after construction: correcting a track produces a new Line
// for each input, it never mutates one in place.
type Line struct {
	Start int64
	End   int64
}

// NewLine validates and builds a Line.
func NewLine(start, end int64) (Line, error) {
	if start < 0 {
		return Line{}, errors.Errorf("subtitle: negative start %d", start)
	}
	if end <= start {
		return Line{}, errors.Errorf("subtitle: end %d not after start %d", end, start)
	}
	return Line{Start: start, End: end}, nil
}

// Length returns End-Start.
func (l Line) Length() int64 {
	return l.End - l.Start
}

// Shift returns l translated by delta milliseconds, preserving length.
func (l Line) Shift(delta int64) Line {
	return Line{Start: l.Start + delta, End: l.End + delta}
}

// Track is an ordered sequence of Lines, sorted by Start (not necessarily
// disjoint: overlapping cues are legal input, just unusual).
type Track []Line

// Validate checks the invariants correction relies on: every line well
// formed, and the track sorted by Start.
func (t Track) Validate() error {
	for i, l := range t {
		if l.End <= l.Start {
			return errors.Errorf("subtitle: line %d has non-positive length (%d,%d)", i, l.Start, l.End)
		}
		if i > 0 && t[i-1].Start > l.Start {
			return errors.Errorf("subtitle: line %d (start %d) out of order after line %d (start %d)", i, l.Start, i-1, t[i-1].Start)
		}
	}
	return nil
}

// IsSorted reports whether t is already sorted by Start.
func (t Track) IsSorted() bool {
	return sort.SliceIsSorted(t, func(i, j int) bool { return t[i].Start < t[j].Start })
}

// MaxEnd returns the largest End among t's lines, or 0 for an empty track.
func (t Track) MaxEnd() int64 {
	var max int64
	for _, l := range t {
		if l.End > max {
			max = l.End
		}
	}
	return max
}

// MaxLength returns the largest single-line Length in t, or 0 for an empty
// track.
func (t Track) MaxLength() int64 {
	var max int64
	for _, l := range t {
		if d := l.Length(); d > max {
			max = d
		}
	}
	return max
}

// Gaps returns, for i in [0,len(t)-2], t[i+1].Start - t[i].Start: the
// original inter-line spacing the DP's NOSPLIT bonus tries to preserve.
func (t Track) Gaps() []int64 {
	if len(t) < 2 {
		return nil
	}
	gaps := make([]int64, len(t)-1)
	for i := 1; i < len(t); i++ {
		gaps[i-1] = t[i].Start - t[i-1].Start
	}
	return gaps
}
