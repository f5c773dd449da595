// Package dpsolve runs the N-phase dynamic program described by the
// KEEP/REPOSITION/NOSPLIT recurrence over segment.RatingBuffer and
// segment.PositionBuffer, and reconstructs corrected start times from the
// resulting per-phase PositionBuffers.
package dpsolve

import (
	"github.com/pkg/errors"

	"github.com/srtalign/subalign/overlap"
	"github.com/srtalign/subalign/segment"
	"github.com/srtalign/subalign/subtitle"
	"github.com/srtalign/subalign/timeline"
)

// ErrInternalInvariant marks a bug detector: a post-condition this package
// itself guarantees (monotone reconstruction, domain coverage) was violated.
// It should never be reachable from user input alone.
var ErrInternalInvariant = errors.New("dpsolve: internal invariant violated")

// Options configures one Solve call.
type Options struct {
	// Horizon bounds every RatingBuffer/PositionBuffer's domain to [0, Horizon).
	Horizon int64
	// SplitPenaltyScaled is the NOSPLIT bonus in the same scaled units as
	// segment.RatingScale (see subalign for the user-facing split_penalty
	// conversion).
	SplitPenaltyScaled int64
	// Cache supplies (and memoizes) per-line overlap RatingBuffers.
	Cache *overlap.Cache
	// Progress, if non-nil, is invoked once per phase, after that phase's
	// RatingBuffer and PositionBuffer are committed (phase is 1-indexed).
	Progress func(phase, total int)
	// Cancel, if non-nil, is polled once per phase boundary; a true result
	// aborts the solve with ErrCancelled.
	Cancel func() bool
}

// ErrCancelled is returned when Options.Cancel reports true at a phase
// boundary.
var ErrCancelled = errors.New("dpsolve: cancelled")

// Result is everything a caller needs to reconstruct corrected start times.
type Result struct {
	Positions []segment.PositionBuffer // P_1..P_N, in phase order
	Final     segment.RatingBuffer     // G_N
}

// Solve runs the N-phase DP over ref and inc, returning the per-phase
// PositionBuffers and the final phase's RatingBuffer. inc must already be
// validated (non-empty, sorted by start); ref may be empty (a zero
// RatingBuffer contributes no overlap anywhere, per the zero-length
// reference boundary case).
func Solve(ref subtitle.Track, inc subtitle.Track, opts Options) (Result, error) {
	gaps := inc.Gaps()
	g := segment.NewZeroRating(0, opts.Horizon)

	positions := make([]segment.PositionBuffer, len(inc))
	total := len(inc)
	for idx, line := range inc {
		if opts.Cancel != nil && opts.Cancel() {
			return Result{}, ErrCancelled
		}
		overlapR, err := opts.Cache.Rating(ref, line.Length(), opts.Horizon)
		if err != nil {
			return Result{}, errors.Wrapf(err, "phase %d: building overlap rating", idx+1)
		}
		hasGap := idx >= 1
		var gap int64
		if hasGap {
			gap = gaps[idx-1]
		}
		gN, pN, err := solvePhase(g, overlapR, gap, hasGap, opts.SplitPenaltyScaled, opts.Horizon)
		if err != nil {
			return Result{}, errors.Wrapf(err, "phase %d", idx+1)
		}
		g = gN
		positions[idx] = pN
		if opts.Progress != nil {
			opts.Progress(idx+1, total)
		}
	}
	return Result{Positions: positions, Final: g}, nil
}

// solvePhase computes G_n and P_n from G_{n-1} (prev) and O_{I_n} (overlapR).
func solvePhase(prev, overlapR segment.RatingBuffer, gap int64, hasGap bool, splitPenaltyScaled, horizon int64) (segment.RatingBuffer, segment.PositionBuffer, error) {
	reposition, err := prev.Add(overlapR)
	if err != nil {
		return segment.RatingBuffer{}, segment.PositionBuffer{}, errors.Wrap(err, "reposition candidate")
	}

	if !hasGap {
		return cumulativeChoice(reposition, allOwnerA(len(reposition.IterateSegments())), gap, false)
	}

	// A NOSPLIT predecessor position must land at t-gap; that's only inside
	// the horizon for t in [gap, horizon). NewInterval rejects gap>=horizon
	// the same way it rejects any empty or inverted interval, which is
	// exactly the "nothing admissible" case REPOSITION alone must cover.
	nosplitWindow, err := timeline.NewInterval(timeline.Timestamp(gap), timeline.Timestamp(horizon))
	if err != nil {
		return cumulativeChoice(reposition, allOwnerA(len(reposition.IterateSegments())), gap, false)
	}
	tailLen := int64(nosplitWindow.Length())

	predTail := prev.Slice(0, tailLen).Shift(gap, gap, horizon)
	overlapTail := overlapR.Slice(gap, horizon)
	nosplitTail, err := predTail.Add(overlapTail)
	if err != nil {
		return segment.RatingBuffer{}, segment.PositionBuffer{}, errors.Wrap(err, "nosplit candidate")
	}
	nosplitTail = nosplitTail.AddConstant(splitPenaltyScaled)

	// [0,gap) has no admissible NOSPLIT predecessor. Fill it with reposition's
	// own value minus one scaled unit so it can never win the tie-break
	// against reposition itself in the pointwise_max below — a real position
	// computed from a negative predecessor offset would be invalid there.
	filler := reposition.Slice(0, gap).AddConstant(-1)
	nosplitFull, err := filler.Concat(nosplitTail)
	if err != nil {
		return segment.RatingBuffer{}, segment.PositionBuffer{}, errors.Wrap(err, "nosplit filler concat")
	}

	candidate, owners, err := reposition.PointwiseMax(nosplitFull)
	if err != nil {
		return segment.RatingBuffer{}, segment.PositionBuffer{}, errors.Wrap(err, "reposition/nosplit pointwise max")
	}
	return cumulativeChoice(candidate, owners, gap, true)
}

func allOwnerA(n int) []segment.PointwiseMaxOwner {
	owners := make([]segment.PointwiseMaxOwner, n)
	for i := range owners {
		owners[i] = segment.OwnerA
	}
	return owners
}
