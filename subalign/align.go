// Package subalign is the engine's public entry point: given a reference
// and an incorrect subtitle track, it produces corrected start times for
// the incorrect track by maximizing overlap against the reference while
// penalizing newly introduced splits.
//
// Parsing subtitle files, locating media for voice-activity extraction, and
// command-line argument handling are all out of scope here — Align is a
// pure function of its two input tracks and an Options value.
package subalign

import (
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/srtalign/subalign/dpsolve"
	"github.com/srtalign/subalign/overlap"
	"github.com/srtalign/subalign/subtitle"
	"github.com/srtalign/subalign/timeline"
)

// Align corrects inc's start times against ref. The returned track has the
// same length and order as inc; every line's length is preserved exactly,
// only its position moves.
//
// A zero-length (empty) reference is a valid input: every corrected start
// collapses to the start of the horizon and the final rating is 0. An empty
// incorrect track is not: there is nothing to correct, so Align reports
// KindEmptyTrack.
func Align(ref, inc subtitle.Track, opts Options) (subtitle.Track, error) {
	if len(inc) == 0 {
		return nil, newError(KindEmptyTrack, "incorrect track has no lines", nil)
	}
	if !inc.IsSorted() {
		return nil, newError(KindNonMonotone, "incorrect track is not sorted by start time", nil)
	}
	if err := inc.Validate(); err != nil {
		return nil, newError(KindNonMonotone, "incorrect track violates line invariants", err)
	}
	if err := validateSplitPenalty(opts.SplitPenalty); err != nil {
		return nil, err
	}

	horizon := opts.Horizon
	if horizon == 0 {
		horizon = ref.MaxEnd() + inc.MaxLength() + 1
	}
	if _, err := timeline.Add(timeline.Timestamp(horizon-1), 0, timeline.TMax); err != nil {
		return nil, newError(KindTimeOverflow, "derived horizon exceeds the 32-bit millisecond range", err)
	}
	log.Debug.Printf("subalign: aligning %d incorrect lines against %d reference lines, horizon=%d", len(inc), len(ref), horizon)

	cache := opts.Cache
	if cache == nil {
		cache = overlap.NewCache()
	}

	res, err := dpsolve.Solve(ref, inc, dpsolve.Options{
		Horizon:            horizon,
		SplitPenaltyScaled: scaledSplitPenalty(opts.SplitPenalty),
		Cache:              cache,
		Progress:           opts.Progress,
		Cancel:             opts.Cancel,
	})
	if err != nil {
		if errors.Cause(err) == dpsolve.ErrCancelled {
			return nil, newError(KindCancelled, "aligner cancelled", err)
		}
		return nil, newError(KindInternalInvariant, "DP solve failed", err)
	}

	starts, err := dpsolve.Backtrace(res.Positions, horizon)
	if err != nil {
		return nil, newError(KindInternalInvariant, "back-trace failed", err)
	}

	out := make(subtitle.Track, len(inc))
	for i, l := range inc {
		out[i] = subtitle.Line{Start: starts[i], End: starts[i] + l.Length()}
	}
	return out, nil
}
