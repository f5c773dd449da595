package subalign

import (
	"math"

	"github.com/srtalign/subalign/overlap"
	"github.com/srtalign/subalign/segment"
)

const ratingScaleF = float64(segment.RatingScale)

// Options configures one Align call. The zero value is valid: a zero
// SplitPenalty gives no bonus at all for preserved gaps, and a zero Horizon
// is derived automatically.
type Options struct {
	// SplitPenalty is the user-facing, documented-range-[0,100] preference
	// for preserving the incorrect track's original inter-line spacing;
	// larger values suppress more splits. See scaledSplitPenalty for the
	// internal-units conversion.
	SplitPenalty float64

	// Horizon overrides the automatically derived time horizon
	// (max(ref_end) + max(inc_length) + 1); 0 means derive it automatically.
	// Set this only to shrink or grow the DP's search window deliberately;
	// either way, a horizon reaching beyond timeline.TMax is rejected with
	// KindTimeOverflow.
	Horizon int64

	// Cache supplies a shared overlap.Cache so repeated Align calls against
	// the same reference track reuse built RatingBuffers. A nil Cache gets
	// a private one for the single call.
	Cache *overlap.Cache

	// Progress, if non-nil, is invoked once per DP phase (phase is
	// 1-indexed, total is the incorrect track's line count).
	Progress func(phase, total int)

	// Cancel, if non-nil, is polled once per phase boundary; Align returns
	// a KindCancelled Error as soon as it reports true.
	Cancel func() bool
}

// scaledSplitPenalty converts the user-facing split_penalty into the
// internal segment.RatingScale-based units the DP adds directly to
// pair ratings.
//
// Pinning this conversion was an open question in the source material: the
// chosen scale is split_penalty/100 of one full pair-rating unit (one
// reference line entirely covered), so a penalty of 100 is worth exactly as
// much as perfectly matching one additional reference line, and a penalty
// of 0 never outweighs any nonzero overlap gain.
func scaledSplitPenalty(splitPenalty float64) int64 {
	return int64(splitPenalty / 100 * ratingScaleF)
}

func validateSplitPenalty(splitPenalty float64) error {
	if math.IsNaN(splitPenalty) || math.IsInf(splitPenalty, 0) || splitPenalty < 0 {
		return newError(KindInvalidSplitPenalty, "split_penalty must be a non-negative, finite number", nil)
	}
	return nil
}
