package dpsolve

import (
	"github.com/pkg/errors"

	"github.com/srtalign/subalign/segment"
)

// Backtrace reconstructs s_1..s_N from P_1..P_N (in phase order) and the
// horizon used to build them. Because every phase's RatingBuffer is
// monotone non-decreasing by construction, the global optimum sits at the
// rightmost point, t* = horizon-1.
//
// Monotonicity of the reconstructed starts is a guaranteed post-condition
// of the recurrence; a violation here means a logic error upstream, not a
// bad input, so it is reported as ErrInternalInvariant rather than a
// caller-recoverable error.
func Backtrace(positions []segment.PositionBuffer, horizon int64) ([]int64, error) {
	n := len(positions)
	starts := make([]int64, n)
	t := horizon - 1
	for i := n - 1; i >= 0; i-- {
		starts[i] = positions[i].Lookup(t)
		t = starts[i]
	}
	for i := 1; i < n; i++ {
		if starts[i-1] > starts[i] {
			return nil, errors.Wrapf(ErrInternalInvariant, "backtrace: start[%d]=%d > start[%d]=%d", i-1, starts[i-1], i, starts[i])
		}
	}
	return starts, nil
}
