package dpsolve

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srtalign/subalign/overlap"
	"github.com/srtalign/subalign/segment"
	"github.com/srtalign/subalign/subtitle"
)

func scaledPenalty(splitPenalty int64) int64 {
	return splitPenalty * (segment.RatingScale / 100)
}

func TestSolvePureOffsetRecoversReference(t *testing.T) {
	ref := subtitle.Track{{Start: 1000, End: 2000}, {Start: 3000, End: 4000}}
	inc := subtitle.Track{{Start: 1500, End: 2500}, {Start: 3500, End: 4500}}
	horizon := ref.MaxEnd() + inc.MaxLength()

	res, err := Solve(ref, inc, Options{Horizon: horizon, SplitPenaltyScaled: scaledPenalty(10), Cache: overlap.NewCache()})
	require.NoError(t, err)
	starts, err := Backtrace(res.Positions, horizon)
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 3000}, starts)
}

func TestSolveIdentityIsStable(t *testing.T) {
	ref := subtitle.Track{{Start: 0, End: 500}, {Start: 1000, End: 1500}}
	inc := subtitle.Track{{Start: 0, End: 500}, {Start: 1000, End: 1500}}
	horizon := ref.MaxEnd() + inc.MaxLength()

	res, err := Solve(ref, inc, Options{Horizon: horizon, SplitPenaltyScaled: scaledPenalty(50), Cache: overlap.NewCache()})
	require.NoError(t, err)
	starts, err := Backtrace(res.Positions, horizon)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1000}, starts)
}

func TestSolveTieBreakPrefersKeep(t *testing.T) {
	ref := subtitle.Track{{Start: 1000, End: 2000}}
	inc := subtitle.Track{{Start: 1000, End: 2000}}
	horizon := ref.MaxEnd() + inc.MaxLength()

	res, err := Solve(ref, inc, Options{Horizon: horizon, SplitPenaltyScaled: 0, Cache: overlap.NewCache()})
	require.NoError(t, err)
	starts, err := Backtrace(res.Positions, horizon)
	require.NoError(t, err)
	assert.Equal(t, []int64{1000}, starts)
}

func TestSolveAdvertisementBreakIntroducesOneSplit(t *testing.T) {
	ref := subtitle.Track{{Start: 1000, End: 2000}, {Start: 3000, End: 4000}, {Start: 5000, End: 6000}}
	inc := subtitle.Track{{Start: 1000, End: 2000}, {Start: 3000, End: 4000}, {Start: 15000, End: 16000}}
	horizon := ref.MaxEnd() + inc.MaxLength()

	res, err := Solve(ref, inc, Options{Horizon: horizon, SplitPenaltyScaled: scaledPenalty(10), Cache: overlap.NewCache()})
	require.NoError(t, err)
	starts, err := Backtrace(res.Positions, horizon)
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 3000, 5000}, starts)
}

func TestSolveZeroReferencePlacesEverythingAtHorizonStart(t *testing.T) {
	inc := subtitle.Track{{Start: 500, End: 700}}
	horizon := inc.MaxLength() + 1
	res, err := Solve(subtitle.Track{}, inc, Options{Horizon: horizon, SplitPenaltyScaled: 0, Cache: overlap.NewCache()})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Final.Evaluate(horizon-1))
	starts, err := Backtrace(res.Positions, horizon)
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, starts)
}

func TestBacktraceDetectsNonMonotoneAsInternalInvariant(t *testing.T) {
	phase0 := segment.ConstantSegment(0, 10, 7) // would return 7 regardless of lookup point
	phase1 := segment.ConstantSegment(0, 10, 3) // final phase settles at 3, before phase0's 7
	_, err := Backtrace([]segment.PositionBuffer{phase0, phase1}, 10)
	assert.Equal(t, ErrInternalInvariant, errors.Cause(err))
}
