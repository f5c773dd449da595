package overlap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srtalign/subalign/subtitle"
)

func TestHatPeaksAtExpectedRatio(t *testing.T) {
	r := subtitle.Line{Start: 100, End: 150} // length 50
	b := hat(r, 50, 300)                     // equal lengths: peak ratio 1
	var maxV int64
	for tt := int64(0); tt < 300; tt++ {
		if v := b.Evaluate(tt); v > maxV {
			maxV = v
		}
	}
	slopeUp := int64(1<<20) / 50
	assert.Equal(t, slopeUp*50, maxV)
}

func TestHatIsZeroOutsideWindow(t *testing.T) {
	r := subtitle.Line{Start: 100, End: 150}
	b := hat(r, 50, 300)
	assert.Equal(t, int64(0), b.Evaluate(0))
	assert.Equal(t, int64(0), b.Evaluate(299))
}

func TestHatReturnsExactlyZeroAtRightEdge(t *testing.T) {
	r := subtitle.Line{Start: 100, End: 150}
	b := hat(r, 30, 300)
	// The window's right edge is r.End; the hat must not spill rating past
	// r.End.
	assert.Equal(t, int64(0), b.Evaluate(150))
}

func TestBuildSumsAcrossReferenceLines(t *testing.T) {
	ref := subtitle.Track{{Start: 0, End: 50}, {Start: 200, End: 250}}
	total, err := Build(ref, 50, 400)
	require.NoError(t, err)
	// Each line contributes its own disjoint hat; at the first line's peak
	// only that line's hat is nonzero.
	assert.True(t, total.Evaluate(0) > 0)
	assert.True(t, total.Evaluate(200) > 0)
}

func TestCacheReusesBuiltBuffer(t *testing.T) {
	c := NewCache()
	ref := subtitle.Track{{Start: 0, End: 50}}
	a, err := c.Rating(ref, 50, 200)
	require.NoError(t, err)
	b, err := c.Rating(ref, 50, 200)
	require.NoError(t, err)
	assert.Equal(t, a.IterateSegments(), b.IterateSegments())
}

func TestHashTrackDistinguishesTracks(t *testing.T) {
	a := subtitle.Track{{Start: 0, End: 10}}
	b := subtitle.Track{{Start: 0, End: 11}}
	assert.NotEqual(t, HashTrack(a), HashTrack(b))
}
