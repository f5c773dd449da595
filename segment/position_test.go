package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantSegmentLookup(t *testing.T) {
	p := ConstantSegment(10, 20, 7)
	assert.Equal(t, int64(7), p.Lookup(10))
	assert.Equal(t, int64(7), p.Lookup(19))
	assert.Equal(t, int64(0), p.Lookup(25), "outside domain is zero")
}

func TestIdentitySegmentLookup(t *testing.T) {
	p := IdentitySegment(10, 20, -3)
	assert.Equal(t, int64(7), p.Lookup(10))
	assert.Equal(t, int64(16), p.Lookup(19))
}

func TestPositionAppendFusesMergeable(t *testing.T) {
	a := ConstantSegment(0, 10, 5)
	b := ConstantSegment(10, 20, 5)
	combined, err := a.Append(b)
	require.NoError(t, err)
	assert.Len(t, combined.IterateSegments(), 1, "equal constants should fuse into one segment")
	assert.Equal(t, int64(5), combined.Lookup(15))
}

func TestPositionAppendKeepsDistinctShapes(t *testing.T) {
	a := IdentitySegment(0, 10, 0)
	b := ConstantSegment(10, 20, 9)
	combined, err := a.Append(b)
	require.NoError(t, err)
	assert.Len(t, combined.IterateSegments(), 2)
	assert.Equal(t, int64(5), combined.Lookup(5))
	assert.Equal(t, int64(9), combined.Lookup(15))
}

func TestPositionAppendRejectsGap(t *testing.T) {
	a := ConstantSegment(0, 10, 1)
	b := ConstantSegment(11, 20, 1)
	_, err := a.Append(b)
	assert.Error(t, err)
}
