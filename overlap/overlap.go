// Package overlap builds the per-reference-line "hat" ratings the DP solver
// sums into an incorrect line's overlap function O_I(t), and caches the
// resulting RatingBuffers so repeated solves against the same reference
// track don't rebuild them.
package overlap

import (
	"encoding/binary"
	"sync"

	farm "github.com/dgryski/go-farm"

	"github.com/srtalign/subalign/segment"
	"github.com/srtalign/subalign/subtitle"
	"github.com/srtalign/subalign/timeline"
)

// Build sums, over every reference line, the rating contribution of placing
// a line of length lineLength at each candidate start time t in [0,
// horizon), giving O_I as a single RatingBuffer.
//
// Each reference line r contributes a triangular "hat": zero outside the
// window (r.Start-lineLength, r.End), rising with slope 1/max(len(r),
// lineLength) to a peak of min(len(r),lineLength)/max(len(r),lineLength),
// holding that peak for |len(r)-lineLength| ms, then falling back to zero by
// r.End. The peak and the fall are derived from the same truncated slope, so
// the hat returns to exactly zero at its right edge regardless of rounding.
func Build(ref subtitle.Track, lineLength, horizon int64) (segment.RatingBuffer, error) {
	total := segment.NewZeroRating(0, horizon)
	var err error
	for _, r := range ref {
		total, err = total.Add(hat(r, lineLength, horizon))
		if err != nil {
			return segment.RatingBuffer{}, err
		}
	}
	return total, nil
}

// hat returns r's triangular rating contribution, already clipped (and
// zero-padded) onto [0, horizon).
func hat(r subtitle.Line, lineLength, horizon int64) segment.RatingBuffer {
	lr := r.Length()
	m := int64(timeline.Min(timeline.Duration(lr), timeline.Duration(lineLength)))
	M := int64(timeline.Max(timeline.Duration(lr), timeline.Duration(lineLength)))
	t0 := r.Start - lineLength
	t1 := t0 + m
	t2 := t0 + M
	t3 := t0 + M + m // == r.End

	// A hat entirely outside [0, horizon) contributes nothing; skip building
	// it. t0 can be negative (a candidate start before the track begins), so
	// clamp the visible side before handing it to timeline's non-negative
	// Interval.
	visStart := t0
	if visStart < 0 {
		visStart = 0
	}
	if visStart < t3 {
		window, err := timeline.NewInterval(timeline.Timestamp(visStart), timeline.Timestamp(t3))
		if err == nil {
			full, _ := timeline.NewInterval(0, timeline.Timestamp(horizon))
			if timeline.Overlap(full, window) == 0 {
				return segment.NewZeroRating(0, horizon)
			}
		}
	}

	slopeUp := segment.RatingScale / M
	peak := slopeUp * m
	segs := []segment.RatingSegment{
		{Start: t0, Value: 0, Slope: slopeUp, Length: m},
		{Start: t1, Value: peak, Slope: 0, Length: M - m},
		{Start: t2, Value: peak, Slope: -slopeUp, Length: m},
	}
	built := segment.BuildRating(t0, t3, segs)
	return built.Slice(0, horizon)
}

// Cache shares read-only Build results across concurrent solves against the
// same reference track, keyed by a FarmHash of the reference's (Start, End)
// pairs together with the candidate line length and horizon. RatingBuffers
// are immutable after construction, so the same cached value can be handed
// to any number of callers without copying.
type Cache struct {
	mu      sync.RWMutex
	buffers map[cacheKey]segment.RatingBuffer
}

type cacheKey struct {
	refHash    uint64
	lineLength int64
	horizon    int64
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{buffers: make(map[cacheKey]segment.RatingBuffer)}
}

// Rating returns ref's overlap rating for a line of length lineLength over
// [0, horizon), building and caching it on first use.
func (c *Cache) Rating(ref subtitle.Track, lineLength, horizon int64) (segment.RatingBuffer, error) {
	key := cacheKey{refHash: HashTrack(ref), lineLength: lineLength, horizon: horizon}
	c.mu.RLock()
	b, ok := c.buffers[key]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}
	built, err := Build(ref, lineLength, horizon)
	if err != nil {
		return segment.RatingBuffer{}, err
	}
	c.mu.Lock()
	c.buffers[key] = built
	c.mu.Unlock()
	return built, nil
}

// HashTrack returns a FarmHash of ref's (Start, End) pairs, used to key
// Cache entries without retaining the track itself.
func HashTrack(ref subtitle.Track) uint64 {
	buf := make([]byte, 16*len(ref))
	for i, l := range ref {
		binary.BigEndian.PutUint64(buf[i*16:], uint64(l.Start))
		binary.BigEndian.PutUint64(buf[i*16+8:], uint64(l.End))
	}
	return farm.Hash64(buf)
}
