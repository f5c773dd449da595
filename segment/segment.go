// Package segment implements the compressed piecewise-linear function
// representations that let the aligner avoid a dense T×N table: RatingBuffer
// (real-valued, scaled-integer rational arithmetic) for the DP value
// function, and PositionBuffer (integer-valued, slopes restricted to
// {0,+1}) for the DP choice function.
//
// Both share the same underlying segment shape (start, start value, slope,
// length) and the same normalization discipline: every producing operation
// must leave no two adjacent segments with identical slope and a
// continuous value, and every segment must have positive length.
package segment

import "github.com/pkg/errors"

// ErrDomainMismatch is returned by binary operations whose operands cover
// different time domains in a way the operation does not define.
var ErrDomainMismatch = errors.New("segment: domain mismatch")

// seg is one piece of a piecewise-linear function: for 0 <= k <= Length,
// the function value at Start+k is Value + k*Slope.
type seg struct {
	Start  int64
	Value  int64
	Slope  int64
	Length int64
}

func (s seg) end() int64 {
	return s.Start + s.Length
}

func (s seg) valueAt(t int64) int64 {
	return s.Value + (t-s.Start)*s.Slope
}

func (s seg) endValue() int64 {
	return s.valueAt(s.end())
}

// mergeable reports whether two adjacent segments (a immediately followed
// by b) have the same slope and meet continuously, and so can be fused
// into one segment without changing the function they represent.
func mergeable(a, b seg) bool {
	return a.Slope == b.Slope && a.endValue() == b.Value
}

// normalizeSegs fuses adjacent mergeable segments and drops any zero-length
// segment a caller constructed by mistake. It is applied after every
// producing operation on both RatingBuffer and PositionBuffer.
func normalizeSegs(segs []seg) []seg {
	out := segs[:0]
	for _, s := range segs {
		if s.Length <= 0 {
			continue
		}
		if n := len(out); n > 0 && mergeable(out[n-1], s) {
			out[n-1].Length += s.Length
			continue
		}
		out = append(out, s)
	}
	return out
}

// searchStart returns the index of the segment whose span contains t, given
// segs partition [segs[0].Start, segs[last].end()) with no gaps. Binary
// search over segment start times, O(log len(segs)).
func searchStart(segs []seg, t int64) int {
	lo, hi := 0, len(segs)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if segs[mid].Start <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
