package segment

import (
	"sort"

	"github.com/pkg/errors"
)

// RatingScale is the common integer basis every rating value is expressed
// in: a scaled value v represents the rational v/RatingScale. Per-pair
// overlap ratings are rationals with denominators bounded by the longer of
// the two line lengths; scaling to a single fixed basis keeps every
// comparison in pointwise_max an exact integer comparison, never a
// floating-point one, so the DP's argmax choices are reproducible.
const RatingScale = 1 << 20

// RatingBuffer is a piecewise-linear, non-negative, integer-scaled
// real-valued function of integer millisecond time, partitioning
// [DomainStart, DomainEnd) into contiguous segments.
type RatingBuffer struct {
	domainStart int64
	domainEnd   int64
	segs        []seg
}

// NewZeroRating builds the constant-zero RatingBuffer over [lo, hi).
func NewZeroRating(lo, hi int64) RatingBuffer {
	if hi <= lo {
		return RatingBuffer{domainStart: lo, domainEnd: lo}
	}
	return RatingBuffer{
		domainStart: lo,
		domainEnd:   hi,
		segs:        []seg{{Start: lo, Value: 0, Slope: 0, Length: hi - lo}},
	}
}

// BuildRating builds a RatingBuffer over [lo, hi) from raw, already-ordered,
// contiguous segments (as produced by a caller like overlap.hat), dropping
// zero-length pieces and fusing any that turn out to be mergeable.
func BuildRating(lo, hi int64, segs []RatingSegment) RatingBuffer {
	raw := make([]seg, len(segs))
	for i, s := range segs {
		raw[i] = seg{Start: s.Start, Value: s.Value, Slope: s.Slope, Length: s.Length}
	}
	return RatingBuffer{domainStart: lo, domainEnd: hi, segs: normalizeSegs(raw)}
}

// DomainStart and DomainEnd report the half-open time range this buffer
// was built over. Evaluate returns 0 outside this range.
func (b RatingBuffer) DomainStart() int64 { return b.domainStart }
func (b RatingBuffer) DomainEnd() int64   { return b.domainEnd }

// Evaluate returns the scaled rating at t, in O(log S) time on the segment
// count. t outside the buffer's domain evaluates to 0.
func (b RatingBuffer) Evaluate(t int64) int64 {
	if t < b.domainStart || t >= b.domainEnd || len(b.segs) == 0 {
		return 0
	}
	i := searchStart(b.segs, t)
	return b.segs[i].valueAt(t)
}

// RatingSegment is one exported (start, value, slope, length) piece,
// returned by IterateSegments for inspection, testing, or diagnostics.
type RatingSegment struct {
	Start  int64
	Value  int64
	Slope  int64
	Length int64
}

// IterateSegments returns the ordered segments of the buffer.
func (b RatingBuffer) IterateSegments() []RatingSegment {
	out := make([]RatingSegment, len(b.segs))
	for i, s := range b.segs {
		out[i] = RatingSegment{Start: s.Start, Value: s.Value, Slope: s.Slope, Length: s.Length}
	}
	return out
}

// Shift translates the domain of b by delta milliseconds (positive moves
// later in time), then clips the result back onto [lo, hi), zero-padding
// any part of [lo, hi) the shifted function no longer covers.
func (b RatingBuffer) Shift(delta, lo, hi int64) RatingBuffer {
	shifted := make([]seg, len(b.segs))
	for i, s := range b.segs {
		shifted[i] = seg{Start: s.Start + delta, Value: s.Value, Slope: s.Slope, Length: s.Length}
	}
	return RatingBuffer{domainStart: b.domainStart + delta, domainEnd: b.domainEnd + delta, segs: shifted}.clip(lo, hi)
}

// Slice restricts b to exactly [lo, hi), zero-padding any part of that
// range b did not already cover.
func (b RatingBuffer) Slice(lo, hi int64) RatingBuffer {
	return b.clip(lo, hi)
}

// clip re-partitions b onto exactly [lo, hi), zero-padding gaps and
// truncating anything outside the range.
func (b RatingBuffer) clip(lo, hi int64) RatingBuffer {
	if hi <= lo {
		return RatingBuffer{domainStart: lo, domainEnd: lo}
	}
	var out []seg
	cursor := lo
	for _, s := range b.segs {
		start := s.Start
		end := s.end()
		if end <= lo || start >= hi {
			continue
		}
		if start > cursor {
			out = append(out, seg{Start: cursor, Value: 0, Slope: 0, Length: start - cursor})
			cursor = start
		}
		clipStart := start
		if clipStart < lo {
			clipStart = lo
		}
		clipEnd := end
		if clipEnd > hi {
			clipEnd = hi
		}
		if clipEnd <= clipStart {
			continue
		}
		out = append(out, seg{Start: clipStart, Value: s.valueAt(clipStart), Slope: s.Slope, Length: clipEnd - clipStart})
		cursor = clipEnd
	}
	if cursor < hi {
		out = append(out, seg{Start: cursor, Value: 0, Slope: 0, Length: hi - cursor})
	}
	return RatingBuffer{domainStart: lo, domainEnd: hi, segs: normalizeSegs(out)}
}

// Concat stitches b (covering [b.DomainStart,b.DomainEnd)) together with
// tail (covering [b.DomainEnd,tail.DomainEnd)) into one buffer. It is used
// to splice a sub-domain result (e.g. the NOSPLIT-admissible tail of a DP
// phase) back onto an unmodified prefix.
func (b RatingBuffer) Concat(tail RatingBuffer) (RatingBuffer, error) {
	if b.domainEnd != tail.domainStart {
		return RatingBuffer{}, errors.Wrapf(ErrDomainMismatch, "concat: [%d,%d) then [%d,%d)", b.domainStart, b.domainEnd, tail.domainStart, tail.domainEnd)
	}
	// Deliberately does not fuse across the b/tail seam even when the two
	// halves are numerically mergeable: the two sides of a splice can
	// carry different DP-choice provenance (see dpsolve) that a blind
	// value/slope merge would erase. Each half is already normalized on
	// its own, so at most one mergeable pair is left unmerged.
	segs := make([]seg, 0, len(b.segs)+len(tail.segs))
	segs = append(segs, b.segs...)
	segs = append(segs, tail.segs...)
	return RatingBuffer{domainStart: b.domainStart, domainEnd: tail.domainEnd, segs: segs}, nil
}

// Add returns the pointwise sum of b and other, which must share a domain.
// The result has at most len(b.segs)+len(other.segs) segments before
// normalization.
func (b RatingBuffer) Add(other RatingBuffer) (RatingBuffer, error) {
	if b.domainStart != other.domainStart || b.domainEnd != other.domainEnd {
		return RatingBuffer{}, errors.Wrapf(ErrDomainMismatch, "add: [%d,%d) vs [%d,%d)", b.domainStart, b.domainEnd, other.domainStart, other.domainEnd)
	}
	out := make([]seg, 0, len(b.segs)+len(other.segs))
	for _, bp := range mergeBreakpoints(b.segs, other.segs) {
		av := evalSegsAt(b.segs, bp.t)
		bv := evalSegsAt(other.segs, bp.t)
		aslope := slopeSegsAt(b.segs, bp.t)
		bslope := slopeSegsAt(other.segs, bp.t)
		out = append(out, seg{Start: bp.t, Value: av + bv, Slope: aslope + bslope, Length: bp.length})
	}
	return RatingBuffer{domainStart: b.domainStart, domainEnd: b.domainEnd, segs: normalizeSegs(out)}, nil
}

// PointwiseMaxOwner identifies, per output segment of a PointwiseMax call,
// which operand's value the result tracks (before any later CumulativeMax
// carry-forward reclassifies it as a KEEP choice).
type PointwiseMaxOwner uint8

const (
	// OwnerA marks a segment where the first operand (strictly) wins.
	OwnerA PointwiseMaxOwner = iota
	// OwnerB marks a segment where the second operand wins, including ties
	// (PointwiseMax always breaks ties toward its second argument, letting
	// callers pass the tie-preferred choice second).
	OwnerB
)

// PointwiseMax returns the piecewise-linear maximum of b and other over
// their shared domain, plus, for each output segment, which operand it was
// built from. Ties are broken toward other (OwnerB). At most one new
// breakpoint is introduced per pair of overlapping input segments, at the
// point the two lines cross.
func (b RatingBuffer) PointwiseMax(other RatingBuffer) (RatingBuffer, []PointwiseMaxOwner, error) {
	if b.domainStart != other.domainStart || b.domainEnd != other.domainEnd {
		return RatingBuffer{}, nil, errors.Wrapf(ErrDomainMismatch, "pointwise_max: [%d,%d) vs [%d,%d)", b.domainStart, b.domainEnd, other.domainStart, other.domainEnd)
	}
	var outSegs []seg
	var owners []PointwiseMaxOwner
	for _, bp := range mergeBreakpoints(b.segs, other.segs) {
		aSeg := seg{Start: bp.t, Value: evalSegsAt(b.segs, bp.t), Slope: slopeSegsAt(b.segs, bp.t), Length: bp.length}
		bSeg := seg{Start: bp.t, Value: evalSegsAt(other.segs, bp.t), Slope: slopeSegsAt(other.segs, bp.t), Length: bp.length}
		splitSegs, splitOwners := maxTwoSegs(aSeg, bSeg)
		outSegs = append(outSegs, splitSegs...)
		owners = append(owners, splitOwners...)
	}
	merged, mergedOwners := normalizeWithOwners(outSegs, owners)
	return RatingBuffer{domainStart: b.domainStart, domainEnd: b.domainEnd, segs: merged}, mergedOwners, nil
}

// maxTwoSegs computes the pointwise max of two linear segments sharing the
// same (Start, Length), introducing a single breakpoint where they cross if
// they cross strictly inside the span. Ties go to b (OwnerB).
func maxTwoSegs(a, b seg) ([]seg, []PointwiseMaxOwner) {
	av0, bv0 := a.Value, b.Value
	av1, bv1 := a.endValue(), b.endValue()
	startsBWins := bv0 >= av0
	endsBWins := bv1 >= av1
	if startsBWins == endsBWins {
		if startsBWins {
			return []seg{b}, []PointwiseMaxOwner{OwnerB}
		}
		return []seg{a}, []PointwiseMaxOwner{OwnerA}
	}
	// They cross exactly once inside (a.Start, a.end()); find the integer
	// crossing point via the linear difference d(t) = bv(t) - av(t).
	dSlope := b.Slope - a.Slope
	d0 := bv0 - av0
	// d(t) = d0 + dSlope*(t-Start). Find smallest t with sign flip.
	var crossOffset int64
	if dSlope > 0 {
		// d increasing from negative: b (ties go to b) takes over at the
		// first point where d >= 0, i.e. ceil(-d0/dSlope).
		crossOffset = ceilDiv(-d0, dSlope)
	} else {
		// d decreasing from non-negative: b holds through every tie, so a
		// only takes over strictly after d < 0, i.e. floor(d0/-dSlope)+1.
		crossOffset = d0/(-dSlope) + 1
	}
	if crossOffset <= 0 {
		crossOffset = 1
	}
	if crossOffset >= a.Length {
		crossOffset = a.Length
	}
	first := seg{Start: a.Start, Length: crossOffset}
	second := seg{Start: a.Start + crossOffset, Length: a.Length - crossOffset}
	var segs []seg
	var owners []PointwiseMaxOwner
	if startsBWins {
		first.Value, first.Slope = b.Value, b.Slope
		owners = append(owners, OwnerB)
	} else {
		first.Value, first.Slope = a.Value, a.Slope
		owners = append(owners, OwnerA)
	}
	segs = append(segs, first)
	if second.Length > 0 {
		if endsBWins {
			second.Value, second.Slope = b.valueAt(second.Start), b.Slope
			owners = append(owners, OwnerB)
		} else {
			second.Value, second.Slope = a.valueAt(second.Start), a.Slope
			owners = append(owners, OwnerA)
		}
		segs = append(segs, second)
	}
	return segs, owners
}

func ceilDiv(num, den int64) int64 {
	if den <= 0 {
		den = 1
	}
	if num <= 0 {
		return 0
	}
	return (num + den - 1) / den
}

// normalizeWithOwners fuses adjacent segments that are both mergeable and
// share the same owner, dropping zero-length pieces.
func normalizeWithOwners(segs []seg, owners []PointwiseMaxOwner) ([]seg, []PointwiseMaxOwner) {
	var outSegs []seg
	var outOwners []PointwiseMaxOwner
	for i, s := range segs {
		if s.Length <= 0 {
			continue
		}
		n := len(outSegs)
		if n > 0 && outOwners[n-1] == owners[i] && mergeable(outSegs[n-1], s) {
			outSegs[n-1].Length += s.Length
			continue
		}
		outSegs = append(outSegs, s)
		outOwners = append(outOwners, owners[i])
	}
	return outSegs, outOwners
}

// CumulativeMaxOrigin reports, for each output segment of a CumulativeMax
// call, whether that segment is a carried-forward running maximum
// (OriginCarry, the KEEP case) or tracks the input's own value unchanged
// (OriginSource).
type CumulativeMaxOrigin uint8

const (
	// OriginSource marks a segment equal to the input's own value.
	OriginSource CumulativeMaxOrigin = iota
	// OriginCarry marks a flat segment introduced because the running
	// maximum exceeds the input's value there.
	OriginCarry
)

// CumulativeMax replaces every part of b that falls at or below the
// running maximum seen so far (scanning left to right) with a constant
// segment holding that maximum, making the result monotone non-decreasing.
// Ties (input equal to the running max) are treated as a carry, biasing
// the DP's choice function toward KEEP as required by the tie-break rule.
//
// Each input segment is linear, so within it the running maximum can only
// change shape in one of two ways: either the segment starts above the
// incoming running max, in which case (since a linear, non-increasing
// piece never exceeds its own starting value, and a non-decreasing piece
// only grows) the whole segment is already the new cumulative maximum; or
// it starts at or below the running max, in which case the output is flat at
// that running max until (for an ascending segment) the input catches back
// up to it. Either way at most two output segments are produced per input
// segment, so the whole scan is O(S), not O(range length).
func (b RatingBuffer) CumulativeMax() (RatingBuffer, []CumulativeMaxOrigin) {
	var outSegs []seg
	var origins []CumulativeMaxOrigin
	running := int64(0)
	haveRunning := false
	emit := func(s seg, origin CumulativeMaxOrigin) {
		if s.Length <= 0 {
			return
		}
		outSegs = append(outSegs, s)
		origins = append(origins, origin)
	}
	for _, s := range b.segs {
		v0 := s.Value
		if !haveRunning || v0 > running {
			if s.Slope > 0 {
				emit(s, OriginSource)
				running = s.valueAt(s.end() - 1)
			} else {
				// Flat or descending: the segment's own maximum over any
				// prefix is always its starting value.
				emit(seg{Start: s.Start, Value: v0, Slope: 0, Length: s.Length}, OriginSource)
				running = v0
			}
			haveRunning = true
			continue
		}
		// running >= v0: the segment starts at or below the current maximum.
		if s.Slope <= 0 {
			// Never catches up within this segment.
			emit(seg{Start: s.Start, Value: running, Slope: 0, Length: s.Length}, OriginCarry)
			continue
		}
		catchUp := ceilDiv(running-v0+1, s.Slope)
		if catchUp < 1 {
			catchUp = 1
		}
		if catchUp > s.Length {
			catchUp = s.Length
		}
		emit(seg{Start: s.Start, Value: running, Slope: 0, Length: catchUp}, OriginCarry)
		if rem := s.Length - catchUp; rem > 0 {
			remStart := s.Start + catchUp
			emit(seg{Start: remStart, Value: s.valueAt(remStart), Slope: s.Slope, Length: rem}, OriginSource)
			running = s.valueAt(s.end() - 1)
		}
		// If the segment never caught up (rem == 0), running is unchanged.
	}
	merged, mergedOrigins := normalizeWithOrigins(outSegs, origins)
	return RatingBuffer{domainStart: b.domainStart, domainEnd: b.domainEnd, segs: merged}, mergedOrigins
}

func normalizeWithOrigins(segs []seg, origins []CumulativeMaxOrigin) ([]seg, []CumulativeMaxOrigin) {
	var outSegs []seg
	var outOrigins []CumulativeMaxOrigin
	for i, s := range segs {
		if s.Length <= 0 {
			continue
		}
		n := len(outSegs)
		if n > 0 && outOrigins[n-1] == origins[i] && mergeable(outSegs[n-1], s) {
			outSegs[n-1].Length += s.Length
			continue
		}
		outSegs = append(outSegs, s)
		outOrigins = append(outOrigins, origins[i])
	}
	return outSegs, outOrigins
}

// AddConstant returns b with every value shifted up by c (c may be
// negative, but the result's values must remain non-negative for a valid
// RatingBuffer).
func (b RatingBuffer) AddConstant(c int64) RatingBuffer {
	segs := make([]seg, len(b.segs))
	for i, s := range b.segs {
		segs[i] = seg{Start: s.Start, Value: s.Value + c, Slope: s.Slope, Length: s.Length}
	}
	return RatingBuffer{domainStart: b.domainStart, domainEnd: b.domainEnd, segs: segs}
}

type breakpoint struct {
	t      int64
	length int64
}

// mergeBreakpoints returns the ordered list of (start, length) spans formed
// by the union of a's and b's internal breakpoints, covering the shared
// domain of the two segment lists.
func mergeBreakpoints(a, b []seg) []breakpoint {
	starts := make(map[int64]struct{})
	lo, hi := int64(0), int64(0)
	if len(a) > 0 {
		lo, hi = a[0].Start, a[len(a)-1].end()
	}
	if len(b) > 0 {
		if len(a) == 0 || b[0].Start < lo {
			lo = b[0].Start
		}
		if len(a) == 0 || b[len(b)-1].end() > hi {
			hi = b[len(b)-1].end()
		}
	}
	for _, s := range a {
		starts[s.Start] = struct{}{}
	}
	for _, s := range b {
		starts[s.Start] = struct{}{}
	}
	pts := make([]int64, 0, len(starts)+1)
	for t := range starts {
		if t >= lo && t < hi {
			pts = append(pts, t)
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i] < pts[j] })
	out := make([]breakpoint, 0, len(pts))
	for i, t := range pts {
		end := hi
		if i+1 < len(pts) {
			end = pts[i+1]
		}
		if end > t {
			out = append(out, breakpoint{t: t, length: end - t})
		}
	}
	return out
}

func evalSegsAt(segs []seg, t int64) int64 {
	if len(segs) == 0 {
		return 0
	}
	i := searchStart(segs, t)
	return segs[i].valueAt(t)
}

func slopeSegsAt(segs []seg, t int64) int64 {
	if len(segs) == 0 {
		return 0
	}
	i := searchStart(segs, t)
	return segs[i].Slope
}
