package segment

import "github.com/pkg/errors"

// PositionBuffer is a piecewise-arithmetic integer function of time,
// restricted to the three DP choice shapes: a constant "keep previous
// choice" segment (slope 0), or an identity-with-offset "advance choice
// with time" segment (slope +1, a fixed additive offset of 0 or a negative
// gap). It replaces a dense per-millisecond back-pointer array: its size is
// proportional to the number of choice transitions, not to the time range.
type PositionBuffer struct {
	domainStart int64
	domainEnd   int64
	segs        []seg
}

// DomainStart and DomainEnd report the half-open time range this buffer
// was built over.
func (p PositionBuffer) DomainStart() int64 { return p.domainStart }
func (p PositionBuffer) DomainEnd() int64   { return p.domainEnd }

// ConstantSegment returns a PositionBuffer holding value over [lo, hi): the
// KEEP shape.
func ConstantSegment(lo, hi, value int64) PositionBuffer {
	if hi <= lo {
		return PositionBuffer{domainStart: lo, domainEnd: lo}
	}
	return PositionBuffer{domainStart: lo, domainEnd: hi, segs: []seg{{Start: lo, Value: value, Slope: 0, Length: hi - lo}}}
}

// IdentitySegment returns a PositionBuffer holding value t+offset over
// [lo, hi): the REPOSITION (offset 0) or NOSPLIT (offset -gap) shape.
func IdentitySegment(lo, hi, offset int64) PositionBuffer {
	if hi <= lo {
		return PositionBuffer{domainStart: lo, domainEnd: lo}
	}
	return PositionBuffer{domainStart: lo, domainEnd: hi, segs: []seg{{Start: lo, Value: lo + offset, Slope: 1, Length: hi - lo}}}
}

// Lookup returns the integer value of p at t.
func (p PositionBuffer) Lookup(t int64) int64 {
	if t < p.domainStart || t >= p.domainEnd || len(p.segs) == 0 {
		return 0
	}
	i := searchStart(p.segs, t)
	return p.segs[i].valueAt(t)
}

// PositionSegment is one exported (start, value, slope, length) piece.
type PositionSegment struct {
	Start  int64
	Value  int64
	Slope  int64
	Length int64
}

// IterateSegments returns the ordered segments of the buffer.
func (p PositionBuffer) IterateSegments() []PositionSegment {
	out := make([]PositionSegment, len(p.segs))
	for i, s := range p.segs {
		out[i] = PositionSegment{Start: s.Start, Value: s.Value, Slope: s.Slope, Length: s.Length}
	}
	return out
}

// Append appends a same-shaped segment (ConstantSegment or IdentitySegment,
// built over [p.DomainEnd, p.DomainEnd+length)) to the end of p, fusing it
// with the previous segment when the two are mergeable. next must begin
// exactly where p ends.
func (p PositionBuffer) Append(next PositionBuffer) (PositionBuffer, error) {
	if len(next.segs) == 0 {
		return p, nil
	}
	if len(p.segs) == 0 {
		return next, nil
	}
	if p.domainEnd != next.domainStart {
		return PositionBuffer{}, errors.Errorf("segment: position append gap at %d != %d", p.domainEnd, next.domainStart)
	}
	segs := make([]seg, 0, len(p.segs)+len(next.segs))
	segs = append(segs, p.segs...)
	segs = append(segs, next.segs...)
	return PositionBuffer{domainStart: p.domainStart, domainEnd: next.domainEnd, segs: normalizeSegs(segs)}, nil
}
