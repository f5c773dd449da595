package dpsolve

import (
	"github.com/pkg/errors"

	"github.com/srtalign/subalign/segment"
)

// cumulativeChoice scans candidate (the pointwise_max of the REPOSITION and
// NOSPLIT branches, tagged per segment by owners) left to right, producing
// G_n as its running maximum and P_n as the matching choice synthesized in
// lockstep, one PositionBuffer piece per RatingBuffer piece "introduced".
//
// Ties are broken toward KEEP: a point where the running maximum already
// equals the candidate's value there carries the previous choice forward
// rather than re-selecting REPOSITION or NOSPLIT, matching §4.5's
// KEEP > NOSPLIT > REPOSITION order (NOSPLIT already won its own tie against
// REPOSITION inside candidate, via PointwiseMax's tie-to-second-operand
// rule).
func cumulativeChoice(candidate segment.RatingBuffer, owners []segment.PointwiseMaxOwner, gap int64, hasGap bool) (segment.RatingBuffer, segment.PositionBuffer, error) {
	segs := candidate.IterateSegments()
	if len(segs) != len(owners) {
		return segment.RatingBuffer{}, segment.PositionBuffer{}, errors.Wrap(ErrInternalInvariant, "cumulativeChoice: owners/segments length mismatch")
	}

	lo, hi := candidate.DomainStart(), candidate.DomainEnd()
	var ratingSegs []segment.RatingSegment
	var pos segment.PositionBuffer
	posStarted := false

	// running is seeded below any real rating (ratings are non-negative), so
	// the very first point is always a genuine new choice, never a tie.
	running := int64(-1)
	var runningPos int64

	appendPos := func(p segment.PositionBuffer) error {
		if !posStarted {
			pos = p
			posStarted = true
			return nil
		}
		joined, err := pos.Append(p)
		if err != nil {
			return err
		}
		pos = joined
		return nil
	}

	offsetFor := func(o segment.PointwiseMaxOwner) int64 {
		if o == segment.OwnerB {
			return -gap
		}
		return 0
	}

	emitCarry := func(start, length int64) error {
		if length <= 0 {
			return nil
		}
		ratingSegs = append(ratingSegs, segment.RatingSegment{Start: start, Value: running, Slope: 0, Length: length})
		return appendPos(segment.ConstantSegment(start, start+length, runningPos))
	}
	emitSource := func(start, length, value, slope int64, offset int64) error {
		if length <= 0 {
			return nil
		}
		ratingSegs = append(ratingSegs, segment.RatingSegment{Start: start, Value: value, Slope: slope, Length: length})
		if err := appendPos(segment.IdentitySegment(start, start+length, offset)); err != nil {
			return err
		}
		running = value + (length-1)*slope
		runningPos = (start + length - 1) + offset
		return nil
	}

	for i, s := range segs {
		offset := offsetFor(owners[i])
		v0 := s.Value
		switch {
		case s.Slope > 0:
			switch {
			case v0 > running:
				if err := emitSource(s.Start, s.Length, v0, s.Slope, offset); err != nil {
					return segment.RatingBuffer{}, segment.PositionBuffer{}, err
				}
			case v0 == running:
				if err := emitCarry(s.Start, 1); err != nil {
					return segment.RatingBuffer{}, segment.PositionBuffer{}, err
				}
				if s.Length > 1 {
					if err := emitSource(s.Start+1, s.Length-1, v0+s.Slope, s.Slope, offset); err != nil {
						return segment.RatingBuffer{}, segment.PositionBuffer{}, err
					}
				}
			default:
				catchUp := (running-v0)/s.Slope + 1
				if catchUp < 0 {
					catchUp = 0
				}
				if catchUp >= s.Length {
					if err := emitCarry(s.Start, s.Length); err != nil {
						return segment.RatingBuffer{}, segment.PositionBuffer{}, err
					}
					continue
				}
				if err := emitCarry(s.Start, catchUp); err != nil {
					return segment.RatingBuffer{}, segment.PositionBuffer{}, err
				}
				remStart := s.Start + catchUp
				remValue := v0 + catchUp*s.Slope
				if err := emitSource(remStart, s.Length-catchUp, remValue, s.Slope, offset); err != nil {
					return segment.RatingBuffer{}, segment.PositionBuffer{}, err
				}
			}
		default: // flat or descending
			if v0 > running {
				if err := emitSource(s.Start, 1, v0, 0, offset); err != nil {
					return segment.RatingBuffer{}, segment.PositionBuffer{}, err
				}
				if s.Length > 1 {
					if err := emitCarry(s.Start+1, s.Length-1); err != nil {
						return segment.RatingBuffer{}, segment.PositionBuffer{}, err
					}
				}
			} else {
				if err := emitCarry(s.Start, s.Length); err != nil {
					return segment.RatingBuffer{}, segment.PositionBuffer{}, err
				}
			}
		}
	}

	out := segment.BuildRating(lo, hi, ratingSegs)
	if !posStarted {
		return segment.RatingBuffer{}, segment.PositionBuffer{}, errors.Wrap(ErrInternalInvariant, "cumulativeChoice: empty candidate produced no position")
	}
	return out, pos, nil
}
