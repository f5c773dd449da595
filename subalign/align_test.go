package subalign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/srtalign/subalign/subtitle"
)

func mustTrack(pairs ...[2]int64) subtitle.Track {
	tr := make(subtitle.Track, len(pairs))
	for i, p := range pairs {
		tr[i] = subtitle.Line{Start: p[0], End: p[1]}
	}
	return tr
}

func TestAlignPureOffset(t *testing.T) {
	ref := mustTrack([2]int64{1000, 2000}, [2]int64{3000, 4000})
	inc := mustTrack([2]int64{1500, 2500}, [2]int64{3500, 4500})
	got, err := Align(ref, inc, Options{SplitPenalty: 10})
	require.NoError(t, err)
	assert.Equal(t, mustTrack([2]int64{1000, 2000}, [2]int64{3000, 4000}), got)
}

func TestAlignAdvertisementBreak(t *testing.T) {
	ref := mustTrack([2]int64{1000, 2000}, [2]int64{3000, 4000}, [2]int64{5000, 6000})
	inc := mustTrack([2]int64{1000, 2000}, [2]int64{3000, 4000}, [2]int64{15000, 16000})
	got, err := Align(ref, inc, Options{SplitPenalty: 10})
	require.NoError(t, err)
	assert.Equal(t, mustTrack([2]int64{1000, 2000}, [2]int64{3000, 4000}, [2]int64{5000, 6000}), got)
}

func TestAlignIdentity(t *testing.T) {
	ref := mustTrack([2]int64{0, 500}, [2]int64{1000, 1500})
	inc := mustTrack([2]int64{0, 500}, [2]int64{1000, 1500})
	got, err := Align(ref, inc, Options{SplitPenalty: 37})
	require.NoError(t, err)
	assert.Equal(t, ref, got)
}

func TestAlignTieBreakKeep(t *testing.T) {
	ref := mustTrack([2]int64{1000, 2000})
	inc := mustTrack([2]int64{1000, 2000})
	got, err := Align(ref, inc, Options{SplitPenalty: 0})
	require.NoError(t, err)
	assert.Equal(t, ref, got)
}

func TestAlignHighPenaltySuppressesSplits(t *testing.T) {
	ref := mustTrack([2]int64{1000, 2000}, [2]int64{3000, 4000})
	inc := mustTrack([2]int64{1500, 2500}, [2]int64{4000, 5000})
	got, err := Align(ref, inc, Options{SplitPenalty: 100})
	require.NoError(t, err)
	delta := inc[0].Start - got[0].Start
	for i := range got {
		assert.Equal(t, inc[i].Start-delta, got[i].Start, "line %d should move by the single global offset", i)
	}
}

func TestAlignEmptyIncorrectTrack(t *testing.T) {
	ref := mustTrack([2]int64{0, 10})
	_, err := Align(ref, nil, Options{})
	require.Error(t, err)
	ae, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T", err)
	assert.Equal(t, KindEmptyTrack, ae.Kind)
}

func TestAlignNonSortedIncorrectTrack(t *testing.T) {
	ref := mustTrack([2]int64{0, 10})
	inc := mustTrack([2]int64{20, 30}, [2]int64{0, 10})
	_, err := Align(ref, inc, Options{})
	require.Error(t, err)
	ae, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T", err)
	assert.Equal(t, KindNonMonotone, ae.Kind)
}

func TestAlignInvalidSplitPenalty(t *testing.T) {
	ref := mustTrack([2]int64{0, 10})
	inc := mustTrack([2]int64{0, 10})
	_, err := Align(ref, inc, Options{SplitPenalty: -1})
	require.Error(t, err)
	ae, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T", err)
	assert.Equal(t, KindInvalidSplitPenalty, ae.Kind)
}

func TestAlignZeroLengthReference(t *testing.T) {
	inc := mustTrack([2]int64{500, 700})
	got, err := Align(subtitle.Track{}, inc, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(200), got[0].End-got[0].Start)
}

func TestAlignSelfAlignmentIsIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		var track subtitle.Track
		cursor := int64(0)
		for i := 0; i < n; i++ {
			start := cursor + rapid.Int64Range(0, 500).Draw(rt, "gap")
			length := rapid.Int64Range(100, 2000).Draw(rt, "len")
			track = append(track, subtitle.Line{Start: start, End: start + length})
			cursor = start + length
		}
		penalty := rapid.Float64Range(0, 100).Draw(rt, "penalty")
		got, err := Align(track, track, Options{SplitPenalty: penalty})
		if err != nil {
			rt.Fatal(err)
		}
		for i := range track {
			if got[i] != track[i] {
				rt.Fatalf("line %d: got %+v want %+v", i, got[i], track[i])
			}
		}
	})
}

func TestAlignUniformShiftRecoversOriginal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		var ref subtitle.Track
		cursor := int64(0)
		for i := 0; i < n; i++ {
			start := cursor + rapid.Int64Range(0, 500).Draw(rt, "gap")
			length := rapid.Int64Range(100, 2000).Draw(rt, "len")
			ref = append(ref, subtitle.Line{Start: start, End: start + length})
			cursor = start + length
		}
		delta := rapid.Int64Range(-300, 300).Draw(rt, "delta")
		inc := make(subtitle.Track, len(ref))
		for i, l := range ref {
			s := l.Start + delta
			if s < 0 {
				s = 0
			}
			inc[i] = subtitle.Line{Start: s, End: s + l.Length()}
		}
		got, err := Align(ref, inc, Options{SplitPenalty: 10})
		if err != nil {
			rt.Fatal(err)
		}
		for i := range ref {
			diff := got[i].Start - ref[i].Start
			if diff < -1 || diff > 1 {
				rt.Fatalf("line %d: got start %d, want %d +-1ms", i, got[i].Start, ref[i].Start)
			}
		}
	})
}

func TestDiagnosticsRoundTrip(t *testing.T) {
	ref := mustTrack([2]int64{0, 10})
	inc := mustTrack([2]int64{5, 15})

	dir, cleanup := testutil.TempDir(t, "", "subalign-diagnostics")
	defer cleanup()
	path := filepath.Join(dir, "repro.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, DumpDiagnostics(f, ref, inc, Options{SplitPenalty: 5, Horizon: 100}))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gotRef, gotInc, opts, err := LoadDiagnostics(f)
	require.NoError(t, err)
	assert.Equal(t, ref, gotRef)
	assert.Equal(t, inc, gotInc)
	assert.Equal(t, float64(5), opts.SplitPenalty)
	assert.Equal(t, int64(100), opts.Horizon)
}
