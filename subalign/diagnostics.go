package subalign

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/srtalign/subalign/subtitle"
)

// diagnosticSnapshot is what DumpDiagnostics serializes: enough of an
// Align call's inputs to reproduce a KindInternalInvariant failure offline,
// without pulling in any of the DP's internal working state (which is
// already gone by the time a caller learns about the failure).
type diagnosticSnapshot struct {
	Reference    subtitle.Track
	Incorrect    subtitle.Track
	SplitPenalty float64
	Horizon      int64
}

// DumpDiagnostics gzip-compresses a gob-encoded snapshot of ref, inc and
// opts to w. It's meant to be called by a caller that just received a
// KindInternalInvariant Error from Align, to attach a reproducer to a bug
// report; Align itself never writes anything.
func DumpDiagnostics(w io.Writer, ref, inc subtitle.Track, opts Options) error {
	var buf bytes.Buffer
	snap := diagnosticSnapshot{
		Reference:    ref,
		Incorrect:    inc,
		SplitPenalty: opts.SplitPenalty,
		Horizon:      opts.Horizon,
	}
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return err
	}
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := gz.Write(buf.Bytes()); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// LoadDiagnostics reverses DumpDiagnostics, for a caller replaying a
// reported failure.
func LoadDiagnostics(r io.Reader) (ref, inc subtitle.Track, opts Options, err error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, Options{}, err
	}
	defer gz.Close()
	var snap diagnosticSnapshot
	if err := gob.NewDecoder(gz).Decode(&snap); err != nil {
		return nil, nil, Options{}, err
	}
	return snap.Reference, snap.Incorrect, Options{SplitPenalty: snap.SplitPenalty, Horizon: snap.Horizon}, nil
}
