package session

import (
	"io"

	"github.com/astrogo/fitsio"

	"github.com/railsense/traceview/layout"
	"github.com/railsense/traceview/trace"
)

// align places the composite, indexed on the train's time axis, under the
// raw samples that start at offset
func align(comp []float64, offset, samples int) []float64 {
	out := make([]float64, samples)
	for k := range out {
		t := offset + k
		if t >= 0 && t < len(comp) {
			out[k] = comp[t]
		}
	}
	return out
}

// Export writes trace i to w as a FITS image.  Row 0 holds the raw samples
// and row 1 the composite peak signal over the same samples, zero when the
// trace has no peaks.
func (s *Session) Export(i int, w io.Writer) error {
	path := s.Path(layout.Raw, i)
	raw, err := trace.ReadFloat32(path)
	if err != nil {
		return err
	}
	comp, err := s.Composite(i, len(raw))
	if err != nil {
		return err
	}
	offset := s.Index.Offsets[i]
	cards := []fitsio.Card{
		{Name: "SENSOR", Value: s.Sensor, Comment: "sensor id"},
		{Name: "MODE", Value: string(s.Mode)},
		{Name: "TRACE", Value: i, Comment: "index among the raw traces"},
		{Name: "OFFSET", Value: offset, Comment: "first sample on the train time axis"},
		{Name: "PEAKS", Value: comp != nil, Comment: "row 1 holds matched peaks"},
	}
	return trace.WriteFits(w, cards, raw, align(comp, offset, len(raw)))
}
