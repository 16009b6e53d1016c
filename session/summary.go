package session

import (
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/railsense/traceview/dsp"
	"github.com/railsense/traceview/grade"
	"github.com/railsense/traceview/info"
	"github.com/railsense/traceview/layout"
	"github.com/railsense/traceview/trace"
)

// PreviewSamples is how much of an unmatched raw trace dual mode describes
const PreviewSamples = 500

// Summary describes one trace as seen by a mode
type Summary struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Samples int    `json:"samples"`

	// Offset is the position of the first sample on the train's time axis
	Offset int `json:"offset"`

	// Notes collect missing pieces that did not stop the summary
	Notes []string `json:"notes,omitempty"`

	Peaks *PeakSummary `json:"peaks,omitempty"`
	Box   *BoxSummary  `json:"box,omitempty"`
	Dual  *DualSummary `json:"dual,omitempty"`
	Cond  *CondSummary `json:"cond,omitempty"`
}

// End is one past the last sample on the time axis
func (s Summary) End() int {
	return s.Offset + s.Samples
}

// PeakSummary describes the detected peaks of a trace
type PeakSummary struct {
	Count int `json:"count"`

	// Nonzero counts the nonzero samples of the composite signal
	Nonzero int `json:"nonzero"`

	// Level is the mean peak value
	Level float64 `json:"level"`

	// Trimmed counts the leading peaks dropped to line up with the peak grades
	Trimmed int `json:"trimmed,omitempty"`

	// Qualities counts the peaks of each quality
	Qualities map[grade.Quality]int `json:"qualities,omitempty"`
}

// Car is a graded car and where it lies in the trace
type Car struct {
	grade.Span
	Grade   int           `json:"grade"`
	Quality grade.Quality `json:"quality"`
}

// BoxSummary describes the reference train matched to a trace
type BoxSummary struct {
	Info   info.Info `json:"info"`
	Wheels int       `json:"wheels"`
	Misses int       `json:"misses"`
	Cars   []Car     `json:"cars"`
}

// DualSummary compares a trace to its matched signal
type DualSummary struct {
	Matched bool   `json:"matched"`
	Other   string `json:"other,omitempty"`

	// Samples is the length of the compared prefix
	Samples int     `json:"samples"`
	RMS     float64 `json:"rms,omitempty"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stddev"`
}

// CondSummary is the energy bookkeeping of conditioning a trace
type CondSummary struct {
	Stages []dsp.Stage `json:"stages"`
}

// Summarize reads trace i and the files matched to it.  Missing derived
// files are noted in the summary; read failures and malformed info files are
// returned as errors.
func (s *Session) Summarize(i int) (Summary, error) {
	if i < 0 || i >= s.Len() {
		return Summary{}, errors.Errorf("trace %d out of range [0, %d)", i, s.Len())
	}
	path := s.Index.Files[i]
	raw, err := trace.ReadFloat32(path)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Index:   i,
		Name:    filepath.Base(path),
		Path:    path,
		Samples: len(raw),
		Offset:  s.Index.Offsets[i]}

	switch s.Mode {
	case Pos:
		err = s.summarizePeaks(&sum)
	case Box:
		err = s.summarizeBox(&sum)
	case Dual:
		err = s.summarizeDual(&sum, raw)
	case Cond:
		_, stages := dsp.Condition(raw)
		sum.Cond = &CondSummary{Stages: stages}
	}
	return sum, err
}

func (s *Session) note(sum *Summary, msg string) {
	sum.Notes = append(sum.Notes, msg)
}

// Composite rebuilds the peak signal of trace i on the time axis of the
// train, with length offset + samples
func (s *Session) Composite(i int, samples int) ([]float64, error) {
	tp, vp := s.Path(layout.PeakTimes, i), s.Path(layout.PeakValues, i)
	if tp == "" || vp == "" {
		return nil, nil
	}
	times, err := trace.ReadUint32(tp)
	if err != nil {
		return nil, err
	}
	values, err := trace.ReadFloat32(vp)
	if err != nil {
		return nil, err
	}
	n := s.Index.Offsets[i] + samples
	if n < 0 {
		n = 0
	}
	return trace.Composite(times, values, n)
}

func (s *Session) summarizePeaks(sum *Summary) error {
	if s.Path(layout.PeakTimes, sum.Index) == "" {
		s.note(sum, "no peak times")
		return nil
	}
	if s.Path(layout.PeakValues, sum.Index) == "" {
		s.note(sum, "no peak values")
		return nil
	}
	comp, err := s.Composite(sum.Index, sum.Samples)
	if err != nil {
		return err
	}
	values, err := trace.ReadFloat32(s.Path(layout.PeakValues, sum.Index))
	if err != nil {
		return err
	}
	ps := &PeakSummary{Count: len(values)}
	for _, v := range comp {
		if v != 0 {
			ps.Nonzero++
		}
	}
	if len(values) > 0 {
		ps.Level = stat.Mean(values, nil)
	}
	sum.Peaks = ps
	return nil
}

func (s *Session) summarizeBox(sum *Summary) error {
	i := sum.Index
	vp, ip := s.Path(layout.PeakValues, i), s.Path(layout.BoxInfo, i)
	if vp == "" || ip == "" {
		s.note(sum, "no peaks or no info file")
		return nil
	}
	for _, k := range []layout.Kind{layout.PeakTimes, layout.BoxTimes, layout.BoxCars, layout.BoxRefGrade, layout.BoxPeakGrade} {
		if s.Path(k, i) == "" {
			s.note(sum, "no "+string(k)+" file")
			return nil
		}
	}

	values, err := trace.ReadFloat32(vp)
	if err != nil {
		return err
	}
	peaktimes, err := trace.ReadUint32(s.Path(layout.PeakTimes, i))
	if err != nil {
		return err
	}
	inf, err := info.ReadFile(ip)
	if err != nil {
		return err
	}
	reftimes, err := trace.ReadUint32(s.Path(layout.BoxTimes, i))
	if err != nil {
		return err
	}
	cars, err := trace.ReadUint32(s.Path(layout.BoxCars, i))
	if err != nil {
		return err
	}
	refgrades, err := trace.ReadFloat32(s.Path(layout.BoxRefGrade, i))
	if err != nil {
		return err
	}
	peakgrades, err := trace.ReadFloat32(s.Path(layout.BoxPeakGrade, i))
	if err != nil {
		return err
	}

	// the peak grades cover the last peaks only
	ps := &PeakSummary{}
	if d := len(values) - len(peakgrades); d > 0 {
		values = values[d:]
		if d <= len(peaktimes) {
			peaktimes = peaktimes[d:]
		}
		ps.Trimmed = d
	}
	ps.Count = len(values)
	if len(values) > 0 {
		ps.Level = stat.Mean(values, nil)
	}
	ps.Nonzero = len(values) - countZeros(values)
	ps.Qualities = make(map[grade.Quality]int)
	for _, g := range peakgrades {
		ps.Qualities[s.Thresholds.Peak(g)]++
	}
	sum.Peaks = ps

	grades, err := s.Thresholds.CarGrades(cars, refgrades)
	if err != nil {
		return err
	}
	bs := &BoxSummary{Info: inf, Wheels: len(reftimes), Misses: grade.Misses(cars)}
	spans := grade.CarSpans(reftimes, cars, sum.Offset)
	for _, sp := range spans {
		c := Car{Span: sp, Quality: grade.Ungraded}
		if sp.Car >= 0 && sp.Car < len(grades) {
			c.Grade = grades[sp.Car]
			c.Quality = grade.CarQuality(c.Grade)
		}
		bs.Cars = append(bs.Cars, c)
	}
	sum.Box = bs
	return nil
}

func countZeros(x []float64) int {
	n := 0
	for _, v := range x {
		if v == 0 {
			n++
		}
	}
	return n
}

// meanStdDev is stat.MeanStdDev with a zero deviation, not NaN, below two samples
func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

func (s *Session) summarizeDual(sum *Summary, raw []float64) error {
	ds := &DualSummary{}
	other := s.Path(layout.Compare, sum.Index)
	if other == "" {
		n := len(raw)
		if n > PreviewSamples {
			n = PreviewSamples
		}
		ds.Samples = n
		ds.Mean, ds.StdDev = meanStdDev(raw[:n])
		s.note(sum, "no matched signal")
		sum.Dual = ds
		return nil
	}
	sig, err := trace.ReadFloat32(other)
	if err != nil {
		return err
	}
	n := len(sig)
	if n > len(raw) {
		n = len(raw)
	}
	ds.Matched = true
	ds.Other = other
	ds.Samples = n
	if n > 0 {
		ds.RMS, err = dsp.RMSDiff(raw[:n], sig[:n])
		if err != nil {
			return err
		}
		diff := make([]float64, n)
		floats.SubTo(diff, raw[:n], sig[:n])
		ds.Mean, ds.StdDev = meanStdDev(diff)
	}
	sum.Dual = ds
	return nil
}
