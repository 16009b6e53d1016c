package session

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/railsense/traceview/grade"
	"github.com/railsense/traceview/mathx"
)

// Print writes a human readable rendering of s to w, car grades in color
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "%s (no. %d)\n", s.Name, s.Index)
	fmt.Fprintf(w, "  samples %d, offset %d, span [%d, %d)\n", s.Samples, s.Offset, s.Offset, s.End())
	for _, n := range s.Notes {
		fmt.Fprintf(w, "  %s\n", n)
	}
	if p := s.Peaks; p != nil {
		fmt.Fprintf(w, "  peaks %d, nonzero %d, level %g", p.Count, p.Nonzero, mathx.Round(p.Level, 1e-4))
		if p.Trimmed > 0 {
			fmt.Fprintf(w, ", %d leading peaks trimmed", p.Trimmed)
		}
		fmt.Fprintln(w)
		if len(p.Qualities) > 0 {
			qs := make([]grade.Quality, 0, len(p.Qualities))
			for q := range p.Qualities {
				qs = append(qs, q)
			}
			sort.Slice(qs, func(i, j int) bool { return qs[i] < qs[j] })
			parts := make([]string, len(qs))
			for i, q := range qs {
				parts[i] = q.Sprint(fmt.Sprintf("%s %d", q, p.Qualities[q]))
			}
			fmt.Fprintf(w, "  peak grades: %s\n", strings.Join(parts, ", "))
		}
	}
	if b := s.Box; b != nil {
		fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(strings.TrimSpace(b.Info.Text()), "\n", "\n  "))
		fmt.Fprintf(w, "  wheels %d, misses %d\n", b.Wheels, b.Misses)
		for _, c := range b.Cars {
			fmt.Fprintf(w, "  car %s [%d, %d) grade %d\n", c.Quality.Sprint(fmt.Sprintf("%3d", c.Car)), c.Start, c.End, c.Grade)
		}
	}
	if d := s.Dual; d != nil {
		if d.Matched {
			fmt.Fprintf(w, "  compared %d samples with %s\n", d.Samples, d.Other)
			fmt.Fprintf(w, "  rms difference %g, mean %g, std %g\n", d.RMS, d.Mean, d.StdDev)
		} else {
			fmt.Fprintf(w, "  first %d samples: mean %g, std %g\n", d.Samples, d.Mean, d.StdDev)
		}
	}
	if c := s.Cond; c != nil {
		for _, st := range c.Stages {
			fmt.Fprintf(w, "  %-12s energy %g -> %g (%g%%)\n", st.Name, st.Before, st.After, mathx.Percent(st.After, st.Before))
		}
	}
}
