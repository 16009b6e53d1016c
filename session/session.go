// Package session ties one sensor's files together for browsing: the raw
// traces, the derived files matched to them, and a summary of each trace
// for a given view.
package session

import (
	"github.com/pkg/errors"

	"github.com/railsense/traceview/grade"
	"github.com/railsense/traceview/layout"
	"github.com/railsense/traceview/match"
	"github.com/railsense/traceview/navigate"
)

// Mode is a view of the traces
type Mode string

const (
	// Pos shows the raw trace and the composite of its peaks
	Pos Mode = "pos"

	// Box adds the reference train, car grades and car spans
	Box Mode = "box"

	// Dual compares the raw trace to a matched signal from the compare directory
	Dual Mode = "dual"

	// Cond shows the energy bookkeeping of conditioning the raw trace
	Cond Mode = "cond"

	// Cars matches only the car numbers and reference grades read by Survey.
	// Its summaries hold the raw trace alone.
	Cars Mode = "cars"
)

// Modes lists the modes that can be browsed
var Modes = []Mode{Pos, Box, Dual, Cond}

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.Errorf("unknown mode %q", s)
}

// Kinds returns the derived kinds a mode needs
func (m Mode) Kinds() []layout.Kind {
	switch m {
	case Pos:
		return layout.PeakKinds
	case Box:
		return layout.BoxKinds
	case Dual:
		return []layout.Kind{layout.Compare}
	case Cars:
		return []layout.Kind{layout.BoxCars, layout.BoxRefGrade}
	default:
		return nil
	}
}

// primary is the kind whose presence N looks for
func (m Mode) primary() (layout.Kind, bool) {
	switch m {
	case Pos:
		return layout.PeakTimes, true
	case Box:
		return layout.BoxTimes, true
	case Dual:
		return layout.Compare, true
	case Cars:
		return layout.BoxCars, true
	default:
		return "", false
	}
}

// Options configure a Session
type Options struct {
	Mode       Mode
	Strictness match.Strictness
	Thresholds grade.Thresholds
}

// Session holds the matched files of one sensor
type Session struct {
	Sensor string
	Layout layout.Layout
	Options

	// Index holds the raw traces
	Index *match.Index

	// Tables holds the match table of each derived kind
	Tables map[layout.Kind]match.Table
}

// Open discovers the files of sensor and matches the derived ones the mode
// needs.  In strict mode an unmatched derived file fails the open with an
// error wrapping *match.UnmatchedError.
func Open(l layout.Layout, sensor string, opts Options) (*Session, error) {
	kinds := opts.Mode.Kinds()
	files, err := l.Discover(sensor, kinds...)
	if err != nil {
		return nil, err
	}
	s := &Session{
		Sensor:  sensor,
		Layout:  l,
		Options: opts,
		Index:   match.BuildIndex(files[layout.Raw], l.Ext),
		Tables:  make(map[layout.Kind]match.Table, len(kinds))}
	for _, k := range kinds {
		tbl, err := match.Match(s.Index, files[k], l.Tag(layout.Raw), l.Tag(k), opts.Strictness)
		if err != nil {
			return nil, errors.Wrapf(err, "matching %s of sensor %s", k, sensor)
		}
		s.Tables[k] = tbl
	}
	return s, nil
}

// Reopen discovers and matches again with the same settings
func (s *Session) Reopen() (*Session, error) {
	return Open(s.Layout, s.Sensor, s.Options)
}

// Len is the number of raw traces
func (s *Session) Len() int {
	return s.Index.Len()
}

// Path returns the file of kind k matched to trace i, or "" if there is none
func (s *Session) Path(k layout.Kind, i int) string {
	if k == layout.Raw {
		return s.Index.Files[i]
	}
	return s.Tables[k].Path(i)
}

// Slots returns the table N navigates by, or nil if the mode has none
func (s *Session) Slots() navigate.Slots {
	k, ok := s.Mode.primary()
	if !ok {
		return nil
	}
	return s.Tables[k]
}

// Navigator returns a navigator over the raw traces
func (s *Session) Navigator() *navigate.Navigator {
	return navigate.New(s.Index.Files, s.Slots())
}
