// Package layout knows where a sensor's files live.
//
// Every sensor owns a directory under a common base:
//
//	<base>/<sensor>/raw/                          raw traces (float32)
//	<base>/<sensor>/peak/times/                   peak positions (uint32)
//	<base>/<sensor>/peak/values/                  peak values (float32)
//	<base>/<sensor>/box/<variant>/times/          reference wheel times (uint32)
//	<base>/<sensor>/box/<variant>/cars/           car of each wheel (uint32)
//	<base>/<sensor>/box/<variant>/info/           TAG value text
//	<base>/<sensor>/box/<variant>/refgrade/       grade of each wheel (float32)
//	<base>/<sensor>/box/<variant>/peakgrade/      grade of each peak (float32)
//
// The segment names are configurable, the shape is not.
package layout

import (
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Kind names one of the per-sensor directories
type Kind string

const (
	// Raw is the raw trace directory
	Raw Kind = "raw"

	// PeakTimes holds peak positions
	PeakTimes Kind = "peaktimes"

	// PeakValues holds peak values
	PeakValues Kind = "peakvalues"

	// BoxTimes holds the reference wheel times of a box
	BoxTimes Kind = "boxtimes"

	// BoxCars holds the car number of each reference wheel
	BoxCars Kind = "boxcars"

	// BoxInfo holds the info text of a box
	BoxInfo Kind = "boxinfo"

	// BoxRefGrade holds the grade of each reference wheel
	BoxRefGrade Kind = "boxrefgrade"

	// BoxPeakGrade holds the grade of each peak
	BoxPeakGrade Kind = "boxpeakgrade"

	// Compare is a free directory used by the dual view
	Compare Kind = "compare"
)

// PeakKinds are the kinds of the peak view
var PeakKinds = []Kind{PeakTimes, PeakValues}

// BoxKinds are the kinds of the stick view, peaks included
var BoxKinds = []Kind{PeakTimes, PeakValues, BoxTimes, BoxCars, BoxInfo, BoxRefGrade, BoxPeakGrade}

// Dirs holds the directory segments, slash separated, relative to the sensor
// directory (or to Box/<variant> for the box kinds)
type Dirs struct {
	Raw          string `yaml:"Raw" koanf:"Raw"`
	PeakTimes    string `yaml:"PeakTimes" koanf:"PeakTimes"`
	PeakValues   string `yaml:"PeakValues" koanf:"PeakValues"`
	Box          string `yaml:"Box" koanf:"Box"`
	BoxTimes     string `yaml:"BoxTimes" koanf:"BoxTimes"`
	BoxCars      string `yaml:"BoxCars" koanf:"BoxCars"`
	BoxInfo      string `yaml:"BoxInfo" koanf:"BoxInfo"`
	BoxRefGrade  string `yaml:"BoxRefGrade" koanf:"BoxRefGrade"`
	BoxPeakGrade string `yaml:"BoxPeakGrade" koanf:"BoxPeakGrade"`
	Compare      string `yaml:"Compare" koanf:"Compare"`
}

// DefaultDirs returns the conventional segment names
func DefaultDirs() Dirs {
	return Dirs{
		Raw:          "raw",
		PeakTimes:    "peak/times",
		PeakValues:   "peak/values",
		Box:          "box",
		BoxTimes:     "times",
		BoxCars:      "cars",
		BoxInfo:      "info",
		BoxRefGrade:  "refgrade",
		BoxPeakGrade: "peakgrade",
		Compare:      "match"}
}

// Layout locates the files of every sensor under Base
type Layout struct {
	// Base is the directory holding one directory per sensor
	Base string

	// Ext is the extension of every data file, including the dot
	Ext string

	// Variant selects the box/<variant> subdirectory
	Variant string

	Dirs Dirs
}

// Segment returns the slash separated path of a kind below the sensor directory
func (l Layout) Segment(k Kind) string {
	d := l.Dirs
	box := func(s string) string { return path.Join(d.Box, l.Variant, s) }
	switch k {
	case Raw:
		return d.Raw
	case PeakTimes:
		return d.PeakTimes
	case PeakValues:
		return d.PeakValues
	case BoxTimes:
		return box(d.BoxTimes)
	case BoxCars:
		return box(d.BoxCars)
	case BoxInfo:
		return box(d.BoxInfo)
	case BoxRefGrade:
		return box(d.BoxRefGrade)
	case BoxPeakGrade:
		return box(d.BoxPeakGrade)
	case Compare:
		return d.Compare
	default:
		return string(k)
	}
}

// Dir returns the directory of a kind for a sensor
func (l Layout) Dir(sensor string, k Kind) string {
	return filepath.Join(l.Base, sensor, filepath.FromSlash(l.Segment(k)))
}

// Tag returns the separator-delimited segment of a kind, which is swapped
// for the raw tag when matching derived names
func (l Layout) Tag(k Kind) string {
	sep := string(filepath.Separator)
	return sep + filepath.FromSlash(l.Segment(k)) + sep
}

// Glob returns the sorted data files of a kind.  A missing directory yields no
// files and no error.
func (l Layout) Glob(sensor string, k Kind) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.Dir(sensor, k), "*"+l.Ext))
	if err != nil {
		return nil, errors.Wrapf(err, "globbing %s of sensor %s", k, sensor)
	}
	sort.Strings(files)
	return files, nil
}

// Files holds discovered files by kind
type Files map[Kind][]string

// Discover globs the raw directory and every kind in kinds
func (l Layout) Discover(sensor string, kinds ...Kind) (Files, error) {
	if _, err := os.Stat(filepath.Join(l.Base, sensor)); err != nil {
		return nil, errors.Wrapf(err, "sensor %s", sensor)
	}
	out := Files{}
	for _, k := range append([]Kind{Raw}, kinds...) {
		files, err := l.Glob(sensor, k)
		if err != nil {
			return nil, err
		}
		out[k] = files
	}
	return out, nil
}
