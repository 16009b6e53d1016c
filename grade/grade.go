// Package grade turns per-wheel alignment grades into traffic-light qualities
// for peaks and cars.
//
// A wheel grade is the alignment error of a reference wheel, negative when the
// wheel was not seen at all.  A car grade sums 10^quality over the car's
// wheels, so its decimal digits count the wheels of each quality: 1031 is one
// missing wheel, three good ones and one great one.
package grade

import (
	"math"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Quality is a traffic-light rating
type Quality int

const (
	// Great is green
	Great Quality = iota

	// Good is orange
	Good

	// Poor is red
	Poor

	// Missing is black
	Missing
)

// Ungraded marks a car without wheels
const Ungraded Quality = -1

var names = [...]string{"green", "orange", "red", "black"}

// Name returns the traffic color of q, or "none"
func (q Quality) Name() string {
	if q < Great || q > Missing {
		return "none"
	}
	return names[q]
}

// String implements fmt.Stringer
func (q Quality) String() string {
	return q.Name()
}

// Color returns the terminal color of q
func (q Quality) Color() *color.Color {
	switch q {
	case Great:
		return color.New(color.FgGreen, color.Bold)
	case Good:
		return color.New(color.FgYellow, color.Bold)
	case Poor:
		return color.New(color.FgRed, color.Bold)
	case Missing:
		return color.New(color.FgHiBlack, color.Bold)
	default:
		return color.New(color.Reset)
	}
}

// Sprint formats a in the color of q
func (q Quality) Sprint(a ...interface{}) string {
	return q.Color().Sprint(a...)
}

// Thresholds bound the grades of a great and of a good peak
type Thresholds struct {
	Great float64 `yaml:"Great" koanf:"Great"`
	Good  float64 `yaml:"Good" koanf:"Good"`
}

// DefaultThresholds returns the single-peak thresholds, 0.04 and 0.12
func DefaultThresholds() Thresholds {
	return Thresholds{Great: 0.04, Good: 0.12}
}

// Peak rates a single wheel or peak grade
func (th Thresholds) Peak(v float64) Quality {
	switch {
	case v < 0:
		return Missing
	case v <= th.Great:
		return Great
	case v <= th.Good:
		return Good
	default:
		return Poor
	}
}

// MaxCar is the largest car number CarGrades accepts, misses included
const MaxCar = 1 << 16

// CarGrades sums 10^quality of the wheels of each car.  The result is indexed
// by car number and has length max(cars)+1; car 0 marks boundaries and is not
// graded.
func (th Thresholds) CarGrades(cars []uint32, refgrades []float64) ([]int, error) {
	if len(refgrades) < len(cars) {
		return nil, errors.Errorf("%d cars but %d grades", len(cars), len(refgrades))
	}
	if len(cars) == 0 {
		return nil, nil
	}
	var top uint32
	for _, c := range cars {
		if c > top {
			top = c
		}
	}
	if top > MaxCar {
		return nil, errors.Errorf("car number %d exceeds %d", top, MaxCar)
	}
	out := make([]int, top+1)
	for i, c := range cars {
		if c == 0 {
			continue
		}
		out[c] += int(math.Pow10(int(th.Peak(refgrades[i]))))
	}
	return out, nil
}

// CarQuality rates a car grade
func CarQuality(g int) Quality {
	switch {
	case g <= 0:
		return Ungraded
	case g < 10 || g == 13:
		return Great
	case g < 100:
		return Good
	case g < 1000:
		return Poor
	default:
		return Missing
	}
}

// CarQualities rates every car grade
func CarQualities(grades []int) []Quality {
	out := make([]Quality, len(grades))
	for i, g := range grades {
		out[i] = CarQuality(g)
	}
	return out
}

// MarshalText renders q as its color name in JSON and YAML
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.Name()), nil
}

// UnmarshalText parses a color name as written by MarshalText
func (q *Quality) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "none" {
		*q = Ungraded
		return nil
	}
	for i, n := range names {
		if n == s {
			*q = Quality(i)
			return nil
		}
	}
	return errors.Errorf("unknown quality %q", s)
}
