// Package dsp holds the light signal conditioning applied to acceleration
// traces before display: integration toward velocity and position, DC
// removal, energy bookkeeping and a sliding correlation against a template.
package dsp

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Integrate returns the running sum of x
func Integrate(x []float64) []float64 {
	y := make([]float64, len(x))
	floats.CumSum(y, x)
	return y
}

// RemoveDC returns x less its mean
func RemoveDC(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	if len(y) == 0 {
		return y
	}
	floats.AddConst(-stat.Mean(y, nil), y)
	return y
}

// Energy is the sum of squares of x
func Energy(x []float64) float64 {
	return floats.Dot(x, x)
}

// RMSDiff is the root mean square difference of two equal length signals
func RMSDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Errorf("lengths differ, %d and %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, 2) / math.Sqrt(float64(len(a))), nil
}

// Stage records the energy of a signal before and after one step
type Stage struct {
	Name   string  `json:"name"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// Condition integrates x twice, from acceleration to position, removing the
// DC after each integration.  It returns the result and the energy bookkeeping
// of every step.
func Condition(x []float64) ([]float64, []Stage) {
	var stages []Stage
	y := x
	for pass := 0; pass < 2; pass++ {
		e0 := Energy(y)
		y = Integrate(y)
		stages = append(stages, Stage{Name: "integrate", Before: e0, After: Energy(y)})
		e0 = Energy(y)
		y = RemoveDC(y)
		stages = append(stages, Stage{Name: "no DC", Before: e0, After: Energy(y)})
	}
	return y, stages
}

// Sine returns one period of -ampl*cos, sampled at 0..period-1
func Sine(ampl float64, period int) []float64 {
	y := make([]float64, period)
	for i := range y {
		y[i] = -ampl * math.Cos(float64(i)*2*math.Pi/float64(period))
	}
	return y
}

// Correlate slides tmpl over series and records the dot product of each
// placement at the placement's center, s + len(tmpl)/2 - 1.  The result is as
// long as series and is scaled so that its maximum equals the maximum of
// series.
func Correlate(series, tmpl []float64) ([]float64, error) {
	ls, lp := len(series), len(tmpl)
	if lp == 0 || lp > ls {
		return nil, errors.Errorf("template of %d samples does not fit a series of %d", lp, ls)
	}
	corr := make([]float64, ls)
	center := lp/2 - 1
	if center < 0 {
		center = 0
	}
	for s := 0; s+lp <= ls; s++ {
		corr[s+center] = floats.Dot(series[s:s+lp], tmpl)
	}
	cmax := floats.Max(corr)
	if cmax != 0 {
		floats.Scale(floats.Max(series)/cmax, corr)
	}
	return corr, nil
}
