package dsp

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestIntegrate(t *testing.T) {
	x := []float64{1, 2, 3}
	if diff := cmp.Diff([]float64{1, 3, 6}, Integrate(x)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if x[1] != 2 {
		t.Error("Integrate modified its input")
	}
}

func TestRemoveDC(t *testing.T) {
	if diff := cmp.Diff([]float64{-1, 0, 1}, RemoveDC([]float64{1, 2, 3}), approx); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if len(RemoveDC(nil)) != 0 {
		t.Error("expected empty output for empty input")
	}
}

func TestRMSDiff(t *testing.T) {
	d, err := RMSDiff([]float64{1, 1, 1, 1}, []float64{0, 0, 0, 0})
	if err != nil || d != 1 {
		t.Errorf("expected 1, got %v (%v)", d, err)
	}
	if _, err := RMSDiff([]float64{1}, nil); err == nil {
		t.Error("expected a length error")
	}
}

func TestConditionStages(t *testing.T) {
	x := []float64{1, -1, 1, -1, 1, -1}
	y, stages := Condition(x)
	if len(y) != len(x) || len(stages) != 4 {
		t.Fatalf("expected %d samples and 4 stages, got %d and %d", len(x), len(y), len(stages))
	}
	if stages[0].Before != 6 {
		t.Errorf("expected input energy 6, got %v", stages[0].Before)
	}
	var mean float64
	for _, v := range y {
		mean += v
	}
	if math.Abs(mean) > 1e-9 {
		t.Errorf("expected zero mean output, got %v", mean)
	}
}

func TestSine(t *testing.T) {
	want := []float64{-2, 0, 2, 0}
	if diff := cmp.Diff(want, Sine(2, 4), approx); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCorrelatePlacement(t *testing.T) {
	series := []float64{0, 0, 0, 1, 1, 0, 0, 0}
	tmpl := []float64{1, 1}
	corr, err := Correlate(series, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	// dot products 0,0,1,2,1,0,0 at s+0; the maximum is scaled to 1
	want := []float64{0, 0, 0.5, 1, 0.5, 0, 0, 0}
	if diff := cmp.Diff(want, corr, approx); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCorrelateCentered(t *testing.T) {
	series := make([]float64, 20)
	series[10] = 1
	tmpl := []float64{0, 0, 1, 0}
	corr, err := Correlate(series, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	// the template peak at 2 meets the series peak at s=8, recorded at 8+1
	best := 0
	for i, v := range corr {
		if v > corr[best] {
			best = i
		}
	}
	if best != 9 {
		t.Errorf("expected the maximum at 9, got %d", best)
	}
}

func TestCorrelateTooLong(t *testing.T) {
	if _, err := Correlate([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected an error for a template longer than the series")
	}
}
