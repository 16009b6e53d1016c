package grade

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
)

func TestPeakQuality(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		v    float64
		want Quality
	}{
		{-1, Missing},
		{0, Great},
		{0.04, Great},
		{0.05, Good},
		{0.12, Good},
		{0.2, Poor},
	}
	for _, tt := range tests {
		if got := th.Peak(tt.v); got != tt.want {
			t.Errorf("%v: expected %v got %v", tt.v, tt.want, got)
		}
	}
}

func TestCarGrades(t *testing.T) {
	th := DefaultThresholds()
	cars := []uint32{0, 1, 1, 1, 1, 0, 2, 2, 2, 2, 0}
	ref := []float64{0, 0.01, 0.01, 0.01, 0.1, 0, 0.01, 0.5, -1, 0.05, 0}
	got, err := th.CarGrades(cars, ref)
	if err != nil {
		t.Fatal(err)
	}
	// car 1: three great, one good; car 2: great, poor, missing, good
	if diff := cmp.Diff([]int{0, 13, 1111}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Quality{Ungraded, Great, Missing}, CarQualities(got)); diff != "" {
		t.Errorf("qualities mismatch (-want +got):\n%s", diff)
	}
}

func TestCarGradesShortGrades(t *testing.T) {
	if _, err := DefaultThresholds().CarGrades([]uint32{1, 1}, []float64{0}); err == nil {
		t.Error("expected an error for too few grades")
	}
}

func TestCarGradesCorruptCar(t *testing.T) {
	_, err := DefaultThresholds().CarGrades([]uint32{1, 0xFFFFFFFF}, []float64{0, 0})
	if err == nil {
		t.Error("expected an error for a corrupt car number")
	}
	got, err := DefaultThresholds().CarGrades([]uint32{1, MaxCar}, []float64{0.01, 0.01})
	if err != nil || len(got) != MaxCar+1 {
		t.Errorf("expected %d grades, got %d, %v", MaxCar+1, len(got), err)
	}
}

func TestCarQuality(t *testing.T) {
	tests := map[int]Quality{
		0:    Ungraded,
		4:    Great,
		13:   Great,
		12:   Good,
		40:   Good,
		130:  Poor,
		1000: Missing,
		2002: Missing,
	}
	for g, want := range tests {
		if got := CarQuality(g); got != want {
			t.Errorf("%d: expected %v got %v", g, want, got)
		}
	}
}

func TestQualityNames(t *testing.T) {
	if Good.Name() != "orange" || Ungraded.Name() != "none" {
		t.Errorf("unexpected names %s %s", Good.Name(), Ungraded.Name())
	}
}

func TestQualityKeysInJSON(t *testing.T) {
	in := map[Quality]int{Great: 2, Missing: 1, Ungraded: 4}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"black":1,"green":2,"none":4}` {
		t.Errorf("unexpected encoding %s", b)
	}
	var out map[Quality]int
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Error(diff)
	}
	var q Quality
	if err := q.UnmarshalText([]byte("purple")); err == nil {
		t.Error("expected an error for an unknown color")
	}
}

func TestCarSpans(t *testing.T) {
	// starts inside car 3, boundary at 100, car 4, boundary at 300, car 5, boundary at 500
	reftimes := []uint32{20, 60, 100, 150, 250, 300, 350, 450, 500}
	cars := []uint32{3, 3, 0, 4, 4, 0, 5, 5, 0}
	got := CarSpans(reftimes, cars, 10)
	want := []Span{
		{Car: 3, Start: 10, End: 100},
		{Car: 4, Start: 100, End: 300},
		{Car: 5, Start: 300, End: 500},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got[1].Mid() != 200 {
		t.Errorf("expected mid 200, got %d", got[1].Mid())
	}
}

func TestCarSpansLeadingBoundary(t *testing.T) {
	reftimes := []uint32{0, 40, 80, 120}
	cars := []uint32{0, 1, 1, 0}
	want := []Span{{Car: 1, Start: 0, End: 120}}
	if diff := cmp.Diff(want, CarSpans(reftimes, cars, 0)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMisses(t *testing.T) {
	if got := Misses([]uint32{0, 1, 1001, 1002, 2}); got != 2 {
		t.Errorf("expected 2 misses, got %d", got)
	}
}

func TestSurvey(t *testing.T) {
	color.NoColor = true
	s := NewSurvey()
	s.Add([]int{0, 0, 4, 13, 0, 130}, "062493-1")
	s.Add([]int{0, 4, 4}, "062493-2")
	s.Add([]int{0}, "062493-3")
	if diff := cmp.Diff(map[int]int{4: 2}, s.First); diff != "" {
		t.Errorf("first mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[int]int{4: 1, 13: 1, 130: 1}, s.Later); diff != "" {
		t.Errorf("later mismatch (-want +got):\n%s", diff)
	}
	if s.FirstExample[4] != "062493-2" || s.Skipped != 1 || s.Traces != 3 {
		t.Errorf("unexpected bookkeeping %+v", s)
	}
	buf := &bytes.Buffer{}
	s.Report(buf)
	out := buf.String()
	if !strings.Contains(out, "first\n   4 2 062493-2\n") {
		t.Errorf("unexpected report:\n%s", out)
	}
	if !strings.Contains(out, " 130 1 062493-1\n") {
		t.Errorf("unexpected report:\n%s", out)
	}
}
