package grade

import (
	"fmt"
	"io"
	"sort"
)

// Survey tallies car grades over many traces, separating the first graded
// car of a trace from the ones after it.  The first car is often cut by the
// start of the recording, which shows up as a different grade distribution.
type Survey struct {
	First map[int]int `json:"first"`
	Later map[int]int `json:"later"`

	// FirstExample and LaterExample hold the last trace each grade was seen in
	FirstExample map[int]string `json:"first_example"`
	LaterExample map[int]string `json:"later_example"`

	// Traces counts the traces added, Skipped the ones without a graded car
	Traces  int `json:"traces"`
	Skipped int `json:"skipped"`
}

// NewSurvey returns an empty Survey
func NewSurvey() *Survey {
	return &Survey{
		First:        map[int]int{},
		Later:        map[int]int{},
		FirstExample: map[int]string{},
		LaterExample: map[int]string{}}
}

// Add tallies the car grades of one trace, as returned by CarGrades.
// example identifies the trace, e.g. "062493-17".
func (s *Survey) Add(grades []int, example string) {
	s.Traces++
	i := 1
	for i < len(grades) && grades[i] == 0 {
		i++
	}
	if i >= len(grades) {
		s.Skipped++
		return
	}
	s.First[grades[i]]++
	s.FirstExample[grades[i]] = example
	for _, g := range grades[i+1:] {
		if g == 0 {
			continue
		}
		s.Later[g]++
		s.LaterExample[g] = example
	}
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Report writes the tallies to w, one "grade count example" line per grade,
// with the grade in its traffic color
func (s *Survey) Report(w io.Writer) {
	section := func(title string, counts map[int]int, examples map[int]string) {
		fmt.Fprintln(w, title)
		for _, g := range sortedKeys(counts) {
			fmt.Fprintf(w, "%s %d %s\n", CarQuality(g).Sprint(fmt.Sprintf("%4d", g)), counts[g], examples[g])
		}
	}
	section("first", s.First, s.FirstExample)
	section("later", s.Later, s.LaterExample)
	fmt.Fprintf(w, "%d traces, %d without graded cars\n", s.Traces, s.Skipped)
}
