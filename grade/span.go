package grade

// MissThreshold is the car number above which a wheel is a miss rather than
// a member of a car
const MissThreshold = 1000

// Span is the sample range a car occupies in a trace
type Span struct {
	Car   int `json:"car"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Mid returns the center of the span, where the car number is written
func (s Span) Mid() int {
	return (s.Start + s.End) / 2
}

// CarSpans finds the cars between consecutive boundary wheels (car 0).
// When the trace begins inside a car, that partial car runs from offset to
// the first boundary.
func CarSpans(reftimes, cars []uint32, offset int) []Span {
	n := len(reftimes)
	if len(cars) < n {
		n = len(cars)
	}
	var out []Span
	first := true
	for i := 0; i < n; i++ {
		if cars[i] != 0 {
			continue
		}
		if i > 0 && first {
			out = append(out, Span{Car: int(cars[i-1]), Start: offset, End: int(reftimes[i])})
		}
		first = false
		for j := i + 1; j < n; j++ {
			if cars[j] != 0 {
				continue
			}
			if c := int(cars[i+1]); c != 0 {
				out = append(out, Span{Car: c, Start: int(reftimes[i]), End: int(reftimes[j])})
			}
			break
		}
	}
	return out
}

// Misses counts the wheels marked as misses
func Misses(cars []uint32) int {
	n := 0
	for _, c := range cars {
		if c > MissThreshold {
			n++
		}
	}
	return n
}
