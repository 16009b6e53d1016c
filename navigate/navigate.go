// Package navigate steps through an ordered list of traces with the
// single-token commands typed at the Input: prompt:
//
//	q       quit
//	n       next trace
//	N       next trace that has matched derived data
//	p       previous trace
//	<int>   jump to an index; numbers of 4 or more digits are first
//	        looked up as a substring of the trace names (a run or sensor id)
package navigate

import (
	"strconv"
	"strings"

	"github.com/railsense/traceview/util"
)

// MinGuessDigits is the length from which a number is treated as an id
// embedded in a name rather than as an index
const MinGuessDigits = 4

// Status is the outcome of interpreting a token
type Status int

const (
	// Moved means the token was understood; the index may be unchanged if clamped
	Moved Status = iota

	// Quit means the user asked to stop
	Quit

	// Invalid means the token was not understood and the index is unchanged
	Invalid
)

func (s Status) String() string {
	switch s {
	case Moved:
		return "moved"
	case Quit:
		return "quit"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Slots reports which positions have matched derived data.
// match.Table satisfies it.
type Slots interface {
	Has(int) bool
}

// Guess returns the index of the first name containing the decimal form of n
// when that form has at least MinGuessDigits characters, otherwise n itself.
// If nothing contains it, n is returned.
func Guess(n int, names []string) int {
	s := strconv.Itoa(n)
	if len(s) < MinGuessDigits {
		return n
	}
	if i := util.FirstContaining(names, s); i >= 0 {
		return i
	}
	return n
}

// Navigate interprets token relative to curr in a list of length limit.
// names are used for the fuzzy guess; slots for N and may be nil, in which
// case N runs to the end of the list.
//
// The result is clamped to [0, limit-1] unless the status is Invalid,
// which leaves curr untouched.
func Navigate(curr, limit int, token string, slots Slots, names []string) (int, Status) {
	c := curr
	switch tok := strings.TrimSpace(token); tok {
	case "q":
		return curr, Quit
	case "n":
		c++
	case "N":
		c++
		for c < limit && (slots == nil || !slots.Has(c)) {
			c++
		}
	case "p":
		c--
	default:
		n, err := strconv.Atoi(tok)
		if err != nil {
			return curr, Invalid
		}
		c = Guess(n, names)
	}
	return util.ClampIndex(c, limit), Moved
}

// Navigator holds the position in a list of traces
type Navigator struct {
	curr  int
	names []string
	slots Slots
}

// New returns a Navigator over names positioned at the first entry.
// slots may be nil.
func New(names []string, slots Slots) *Navigator {
	return &Navigator{names: names, slots: slots}
}

// Current returns the current index
func (n *Navigator) Current() int {
	return n.curr
}

// Len returns the length of the list
func (n *Navigator) Len() int {
	return len(n.names)
}

// Name returns the name at the current index, or "" for an empty list
func (n *Navigator) Name() string {
	if len(n.names) == 0 {
		return ""
	}
	return n.names[n.curr]
}

// Seek moves to index i, resolved with Guess and clamped
func (n *Navigator) Seek(i int) {
	n.curr = util.ClampIndex(Guess(i, n.names), len(n.names))
}

// Step interprets a token and moves accordingly
func (n *Navigator) Step(token string) Status {
	c, st := Navigate(n.curr, len(n.names), token, n.slots, n.names)
	n.curr = c
	return st
}

// SeekName moves to the entry equal to name and reports whether there was one
func (n *Navigator) SeekName(name string) bool {
	for i, s := range n.names {
		if s == name {
			n.curr = i
			return true
		}
	}
	return false
}

// MoveTo moves to index i, clamped, without guessing
func (n *Navigator) MoveTo(i int) {
	n.curr = util.ClampIndex(i, len(n.names))
}
