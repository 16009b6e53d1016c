package match

import (
	"fmt"
	"log"
	"strings"
)

// Strictness determines what an unmatched derived file does to a match
type Strictness int

const (
	// Lenient logs unmatched derived files and carries on
	Lenient Strictness = iota

	// Strict fails the match on an unmatched derived file
	Strict
)

// String implements fmt.Stringer
func (s Strictness) String() string {
	if s == Strict {
		return "strict"
	}
	return "lenient"
}

// StrictnessFromBool maps true to Strict and false to Lenient
func StrictnessFromBool(b bool) Strictness {
	if b {
		return Strict
	}
	return Lenient
}

// UnmatchedError is generated in Strict mode when derived files have no raw
// counterpart.  It names the first of them.
type UnmatchedError struct {
	// Path is the derived file
	Path string

	// Key is the raw name it was expected to match
	Key string

	// Total is how many derived files went unmatched
	Total int
}

func (e *UnmatchedError) Error() string {
	s := fmt.Sprintf("did not match %s (from %s)", e.Key, e.Path)
	if e.Total > 1 {
		s += fmt.Sprintf(", %d unmatched in total", e.Total)
	}
	return s
}

// Entry is one slot of a Table
type Entry struct {
	// Path is the derived file, empty if the raw trace has none
	Path string

	// Offset is the offset recovered from the derived name
	Offset int
}

// Table is parallel to an Index and holds the derived file matched to each
// raw trace
type Table struct {
	Entries []Entry

	// Unmatched holds the derived files which matched no raw trace
	Unmatched []string
}

// Len is the number of slots, equal to the length of the Index
func (t Table) Len() int {
	return len(t.Entries)
}

// Has returns true if slot i holds a derived file
func (t Table) Has(i int) bool {
	return i >= 0 && i < len(t.Entries) && t.Entries[i].Path != ""
}

// Path returns the derived file in slot i, or "" if there is none
func (t Table) Path(i int) string {
	if !t.Has(i) {
		return ""
	}
	return t.Entries[i].Path
}

// Count returns the number of filled slots
func (t Table) Count() int {
	n := 0
	for _, e := range t.Entries {
		if e.Path != "" {
			n++
		}
	}
	return n
}

// Match finds the raw trace of each derived file.  The derived directory tag
// (e.g. "/peak/times/") is replaced with the raw one (e.g. "/raw/") and the
// offset is stripped; the result is looked up in ix.
//
// Unmatched files are logged and listed on the table.  In Strict mode the
// table is returned alongside an *UnmatchedError.
func Match(ix *Index, derived []string, rawTag, derivedTag string, s Strictness) (Table, error) {
	t := Table{Entries: make([]Entry, ix.Len())}
	var first *UnmatchedError
	for _, d := range derived {
		m := strings.ReplaceAll(d, derivedTag, rawTag)
		key, off, err := RemoveOffset(m, ix.Ext)
		if err != nil {
			log.Printf("odd derived name: %v\n", err)
			key = m
		}
		i, ok := ix.Lookup(key)
		if !ok || err != nil {
			log.Printf("did not match %s\n", key)
			t.Unmatched = append(t.Unmatched, d)
			if first == nil {
				first = &UnmatchedError{Path: d, Key: key}
			}
			continue
		}
		if prev := t.Entries[i].Path; prev != "" {
			log.Printf("%s and %s both match %s, keeping the latter\n", prev, d, ix.Files[i])
		}
		t.Entries[i] = Entry{Path: d, Offset: off}
	}
	if first != nil && s == Strict {
		first.Total = len(t.Unmatched)
		return t, first
	}
	return t, nil
}
