package match

import (
	"log"
)

// Index maps the canonical names of raw traces to their position in the
// discovery order
type Index struct {
	// Files holds the raw paths, in discovery order
	Files []string

	// Offsets holds the offset embedded in each raw name, parallel to Files
	Offsets []int

	// Ext is the extension the names were canonicalized with
	Ext string

	keys map[string]int
}

// BuildIndex assigns sequential positions to the canonical names of raw.
// Names that do not carry ext are logged and indexed by their full path
// with a zero offset.
func BuildIndex(raw []string, ext string) *Index {
	ix := &Index{
		Files:   raw,
		Offsets: make([]int, len(raw)),
		Ext:     ext,
		keys:    make(map[string]int, len(raw))}
	for i, r := range raw {
		key, off, err := RemoveOffset(r, ext)
		if err != nil {
			log.Printf("odd raw name: %v\n", err)
			key, off = r, 0
		}
		ix.keys[key] = i
		ix.Offsets[i] = off
	}
	log.Printf("have %d raw items\n", len(raw))
	return ix
}

// Len is the number of raw traces
func (ix *Index) Len() int {
	return len(ix.Files)
}

// Lookup returns the position of a canonical raw name
func (ix *Index) Lookup(key string) (int, bool) {
	i, ok := ix.keys[key]
	return i, ok
}
