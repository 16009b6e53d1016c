// Package match pairs derived data files (peaks, boxes, grades) with the raw
// trace they were computed from.
//
// Raw and derived files share a name modulo two things: the directory segment
// they live under, and an optional _offset_<N> tag placed in front of the
// extension.  Removing both yields the canonical key used for matching.
package match

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// OffsetTag marks the alignment offset embedded in a file name
const OffsetTag = "_offset_"

// ErrNoExtension is generated when a name does not carry the expected extension
var ErrNoExtension = errors.New("name does not carry the expected extension")

// RemoveOffset strips ext and an optional _offset_<N> tag from name, then
// restores ext.  It returns the canonical name and the offset, zero if the
// name had no tag.
//
// A name without ext returns ErrNoExtension; the caller decides whether that
// is worth more than a log line.
func RemoveOffset(name, ext string) (string, int, error) {
	mp := strings.Index(name, ext)
	if mp == -1 {
		return "", 0, errors.Wrapf(ErrNoExtension, "%s (want %s)", name, ext)
	}
	stem := name[:mp]
	offset := 0
	if op := strings.Index(stem, OffsetTag); op >= 0 {
		o, err := strconv.Atoi(stem[op+len(OffsetTag):])
		if err != nil {
			return "", 0, errors.Wrapf(err, "bad offset in %s", name)
		}
		offset = o
		stem = stem[:op]
	}
	return stem + ext, offset, nil
}
