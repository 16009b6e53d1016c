// Package info parses the info file of a box: one "TAG value" pair per line
package info

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Info describes the reference train matched to a trace
type Info struct {
	Train string `json:"train"`

	// Diameter is the wheel diameter in samples
	Diameter int `json:"wheel_diameter"`

	Speed string `json:"speed"`
	Accel string `json:"accel"`
	Dist  string `json:"dist"`
}

// BadTagError is generated when a line carries a tag Parse does not know
type BadTagError struct {
	Tag  string
	Line int
}

func (e *BadTagError) Error() string {
	return fmt.Sprintf("bad tag %q on line %d", e.Tag, e.Line)
}

// Parse reads the info text from r.  Whitespace is normalized, blank lines are
// skipped.  An unknown tag stops parsing with a *BadTagError.
func Parse(r io.Reader) (Info, error) {
	var inf Info
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return inf, errors.Errorf("line %d: tag %s has no value", line, fields[0])
		}
		tag, val := fields[0], strings.Join(fields[1:], " ")
		switch tag {
		case "TRAIN_MATCH":
			inf.Train = val
		case "WHEEL_DIAMETER":
			d, err := strconv.Atoi(val)
			if err != nil {
				return inf, errors.Wrapf(err, "line %d: wheel diameter", line)
			}
			inf.Diameter = d
		case "SPEED":
			inf.Speed = val
		case "ACCEL":
			inf.Accel = val
		case "DIST_MATCH":
			inf.Dist = val
		default:
			return inf, &BadTagError{Tag: tag, Line: line}
		}
	}
	return inf, sc.Err()
}

// ReadFile parses the info file at path
func ReadFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	inf, err := Parse(f)
	return inf, errors.WithMessage(err, path)
}

// Text renders the block of text shown above a stick diagram
func (i Info) Text() string {
	return i.Train + "\ndist = " + i.Dist + "\n" + i.Speed + "\n" + i.Accel
}
