// Package distfile reads the distance file: for every sensor and train, the
// (distance, speed) pairs of the matches made against that train.
//
// The file is a sequence of blocks separated by blank lines:
//
//	062493
//	ICE1_DEU_56
//	1.25,220.1
//	0.75,180.0
//
package distfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is one match of a train
type Point struct {
	Speed float64 `json:"speed"`
	Dist  float64 `json:"dist"`
}

// Data maps sensor to train to points
type Data map[string]map[string][]Point

const (
	wantSensor = iota
	wantTrain
	wantData
)

// Parse reads a distance file
func Parse(r io.Reader) (Data, error) {
	data := Data{}
	state := wantSensor
	var sensor, train string
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		c := strings.TrimRight(sc.Text(), "\r")
		switch state {
		case wantSensor:
			sensor = c
			state = wantTrain
		case wantTrain:
			train = c
			state = wantData
		default:
			if c == "" {
				state = wantSensor
				continue
			}
			parts := strings.SplitN(c, ",", 2)
			if len(parts) != 2 {
				return nil, errors.Errorf("line %d: expected dist,speed, got %q", line, c)
			}
			dist, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: distance", line)
			}
			speed, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: speed", line)
			}
			if data[sensor] == nil {
				data[sensor] = map[string][]Point{}
			}
			data[sensor][train] = append(data[sensor][train], Point{Speed: speed, Dist: dist})
		}
	}
	return data, sc.Err()
}

// ReadFile parses the distance file at path
func ReadFile(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Parse(f)
	return d, errors.WithMessage(err, path)
}

// Trains returns the trains seen by a sensor, sorted
func (d Data) Trains(sensor string) []string {
	out := make([]string, 0, len(d[sensor]))
	for t := range d[sensor] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Report writes one line per train of sensor: the number of matches, the
// speed range and the distance statistics.  Trains missing from known are
// flagged, unless known is empty.
func (d Data) Report(w io.Writer, sensor string, known map[string]bool) {
	fmt.Fprintln(w, sensor)
	trains := d.Trains(sensor)
	if len(trains) == 0 {
		fmt.Fprintln(w, "  no matches")
		return
	}
	for _, t := range trains {
		pts := d[sensor][t]
		speed := make([]float64, len(pts))
		dist := make([]float64, len(pts))
		for i, p := range pts {
			speed[i], dist[i] = p.Speed, p.Dist
		}
		mean, std := stat.MeanStdDev(dist, nil)
		if len(dist) < 2 {
			std = 0
		}
		fmt.Fprintf(w, "  %-18s %4d matches, speed %g to %g, dist %.3g +- %.2g", t, len(pts), floats.Min(speed), floats.Max(speed), mean, std)
		if len(known) > 0 && !known[t] {
			fmt.Fprint(w, " (unknown train)")
		}
		fmt.Fprintln(w)
	}
}
