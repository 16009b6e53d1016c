// Package trace reads and writes the flat binary arrays a sensor's data is
// stored in: little-endian float32 samples and little-endian uint32 indices.
//
// A file whose size is not a multiple of the word size is assumed to be
// mid-write by the tool that produces it and is re-read with exponential
// backoff for up to Patience before giving up with ErrTruncated.
package trace

import (
	"encoding/binary"
	"math"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
)

const wordSize = 4

var (
	// ErrTruncated is generated when a file never reaches a whole number of words
	ErrTruncated = errors.New("file size is not a multiple of 4 bytes")

	// ErrLength is generated when paired arrays disagree in length
	ErrLength = errors.New("array lengths differ")

	// Patience is how long a truncated file is retried for
	Patience = 2 * time.Second
)

func readWords(path string) ([]byte, error) {
	var buf []byte
	op := func() error {
		b, err := os.ReadFile(path)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "reading trace"))
		}
		if len(b)%wordSize != 0 {
			return errors.Wrapf(ErrTruncated, "%s has %d bytes", path, len(b))
		}
		buf = b
		return nil
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     10 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         250 * time.Millisecond,
		MaxElapsedTime:      Patience,
		Clock:               backoff.SystemClock})
	return buf, err
}

// ReadFloat32 reads a float32 file, widening to float64
func ReadFloat32(path string) ([]float64, error) {
	b, err := readWords(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(b)/wordSize)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*wordSize:])))
	}
	return out, nil
}

// ReadUint32 reads a uint32 file
func ReadUint32(path string) ([]uint32, error) {
	b, err := readWords(path)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(b)/wordSize)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*wordSize:])
	}
	return out, nil
}

// WriteFloat32 writes values narrowed to float32
func WriteFloat32(path string, values []float64) error {
	b := make([]byte, len(values)*wordSize)
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[i*wordSize:], math.Float32bits(float32(v)))
	}
	return errors.Wrap(os.WriteFile(path, b, 0o644), "writing trace")
}

// WriteUint32 writes a uint32 file
func WriteUint32(path string, values []uint32) error {
	b := make([]byte, len(values)*wordSize)
	for i, v := range values {
		binary.LittleEndian.PutUint32(b[i*wordSize:], v)
	}
	return errors.Wrap(os.WriteFile(path, b, 0o644), "writing trace")
}

// Composite scatters values to the positions in times of a zeroed buffer of
// length n, rebuilding a sparse signal as long as the raw trace
func Composite(times []uint32, values []float64, n int) ([]float64, error) {
	if len(times) != len(values) {
		return nil, errors.Wrapf(ErrLength, "%d times, %d values", len(times), len(values))
	}
	out := make([]float64, n)
	for i, t := range times {
		if int(t) >= n {
			return nil, errors.Errorf("time %d of peak %d is beyond the trace length %d", t, i, n)
		}
		out[t] = values[i]
	}
	return out, nil
}
