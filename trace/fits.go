package trace

import (
	"io"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"
)

// WriteFits streams rows of equal length to w as a 2-D float32 image,
// one image row per input row
func WriteFits(w io.Writer, metadata []fitsio.Card, rows ...[]float64) error {
	if len(rows) == 0 {
		return errors.New("no rows to write")
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) != width {
			return errors.Wrapf(ErrLength, "row %d has %d samples, row 0 has %d", i, len(r), width)
		}
	}
	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()
	im := fitsio.NewImage(-32, []int{width, len(rows)})
	defer im.Close()
	err = im.Header().Append(metadata...)
	if err != nil {
		return err
	}
	buf := make([]float32, 0, width*len(rows))
	for _, r := range rows {
		for _, v := range r {
			buf = append(buf, float32(v))
		}
	}
	err = im.Write(buf)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
