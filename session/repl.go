package session

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/railsense/traceview/info"
	"github.com/railsense/traceview/navigate"
)

// Fatal reports whether err should end an interactive session rather than
// be shown and skipped
func Fatal(err error) bool {
	var bad *info.BadTagError
	return errors.As(err, &bad)
}

// Interact runs the console loop over the traces, starting at the trace
// navigate.Guess picks for start: each visited trace is summarized to w.  A trace that cannot be read is reported and the loop
// goes on; a malformed info file ends it.
func (s *Session) Interact(r io.Reader, w io.Writer, start int) error {
	if s.Len() == 0 {
		return errors.Errorf("sensor %s has no raw traces", s.Sensor)
	}
	nav := s.Navigator()
	nav.Seek(start)
	return navigate.Run(r, w, nav, func(i int) error {
		sum, err := s.Summarize(i)
		if err != nil {
			if Fatal(err) {
				return err
			}
			fmt.Fprintf(w, "%s: %v\n", nav.Name(), err)
			return nil
		}
		sum.Print(w)
		return nil
	})
}
