package session

import (
	"fmt"

	"github.com/railsense/traceview/grade"
	"github.com/railsense/traceview/layout"
	"github.com/railsense/traceview/trace"
)

// Survey adds the car grades of every trace with both cars and reference
// grades to sv.  Examples are named "sensor-index".  progress, if not nil,
// is called before each trace.
func (s *Session) Survey(sv *grade.Survey, progress func(i, n int)) error {
	for i := 0; i < s.Len(); i++ {
		if progress != nil {
			progress(i, s.Len())
		}
		cp, rp := s.Path(layout.BoxCars, i), s.Path(layout.BoxRefGrade, i)
		if cp == "" || rp == "" {
			continue
		}
		cars, err := trace.ReadUint32(cp)
		if err != nil {
			return err
		}
		refgrades, err := trace.ReadFloat32(rp)
		if err != nil {
			return err
		}
		grades, err := s.Thresholds.CarGrades(cars, refgrades)
		if err != nil {
			return err
		}
		sv.Add(grades, fmt.Sprintf("%s-%d", s.Sensor, i))
	}
	return nil
}
