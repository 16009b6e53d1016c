package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/theckman/yacspin"
	"gonum.org/v1/gonum/floats"

	"github.com/railsense/traceview/browse"
	"github.com/railsense/traceview/distfile"
	"github.com/railsense/traceview/dsp"
	"github.com/railsense/traceview/grade"
	"github.com/railsense/traceview/imgrec"
	"github.com/railsense/traceview/navigate"
	"github.com/railsense/traceview/session"
	"github.com/railsense/traceview/trace"
	"github.com/railsense/traceview/util"
)

// DefaultPeriods are swept when none are given
var DefaultPeriods = []int{8, 16, 32, 64}

// resolveSensor accepts a sensor id or an index into sensors, guessed the
// same way as trace indices.  Long numbers that match nothing are taken as
// ids of unlisted sensors.
func resolveSensor(arg string, sensors []string) (string, error) {
	for _, s := range sensors {
		if s == arg {
			return s, nil
		}
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		// not configured, but it may still exist on disk
		return arg, nil
	}
	i := navigate.Guess(n, sensors)
	if i >= 0 && i < len(sensors) {
		return sensors[i], nil
	}
	if len(arg) >= navigate.MinGuessDigits {
		return arg, nil
	}
	return "", errors.Errorf("sensor %d out of range [0, %d)", i, len(sensors))
}

func sensorArg(c Config, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("a sensor is required")
	}
	return resolveSensor(args[0], c.Sensors)
}

// startArg parses the optional starting trace that follows the sensor
func startArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, errors.Errorf("trace %q is not an integer", args[1])
	}
	return n, nil
}

func interactive(c Config, m session.Mode, args []string) error {
	sensor, err := sensorArg(c, args)
	if err != nil {
		return err
	}
	start, err := startArg(args)
	if err != nil {
		return err
	}
	sess, err := session.Open(c.Layout(), sensor, c.Options(m, string(m)))
	if err != nil {
		return err
	}
	return sess.Interact(os.Stdin, os.Stdout, start)
}

// seekSensor moves nav, which runs over sensors, to the sensor arg names
func seekSensor(nav *navigate.Navigator, arg string, sensors []string) error {
	sensor, err := resolveSensor(arg, sensors)
	if err != nil {
		return err
	}
	if !nav.SeekName(sensor) {
		return errors.Errorf("sensor %s is not among the %d configured sensors", sensor, len(sensors))
	}
	return nil
}

func dist(c Config, args []string) error {
	if len(c.Sensors) == 0 {
		return errors.New("no sensors configured")
	}
	data, err := distfile.ReadFile(c.DistFile)
	if err != nil {
		return err
	}
	nav := navigate.New(c.Sensors, nil)
	if len(args) > 0 {
		if err := seekSensor(nav, args[0], c.Sensors); err != nil {
			return err
		}
	}
	known := make(map[string]bool, len(c.Trains))
	for _, t := range c.Trains {
		known[t] = true
	}
	return navigate.Run(os.Stdin, os.Stdout, nav, func(i int) error {
		data.Report(os.Stdout, c.Sensors[i], known)
		return nil
	})
}

func sweep(c Config, args []string) error {
	periods := DefaultPeriods
	if len(args) > 0 {
		periods = nil
		for _, a := range args {
			p, err := strconv.Atoi(a)
			if err != nil || p <= 0 {
				return errors.Errorf("period %q is not a positive integer", a)
			}
			periods = append(periods, p)
		}
	}
	series, err := trace.ReadText(c.SweepFile)
	if err != nil {
		return err
	}
	fmt.Printf("Read %d points from %s, sweeping periods %s\n", len(series), filepath.Base(c.SweepFile), util.IntSliceToCSV(periods))
	return sweepReport(os.Stdout, series, periods)
}

// sweepReport correlates a sine of each period with series and prints where
// the correlation peaks
func sweepReport(w io.Writer, series []float64, periods []int) error {
	for _, p := range periods {
		corr, err := dsp.Correlate(series, dsp.Sine(0.5, p))
		if err != nil {
			return errors.Wrapf(err, "period %d", p)
		}
		i := floats.MaxIdx(corr)
		fmt.Fprintf(w, "Period %d: best fit at %d, %g\n", p, i, corr[i])
	}
	return nil
}

func carcheck(c Config) error {
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		Writer:            os.Stderr,
		CharSet:           yacspin.CharSets[9],
		Suffix:            " ",
		StopCharacter:     "✓",
		StopColors:        []string{"fgGreen"},
		StopFailCharacter: "✗",
		StopFailColors:    []string{"fgRed"},
	})
	if err != nil {
		return err
	}
	if err = spinner.Start(); err != nil {
		return err
	}
	sv := grade.NewSurvey()
	l := c.Layout()
	for _, sensor := range c.Sensors {
		sess, err := session.Open(l, sensor, c.Options(session.Cars, "carcheck"))
		if err != nil {
			if os.IsNotExist(errors.Cause(err)) {
				log.Printf("skipping sensor %s: %v\n", sensor, err)
				continue
			}
			spinner.StopFail()
			return err
		}
		err = sess.Survey(sv, func(i, n int) {
			spinner.Message(fmt.Sprintf("sensor %s, trace %d of %d", sensor, i+1, n))
		})
		if err != nil {
			spinner.StopFail()
			return err
		}
	}
	spinner.Stop()
	sv.Report(os.Stdout)
	return nil
}

func export(c Config, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: export <sensor> <trace> [file.fits]")
	}
	sensor, err := resolveSensor(args[0], c.Sensors)
	if err != nil {
		return err
	}
	sess, err := session.Open(c.Layout(), sensor, c.Options(session.Pos, "export"))
	if err != nil {
		return err
	}
	if sess.Len() == 0 {
		return errors.Errorf("sensor %s has no raw traces", sensor)
	}
	if args[1] == "all" {
		return exportAll(sess, c.Autowrite.Recorder(sensor))
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrap(err, "trace")
	}
	nav := sess.Navigator()
	nav.Seek(n)
	i := nav.Current()
	out := fmt.Sprintf("%s-%d.fits", sensor, i)
	if len(args) > 2 {
		out = args[2]
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err = sess.Export(i, f); err != nil {
		return err
	}
	log.Printf("wrote %s (trace %d, %s)\n", out, i, nav.Name())
	return f.Close()
}

// exportAll records every trace of sess
func exportAll(sess *session.Session, rec *imgrec.Recorder) error {
	for i := 0; i < sess.Len(); i++ {
		fn, err := rec.Record(func(w io.Writer) error { return sess.Export(i, w) })
		if err != nil {
			return errors.Wrapf(err, "trace %d", i)
		}
		log.Printf("wrote %s\n", fn)
	}
	return nil
}

func serve(c Config) error {
	m, err := session.ParseMode(c.ServeMode)
	if err != nil {
		return err
	}
	interval, err := c.Interval()
	if err != nil {
		return errors.Wrap(err, "WatchInterval")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	l := c.Layout()
	sensors := map[string]*browse.Sensor{}
	for _, id := range c.Sensors {
		sess, err := session.Open(l, id, c.Options(m, "serve"))
		if err != nil {
			log.Printf("not serving sensor %s: %v\n", id, err)
			continue
		}
		s := browse.NewSensor(sess)
		s.Record(c.Autowrite.Recorder(id))
		sensors[id] = s
		if interval > 0 {
			go func(id string) {
				if err := s.Watch(ctx, interval); err != nil {
					log.Printf("watching sensor %s: %v\n", id, err)
				}
			}(id)
		}
	}
	if len(sensors) == 0 {
		return errors.Errorf("no sensors to serve below %s", c.BaseDir)
	}
	mux := browse.BuildMux(sensors)
	srv := &http.Server{Addr: c.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	log.Println("now listening for requests at ", c.Addr)
	err = srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
