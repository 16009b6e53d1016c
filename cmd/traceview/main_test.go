package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/railsense/traceview/dsp"
	"github.com/railsense/traceview/layout"
	"github.com/railsense/traceview/match"
	"github.com/railsense/traceview/navigate"
	"github.com/railsense/traceview/session"
	"github.com/railsense/traceview/trace"
)

func TestResolveSensor(t *testing.T) {
	sensors := defaults().Sensors
	tests := []struct {
		arg, want string
	}{
		{"078622", "078622"},
		{"0", "062493"},
		{"34", "391731"},
		{"9743", "099743"}, // four digits are searched for
		{"123456", "123456"},
	}
	for _, tt := range tests {
		got, err := resolveSensor(tt.arg, sensors)
		if err != nil || got != tt.want {
			t.Errorf("%s: expected %s got %s, %v", tt.arg, tt.want, got, err)
		}
	}
	if _, err := resolveSensor("35", sensors); err == nil {
		t.Error("expected an out of range index to fail")
	}
	if _, err := sensorArg(defaults(), nil); err == nil {
		t.Error("expected a missing sensor to fail")
	}
}

func TestStartArg(t *testing.T) {
	if n, err := startArg([]string{"062493"}); n != 0 || err != nil {
		t.Errorf("expected 0 without a trace, got %d, %v", n, err)
	}
	if n, err := startArg([]string{"062493", "0004"}); n != 4 || err != nil {
		t.Errorf("expected 4, got %d, %v", n, err)
	}
	if _, err := startArg([]string{"062493", "next"}); err == nil {
		t.Error("expected a word to fail")
	}
}

func TestSeekSensor(t *testing.T) {
	sensors := defaults().Sensors
	nav := navigate.New(sensors, nil)
	if err := seekSensor(nav, "3", sensors); err != nil || nav.Name() != "065330" {
		t.Errorf("expected 065330, got %s, %v", nav.Name(), err)
	}
	if err := seekSensor(nav, "123456", sensors); err == nil {
		t.Error("expected an unlisted sensor to fail")
	}
	if nav.Name() != "065330" {
		t.Errorf("a failed seek should not move, at %s", nav.Name())
	}
}

func TestOptions(t *testing.T) {
	c := defaults()
	if o := c.Options(session.Cars, "carcheck"); o.Strictness != match.Strict || o.Mode != session.Cars {
		t.Errorf("unexpected carcheck options %+v", o)
	}
	if o := c.Options(session.Dual, "dual"); o.Strictness != match.Lenient {
		t.Errorf("dual should be lenient, got %s", o.Strictness)
	}
	if o := c.Options(session.Pos, "unknown"); o.Strictness != match.Lenient {
		t.Errorf("unlisted commands should be lenient, got %s", o.Strictness)
	}
}

func TestInterval(t *testing.T) {
	c := defaults()
	d, err := c.Interval()
	if err != nil || d != 2*time.Second {
		t.Errorf("expected 2s, got %v %v", d, err)
	}
	c.WatchInterval = ""
	if d, _ = c.Interval(); d != 0 {
		t.Errorf("expected no watching, got %v", d)
	}
	c.WatchInterval = "soon"
	if _, err = c.Interval(); err == nil {
		t.Error("expected a bad duration to fail")
	}
}

func TestConfigDefaults(t *testing.T) {
	setupconfig()
	c := loadconf()
	if c.Addr != ":8000" || len(c.Sensors) != 35 || c.Dirs.Raw != "raw" {
		t.Errorf("unexpected config %+v", c)
	}
	if !c.Strict["pos"] || c.Strict["dual"] {
		t.Errorf("unexpected strictness %v", c.Strict)
	}
}

func TestSweepReport(t *testing.T) {
	// one period of 8 starting at sample 16
	series := make([]float64, 48)
	copy(series[16:], dsp.Sine(1, 8))
	var buf bytes.Buffer
	if err := sweepReport(&buf, series, []int{8}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Period 8: best fit at 19, ") {
		t.Errorf("unexpected report %q", buf.String())
	}
	if err := sweepReport(&buf, series, []int{64}); err == nil {
		t.Error("expected a period longer than the series to fail")
	}
}

func TestExportAll(t *testing.T) {
	c := defaults()
	c.BaseDir = t.TempDir()
	c.Autowrite.Root = filepath.Join(c.BaseDir, "exports")
	raw := c.Layout().Dir("062493", layout.Raw)
	if err := os.MkdirAll(raw, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"A.dat", "B_offset_4.dat"} {
		if err := trace.WriteFloat32(filepath.Join(raw, name), []float64{1, 2, 3}); err != nil {
			t.Fatal(err)
		}
	}
	sess, err := session.Open(c.Layout(), "062493", c.Options(session.Pos, "export"))
	if err != nil {
		t.Fatal(err)
	}
	if err := exportAll(sess, c.Autowrite.Recorder("062493")); err != nil {
		t.Fatal(err)
	}
	files, _ := filepath.Glob(filepath.Join(c.Autowrite.Root, "*", "062493-*.fits"))
	if len(files) != 2 {
		t.Errorf("expected 2 exports, got %v", files)
	}
}
