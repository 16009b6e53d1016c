package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"

	"github.com/railsense/traceview/grade"
	"github.com/railsense/traceview/imgrec"
	"github.com/railsense/traceview/layout"
	"github.com/railsense/traceview/match"
	"github.com/railsense/traceview/session"
	"github.com/railsense/traceview/util"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "traceview.yml"
	k              = koanf.New(".")
)

// Config holds everything a mode needs to find and judge the data
type Config struct {
	// Addr is the address serve listens at
	Addr string `yaml:"Addr" koanf:"Addr"`

	// BaseDir holds one directory per sensor
	BaseDir string `yaml:"BaseDir" koanf:"BaseDir"`

	// Ext is the extension of the data files
	Ext string `yaml:"Ext" koanf:"Ext"`

	// Variant is the box subdirectory, e.g. "best"
	Variant string `yaml:"Variant" koanf:"Variant"`

	Dirs layout.Dirs `yaml:"Dirs" koanf:"Dirs"`

	// Sensors are the sensor ids, in the order indices refer to them
	Sensors []string `yaml:"Sensors" koanf:"Sensors"`

	// Trains are the known train types, used to flag unknown ones in dist
	Trains []string `yaml:"Trains" koanf:"Trains"`

	// Strict maps a mode to whether an unmatched derived file is fatal
	Strict map[string]bool `yaml:"Strict" koanf:"Strict"`

	Grades grade.Thresholds `yaml:"Grades" koanf:"Grades"`

	// DistFile is the distance file shown by dist
	DistFile string `yaml:"DistFile" koanf:"DistFile"`

	// SweepFile is the one-value-per-line series swept by sweep
	SweepFile string `yaml:"SweepFile" koanf:"SweepFile"`

	// ServeMode is the mode of the sessions behind serve
	ServeMode string `yaml:"ServeMode" koanf:"ServeMode"`

	Autowrite Autowrite `yaml:"Autowrite" koanf:"Autowrite"`

	// WatchInterval is the shortest time between reloads of a served sensor,
	// e.g. "2s"; empty disables watching
	WatchInterval string `yaml:"WatchInterval" koanf:"WatchInterval"`
}

// Autowrite configures where FITS exports are archived, by serve when
// Enabled and always by "export <sensor> all"
type Autowrite struct {
	Root    string `yaml:"Root" koanf:"Root"`
	Enabled bool   `yaml:"Enabled" koanf:"Enabled"`
}

// Recorder returns a recorder for the exports of sensor
func (a Autowrite) Recorder(sensor string) *imgrec.Recorder {
	return &imgrec.Recorder{Root: a.Root, Prefix: sensor + "-", Enabled: a.Enabled}
}

// Layout returns the directory layout of the config
func (c Config) Layout() layout.Layout {
	return layout.Layout{Base: c.BaseDir, Ext: c.Ext, Variant: c.Variant, Dirs: c.Dirs}
}

// Options returns the session options of a mode; the strictness is looked
// up under name, which may differ from the mode (e.g. carcheck)
func (c Config) Options(m session.Mode, name string) session.Options {
	return session.Options{
		Mode:       m,
		Strictness: match.StrictnessFromBool(c.Strict[name]),
		Thresholds: c.Grades}
}

// Interval parses WatchInterval; zero means do not watch
func (c Config) Interval() (time.Duration, error) {
	if c.WatchInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.WatchInterval)
}

func defaults() Config {
	return Config{
		Addr:    ":8000",
		BaseDir: "sensors",
		Ext:     ".dat",
		Variant: "best",
		Dirs:    layout.DefaultDirs(),
		Sensors: []string{
			"062493", "063848", "063905", "065330", "066221",
			"066254", "066270", "067138", "075149", "078622",
			"078630", "078655", "078663", "078747", "078754",
			"078770", "078796", "078804", "078812", "078960",
			"081857", "082863", "084992", "085320", "085478",
			"099743", "101630", "101648", "101796", "106346",
			"391705", "391710", "391711", "391718", "391731"},
		Trains: []string{
			"ICE1_DEU_56", "ICE1_old_CHE_56",
			"ICE2_DEU_32", "ICE2_DEU_32A", "ICE2_DEU_32B",
			"ICE2_DEU_64", "ICE3_DEU_32",
			"ICE4_DEU_28", "ICE4_DEU_48",
			"ICET_56", "ICET_DEU_20", "ICET_DEU_28", "ICET_DEU_48",
			"MERIDIAN_DEU_08", "MERIDIAN_DEU_14", "MERIDIAN_DEU_22",
			"MERIDIAN_DEU_28", "MERIDIAN_DEU_42",
			"SBAHN423_DEU_10", "SBAHN423_DEU_20", "SBAHN423_DEU_30",
			"X2_SWE_28", "X2_SWE_56",
			"X31_SWE_12", "X31_SWE_24", "X31_SWE_36",
			"X55_SWE_16",
			"X61_SWE_10", "X61_SWE_20",
			"X74_SWE_14", "X74_SWE_28"},
		Strict: map[string]bool{
			"pos":      true,
			"box":      true,
			"dual":     false,
			"cond":     false,
			"carcheck": true,
			"export":   false,
			"serve":    false},
		Grades:        grade.DefaultThresholds(),
		DistFile:      "dist.txt",
		SweepFile:     "s07-01-bogie.csv",
		ServeMode:     "box",
		Autowrite:     Autowrite{Root: "exports"},
		WatchInterval: "2s"}
}

func setupconfig() {
	k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func loadconf() Config {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	if u := util.UniqueString(c.Sensors); len(u) != len(c.Sensors) {
		log.Printf("dropped %d repeated sensors\n", len(c.Sensors)-len(u))
		c.Sensors = u
	}
	return c
}

func root() {
	str := `traceview browses the raw traces of wayside train sensors together with the
files derived from them: detected peaks, matched reference trains, car grades.

Usage:
	traceview <command> [arguments]

Commands:
	pos <sensor> [trace]
	box <sensor> [trace]
	dual <sensor> [trace]
	cond <sensor> [trace]
	dist [sensor]
	sweep [period...]
	carcheck
	export <sensor> <trace> [file.fits]
	export <sensor> all
	serve
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `traceview is amenable to configuration via its .yaml file, traceview.yml in the
working directory.  For a primer on YAML, see https://yaml.org/start.html
mkconf writes the defaults to the file, conf prints the configuration in effect.

Each sensor lives in BaseDir/<sensor>, with raw traces in Dirs.Raw and the
derived files in the other Dirs; box files sit below Dirs.Box/<Variant>.
A raw trace may carry an offset in its name, as in T1_offset_120.dat.

A sensor may be given by id or by its position in Sensors.  The interactive
modes start at the optional trace, resolved like the <int> token below.

The interactive modes (pos, box, dual, cond, dist) read one token per line:
	n	next trace
	N	next trace that has the mode's main derived file
	p	previous trace
	q	quit
	<int>	go to that index; four or more digits pick the first trace
		whose name contains them

Strict lists per command whether a derived file without a raw trace ends the
command (true) or is only logged (false).

serve exposes every sensor in ServeMode at /sensors/<sensor>; see
/endpoints for the routes.  Directories are watched and sessions rebuilt at
most once per WatchInterval.  With Autowrite.Enabled every FITS download is
also saved below Autowrite.Root/yyyy-mm-dd; export <sensor> all saves every
trace of a sensor there.`
	fmt.Println(str)
}

func mkconf() {
	c := loadconf()
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := loadconf()
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("traceview version %v\n", Version)
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	rest := args[2:]
	var err error
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "version":
		pversion()
		return
	case "pos", "box", "dual", "cond":
		err = interactive(loadconf(), session.Mode(cmd), rest)
	case "dist":
		err = dist(loadconf(), rest)
	case "sweep":
		err = sweep(loadconf(), rest)
	case "carcheck":
		err = carcheck(loadconf())
	case "export":
		err = export(loadconf(), rest)
	case "serve":
		err = serve(loadconf())
	default:
		log.Fatal("unknown command")
	}
	if err != nil {
		log.Fatal(err)
	}
}
