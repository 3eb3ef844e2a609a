// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/mlnoga/resonance/internal/condition"
	"github.com/mlnoga/resonance/internal/config"
	"github.com/mlnoga/resonance/internal/frame"
	"github.com/mlnoga/resonance/internal/logging"
	"github.com/mlnoga/resonance/internal/noise"
	"github.com/mlnoga/resonance/internal/ops"
	"github.com/mlnoga/resonance/internal/ops/adjust"
	"github.com/mlnoga/resonance/internal/ops/resonance"
	"github.com/mlnoga/resonance/internal/rest"
	"github.com/mlnoga/resonance/internal/stats"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var out = flag.String("out", "out%d.png", "save output to `file` pattern, %d is replaced with the frame id. Suffix selects png, jpg, tif or bmp")
var logFlag = flag.String("log", logging.Auto, "save log output to `file`. `%auto` replaces suffix of output file with .log")
var calib = flag.String("calib", "", "load calibration of noise range, condition factors, smoothing and window from JSON `file`")
var verbose = flag.Bool("v", false, "log debug output")

var weather = flag.String("weather", "clear", "weather condition, one of clear, rain, fog, snow")
var timeOfDay = flag.String("time", "day", "time of day, one of day, dawnDusk, night")
var speed = flag.Float64("speed", 0, "vehicle speed in km/h")
var lux = flag.Float64("lux", 50000, "ambient light in lux")

var dist = flag.String("dist", "gaussian", "noise distribution, one of gaussian, saltAndPepper, speckle, uniform, exponential")
var noiseLevel = flag.Float64("level", 0.1, "fixed noise level in [0,1] for the noise command")
var baseNoise = flag.Float64("baseNoise", 0, "base noise for spatial maps, 0=calibrated base noise")
var window = flag.Int("window", stats.DefaultWindow, "box filter window for spatial maps, in pixels")
var roi = flag.String("roi", "", "restrict noise to region of interest `x,y,w,h`, blank for the whole frame")
var seed = flag.Int64("seed", resonance.RandomSeed, "noise seed, -1=fresh random seed per frame")
var smooth = flag.Bool("smooth", false, "apply edge-preserving smoothing after fixed-level noise")
var luma = flag.String("luma", frame.LumaRec601.String(), "luminance for statistics, one of rec601, lab")

var brightness = flag.Float64("brightness", 1, "degrade brightness by the given factor before adding noise, 1=no op")
var contrast = flag.Float64("contrast", 1, "degrade contrast by the given factor before adding noise, 1=no op")
var levelBrightness = flag.Float64("levelBrightness", 0.5, "global brightness in [0,1] for the level command without images")
var levelContrast = flag.Float64("levelContrast", 0, "global contrast in [0,1] for the level command without images")
var previewWidth = flag.Int("previewWidth", 0, "resize outputs to the given width, keeping the aspect ratio. 0=no op")
var frames = flag.Int("frames", 10, "number of frames rendered by the animate command")

var addr = flag.String("addr", ":8080", "listen on `address` for the serve command")
var chroot = flag.String("chroot", "", "chroot to the given `directory` before serving. Requires root")
var setuid = flag.Int("setuid", -1, "change user id before serving, -1=no op")

func main() {
	logWriter := os.Stdout
	debug.SetGCPercent(10)
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `Resonance Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (stats|level|adaptive|spatial|noise|animate|pipeline|serve|legal|version) (img0.png ... imgn.png)

Commands:
  stats    Show input image statistics
  level    Show the noise level for the driving conditions, per image or from -levelBrightness and -levelContrast
  adaptive Add noise driven by the driving conditions, with edge-preserving smoothing
  spatial  Add noise driven by local image contrast
  noise    Add noise of the given distribution at a fixed level
  animate  Render -frames noisy copies of each input, with a fresh seed per frame unless -seed is set
  pipeline Run the JSON operator pipeline from the given file
  serve    Start the HTTP service
  legal    Show license and attribution information
  version  Show version information

Flags:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := logging.New(logWriter, level)
	defer log.Close()

	// Initialize logging to file in addition to stdout, if selected
	if fileName := logging.FileName(*logFlag, *out); fileName != "" {
		if err := log.AlsoToFile(logWriter, fileName); err != nil {
			log.Fatalf("Unable to open logfile '%s': %s", fileName, err.Error())
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("Could not create CPU profile: %s", err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Could not start CPU profile: %s", err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	c, err := newContext(log)
	if err != nil {
		log.Fatalf("Error: %s", err.Error())
	}

	switch args[0] {
	case "legal":
		fmt.Fprint(logWriter, legal)
		return
	case "version":
		fmt.Fprintf(logWriter, "Version %s on %s\n", version, ops.HostInfo())
		return
	case "serve":
		if err := rest.MakeSandbox(*chroot, *setuid, log); err != nil {
			log.Fatalf("Error: %s", err.Error())
		}
		if err := rest.Serve(*addr, c); err != nil {
			log.Fatalf("Error: %s", err.Error())
		}
		return
	}

	if err := run(args[0], args[1:], c); err != nil {
		log.Fatalf("Error: %s", err.Error())
	}
	log.Info().Msgf("Done after %v", time.Since(start).Round(time.Millisecond))
}

// Creates the execution context from flags and the optional calibration file
func newContext(log *logging.Log) (*ops.Context, error) {
	c := ops.NewContext(log)
	lumaMode, err := frame.ParseLumaMode(*luma)
	if err != nil {
		return nil, err
	}
	c.Engine.Luminance = lumaMode
	c.Window = *window
	if *calib != "" {
		cf, err := config.Load(*calib)
		if err != nil {
			return nil, err
		}
		if c.Engine.Calibration, err = cf.Calibration(c.Engine.Calibration); err != nil {
			return nil, err
		}
		c.Engine.Smoothing = cf.SmoothingOr(c.Engine.Smoothing)
		c.Engine.Luminance = cf.LuminanceOr(c.Engine.Luminance)
		c.Window = cf.WindowOr(c.Window)
		log.Info().Msgf("Loaded calibration from %s: noise range [%.3g,%.3g], %v, window %d",
			*calib, c.Engine.Calibration.BaseNoise, c.Engine.Calibration.MaxNoise, c.Engine.Smoothing, c.Window)
	}
	return c, nil
}

// Driving conditions from flags
func conditionsFromFlags() (dc condition.DrivingConditions, err error) {
	if dc.Weather, err = condition.ParseWeather(*weather); err != nil {
		return dc, err
	}
	if dc.TimeOfDay, err = condition.ParseTimeOfDay(*timeOfDay); err != nil {
		return dc, err
	}
	dc.SpeedKMH, dc.AmbientLux = *speed, *lux
	return dc, dc.Validate()
}

// Region of interest from flags, or nil for the whole frame
func roiFromFlags() (*frame.Region, error) {
	if *roi == "" {
		return nil, nil
	}
	r, err := frame.ParseRegion(*roi)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Runs one of the frame processing commands on the given file patterns
func run(cmd string, patterns []string, c *ops.Context) error {
	switch cmd {
	case "pipeline":
		return runPipeline(patterns, c)
	case "level":
		return runLevel(patterns, c)
	}

	region, err := roiFromFlags()
	if err != nil {
		return err
	}
	var step ops.Operator
	switch cmd {
	case "stats":
		step = resonance.NewOpStats(region)
	case "adaptive", "animate":
		dc, err := conditionsFromFlags()
		if err != nil {
			return err
		}
		step = resonance.NewOpAdaptive(dc, region, *seed)
	case "spatial":
		step = resonance.NewOpSpatial(*baseNoise, *window, region, *seed)
	case "noise":
		d, err := noise.ParseDistribution(*dist)
		if err != nil {
			return err
		}
		step = resonance.NewOpNoise(*noiseLevel, d, region, *seed, *smooth)
	default:
		return fmt.Errorf("unknown command '%s'", cmd)
	}
	if cmd == "animate" {
		step = resonance.NewOpAnimate(*frames, step)
	}

	seq := ops.NewOpSequence(ops.NewOpLoadMany(patterns))
	if *brightness != 1 {
		seq.Append(adjust.NewOpBrightness(*brightness))
	}
	if *contrast != 1 {
		seq.Append(adjust.NewOpContrast(*contrast))
	}
	seq.Append(step)
	if cmd != "stats" {
		if *previewWidth > 0 {
			seq.Append(adjust.NewOpResize(*previewWidth, 0))
		}
		seq.Append(ops.NewOpSave(*out))
	}
	return materialize(seq, patterns, c)
}

// Creates promises for the operator and materializes them, bounded by the working memory
func materialize(op ops.Operator, patterns []string, c *ops.Context) error {
	promises, err := op.MakePromises(nil, c)
	if err != nil {
		return err
	}
	inFlight := c.MaxThreads
	if w, h, ch, err := firstDimensions(patterns); err == nil {
		inFlight = c.FramesInFlight(w, h, ch)
	}
	c.Log.Debug().Msgf("Processing %d frames with %d in flight", len(promises), inFlight)
	_, err = ops.MaterializeAll(promises, inFlight, true)
	return err
}

// Dimensions of the first file matching the patterns
func firstDimensions(patterns []string) (width, height, channels int, err error) {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		return frame.DimensionsOfFile(matches[0])
	}
	return 0, 0, 0, fmt.Errorf("no files match %v", patterns)
}

// Runs a JSON pipeline file
func runPipeline(args []string, c *ops.Context) error {
	if len(args) != 1 {
		return fmt.Errorf("pipeline needs exactly one file argument, got %d", len(args))
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	op, err := ops.LoadPipeline(data)
	if err != nil {
		return fmt.Errorf("loading pipeline %s: %w", args[0], err)
	}
	c.Log.Info().Msgf("Running %s pipeline from %s", op.GetType(), args[0])
	return materialize(op, nil, c)
}

// Prints the noise level for the flagged conditions, per image if given
func runLevel(patterns []string, c *ops.Context) error {
	dc, err := conditionsFromFlags()
	if err != nil {
		return err
	}
	cal := c.Engine.Calibration
	if len(patterns) == 0 {
		l, err := cal.Level(dc, *levelBrightness, *levelContrast)
		if err != nil {
			return err
		}
		c.Log.Info().Msgf("Level %.4f for %v, brightness %.4g, contrast %.4g", l, dc, *levelBrightness, *levelContrast)
		return nil
	}
	region, err := roiFromFlags()
	if err != nil {
		return err
	}
	load := ops.NewOpLoadMany(patterns)
	promises, err := load.MakePromises(nil, c)
	if err != nil {
		return err
	}
	for _, p := range promises {
		f, err := p()
		if err != nil {
			return err
		}
		m, err := resonance.Measure(f, region, c)
		if err != nil {
			return err
		}
		l, err := cal.Level(dc, m.Brightness, m.Contrast)
		if err != nil {
			return err
		}
		c.Log.Info().Msgf("%d: Level %.4f for %v, %s", f.ID, l, dc, f.FileName)
	}
	return nil
}
