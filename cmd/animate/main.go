// Copyright (C) 2021 Krishna Karra
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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/cpuid"

	"github.com/kkarra/animate/internal/conf"
	"github.com/kkarra/animate/internal/ops"
	"github.com/kkarra/animate/internal/palette"
	"github.com/kkarra/animate/internal/pipeline"
	"github.com/kkarra/animate/internal/rest"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out = flag.String("out", "out.mp4", "save animation to `file`. Suffix selects the encoder, .gif skips ffmpeg")
var logFile = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")
var frames = flag.String("frames", "", "save transformed frames with given filename pattern, e.g. `frame%04d.png`")
var config = flag.String("config", "animate.yml", "read pipeline defaults from YAML `file` if it exists")

var pmin = flag.Float64("pmin", 2, "lower percentile for contrast stretching")
var pmax = flag.Float64("pmax", 98, "upper percentile for contrast stretching")
var cmap = flag.String("cmap", "viridis", "colormap for single-channel imagery, e.g. gray, viridis, magma, inferno, plasma")

var aspect = flag.String("aspect", "", "crop rows to the given `W:H` aspect ratio, e.g. 16:9, blank for no crop")
var outSize = flag.String("outSize", "", "resize output frames to `WxH` pixels, e.g. 1280x720, blank for no resize")

var coregister = flag.Bool("coregister", true, "align frames to the base frame via phase correlation")
var upsample = flag.Int("upsample", 10, "sub-pixel registration precision, 1/upsample of a pixel")
var base = flag.Int("base", 0, "index of the base frame all other frames are aligned to")

var fps = flag.Int("fps", 10, "animation frame rate in frames per second")
var websafe = flag.Bool("websafe", false, "re-encode the output for web playback with ffmpeg")
var validFraction = flag.Float64("validFraction", 0, "drop frames with fewer valid pixels than this fraction, 0=keep all")

var chroot = flag.String("chroot", "", "change filesystem root to this directory before serving (requires root)")
var setuid = flag.Int("setuid", -1, "switch to this user id before serving, -1=don't")

func main() {
	logWriter := io.Writer(os.Stdout)
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `Animate Copyright (c) 2021 Krishna Karra
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (render|serve|legal|version) (img0.png ... imgn.png)

Commands:
  render  Align, transform and encode input images into an animation
  serve   Start the REST API server on port 8080
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// YAML config supplies defaults; explicitly set flags win
	cfg, err := conf.Load(*config, !isFlagSet("config"))
	if err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(-1)
	}
	applyConfig(cfg)

	// Initialize logging to file in addition to stdout, if selected
	if *logFile == "%auto" {
		if *out != "" {
			*logFile = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".log"
		} else {
			*logFile = ""
		}
	}
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(logWriter, "Unable to open logfile '%s'\n", *logFile)
			os.Exit(-1)
		}
		defer f.Close()
		logWriter = io.MultiWriter(os.Stdout, f)
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(logWriter, "Could not create CPU profile: %s\n", err.Error())
			os.Exit(-1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(logWriter, "Could not start CPU profile: %s\n", err.Error())
			os.Exit(-1)
		}
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	switch args[0] {
	case "serve":
		rest.MakeSandbox(*chroot, *setuid)
		rest.Serve()

	case "render":
		fmt.Fprintf(logWriter, "Running on %s with %d cores\n", cpuid.CPU.BrandName, runtime.NumCPU())
		err = cmdRender(args[1:], logWriter)

	case "legal":
		cmdLegal(logWriter)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	elapsed := time.Now().Sub(start)
	fmt.Fprintf(logWriter, "\nDone after %v\n", elapsed)

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Fprintf(logWriter, "Could not create memory profile: %s\n", err.Error())
			os.Exit(-1)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			fmt.Fprintf(logWriter, "Could not write allocation profile: %s\n", err.Error())
			os.Exit(-1)
		}
	}

	if err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(-1)
	}
}

// Perform the render command
func cmdRender(args []string, logWriter io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("no input files given")
	}
	aw, ah, err := parsePair(*aspect, ":")
	if err != nil {
		return fmt.Errorf("invalid aspect ratio '%s'", *aspect)
	}
	ow, oh, err := parsePair(*outSize, "x")
	if err != nil {
		return fmt.Errorf("invalid output size '%s'", *outSize)
	}

	p := &pipeline.Params{
		FilePatterns:  args,
		Out:           *out,
		Pmin:          float32(*pmin),
		Pmax:          float32(*pmax),
		Cmap:          *cmap,
		AspectWidth:   aw,
		AspectHeight:  ah,
		OutWidth:      ow,
		OutHeight:     oh,
		Coregister:    *coregister,
		Upsample:      *upsample,
		BaseFrame:     *base,
		FPS:           *fps,
		Websafe:       *websafe,
		ValidFraction: float32(*validFraction),
		FramePattern:  *frames,
	}
	c := ops.NewContext(logWriter, palette.NewCatalog())
	fmt.Fprintf(logWriter, "Using up to %d threads and %d MiB of memory\n", c.MaxThreads, c.StackMemoryMB)
	return pipeline.Render(p, c)
}

// Parses a pair of positive integers like "16:9" or "1280x720".
// A blank input yields (0,0) and no error, disabling the stage.
func parsePair(s, sep string) (a, b int, err error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected two values separated by %s", sep)
	}
	if a, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, err
	}
	if b, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, err
	}
	if a <= 0 || b <= 0 {
		return 0, 0, fmt.Errorf("values must be positive")
	}
	return a, b, nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Copies config file values into flags that were not set on the command line
func applyConfig(cfg *conf.Config) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["out"] && cfg.Out != "" {
		*out = cfg.Out
	}
	if !set["log"] && cfg.Log != "" {
		*logFile = cfg.Log
	}
	if !set["pmin"] {
		*pmin = cfg.Pmin
	}
	if !set["pmax"] {
		*pmax = cfg.Pmax
	}
	if !set["cmap"] {
		*cmap = cfg.Cmap
	}
	if !set["aspect"] && cfg.Aspect != "" {
		*aspect = cfg.Aspect
	}
	if !set["outSize"] && cfg.OutSize != "" {
		*outSize = cfg.OutSize
	}
	if !set["coregister"] {
		*coregister = cfg.Coregister
	}
	if !set["upsample"] {
		*upsample = cfg.Upsample
	}
	if !set["base"] {
		*base = cfg.Base
	}
	if !set["fps"] {
		*fps = cfg.FPS
	}
	if !set["websafe"] {
		*websafe = cfg.Websafe
	}
	if !set["validFraction"] {
		*validFraction = cfg.ValidFraction
	}
	if !set["frames"] && cfg.Frames != "" {
		*frames = cfg.Frames
	}
}
