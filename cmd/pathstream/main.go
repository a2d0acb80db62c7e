// Command pathstream renders an SVG document through the streaming
// renderer and writes the result as a PNG.
//
// Without -in it renders a built-in demo. The view box is scaled by -scale
// and the framebuffer takes its size. -flip maps a Y-up document into
// the Y-down framebuffer. -dump prints the command stream instead of
// rendering.
package main

import (
	"bufio"
	"bytes"
	_ "embed"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/pathstream"
	"github.com/gogpu/pathstream/command"
	"github.com/gogpu/pathstream/concurrent"
	"github.com/gogpu/pathstream/gpu"
	"github.com/gogpu/pathstream/gpu/shaders"
	"github.com/gogpu/pathstream/scene"
	"github.com/gogpu/pathstream/surface"
	"github.com/gogpu/pathstream/svg"
)

//go:embed demo.svg
var demoSVG []byte

type config struct {
	in, out    string
	backend    string
	scale      float64
	flip       bool
	workers    int
	chunk      int
	subpixel   bool
	dilate     float64
	background string
	samples    int
	dump       bool
	verbose    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.in, "in", "", "SVG file to render (default: built-in demo)")
	flag.StringVar(&cfg.out, "out", "pathstream.png", "output PNG file")
	flag.StringVar(&cfg.backend, "backend", surface.BackendSoftware, "device backend, or \"best\" for the highest-priority available one")
	flag.Float64Var(&cfg.scale, "scale", 2, "view box scale factor")
	flag.BoolVar(&cfg.flip, "flip", false, "flip the Y axis")
	flag.IntVar(&cfg.workers, "parallel", 0, "build with this many workers (0 builds sequentially)")
	flag.IntVar(&cfg.chunk, "chunk", concurrent.DefaultChunkSize, "paths per parallel work item")
	flag.BoolVar(&cfg.subpixel, "subpixel", false, "enable subpixel anti-aliasing")
	flag.Float64Var(&cfg.dilate, "dilate", 0, "dilation in device pixels")
	flag.StringVar(&cfg.background, "bg", "", "background color as hex (default: transparent)")
	flag.IntVar(&cfg.samples, "samples", 0, "MSAA samples for GPU backends (0 or 1 or 4)")
	flag.BoolVar(&cfg.dump, "dump", false, "print the command stream and exit")
	flag.BoolVar(&cfg.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	pathstream.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg, os.Stdout); err != nil {
		log.Fatalf("pathstream: %v", err)
	}
}

func run(cfg config, stdout io.Writer) error {
	s, err := load(cfg.in)
	if err != nil {
		return err
	}
	if err := s.ScaleViewBox(cfg.scale); err != nil {
		return err
	}
	vb := s.ViewBox()
	w, h := int(math.Ceil(vb.Width())), int(math.Ceil(vb.Height()))

	opts, err := buildOptions(cfg, vb)
	if err != nil {
		return err
	}
	// The framebuffer starts at the view box origin.
	if err := s.SetViewBox(pathstream.NewRect(0, 0, vb.Width(), vb.Height())); err != nil {
		return err
	}

	var exec scene.Executor
	if cfg.workers > 0 {
		pe := concurrent.NewParallelExecutor(concurrent.WithWorkers(cfg.workers), concurrent.WithChunkSize(cfg.chunk))
		defer pe.Close()
		exec = pe
	}

	if cfg.dump {
		return dump(s, opts, exec, stdout)
	}

	ropts := gpu.RendererOptions{}
	if cfg.background != "" {
		bg, ok := pathstream.Hex(cfg.background)
		if !ok {
			return fmt.Errorf("invalid -bg %q", cfg.background)
		}
		ropts.BackgroundColor = &bg
	}
	dev, err := openDevice(cfg)
	if err != nil {
		return err
	}
	r, err := gpu.NewRenderer(dev, shaders.EmbeddedLoader{}, gpu.Offscreen(w, h), ropts)
	if err != nil {
		dev.Destroy()
		return err
	}
	defer r.Close()

	report, err := r.RenderScene(s, opts, exec)
	if err != nil {
		return err
	}
	pathstream.Logger().Info("rendered",
		"paths", report.Paths, "drawn", report.Drawn, "culled", report.Culled,
		"skipped", report.Skipped, "commands", report.Commands)

	img := frame(dev)
	if img == nil {
		return fmt.Errorf("backend %q has no readable framebuffer", cfg.backend)
	}
	return writePNG(cfg.out, img)
}

func load(path string) (*scene.Scene, error) {
	if path == "" {
		return svg.Parse(bytes.NewReader(demoSVG))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return svg.Parse(f)
}

// buildOptions maps the document onto a framebuffer the size of the scaled
// view box vb, with the view box origin at pixel (0, 0). With flip the
// document is mirrored vertically inside it.
func buildOptions(cfg config, vb pathstream.Rect) (scene.BuildOptions, error) {
	if cfg.scale <= 0 {
		return scene.BuildOptions{}, fmt.Errorf("invalid -scale %v", cfg.scale)
	}
	k := cfg.scale
	origin := vb.Min.Mul(1 / k)
	m := pathstream.Scale(k, k).Multiply(pathstream.Translate(-origin.X, -origin.Y))
	if cfg.flip {
		m = pathstream.Scale(k, -k).Multiply(pathstream.Translate(-origin.X, -origin.Y-vb.Height()/k))
	}
	return scene.BuildOptions{
		Transform:  scene.Transform2D{Matrix: m},
		Dilation:   pathstream.Pt(cfg.dilate, cfg.dilate),
		SubpixelAA: cfg.subpixel,
	}, nil
}

func openDevice(cfg config) (gpu.Device, error) {
	opts := surface.Options{SampleCount: cfg.samples}
	if cfg.backend == "best" {
		return surface.OpenBest(opts)
	}
	return surface.OpenDevice(cfg.backend, opts)
}

// frame returns the presented image of devices that can read it back.
func frame(dev gpu.Device) *image.RGBA {
	if f, ok := dev.(interface{ Image() *image.RGBA }); ok {
		return f.Image()
	}
	return nil
}

func dump(s *scene.Scene, opts scene.BuildOptions, exec scene.Executor, stdout io.Writer) error {
	bw := bufio.NewWriter(stdout)
	report, err := s.Build(opts, scene.ListenerFunc(func(cmd command.RenderCommand) error {
		_, err := fmt.Fprintln(bw, command.Describe(cmd))
		return err
	}), exec)
	if err != nil {
		return err
	}
	fmt.Fprintf(bw, "# %d paths, %d drawn, %d empty, %d culled, %d skipped, %d commands\n",
		report.Paths, report.Drawn, report.Empty, report.Culled, report.Skipped, report.Commands)
	return bw.Flush()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
