// Package pathstream streams vector scenes into GPU command sequences.
//
// # Overview
//
// A scene of filled and stroked paths is lowered to an ordered stream of
// render commands: geometry uploads followed by draws that reference them.
// The stream is consumed one command at a time by a listener, typically a
// [github.com/gogpu/pathstream/gpu.Renderer] that interprets each command
// against a Device.
//
//	s, _ := scene.New(pathstream.NewRect(0, 0, 100, 100))
//	s.Push(scene.Fill(pathstream.Rectangle(10, 10, 80, 80), pathstream.RGB(1, 0, 0)))
//
//	r, _ := gpu.NewRenderer(dev, shaders.EmbeddedLoader{}, gpu.Offscreen(100, 100), gpu.RendererOptions{})
//	r.BeginScene()
//	s.Build(scene.BuildOptions{}, r.Listener(), concurrent.Sequential())
//	r.EndScene()
//
// # Architecture
//
// The module is organized into:
//   - Root: geometry value types (Point, Matrix, Rect, Path, RGBA, FillRule)
//   - scene: scene graph, build options, tessellation and the build entry point
//   - command: the closed set of render commands
//   - concurrent: sequential and parallel executors, exclusive listener guard
//   - gpu: renderer state machine and the Device abstraction
//   - gpu/halgpu, gpu/software: Device implementations
//   - surface: named device factories for the host boundary
//   - svg: minimal SVG loader producing scenes
//
// # Coordinate System
//
// Scene coordinates use the SVG convention: origin at top-left, X increases
// right, Y increases down. The render transform maps scene coordinates to
// device pixels.
package pathstream

// Version is the current version of the library.
const Version = "0.1.0"
