// Package scene holds drawable paths and lowers them to render commands.
//
// A Scene is built once from a parsed document, optionally adjusted (view
// box rescale, base transform) and then built any number of times:
//
//	s, err := scene.New(pathstream.NewRect(0, 0, 1139, 774))
//	s.Push(scene.Fill(outline, pathstream.RGB(0, 0, 1)))
//
//	report, err := s.Build(scene.BuildOptions{
//	    Transform: scene.Transform2D{Matrix: pathstream.Scale(2, 2)},
//	}, listener, executor)
//
// Build tessellates every path through an Executor and hands the resulting
// commands to a Listener one at a time, in scene order. It returns only
// after the last command has been delivered.
//
// # Tessellation
//
// Paths are flattened with a tolerance of a quarter device pixel, mapped
// through the composed transform, optionally dilated and widened for
// subpixel coverage, then triangulated as fans around the first vertex of
// every contour. The stencil buffer resolves winding, so the fans are valid
// for concave, self-intersecting and holed outlines alike.
//
// # Failures
//
// A path that cannot be tessellated fails on its own. BuildOptions.OnPathError
// decides whether it is skipped (the default) or aborts the build. The
// policy is applied identically by every executor.
package scene
