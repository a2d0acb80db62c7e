// Package stroke converts stroked outlines into filled outlines.
//
// A stroke is expanded into polygons that, filled with the non-zero winding
// rule, cover exactly the stroked area:
//   - open subpaths become one closed polygon: the left offset forward, the
//     end cap, the left offset of the reversed subpath, then the start cap
//   - closed subpaths become two loops of opposite direction, so the band
//     between them has winding one and the interior cancels out
//
// Inner corners are joined through the centerline vertex, which keeps the
// winding of overlapping regions positive instead of cutting notches.
//
// # Usage
//
//	style := stroke.Style{Width: 2, Cap: stroke.CapRound, Join: stroke.JoinMiter, MiterLimit: 4}
//	fill := stroke.NewExpander(style).Expand(path.Flatten(tolerance))
package stroke
