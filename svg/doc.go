// Package svg loads a minimal subset of SVG into a scene.Scene.
//
// Supported elements are svg, g, path, rect, circle, ellipse, line,
// polyline and polygon. Presentation attributes (fill, fill-rule,
// fill-opacity, stroke, stroke-width, stroke-opacity, stroke-linecap,
// stroke-linejoin, stroke-miterlimit, opacity) are honored both as
// attributes and inside a style attribute, and are inherited through
// groups. Transforms compose from the root down and are baked into the
// outlines, so the returned scene has an identity base transform.
//
// Anything else (defs, text, images, gradients, clipping) is skipped.
// Group opacity multiplies into the colors of its children rather than
// compositing the group as a layer.
package svg
