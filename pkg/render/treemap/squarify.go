package treemap

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/mchxo/fates-visualization/pkg/render"
)

// NormalizeSizes scales sizes so they sum to the area of a dx by dy frame.
func NormalizeSizes(sizes []float64, dx, dy float64) []float64 {
	total := floats.Sum(sizes)
	out := make([]float64, len(sizes))
	if total == 0 {
		return out
	}
	floats.ScaleTo(out, dx*dy/total, sizes)
	return out
}

// Squarify tiles the frame (x, y, dx, dy) with one rectangle per size, in
// order. Sizes must already be normalized to the frame area. Rows are grown
// greedily while doing so does not worsen their worst aspect ratio.
func Squarify(sizes []float64, x, y, dx, dy float64) []render.Rect {
	var out []render.Rect
	for len(sizes) > 0 {
		if len(sizes) == 1 {
			return append(out, layout(sizes, x, y, dx, dy)...)
		}
		i := 1
		for i < len(sizes) && worstRatio(sizes[:i], x, y, dx, dy) >= worstRatio(sizes[:i+1], x, y, dx, dy) {
			i++
		}
		out = append(out, layout(sizes[:i], x, y, dx, dy)...)
		x, y, dx, dy = leftover(sizes[:i], x, y, dx, dy)
		sizes = sizes[i:]
	}
	return out
}

// layout stacks sizes in a column along the frame's short side.
func layout(sizes []float64, x, y, dx, dy float64) []render.Rect {
	covered := floats.Sum(sizes)
	rects := make([]render.Rect, 0, len(sizes))
	if dx >= dy {
		width := covered / dy
		for _, s := range sizes {
			rects = append(rects, render.RectXYWH(x, y, width, s/width))
			y += s / width
		}
		return rects
	}
	height := covered / dx
	for _, s := range sizes {
		rects = append(rects, render.RectXYWH(x, y, s/height, height))
		x += s / height
	}
	return rects
}

// leftover returns the part of the frame not used by layout(sizes).
func leftover(sizes []float64, x, y, dx, dy float64) (float64, float64, float64, float64) {
	covered := floats.Sum(sizes)
	if dx >= dy {
		width := covered / dy
		return x + width, y, dx - width, dy
	}
	height := covered / dx
	return x, y + height, dx, dy - height
}

func worstRatio(sizes []float64, x, y, dx, dy float64) float64 {
	worst := 0.0
	for _, r := range layout(sizes, x, y, dx, dy) {
		worst = math.Max(worst, math.Max(r.Width()/r.Height(), r.Height()/r.Width()))
	}
	return worst
}
