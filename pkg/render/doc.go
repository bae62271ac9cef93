// Package render provides the drawing primitives shared by the fatesviz
// renderers.
//
// # Overview
//
// Every figure is drawn once onto a gonum.org/v1/plot vector canvas and
// encoded to the requested format, so a single drawing path serves PNG, SVG
// and PDF output:
//
//	c, err := render.NewCanvas(render.FormatSVG, 10*vg.Inch, 6*vg.Inch)
//	dc := draw.New(c)
//	// ... draw ...
//	data, err := render.Encode(c)
//
// The package also provides:
//
//   - [Ramp], a colour ramp implementing palette.ColorMap
//   - [Rect], an axis-aligned rectangle in figure coordinates
//   - [GIF], frame assembly for animations
//   - [SliderPage], an HTML page showing one SVG frame per step
//   - [WriteFile], atomic artifact writes
//
// # Renderers
//
// Figure-specific code lives in subpackages:
//   - [treemap]: patch/cohort treemaps and their animation
//   - [sunburst]: per-run functional type sunbursts
//   - [choropleth]: gridded history variables on a map
//
// [treemap]: github.com/mchxo/fates-visualization/pkg/render/treemap
// [sunburst]: github.com/mchxo/fates-visualization/pkg/render/sunburst
// [choropleth]: github.com/mchxo/fates-visualization/pkg/render/choropleth
package render
