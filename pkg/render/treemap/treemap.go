// Package treemap draws the patch/cohort treemap of one simulated year.
//
// Each patch becomes a panel whose area is proportional to the patch area,
// laid out with [Squarify] in order of increasing age. Inside a panel every
// cohort is drawn as a crown bar floating at 60% of its height over a stem
// bar; crowns are coloured by plant count on a per functional type ramp and
// stems by canopy layer. Panel backgrounds show the years since disturbance.
//
//	res, _ := reduce.Reduce(in, reduce.Options{})
//	png, err := treemap.Render(res, render.FormatPNG,
//	    treemap.WithTypeNames("Ponderosa", "Cedar"))
package treemap

import (
	"cmp"
	"fmt"
	"image/color"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mchxo/fates-visualization/pkg/reduce"
	"github.com/mchxo/fates-visualization/pkg/render"
)

// Panel geometry.
const (
	// PanelHeight is the vertical data range of every patch panel in m.
	PanelHeight = 75
	// MaxAge is the top of the age colour scale in years.
	MaxAge = 80
	// MaxPlantsExp is the top of the plant count scale, as a power of 10.
	MaxPlantsExp = 6
)

// Footnote explains the stem colours.
const Footnote = "*Stem Color: orange: canopy, grey: understory"

// Default figure size.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// DefaultTypeNames are the display names of functional types 1 and 2.
var DefaultTypeNames = []string{"Ponderosa", "Cedar"}

// Figure regions in fractions of the canvas.
var (
	mainArea   = render.Rect{Left: 0.04, Right: 0.70, Bottom: 0.20, Top: 0.86}
	typeBars   = render.Rect{Left: 0.72, Right: 0.84, Bottom: 0.20, Top: 0.86}
	ageBar     = render.Rect{Left: 0.86, Right: 0.98, Bottom: 0.20, Top: 0.86}
	titleAt    = vg.Point{X: 0.04, Y: 0.98}
	footnoteAt = vg.Point{X: 0.04, Y: 0.14}
)

// Stem colours.
var (
	Orange = color.NRGBA{R: 0xff, G: 0xa5, A: 0xff}
	Grey   = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// StemColor returns the stem colour of a canopy layer.
func StemColor(l reduce.Layer) color.Color {
	if l == reduce.LayerCanopy {
		return Orange
	}
	return Grey
}

// Option configures a treemap.
type Option func(*config)

type config struct {
	width, height vg.Length
	typeNames     []string
	title         string
}

// WithSize sets the figure size.
func WithSize(w, h vg.Length) Option {
	return func(c *config) { c.width, c.height = w, h }
}

// WithTypeNames sets the display names of functional types 1, 2, ...
func WithTypeNames(names ...string) Option {
	return func(c *config) { c.typeNames = names }
}

// WithTitle replaces the default "Year N" title.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

func newConfig(res *reduce.Result, opts []Option) config {
	c := config{
		width:     DefaultWidth,
		height:    DefaultHeight,
		typeNames: DefaultTypeNames,
		title:     fmt.Sprintf("Year %d", res.Year),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) typeName(pft int) string {
	if pft >= 1 && pft <= len(c.typeNames) && c.typeNames[pft-1] != "" {
		return c.typeNames[pft-1]
	}
	return fmt.Sprintf("PFT %d", pft)
}

// Render draws the treemap of res and encodes it as png, svg or pdf.
func Render(res *reduce.Result, format string, opts ...Option) ([]byte, error) {
	cfg := newConfig(res, opts)
	c, err := render.NewCanvas(format, cfg.width, cfg.height)
	if err != nil {
		return nil, err
	}
	Draw(draw.New(c), res, opts...)
	return render.Encode(c)
}

// Draw draws the treemap of res onto dc.
func Draw(dc draw.Canvas, res *reduce.Result, opts ...Option) {
	cfg := newConfig(res, opts)
	onePatch := res.Mode == reduce.ModeOnePatch

	render.Background(dc, color.White)
	drawText(dc, titleAt, 28, cfg.title)
	drawText(dc, footnoteAt, 11, Footnote)

	main := render.Sub(dc, mainArea)
	for _, panel := range Panels(res, main.Rectangle) {
		drawPanel(draw.Canvas{Canvas: dc.Canvas, Rectangle: panel.Rect}, panel, !onePatch)
	}

	types := res.PFTs()
	if len(types) == 0 {
		types = []int{1}
	}
	for i, pft := range types {
		// one bar per type, stacked top to bottom
		n := float64(len(types))
		slot := render.Rect{Left: 0, Right: 1, Bottom: 1 - float64(i+1)/n, Top: 1 - float64(i)/n}.Inset(0.01)
		bar := render.Sub(dc, slot.Within(typeBars))
		render.ColorBar(bar, render.TypeRamp(pft).WithRange(0, MaxPlantsExp),
			cfg.typeName(pft)+": # plants in cohort", render.PowerTicks{})
	}
	if !onePatch {
		render.ColorBar(render.Sub(dc, ageBar), render.Blue.WithRange(0, MaxAge), "Years since disturbance", nil)
	}
}

func drawText(dc draw.Canvas, at vg.Point, size float64, s string) {
	pt := vg.Point{
		X: dc.Min.X + at.X*(dc.Max.X-dc.Min.X),
		Y: dc.Min.Y + at.Y*(dc.Max.Y-dc.Min.Y),
	}
	dc.FillText(render.TextStyle(vg.Points(size), color.Black), pt, s)
}

// Panel is one patch's tile of the treemap.
type Panel struct {
	Patch   reduce.Patch
	Cohorts []reduce.Cohort
	Rect    vg.Rectangle
}

// Panels lays the patches of res out over frame, ordered by (age, area).
func Panels(res *reduce.Result, frame vg.Rectangle) []Panel {
	patches := slices.Clone(res.Patches)
	slices.SortStableFunc(patches, func(a, b reduce.Patch) int {
		if c := cmp.Compare(a.Age, b.Age); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Area, b.Area); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	sizes := make([]float64, len(patches))
	for i, p := range patches {
		sizes[i] = p.Area
	}
	dx := float64(frame.Max.X - frame.Min.X)
	dy := float64(frame.Max.Y - frame.Min.Y)
	rects := Squarify(NormalizeSizes(sizes, dx, dy), 0, 0, dx, dy)

	panels := make([]Panel, len(patches))
	for i, p := range patches {
		r := rects[i]
		panels[i] = Panel{
			Patch:   p,
			Cohorts: res.CohortsOf(p.ID),
			Rect: vg.Rectangle{
				Min: vg.Point{X: frame.Min.X + vg.Length(r.Left), Y: frame.Min.Y + vg.Length(r.Bottom)},
				Max: vg.Point{X: frame.Min.X + vg.Length(r.Right), Y: frame.Min.Y + vg.Length(r.Top)},
			},
		}
	}
	return panels
}

func drawPanel(c draw.Canvas, panel Panel, ageBackground bool) {
	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = color.White
	if ageBackground {
		p.BackgroundColor = render.Blue.WithRange(0, MaxAge).Color(panel.Patch.Age)
	}
	bars := &CohortBars{Cohorts: panel.Cohorts}
	p.Add(bars)
	_, xmax, _, _ := bars.DataRange()
	p.X.Min, p.X.Max = 0, xmax
	p.Y.Min, p.Y.Max = 0, PanelHeight
	p.Draw(c)

	r := c.Rectangle
	c.StrokeLines(draw.LineStyle{Color: color.White, Width: vg.Points(1)}, []vg.Point{
		r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}, r.Min,
	})
}
