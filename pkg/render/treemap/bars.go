package treemap

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mchxo/fates-visualization/pkg/reduce"
	"github.com/mchxo/fates-visualization/pkg/render"
)

// CohortBars draws the crowns and stems of one patch's cohorts. It
// implements plot.Plotter and plot.DataRanger.
type CohortBars struct {
	Cohorts []reduce.Cohort
}

var (
	_ plot.Plotter    = (*CohortBars)(nil)
	_ plot.DataRanger = (*CohortBars)(nil)
)

// CrownColor returns the crown colour of a cohort: its functional type's
// ramp at log10 of the plant count.
func CrownColor(c reduce.Cohort) color.Color {
	return render.TypeRamp(c.PFT).WithRange(0, MaxPlantsExp).Color(math.Log10(math.Max(c.NPlant, 1)))
}

// Plot implements plot.Plotter. Crowns are drawn before stems.
func (b *CohortBars) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	box := func(left, right, bottom, top float64) []vg.Point {
		return c.ClipPolygonXY([]vg.Point{
			{X: trX(left), Y: trY(bottom)},
			{X: trX(right), Y: trY(bottom)},
			{X: trX(right), Y: trY(top)},
			{X: trX(left), Y: trY(top)},
		})
	}
	for _, co := range b.Cohorts {
		half := co.CanopyWidth / 2
		top := co.CanopyBottom + co.Height*reduce.CrownDepth
		c.FillPolygon(CrownColor(co), box(co.StemLocation-half, co.StemLocation+half, co.CanopyBottom, top))
	}
	for _, co := range b.Cohorts {
		half := reduce.StemGap / 2.0
		c.FillPolygon(StemColor(co.Layer), box(co.StemLocation-half, co.StemLocation+half, 0, co.CanopyBottom))
	}
}

// DataRange implements plot.DataRanger. The x range covers every crown and
// stem; the y range is the fixed panel height.
func (b *CohortBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmax = 1
	for _, co := range b.Cohorts {
		half := math.Max(co.CanopyWidth, reduce.StemGap) / 2
		xmax = math.Max(xmax, co.StemLocation+half)
	}
	return 0, xmax, 0, PanelHeight
}
