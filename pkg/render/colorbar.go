package render

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ColorBar draws a labelled vertical colour bar for ramp into c. A nil
// marker uses the default ticks.
func ColorBar(c draw.Canvas, ramp *Ramp, label string, marker plot.Ticker) {
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: ramp, Vertical: true, Colors: 64})
	p.HideX()
	p.Y.Label.Text = label
	p.Y.Label.TextStyle.Font.Size = vg.Points(9)
	p.Y.Tick.Label.Font.Size = vg.Points(8)
	p.Y.Padding = 0
	if marker != nil {
		p.Y.Tick.Marker = marker
	}
	p.Draw(c)
}

// PowerTicks labels integer exponents of 10 on a log10 axis: 1, 10, 100,
// 1k, 10k, 100k, 1M, ...
type PowerTicks struct{}

// Ticks implements plot.Ticker.
func (PowerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for e := math.Ceil(min); e <= max; e++ {
		ticks = append(ticks, plot.Tick{Value: e, Label: powerLabel(int(e))})
	}
	return ticks
}

func powerLabel(e int) string {
	suffixes := []string{"", "k", "M", "G"}
	if e < 0 || e >= 3*len(suffixes) {
		return "1e" + strconv.Itoa(e)
	}
	return strconv.Itoa(int(math.Pow(10, float64(e%3)))) + suffixes[e/3]
}
