package sunburst

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/render"
)

// Cell is one run of the matrix.
type Cell struct {
	Name   string
	Series *Series
}

// CellSize is the default size of one matrix cell.
const CellSize = 4 * vg.Inch

// titleBand is the height of the figure title band.
const titleBand = 0.6 * vg.Inch

// TypeColors are the inner ring colours, cycled by functional type.
var TypeColors = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a", "#19d3f3"}

// Option configures a sunburst figure.
type Option func(*config)

type config struct {
	width, height vg.Length
}

// WithSize sets the figure size.
func WithSize(w, h vg.Length) Option {
	return func(c *config) { c.width, c.height = w, h }
}

func newConfig(cells [][]Cell, opts []Option) config {
	rows, cols := dims(cells)
	c := config{
		width:  vg.Length(max(cols, 1)) * CellSize,
		height: vg.Length(max(rows, 1))*CellSize + titleBand,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func dims(cells [][]Cell) (rows, cols int) {
	for _, row := range cells {
		cols = max(cols, len(row))
	}
	return len(cells), cols
}

// Render draws year (1-based) of every cell and encodes it as png, svg or
// pdf.
func Render(cells [][]Cell, year int, format string, opts ...Option) ([]byte, error) {
	if err := check(cells, year); err != nil {
		return nil, err
	}
	cfg := newConfig(cells, opts)
	c, err := render.NewCanvas(format, cfg.width, cfg.height)
	if err != nil {
		return nil, err
	}
	Draw(draw.New(c), cells, year, fmt.Sprintf("Year %d", year))
	return render.Encode(c)
}

func check(cells [][]Cell, year int) error {
	rows, cols := dims(cells)
	if rows == 0 || cols == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "empty run matrix")
	}
	for _, row := range cells {
		for _, cell := range row {
			if cell.Series == nil || year < 1 || year > cell.Series.Years() {
				return errors.New(errors.ErrCodeYearNotFound, "run %q has no year %d", cell.Name, year)
			}
		}
	}
	return nil
}

// Draw draws one sunburst per cell in a grid with title on top.
func Draw(dc draw.Canvas, cells [][]Cell, year int, title string) {
	render.Background(dc, color.White)
	ts := render.TextStyle(vg.Points(20), color.Black)
	dc.FillText(ts, vg.Point{X: dc.Min.X + 0.2*vg.Inch, Y: dc.Max.Y - 0.1*vg.Inch}, title)

	grid := dc
	grid.Max.Y -= titleBand
	rows, cols := dims(cells)
	w := (grid.Max.X - grid.Min.X) / vg.Length(cols)
	h := (grid.Max.Y - grid.Min.Y) / vg.Length(rows)
	for i, row := range cells {
		for j, cell := range row {
			cc := grid
			cc.Min = vg.Point{X: grid.Min.X + vg.Length(j)*w, Y: grid.Max.Y - vg.Length(i+1)*h}
			cc.Max = vg.Point{X: cc.Min.X + w, Y: cc.Min.Y + h}
			drawCell(cc, cell, year)
		}
	}
}

func drawCell(c draw.Canvas, cell Cell, year int) {
	ts := render.TextStyle(vg.Points(12), color.Black)
	ts.XAlign = text.XCenter
	c.FillText(ts, vg.Point{X: c.Center().X, Y: c.Max.Y - 0.05*vg.Inch}, cell.Name)

	body := c
	body.Max.Y -= 0.3 * vg.Inch
	center := body.Center()
	radius := 0.45 * min(body.Max.X-body.Min.X, body.Max.Y-body.Min.Y)

	values := cell.Series.Values[year-1]
	nodes := cell.Series.Nodes
	total := 0.0
	for n, node := range nodes {
		if node.Parent < 0 {
			total += values[n]
		}
	}
	if total <= 0 {
		sector(c, center, 0, radius, 0, 2*math.Pi, color.Gray{Y: 0xe0})
		return
	}

	label := render.TextStyle(vg.Points(8), color.White)
	label.XAlign, label.YAlign = text.XCenter, text.YCenter

	// clockwise from 12 o'clock
	start := math.Pi / 2
	for n, node := range nodes {
		if node.Parent >= 0 {
			continue
		}
		sweep := -values[n] / total * 2 * math.Pi
		base := TypeColor(n)
		sector(c, center, 0, radius/2, start, sweep, base)
		labelSector(c, label, center, radius/4, start, sweep, node.Label)

		childStart := start
		k := 0
		for m, child := range nodes {
			if child.Parent != n {
				continue
			}
			cs := -values[m] / total * 2 * math.Pi
			sector(c, center, radius/2, radius, childStart, cs, childColor(base, k))
			labelSector(c, label, center, 3*radius/4, childStart, cs, child.Label)
			childStart += cs
			k++
		}
		start += sweep
	}
}

// TypeColor returns the inner ring colour of type index i.
func TypeColor(i int) color.Color {
	c, _ := colorful.Hex(TypeColors[i%len(TypeColors)])
	return c
}

// childColor lightens the parent colour, alternating per variable.
func childColor(base color.Color, k int) color.Color {
	b, _ := colorful.MakeColor(base)
	return b.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.25+0.2*float64(k%2)).Clamped()
}

func polar(center vg.Point, r vg.Length, a float64) vg.Point {
	return vg.Point{X: center.X + r*vg.Length(math.Cos(a)), Y: center.Y + r*vg.Length(math.Sin(a))}
}

// sector fills the annular sector between radii r0 and r1 starting at angle
// start (radians) and spanning sweep.
func sector(c draw.Canvas, center vg.Point, r0, r1 vg.Length, start, sweep float64, clr color.Color) {
	if sweep == 0 {
		return
	}
	var p vg.Path
	p.Move(polar(center, r1, start))
	p.Arc(center, r1, start, sweep)
	if r0 > 0 {
		p.Line(polar(center, r0, start+sweep))
		p.Arc(center, r0, start+sweep, -sweep)
	} else {
		p.Line(center)
	}
	p.Close()

	c.SetColor(clr)
	c.Fill(p)
	c.SetColor(color.White)
	c.SetLineWidth(vg.Points(1))
	c.Stroke(p)
}

func labelSector(c draw.Canvas, ts text.Style, center vg.Point, r vg.Length, start, sweep float64, s string) {
	if math.Abs(sweep) < 0.3 {
		return
	}
	c.FillText(ts, polar(center, r, start+sweep/2), s)
}
