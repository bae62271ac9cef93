package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// Ramp is a continuous colour map interpolating between evenly spaced
// colour stops in CIE L*a*b* space. It implements palette.ColorMap.
type Ramp struct {
	stops    []colorful.Color
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*Ramp)(nil)

// NewRamp creates a ramp over [0, 1] from hex colour stops ("#96ffff").
func NewRamp(hexes ...string) (*Ramp, error) {
	if len(hexes) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "a colour ramp needs at least two stops, got %d", len(hexes))
	}
	r := &Ramp{max: 1, alpha: 1}
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "colour stop %q", h)
		}
		r.stops = append(r.stops, c)
	}
	return r, nil
}

// MustRamp is NewRamp for package-level ramps; it panics on a bad stop.
func MustRamp(hexes ...string) *Ramp {
	r, err := NewRamp(hexes...)
	if err != nil {
		panic(err)
	}
	return r
}

// WithRange returns a copy of the ramp spanning [min, max].
func (r *Ramp) WithRange(min, max float64) *Ramp {
	cp := *r
	cp.min, cp.max = min, max
	return &cp
}

// At implements palette.ColorMap.
func (r *Ramp) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v > r.max:
		return nil, palette.ErrOverflow
	case v < r.min:
		return nil, palette.ErrUnderflow
	}
	return r.blend(v), nil
}

// Color returns the colour of v, clamping values outside the range. NaN
// maps to transparent.
func (r *Ramp) Color(v float64) color.Color {
	if math.IsNaN(v) {
		return color.Transparent
	}
	return r.blend(math.Max(r.min, math.Min(r.max, v)))
}

func (r *Ramp) blend(v float64) color.Color {
	t := 0.0
	if r.max > r.min {
		t = (v - r.min) / (r.max - r.min)
	}
	seg := t * float64(len(r.stops)-1)
	i := min(int(seg), len(r.stops)-2)
	c := r.stops[i]
	switch f := seg - float64(i); {
	case f >= 1:
		c = r.stops[i+1]
	case f > 0:
		c = c.BlendLab(r.stops[i+1], f).Clamped()
	}
	red, green, blue := c.RGB255()
	return color.NRGBA{R: red, G: green, B: blue, A: uint8(math.Round(r.alpha * 255))}
}

// Max implements palette.ColorMap.
func (r *Ramp) Max() float64 { return r.max }

// SetMax implements palette.ColorMap.
func (r *Ramp) SetMax(v float64) { r.max = v }

// Min implements palette.ColorMap.
func (r *Ramp) Min() float64 { return r.min }

// SetMin implements palette.ColorMap.
func (r *Ramp) SetMin(v float64) { r.min = v }

// Alpha implements palette.ColorMap.
func (r *Ramp) Alpha() float64 { return r.alpha }

// SetAlpha implements palette.ColorMap.
func (r *Ramp) SetAlpha(a float64) { r.alpha = a }

// Palette implements palette.ColorMap, sampling n evenly spaced colours.
func (r *Ramp) Palette(n int) palette.Palette {
	cols := make(colors, n)
	for i := range cols {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		cols[i] = r.blend(r.min + t*(r.max-r.min))
	}
	return cols
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }

// Hex formats a colour as #rrggbb.
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

// Named ramps.
var (
	// Blue colours patch age.
	Blue = MustRamp("#96ffff", "#000080")
	// Yellow colours plant counts of the second functional type.
	Yellow = MustRamp("#fffd98", "#fc7753")
	// Purple colours plant counts of the first functional type.
	Purple = MustRamp("#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d")
	// Red is used for further functional types.
	Red = MustRamp("#03edfc", "#e80013")
	// Green is used for further functional types.
	Green = MustRamp("#d9f0a3", "#78c679", "#006837")
	// Viridis colours choropleth values.
	Viridis = MustRamp("#440154", "#21908d", "#fde725")
)

// TypeRamp returns the plant count ramp of functional type pft (1-based).
func TypeRamp(pft int) *Ramp {
	ramps := []*Ramp{Purple, Yellow, Red, Green}
	if pft < 1 {
		pft = 1
	}
	return ramps[(pft-1)%len(ramps)]
}
