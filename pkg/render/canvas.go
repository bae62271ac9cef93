package render

import (
	"bytes"
	"image/color"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// Output formats.
const (
	FormatPNG     = "png"
	FormatSVG     = "svg"
	FormatPDF     = "pdf"
	FormatGIF     = "gif"
	FormatHTML    = "html"
	FormatGeoJSON = "geojson"
)

// ImageFormats are the formats a single canvas can be encoded to.
var ImageFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatPDF: true,
}

// NewCanvas creates a canvas of the given size for an image format.
func NewCanvas(format string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	if !ImageFormats[format] {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot draw %q (want %s)", format, strings.Join(SortedFormats(ImageFormats), ", "))
	}
	switch format {
	case FormatSVG:
		return vgsvg.New(w, h), nil
	case FormatPDF:
		return vgpdf.New(w, h), nil
	default:
		return vgimg.PngCanvas{Canvas: vgimg.New(w, h)}, nil
	}
}

// Encode serializes a canvas.
func Encode(c vg.CanvasWriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode canvas")
	}
	return buf.Bytes(), nil
}

// SortedFormats returns the keys of a format set in order.
func SortedFormats(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// TextStyle returns a text style with the default plot font.
func TextStyle(size vg.Length, clr color.Color) text.Style {
	return text.Style{
		Color:   clr,
		Font:    font.From(plot.DefaultFont, size),
		XAlign:  text.XLeft,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
}

// Sub returns the part of c covered by r, where r is given in fractions of
// c's width and height.
func Sub(c draw.Canvas, r Rect) draw.Canvas {
	w, h := c.Max.X-c.Min.X, c.Max.Y-c.Min.Y
	return draw.Canvas{
		Canvas: c.Canvas,
		Rectangle: vg.Rectangle{
			Min: vg.Point{X: c.Min.X + vg.Length(r.Left)*w, Y: c.Min.Y + vg.Length(r.Bottom)*h},
			Max: vg.Point{X: c.Min.X + vg.Length(r.Right)*w, Y: c.Min.Y + vg.Length(r.Top)*h},
		},
	}
}

// FillRect fills the canvas rectangle r with clr.
func FillRect(c draw.Canvas, r vg.Rectangle, clr color.Color) {
	c.FillPolygon(clr, []vg.Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	})
}

// Background fills the whole canvas.
func Background(c draw.Canvas, clr color.Color) { FillRect(c, c.Rectangle, clr) }
