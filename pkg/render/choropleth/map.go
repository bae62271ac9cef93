package choropleth

import (
	"bytes"
	"html/template"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/render"
)

// Map defaults.
const (
	DefaultLat    = 39.5
	DefaultLon    = -121.0
	DefaultZoom   = 5.5
	DefaultWidth  = 500 // px
	DefaultHeight = 800 // px
	// Opacity of the cell fills.
	Opacity = 0.95
)

// pixel is the canvas length of one output pixel at the png resolution.
const pixel = vg.Inch / 96

// Option configures a map.
type Option func(*config)

type config struct {
	title         string
	lat, lon      float64
	zoom          float64
	token         string
	width, height int
	ramp          *render.Ramp
}

// WithTitle sets the map title.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// WithCenter sets the initial centre of the interactive map.
func WithCenter(lat, lon float64) Option {
	return func(c *config) { c.lat, c.lon = lat, lon }
}

// WithZoom sets the initial zoom of the interactive map.
func WithZoom(zoom float64) Option {
	return func(c *config) { c.zoom = zoom }
}

// WithToken sets the Mapbox access token. Without one the interactive map
// uses OpenStreetMap tiles.
func WithToken(token string) Option {
	return func(c *config) { c.token = token }
}

// WithSize sets the figure size in pixels.
func WithSize(w, h int) Option {
	return func(c *config) { c.width, c.height = w, h }
}

// WithRamp replaces the Viridis colour ramp.
func WithRamp(r *render.Ramp) Option {
	return func(c *config) { c.ramp = r }
}

func newConfig(opts []Option) config {
	c := config{
		lat:    DefaultLat,
		lon:    DefaultLon,
		zoom:   DefaultZoom,
		width:  DefaultWidth,
		height: DefaultHeight,
		ramp:   render.Viridis,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Formats are the formats Render supports.
var Formats = map[string]bool{
	render.FormatHTML:    true,
	render.FormatGeoJSON: true,
	render.FormatPNG:     true,
	render.FormatSVG:     true,
	render.FormatPDF:     true,
}

// Render encodes cells as an interactive html map, a geojson document or a
// static png/svg/pdf figure.
func Render(cells []Cell, format string, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)
	switch format {
	case render.FormatHTML:
		return page(cells, cfg)
	case render.FormatGeoJSON:
		return GeoJSON(cells, cfg.ramp)
	}
	if !Formats[format] {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot write a map as %q", format)
	}
	c, err := render.NewCanvas(format, vg.Length(cfg.width)*pixel, vg.Length(cfg.height)*pixel)
	if err != nil {
		return nil, err
	}
	Draw(draw.New(c), cells, opts...)
	return render.Encode(c)
}

// Draw draws the cells onto dc in an equirectangular projection with a
// colour bar on the right.
func Draw(dc draw.Canvas, cells []Cell, opts ...Option) {
	cfg := newConfig(opts)
	render.Background(dc, color.White)

	lo, hi := Range(cells)
	ramp := cfg.ramp.WithRange(lo, hi)

	p := plot.New()
	p.Title.Text = cfg.title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Add(&Polygons{Cells: cells, Ramp: ramp})
	p.Draw(render.Sub(dc, render.Rect{Left: 0, Right: 0.8, Bottom: 0, Top: 1}))

	bar := render.Rect{Left: 0.83, Right: 0.97, Bottom: 0.1, Top: 0.9}
	render.ColorBar(render.Sub(dc, bar), ramp, "", nil)
}

// Polygons plots cell polygons filled by value. It implements plot.Plotter
// and plot.DataRanger.
type Polygons struct {
	Cells []Cell
	Ramp  *render.Ramp
}

// Plot implements plot.Plotter.
func (g *Polygons) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, cell := range g.Cells {
		pts := make([]vg.Point, 0, len(cell.Ring))
		for _, q := range cell.Ring {
			pts = append(pts, vg.Point{X: trX(q[0]), Y: trY(q[1])})
		}
		clr := color.NRGBAModel.Convert(g.Ramp.Color(cell.Value)).(color.NRGBA)
		clr.A = uint8(math.Round(Opacity * 255))
		c.FillPolygon(clr, c.ClipPolygonXY(pts))
	}
}

// DataRange implements plot.DataRanger.
func (g *Polygons) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(g.Cells) == 0 {
		return 0, 1, 0, 1
	}
	return Bounds(g.Cells)
}

var leafletTmpl = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
body { font-family: sans-serif; margin: 1em; }
#map { width: {{.Width}}px; height: {{.Height}}px; }
</style>
</head>
<body>
<h3>{{.Title}}</h3>
<div id="map"></div>
<script>
(function () {
  var map = L.map("map", { zoomSnap: 0.1 }).setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
  var token = {{.Token}};
  if (token) {
    L.tileLayer("https://api.mapbox.com/styles/v1/mapbox/streets-v11/tiles/{z}/{x}/{y}?access_token=" + token, {
      tileSize: 512, zoomOffset: -1, attribution: "&copy; Mapbox &copy; OpenStreetMap"
    }).addTo(map);
  } else {
    L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
      attribution: "&copy; OpenStreetMap contributors"
    }).addTo(map);
  }
  L.geoJSON({{.Features}}, {
    style: function (f) {
      return { fillColor: f.properties.fill, fillOpacity: {{.Opacity}}, weight: 0 };
    },
    onEachFeature: function (f, layer) { layer.bindTooltip(String(f.properties.value)); }
  }).addTo(map);
})();
</script>
</body>
</html>
`))

type pageView struct {
	Title         string
	Lat, Lon      float64
	Zoom          float64
	Token         string
	Width, Height int
	Opacity       float64
	Features      template.JS
}

func page(cells []Cell, cfg config) ([]byte, error) {
	features, err := GeoJSON(cells, cfg.ramp)
	if err != nil {
		return nil, err
	}
	v := pageView{
		Title:    cfg.title,
		Lat:      cfg.lat,
		Lon:      cfg.lon,
		Zoom:     cfg.zoom,
		Token:    cfg.token,
		Width:    cfg.width,
		Height:   cfg.height,
		Opacity:  Opacity,
		Features: template.JS(features),
	}
	var buf bytes.Buffer
	if err := leafletTmpl.Execute(&buf, v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render map page")
	}
	return buf.Bytes(), nil
}
