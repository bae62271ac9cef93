// Package choropleth maps one gridded history variable onto the model's
// grid cell polygons.
//
// Cell corners come from the parameter variables xv (longitude) and yv
// (latitude), dimensioned (i, j, 4). Values come from a history variable
// dimensioned (time, i, j) at one time index. Masked and zero cells are
// left out. The cells can be written as a GeoJSON FeatureCollection, as a
// Leaflet page, or drawn onto a static png/svg/pdf map.
package choropleth

import (
	"math"
	"slices"

	geojson "github.com/paulmach/go.geojson"
	"gonum.org/v1/gonum/floats"

	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/render"
)

// Parameter variables holding the cell corners.
const (
	VarLon = "xv"
	VarLat = "yv"
)

// Cell is one non-empty grid cell.
type Cell struct {
	I, J  int
	Ring  [][]float64 // closed ring of [lon, lat] corners
	Value float64
}

// Cells reads the cell polygons from param and the values of variable from
// hist at time index t.
func Cells(param, hist dataset.Dataset, variable string, t int) ([]Cell, error) {
	lon, err := param.Variable(VarLon)
	if err != nil {
		return nil, err
	}
	lat, err := param.Variable(VarLat)
	if err != nil {
		return nil, err
	}
	if len(lon.Shape) != 3 || lon.Dim(2) != 4 || !slices.Equal(lon.Shape, lat.Shape) {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"%s %v and %s %v must both be (i, j, 4)", VarLon, lon.Shape, VarLat, lat.Shape)
	}
	v, err := hist.Variable(variable)
	if err != nil {
		return nil, err
	}
	if len(v.Shape) != 3 {
		return nil, errors.New(errors.ErrCodeShapeMismatch, "%s has shape %v, want (time, i, j)", variable, v.Shape)
	}
	if t < 0 || t >= v.Dim(0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "time index %d outside %s's %d steps", t, variable, v.Dim(0))
	}
	ni, nj := v.Dim(1), v.Dim(2)
	if ni != lon.Dim(0) || nj != lon.Dim(1) {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"%s grid %dx%d does not match the %dx%d cell grid", variable, ni, nj, lon.Dim(0), lon.Dim(1))
	}

	var cells []Cell
	for i := range ni {
		for j := range nj {
			x := v.At(t, i, j)
			if math.IsNaN(x) || x == 0 {
				continue
			}
			ring := make([][]float64, 0, 5)
			for k := range 4 {
				ring = append(ring, []float64{lon.At(i, j, k), lat.At(i, j, k)})
			}
			ring = append(ring, ring[0])
			cells = append(cells, Cell{I: i, J: j, Ring: ring, Value: x})
		}
	}
	return cells, nil
}

// Range returns the smallest and largest cell value. It returns 0, 1 for
// no cells and widens a single value to a unit range.
func Range(cells []Cell) (lo, hi float64) {
	if len(cells) == 0 {
		return 0, 1
	}
	values := make([]float64, len(cells))
	for i, c := range cells {
		values[i] = c.Value
	}
	lo, hi = floats.Min(values), floats.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return lo, hi
}

// Bounds returns the longitude and latitude extent of the cells.
func Bounds(cells []Cell) (minLon, maxLon, minLat, maxLat float64) {
	minLon, minLat = math.Inf(1), math.Inf(1)
	maxLon, maxLat = math.Inf(-1), math.Inf(-1)
	for _, c := range cells {
		for _, p := range c.Ring {
			minLon, maxLon = math.Min(minLon, p[0]), math.Max(maxLon, p[0])
			minLat, maxLat = math.Min(minLat, p[1]), math.Max(maxLat, p[1])
		}
	}
	return minLon, maxLon, minLat, maxLat
}

// FeatureCollection converts cells to GeoJSON polygons. Feature ids number
// the cells from 0; each feature carries its value, grid index and fill
// colour on ramp over the value range.
func FeatureCollection(cells []Cell, ramp *render.Ramp) *geojson.FeatureCollection {
	lo, hi := Range(cells)
	ramp = ramp.WithRange(lo, hi)
	fc := geojson.NewFeatureCollection()
	for id, c := range cells {
		f := geojson.NewPolygonFeature([][][]float64{c.Ring})
		f.ID = id
		f.SetProperty("value", c.Value)
		f.SetProperty("i", c.I)
		f.SetProperty("j", c.J)
		f.SetProperty("fill", render.Hex(ramp.Color(c.Value)))
		fc.AddFeature(f)
	}
	return fc
}

// GeoJSON encodes cells as a FeatureCollection.
func GeoJSON(cells []Cell, ramp *render.Ramp) ([]byte, error) {
	data, err := FeatureCollection(cells, ramp).MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode geojson")
	}
	return data, nil
}
