package reduce

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// NumSizeClasses is the number of trunk width bins.
const NumSizeClasses = 13

// sizeEdges are the fixed lower edges of the size classes in cm. The top
// edge depends on the data, see SizeClassEdges.
var sizeEdges = [NumSizeClasses]float64{0, 5, 10, 15, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// SizeClassEdges returns the 14 bin edges for a patch whose largest trunk
// width is maxDBH. The top edge is max(101, maxDBH) nudged just above maxDBH
// so that the largest cohort falls inside the last half-open bin.
func SizeClassEdges(maxDBH float64) []float64 {
	edges := make([]float64, 0, NumSizeClasses+1)
	edges = append(edges, sizeEdges[:]...)
	return append(edges, math.Max(101, math.Nextafter(maxDBH, math.Inf(1))))
}

// SizeClassLabel returns the label of bin i (0-based), "SC1" through "SC13".
func SizeClassLabel(i int) string { return fmt.Sprintf("SC%d", i+1) }

// SizeClass returns the bin index of dbh for the given edges, or -1 when dbh
// lies outside [edges[0], edges[last]).
func SizeClass(dbh float64, edges []float64) int {
	if math.IsNaN(dbh) || len(edges) < 2 || dbh < edges[0] || dbh >= edges[len(edges)-1] {
		return -1
	}
	i, found := slices.BinarySearch(edges, dbh)
	if found {
		return i
	}
	return i - 1
}

type binKey struct {
	pft   int
	layer Layer
	class int
}

// layerRank orders understory before canopy.
func layerRank(l Layer) int {
	if l == LayerCanopy {
		return 1
	}
	return 0
}

// binPatch aggregates the cohorts of one patch by (type, layer, size class).
// Groups are ordered understory first, then by type, then by class.
func binPatch(rows []Cohort) []Cohort {
	if len(rows) == 0 {
		return nil
	}
	dbh := make([]float64, len(rows))
	for i, c := range rows {
		dbh[i] = c.DBH
	}
	edges := SizeClassEdges(floats.Max(dbh))

	groups := map[binKey][]Cohort{}
	var keys []binKey
	for _, c := range rows {
		class := SizeClass(c.DBH, edges)
		if class < 0 {
			continue
		}
		k := binKey{c.PFT, c.Layer, class}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], c)
	}

	slices.SortFunc(keys, func(a, b binKey) int {
		if c := cmp.Compare(layerRank(a.layer), layerRank(b.layer)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.pft, b.pft); c != 0 {
			return c
		}
		return cmp.Compare(a.class, b.class)
	})

	out := make([]Cohort, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		var widths, heights stats.Float64Data
		var plants, crown float64
		for _, c := range g {
			widths = append(widths, c.DBH)
			heights = append(heights, c.Height)
			plants += c.NPlant
			crown += c.CrownArea
		}
		medDBH, _ := widths.Median()
		medHeight, _ := heights.Median()
		row := Cohort{
			PFT:       k.pft,
			Layer:     k.layer,
			DBH:       medDBH,
			Height:    medHeight,
			CrownArea: crown,
			NPlant:    plants,
			Patch:     g[0].Patch,
			PatchArea: g[0].PatchArea,
			PatchAge:  g[0].PatchAge,
			SizeClass: SizeClassLabel(k.class),
			Year:      g[0].Year,
		}
		shape(&row)
		out = append(out, row)
	}
	placeStems(out)
	return out
}

// binAll bins every patch of a cohort table, in the order of ids.
func binAll(rows []Cohort, ids []int) []Cohort {
	groups := byPatch(rows)
	var out []Cohort
	for _, id := range ids {
		out = append(out, binPatch(groups[id])...)
	}
	return out
}

// onePatch collapses binned rows into a single patch of area 1 and age 0,
// ordered by height.
func onePatch(rows []Cohort) ([]Cohort, []Patch) {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b Cohort) int { return cmp.Compare(a.Height, b.Height) })
	placeStems(out)
	for i := range out {
		out[i].Patch = 1
		out[i].PatchArea = 1
		out[i].PatchAge = 0
	}
	p := Patch{ID: 1, Area: 1, Age: 0, Coverage: coverage(out, 1)}
	return out, []Patch{p}
}
