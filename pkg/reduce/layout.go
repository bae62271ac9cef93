package reduce

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// StemGap is the horizontal space added to every canopy when packing stems.
const StemGap = 10

// Crown geometry as fractions of cohort height: the crown starts at
// CrownBase and is CrownDepth deep.
const (
	CrownBase  = 0.6
	CrownDepth = 0.4
)

// PackStems places cohorts side by side: each takes a slot of its canopy
// width plus StemGap and its stem sits at the slot centre.
func PackStems(widths []float64) []float64 {
	slots := make([]float64, len(widths))
	for i, w := range widths {
		slots[i] = w + StemGap
	}
	cum := floats.CumSum(make([]float64, len(slots)), slots)
	for i := range cum {
		cum[i] -= slots[i] / 2
	}
	return cum
}

// shape sets the crown geometry derived from height and crown area.
func shape(c *Cohort) {
	c.CanopyBottom = c.Height * CrownBase
	c.CanopyWidth = c.CrownArea / (c.Height * CrownDepth)
}

// placeStems runs PackStems over rows in order.
func placeStems(rows []Cohort) {
	widths := make([]float64, len(rows))
	for i, c := range rows {
		widths[i] = c.CanopyWidth
	}
	for i, x := range PackStems(widths) {
		rows[i].StemLocation = x
	}
}

// placeStemsByPatch packs stems separately within each patch. Rows must be
// grouped by patch.
func placeStemsByPatch(rows []Cohort) {
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Patch == rows[start].Patch {
			end++
		}
		placeStems(rows[start:end])
		start = end
	}
}

// sortCohorts orders cohorts by (patch area, patch, height), keeping input
// order among equal keys.
func sortCohorts(rows []Cohort) {
	slices.SortStableFunc(rows, func(a, b Cohort) int {
		if c := cmp.Compare(a.PatchArea, b.PatchArea); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Patch, b.Patch); c != 0 {
			return c
		}
		return cmp.Compare(a.Height, b.Height)
	})
}
