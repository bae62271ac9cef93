package reduce

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// ShapeStatus is the outcome of comparing the non-empty patch areas and
// ages of a restart file.
type ShapeStatus int

const (
	// ShapeOK means there is one age per area.
	ShapeOK ShapeStatus = iota
	// ShapeNeedsPadding means some ages are missing (age 0 patches are
	// indistinguishable from empty slots); they are padded with 0.
	ShapeNeedsPadding
	// ShapeMismatch means there are more ages than areas.
	ShapeMismatch
)

func (s ShapeStatus) String() string {
	switch s {
	case ShapeOK:
		return "ok"
	case ShapeNeedsPadding:
		return "needs-padding"
	default:
		return "mismatch"
	}
}

// CheckPatchShape compares the number of non-empty areas and ages.
func CheckPatchShape(areas, ages int) ShapeStatus {
	switch {
	case areas == ages:
		return ShapeOK
	case ages < areas:
		return ShapeNeedsPadding
	default:
		return ShapeMismatch
	}
}

// nonEmpty returns the entries of v that are neither zero nor masked.
func nonEmpty(v []float64) []float64 {
	out := make([]float64, 0, len(v))
	for _, x := range v {
		if x != 0 && !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// patchTable builds the deduplicated patch table from the raw area and age
// slots. Patches are numbered from 1 in slot order; alias maps the ID of a
// dropped duplicate to the ID of the row it repeats.
func patchTable(area, age []float64) (patches []Patch, alias map[int]int, status ShapeStatus, err error) {
	areas, ages := nonEmpty(area), nonEmpty(age)
	status = CheckPatchShape(len(areas), len(ages))
	switch status {
	case ShapeMismatch:
		return nil, nil, status, errors.New(errors.ErrCodeShapeMismatch,
			"%d patch ages for %d patch areas", len(ages), len(areas))
	case ShapeNeedsPadding:
		ages = append(ages, make([]float64, len(areas)-len(ages))...)
	}

	patches = make([]Patch, len(areas))
	for i := range areas {
		patches[i] = Patch{ID: i + 1, Area: areas[i], Age: ages[i]}
	}
	patches, alias = dedupe(patches)
	return patches, alias, status, nil
}

// dedupe drops patches whose (area, age) pair already occurred and reports
// which kept ID each dropped ID resolves to.
func dedupe(patches []Patch) ([]Patch, map[int]int) {
	type key struct{ area, age float64 }
	first := make(map[key]int, len(patches))
	alias := map[int]int{}
	out := patches[:0:0]
	for _, p := range patches {
		k := key{p.Area, p.Age}
		if id, ok := first[k]; ok {
			alias[p.ID] = id
			continue
		}
		first[k] = p.ID
		out = append(out, p)
	}
	return out, alias
}

// resolve points cohorts of dropped duplicate patches at the kept row.
func resolve(cohorts []Cohort, alias map[int]int) {
	for i, c := range cohorts {
		if id, ok := alias[c.Patch]; ok {
			cohorts[i].Patch = id
		}
	}
}

// smallest returns the longest run of the area-sorted patches whose
// cumulative area stays within threshold.
func smallest(patches []Patch, threshold float64) []Patch {
	sorted := slices.Clone(patches)
	slices.SortStableFunc(sorted, func(a, b Patch) int { return cmp.Compare(a.Area, b.Area) })

	areas := make([]float64, len(sorted))
	for i, p := range sorted {
		areas[i] = p.Area
	}
	cum := floats.CumSum(make([]float64, len(areas)), areas)
	n := 0
	for n < len(cum) && cum[n] <= threshold {
		n++
	}
	return sorted[:n]
}

// merge folds the smallest patches into one synthetic patch whose area is
// their sum and whose age is their mean. The synthetic patch takes the
// lowest merged ID and the table position of that patch; cohorts of merged
// patches move to it. It stays a separate row even when another patch has
// the same area.
func merge(cohorts []Cohort, patches []Patch, threshold float64) ([]Cohort, []Patch, MergeSummary) {
	small := smallest(patches, threshold)
	if len(small) < 2 {
		return cohorts, patches, MergeSummary{}
	}

	areas := make([]float64, len(small))
	ages := make([]float64, len(small))
	merged := make(map[int]bool, len(small))
	id := small[0].ID
	for i, p := range small {
		areas[i], ages[i] = p.Area, p.Age
		merged[p.ID] = true
		id = min(id, p.ID)
	}
	sum := MergeSummary{
		Count: len(small),
		Area:  floats.Sum(areas),
		Age:   floats.Sum(ages) / float64(len(ages)),
	}

	out := make([]Patch, 0, len(patches)-len(small)+1)
	for _, p := range patches {
		switch {
		case !merged[p.ID]:
			out = append(out, p)
		case p.ID == id:
			out = append(out, Patch{ID: id, Area: sum.Area, Age: sum.Age})
		}
	}
	for i := range cohorts {
		if merged[cohorts[i].Patch] {
			cohorts[i].Patch = id
			cohorts[i].PatchArea = sum.Area
			cohorts[i].PatchAge = sum.Age
		}
	}
	return cohorts, out, sum
}

// coverage splits total between the crown areas of the canopy and
// understory cohorts. A missing layer contributes 0.
func coverage(cohorts []Cohort, total float64) Coverage {
	var c Coverage
	for _, co := range cohorts {
		switch co.Layer {
		case LayerCanopy:
			c.Canopy += co.CrownArea
		default:
			c.Understory += co.CrownArea
		}
	}
	c.Bare = math.Max(0, total-math.Max(c.Canopy, c.Understory))
	return c
}

// patchIDs returns the patch IDs in table order.
func patchIDs(patches []Patch) []int {
	out := make([]int, len(patches))
	for i, p := range patches {
		out[i] = p.ID
	}
	return out
}

// byPatch groups cohorts by patch ID.
func byPatch(cohorts []Cohort) map[int][]Cohort {
	m := make(map[int][]Cohort)
	for _, c := range cohorts {
		m[c.Patch] = append(m[c.Patch], c)
	}
	return m
}

// assignCoverage computes the coverage of every patch row.
func assignCoverage(patches []Patch, cohorts []Cohort) {
	groups := byPatch(cohorts)
	for i := range patches {
		patches[i].Coverage = coverage(groups[patches[i].ID], patches[i].Area)
	}
}

// sortPatches orders patches by area, then ID.
func sortPatches(patches []Patch) {
	slices.SortStableFunc(patches, func(a, b Patch) int {
		if c := cmp.Compare(a.Area, b.Area); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
