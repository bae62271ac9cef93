// Package reduce turns the cohort and patch arrays of one restart file into
// the two tables the treemap is drawn from.
//
// The cohort table has one row per non-empty cohort with its crown geometry
// and horizontal stem position inside its patch. The patch table has one row
// per distinct patch with the split of its area between canopy, understory
// and bare ground.
//
// # Pipeline
//
// [Reduce] runs these steps in order:
//
//  1. Build cohort rows, forward-filling patch area and age into the cohort
//     slots that follow a patch's first slot. Rows with zero height, no
//     crown area or no owning patch are dropped.
//  2. Build the patch table from the non-empty area and age slots, padding
//     missing ages with 0 (see [CheckPatchShape]) and dropping duplicates.
//  3. Merge the smallest patches whose cumulative area fits in
//     Options.MergeThreshold into one patch (summed area, mean age).
//  4. Compute each patch's [Coverage].
//  5. Sort cohorts by (patch area, patch, height) and patches by area, then
//     pack stems within each patch with [PackStems].
//
// Patches are identified by Patch.ID, not by area: two patches may share an
// area, e.g. when the merged patch adds up to the area of another one.
//
// In [ModePatchSimplified] cohorts are then aggregated per patch into the 13
// trunk width size classes ([SizeClassEdges]); [ModeOnePatch] additionally
// collapses every patch into a single synthetic patch.
package reduce

import (
	"math"

	"github.com/mchxo/fates-visualization/pkg/allometry"
	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
)

// Restart file variables read by the reducer besides the allometry inputs.
const (
	VarHeight      = "fates_height"
	VarCanopyLayer = "fates_canopy_layer"
	VarArea        = "fates_area"
	VarAge         = "fates_age"
)

// Input holds the per cohort slot arrays of one year. Every array has one
// entry per slot.
type Input struct {
	Year      int
	CrownArea []float64
	Height    []float64
	PFT       []float64
	Layer     []float64
	DBH       []float64
	NPlant    []float64
	PatchArea []float64
	PatchAge  []float64
}

// InputFrom reads the reducer input for year from a restart and a parameter
// dataset.
func InputFrom(restart, param dataset.Dataset, year int) (Input, error) {
	crown, err := allometry.Compute(restart, param)
	if err != nil {
		return Input{}, err
	}
	in := Input{Year: year, CrownArea: crown}
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{
		{VarHeight, &in.Height},
		{allometry.VarPFT, &in.PFT},
		{VarCanopyLayer, &in.Layer},
		{allometry.VarDBH, &in.DBH},
		{allometry.VarNPlant, &in.NPlant},
		{VarArea, &in.PatchArea},
		{VarAge, &in.PatchAge},
	} {
		arr, err := restart.Variable(v.name)
		if err != nil {
			return Input{}, err
		}
		*v.dst = arr.Data
	}
	return in, nil
}

func (in Input) validate() error {
	n := len(in.Height)
	for _, v := range []struct {
		name string
		arr  []float64
	}{
		{"crown area", in.CrownArea},
		{VarCanopyLayer, in.Layer},
		{allometry.VarPFT, in.PFT},
		{allometry.VarDBH, in.DBH},
		{allometry.VarNPlant, in.NPlant},
		{VarArea, in.PatchArea},
		{VarAge, in.PatchAge},
	} {
		if len(v.arr) != n {
			return errors.New(errors.ErrCodeShapeMismatch, "%s has %d entries, %s has %d", v.name, len(v.arr), VarHeight, n)
		}
	}
	return nil
}

// Reduce builds the cohort and patch tables for one year.
func Reduce(in Input, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	cohorts := cohortTable(in)
	patches, alias, status, err := patchTable(in.PatchArea, in.PatchAge)
	if err != nil {
		return nil, err
	}
	resolve(cohorts, alias)

	cohorts, patches, summary := merge(cohorts, patches, opts.MergeThreshold)
	assignCoverage(patches, cohorts)

	sortCohorts(cohorts)
	sortPatches(patches)
	for i := range cohorts {
		shape(&cohorts[i])
	}
	placeStemsByPatch(cohorts)

	switch opts.Mode {
	case ModePatchSimplified:
		cohorts = binAll(cohorts, patchIDs(patches))
	case ModeOnePatch:
		cohorts, patches = onePatch(binAll(cohorts, patchIDs(patches)))
	}

	for i := range cohorts {
		cohorts[i].Year = in.Year
	}
	for i := range patches {
		patches[i].Year = in.Year
	}
	return &Result{
		Year:    in.Year,
		Mode:    opts.Mode,
		Cohorts: cohorts,
		Patches: patches,
		Merge:   summary,
		Shape:   status,
	}, nil
}

// cohortTable builds one row per non-empty cohort slot. Zero or masked
// patch area and age slots inherit the previous non-empty slot. A cohort
// belongs to the patch of the last non-empty area slot, numbered from 1 as
// in patchTable.
func cohortTable(in Input) []Cohort {
	var rows []Cohort
	area, age := math.NaN(), math.NaN()
	patch := 0
	for i, h := range in.Height {
		if a := in.PatchArea[i]; a != 0 && !math.IsNaN(a) {
			area = a
			patch++
		}
		if a := in.PatchAge[i]; a != 0 && !math.IsNaN(a) {
			age = a
		}
		if h == 0 || math.IsNaN(h) || math.IsNaN(in.CrownArea[i]) || math.IsNaN(area) {
			continue
		}
		rowAge := age
		if math.IsNaN(rowAge) {
			rowAge = 0
		}
		rows = append(rows, Cohort{
			PFT:       int(in.PFT[i]),
			Layer:     LayerOf(in.Layer[i]),
			DBH:       in.DBH[i],
			Height:    h,
			CrownArea: in.CrownArea[i],
			NPlant:    in.NPlant[i] * PlantScale,
			Patch:     patch,
			PatchArea: area,
			PatchAge:  rowAge,
			Year:      in.Year,
		})
	}
	return rows
}
