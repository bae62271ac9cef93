package reduce

import (
	"math"
	"slices"
	"strings"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// DefaultMergeThreshold is the cumulative area below which the smallest
// patches are merged into one.
const DefaultMergeThreshold = 1000

// PlantScale converts nplant (plants per m²) to plants per cohort.
const PlantScale = 1600

// Layer is a cohort's canopy layer.
type Layer int

const (
	LayerCanopy     Layer = 1
	LayerUnderstory Layer = 2
)

// LayerOf maps a fates_canopy_layer value to a Layer. Layer 1 is the canopy;
// every lower layer counts as understory.
func LayerOf(v float64) Layer {
	if v == 1 {
		return LayerCanopy
	}
	return LayerUnderstory
}

func (l Layer) String() string {
	if l == LayerCanopy {
		return "canopy"
	}
	return "understory"
}

// Color is the stem colour used for the layer.
func (l Layer) Color() string {
	if l == LayerCanopy {
		return "orange"
	}
	return "grey"
}

// Cohort is one row of the cohort table.
type Cohort struct {
	PFT       int     `json:"pft"`
	Layer     Layer   `json:"canopy_layer"`
	DBH       float64 `json:"trunk_width"`
	Height    float64 `json:"cohort_height"`
	CrownArea float64 `json:"crown_area"`
	NPlant    float64 `json:"num_plants"`
	Patch     int     `json:"patch"` // ID of the owning Patch
	PatchArea float64 `json:"patch_area"`
	PatchAge  float64 `json:"patch_age"`

	CanopyBottom float64 `json:"canopy_bottom"`
	CanopyWidth  float64 `json:"canopy_width"`
	StemLocation float64 `json:"stem_location"`
	SizeClass    string  `json:"dbh_binned,omitempty"`

	Year int `json:"year"`
}

// Coverage splits a patch's area between the canopy layer, the understory
// and bare ground.
type Coverage struct {
	Canopy     float64 `json:"canopy"`
	Understory float64 `json:"understory"`
	Bare       float64 `json:"bare"`
}

// Patch is one row of the patch table.
type Patch struct {
	ID       int      `json:"patch"`
	Area     float64  `json:"patch_area"`
	Age      float64  `json:"patch_age"`
	Coverage Coverage `json:"coverages"`
	Year     int      `json:"year"`
}

// Mode selects how cohorts are aggregated.
type Mode string

const (
	// ModeBasic keeps one row per cohort.
	ModeBasic Mode = "basic"
	// ModePatchSimplified bins cohorts by size class within each patch.
	ModePatchSimplified Mode = "patch-simplified"
	// ModeOnePatch bins cohorts and collapses all patches into one.
	ModeOnePatch Mode = "one-patch"
)

// ValidModes lists the accepted reduction modes.
var ValidModes = map[Mode]bool{
	ModeBasic:           true,
	ModePatchSimplified: true,
	ModeOnePatch:        true,
}

// ParseMode parses a mode name. Spaces and underscores are accepted in place
// of dashes ("one patch").
func ParseMode(s string) (Mode, error) {
	norm := strings.NewReplacer(" ", "-", "_", "-").Replace(strings.ToLower(strings.TrimSpace(s)))
	if norm == "" {
		return ModeBasic, nil
	}
	m := Mode(norm)
	if !ValidModes[m] {
		return "", errors.New(errors.ErrCodeInvalidMode, "unknown mode %q (want basic, patch-simplified or one-patch)", s)
	}
	return m, nil
}

// Binned reports whether the mode aggregates cohorts into size classes.
func (m Mode) Binned() bool { return m == ModePatchSimplified || m == ModeOnePatch }

// Options configures Reduce.
type Options struct {
	Mode Mode
	// MergeThreshold bounds the cumulative area of merged small patches.
	// Zero means DefaultMergeThreshold.
	MergeThreshold float64
}

// SetDefaults fills in zero values.
func (o *Options) SetDefaults() {
	if o.Mode == "" {
		o.Mode = ModeBasic
	}
	if o.MergeThreshold == 0 {
		o.MergeThreshold = DefaultMergeThreshold
	}
}

// Validate checks the options after defaults are applied.
func (o Options) Validate() error {
	if !ValidModes[o.Mode] {
		return errors.New(errors.ErrCodeInvalidMode, "unknown mode %q", o.Mode)
	}
	if o.MergeThreshold < 0 || math.IsNaN(o.MergeThreshold) || math.IsInf(o.MergeThreshold, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "merge threshold must be a finite non-negative number, got %v", o.MergeThreshold)
	}
	return nil
}

// MergeSummary describes the small-patch merge of one reduction.
type MergeSummary struct {
	Count int     `json:"count"` // patches merged, 0 if none
	Area  float64 `json:"area"`  // area of the merged patch
	Age   float64 `json:"age"`   // mean age of the merged patch
}

// Result holds the reduced tables for one year.
type Result struct {
	Year    int          `json:"year"`
	Mode    Mode         `json:"mode"`
	Cohorts []Cohort     `json:"cohorts"`
	Patches []Patch      `json:"patches"`
	Merge   MergeSummary `json:"merge"`
	// Shape is the patch table check outcome; ShapeNeedsPadding means
	// missing ages were filled with 0.
	Shape ShapeStatus `json:"-"`
}

// PFTs returns the distinct functional types of the cohort table in
// ascending order.
func (r *Result) PFTs() []int {
	seen := map[int]bool{}
	var out []int
	for _, c := range r.Cohorts {
		if !seen[c.PFT] {
			seen[c.PFT] = true
			out = append(out, c.PFT)
		}
	}
	slices.Sort(out)
	return out
}

// CohortsOf returns the cohorts of patch id, in table order.
func (r *Result) CohortsOf(id int) []Cohort {
	var out []Cohort
	for _, c := range r.Cohorts {
		if c.Patch == id {
			out = append(out, c)
		}
	}
	return out
}

// MaxPlants returns the largest plant count in the cohort table.
func (r *Result) MaxPlants() float64 {
	m := 0.0
	for _, c := range r.Cohorts {
		m = math.Max(m, c.NPlant)
	}
	return m
}
