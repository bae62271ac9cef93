package reduce

import (
	"math"
	"slices"
	"testing"

	"github.com/mchxo/fates-visualization/pkg/allometry"
	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
)

// slot is one cohort slot of a test restart file.
type slot struct {
	height, crown, pft, layer, dbh, nplant, area, age float64
}

func inputOf(year int, slots ...slot) Input {
	in := Input{Year: year}
	for _, s := range slots {
		in.Height = append(in.Height, s.height)
		in.CrownArea = append(in.CrownArea, s.crown)
		in.PFT = append(in.PFT, s.pft)
		in.Layer = append(in.Layer, s.layer)
		in.DBH = append(in.DBH, s.dbh)
		in.NPlant = append(in.NPlant, s.nplant)
		in.PatchArea = append(in.PatchArea, s.area)
		in.PatchAge = append(in.PatchAge, s.age)
	}
	return in
}

func heights(rows []Cohort) []float64 {
	out := make([]float64, len(rows))
	for i, c := range rows {
		out[i] = c.Height
	}
	return out
}

func areas(patches []Patch) []float64 {
	out := make([]float64, len(patches))
	for i, p := range patches {
		out[i] = p.Area
	}
	return out
}

func TestReduceSinglePatch(t *testing.T) {
	in := inputOf(3,
		slot{height: 20, crown: 16, pft: 1, layer: 2, dbh: 20, nplant: 0.01, area: 500, age: 5},
		slot{height: 10, crown: 8, pft: 1, layer: 1, dbh: 10, nplant: 0.02},
	)
	res, err := Reduce(in, Options{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	if got := heights(res.Cohorts); !slices.Equal(got, []float64{10, 20}) {
		t.Fatalf("heights = %v, want [10 20]", got)
	}
	wantBottom := []float64{6, 12}
	wantStem := []float64{6, 18}
	for i, c := range res.Cohorts {
		if c.CanopyBottom != wantBottom[i] {
			t.Errorf("row %d canopy bottom = %v, want %v", i, c.CanopyBottom, wantBottom[i])
		}
		if c.CanopyWidth != 2 {
			t.Errorf("row %d canopy width = %v, want 2", i, c.CanopyWidth)
		}
		if c.StemLocation != wantStem[i] {
			t.Errorf("row %d stem = %v, want %v", i, c.StemLocation, wantStem[i])
		}
		if c.PatchArea != 500 || c.PatchAge != 5 {
			t.Errorf("row %d patch = (%v, %v), want (500, 5)", i, c.PatchArea, c.PatchAge)
		}
		if c.Year != 3 {
			t.Errorf("row %d year = %d, want 3", i, c.Year)
		}
	}
	if res.Cohorts[0].NPlant != 0.02*PlantScale {
		t.Errorf("num plants = %v, want %v", res.Cohorts[0].NPlant, 0.02*PlantScale)
	}

	if len(res.Patches) != 1 {
		t.Fatalf("patches = %v, want 1", res.Patches)
	}
	want := Coverage{Canopy: 8, Understory: 16, Bare: 484}
	if got := res.Patches[0].Coverage; got != want {
		t.Errorf("coverage = %+v, want %+v", got, want)
	}
	if res.Merge.Count != 0 {
		t.Errorf("merge count = %d, want 0", res.Merge.Count)
	}
}

func TestReduceMergesSmallPatches(t *testing.T) {
	in := inputOf(1,
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 100, age: 10},
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 200, age: 20},
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 50, age: 30},
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 900, age: 40},
	)
	res, err := Reduce(in, Options{MergeThreshold: 1000})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	if got := areas(res.Patches); !slices.Equal(got, []float64{350, 900}) {
		t.Fatalf("patch areas = %v, want [350 900]", got)
	}
	if res.Patches[0].Age != 20 {
		t.Errorf("merged age = %v, want 20", res.Patches[0].Age)
	}
	if res.Merge != (MergeSummary{Count: 3, Area: 350, Age: 20}) {
		t.Errorf("merge summary = %+v", res.Merge)
	}

	assertOnePatchEach(t, res)
	if got := len(res.CohortsOf(res.Patches[0].ID)); got != 3 {
		t.Errorf("cohorts in merged patch = %d, want 3", got)
	}
}

// assertOnePatchEach checks that every cohort belongs to exactly one patch
// row and that every row's coverage counts only its own cohorts.
func assertOnePatchEach(t *testing.T, res *Result) {
	t.Helper()
	rows := map[int]int{}
	for _, p := range res.Patches {
		rows[p.ID]++
	}
	for _, c := range res.Cohorts {
		if rows[c.Patch] != 1 {
			t.Errorf("cohort of patch %d (area %v) matches %d patch rows", c.Patch, c.PatchArea, rows[c.Patch])
		}
	}
	for _, p := range res.Patches {
		var crown float64
		for _, c := range res.CohortsOf(p.ID) {
			crown += c.CrownArea
			if c.PatchArea != p.Area || c.PatchAge != p.Age {
				t.Errorf("cohort of patch %d has (%v, %v), patch row has (%v, %v)", p.ID, c.PatchArea, c.PatchAge, p.Area, p.Age)
			}
		}
		if got := p.Coverage.Canopy + p.Coverage.Understory; got != crown {
			t.Errorf("patch %d covers %v crown, its cohorts hold %v", p.ID, got, crown)
		}
	}
}

func TestReduceMergedAreaMatchesAnotherPatch(t *testing.T) {
	in := inputOf(1,
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 400, age: 10},
		slot{height: 10, crown: 2, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 500, age: 20},
		slot{height: 12, crown: 3, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 900, age: 40},
	)
	for _, mode := range []Mode{ModeBasic, ModePatchSimplified} {
		t.Run(string(mode), func(t *testing.T) {
			res, err := Reduce(in, Options{Mode: mode, MergeThreshold: 1000})
			if err != nil {
				t.Fatalf("Reduce: %v", err)
			}
			if len(res.Patches) != 2 {
				t.Fatalf("patches = %+v, want the merged one and the 900 one", res.Patches)
			}
			for _, p := range res.Patches {
				if p.Area != 900 {
					t.Errorf("patch %d area = %v, want 900", p.ID, p.Area)
				}
			}
			if res.Patches[0].Age != 15 || res.Patches[1].Age != 40 {
				t.Errorf("ages = %v, %v, want 15, 40", res.Patches[0].Age, res.Patches[1].Age)
			}
			assertOnePatchEach(t, res)
			if got := res.Patches[1].Coverage.Canopy; got != 3 {
				t.Errorf("900 patch canopy = %v, want 3", got)
			}
		})
	}
}

func TestReduceSameAreaDifferentAge(t *testing.T) {
	in := inputOf(1,
		slot{height: 10, crown: 4, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 2000, age: 10},
		slot{height: 10, crown: 6, pft: 2, layer: 1, dbh: 5, nplant: 1, area: 2000, age: 30},
	)
	res, err := Reduce(in, Options{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(res.Patches) != 2 {
		t.Fatalf("patches = %+v, want 2", res.Patches)
	}
	assertOnePatchEach(t, res)
	// each patch packs its own stems
	for _, c := range res.Cohorts {
		if want := (c.CanopyWidth + StemGap) / 2; c.StemLocation != want {
			t.Errorf("patch %d stem = %v, want %v", c.Patch, c.StemLocation, want)
		}
	}
}

func TestReduceThresholdOption(t *testing.T) {
	in := inputOf(1,
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 100, age: 10},
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 200, age: 20},
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 900, age: 40},
	)
	tests := []struct {
		threshold float64
		want      []float64
	}{
		{1000, []float64{300, 900}},
		{150, []float64{100, 200, 900}},
		{5000, []float64{1200}},
	}
	for _, tt := range tests {
		res, err := Reduce(in, Options{MergeThreshold: tt.threshold})
		if err != nil {
			t.Fatalf("Reduce(%v): %v", tt.threshold, err)
		}
		if got := areas(res.Patches); !slices.Equal(got, tt.want) {
			t.Errorf("threshold %v: areas = %v, want %v", tt.threshold, got, tt.want)
		}
	}
}

func TestReduceDropsEmptyCohorts(t *testing.T) {
	in := inputOf(1,
		slot{height: 0, crown: 5, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 400, age: 3},
		slot{height: 12, crown: math.NaN(), pft: 0, layer: 1, dbh: 5, nplant: 1},
		slot{height: 15, crown: 6, pft: 1, layer: 1, dbh: 5, nplant: 1},
	)
	res, err := Reduce(in, Options{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := heights(res.Cohorts); !slices.Equal(got, []float64{15}) {
		t.Errorf("heights = %v, want [15]", got)
	}
	for _, c := range res.Cohorts {
		if c.Height == 0 {
			t.Error("cohort with zero height kept")
		}
	}
}

func TestReduceLeadingSlotWithoutPatch(t *testing.T) {
	in := inputOf(1,
		slot{height: 12, crown: 3, pft: 1, layer: 1, dbh: 5, nplant: 1},
		slot{height: 15, crown: 6, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 400, age: 3},
	)
	res, err := Reduce(in, Options{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(res.Cohorts) != 1 || res.Cohorts[0].Height != 15 {
		t.Errorf("cohorts = %+v, want only the height 15 cohort", res.Cohorts)
	}
}

func TestReduceBareNeverNegative(t *testing.T) {
	in := inputOf(1,
		slot{height: 30, crown: 900, pft: 1, layer: 1, dbh: 50, nplant: 1, area: 100, age: 3},
		slot{height: 5, crown: 10, pft: 1, layer: 2, dbh: 2, nplant: 1},
		slot{height: 20, crown: 40, pft: 2, layer: 1, dbh: 5, nplant: 1, area: 2000, age: 9},
	)
	res, err := Reduce(in, Options{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	for _, p := range res.Patches {
		if p.Coverage.Bare < 0 {
			t.Errorf("patch %v bare = %v", p.Area, p.Coverage.Bare)
		}
	}
	if res.Patches[0].Coverage.Bare != 0 {
		t.Errorf("over-covered patch bare = %v, want 0", res.Patches[0].Coverage.Bare)
	}
	if res.Patches[1].Coverage != (Coverage{Canopy: 40, Understory: 0, Bare: 1960}) {
		t.Errorf("patch without understory coverage = %+v", res.Patches[1].Coverage)
	}
}

func TestReducePadsAges(t *testing.T) {
	in := inputOf(1,
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 600, age: 4},
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 700},
	)
	res, err := Reduce(in, Options{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if res.Shape != ShapeNeedsPadding {
		t.Errorf("shape = %v, want needs-padding", res.Shape)
	}
	if len(res.Patches) != 2 || res.Patches[1].Age != 0 {
		t.Errorf("patches = %+v, want second patch padded with age 0", res.Patches)
	}
}

func TestReduceErrors(t *testing.T) {
	mismatch := inputOf(1,
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 600, age: 4},
		slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, age: 7},
	)
	short := inputOf(1, slot{height: 10, crown: 1, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 1, age: 1})
	short.DBH = nil

	tests := []struct {
		name string
		in   Input
		opts Options
		code errors.Code
	}{
		{"more ages than areas", mismatch, Options{}, errors.ErrCodeShapeMismatch},
		{"short array", short, Options{}, errors.ErrCodeShapeMismatch},
		{"bad mode", short, Options{Mode: "tiny"}, errors.ErrCodeInvalidMode},
		{"negative threshold", short, Options{MergeThreshold: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(tt.in, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Reduce() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCheckPatchShape(t *testing.T) {
	tests := []struct {
		areas, ages int
		want        ShapeStatus
	}{
		{3, 3, ShapeOK},
		{3, 2, ShapeNeedsPadding},
		{2, 3, ShapeMismatch},
		{0, 0, ShapeOK},
	}
	for _, tt := range tests {
		if got := CheckPatchShape(tt.areas, tt.ages); got != tt.want {
			t.Errorf("CheckPatchShape(%d, %d) = %v, want %v", tt.areas, tt.ages, got, tt.want)
		}
	}
}

func TestDedupeKeepsFirst(t *testing.T) {
	got, alias := dedupe([]Patch{{ID: 1, Area: 5, Age: 1}, {ID: 2, Area: 3, Age: 2}, {ID: 3, Area: 5, Age: 1}, {ID: 4, Area: 5, Age: 9}})
	want := []Patch{{ID: 1, Area: 5, Age: 1}, {ID: 2, Area: 3, Age: 2}, {ID: 4, Area: 5, Age: 9}}
	if !slices.Equal(got, want) {
		t.Errorf("dedupe = %v, want %v", got, want)
	}
	if len(alias) != 1 || alias[3] != 1 {
		t.Errorf("alias = %v, want 3 -> 1", alias)
	}
}

func TestReduceRepeatedPatchSlots(t *testing.T) {
	in := inputOf(1,
		slot{height: 10, crown: 2, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 1500, age: 8},
		slot{height: 11, crown: 3, pft: 1, layer: 1, dbh: 5, nplant: 1, area: 1500, age: 8},
	)
	res, err := Reduce(in, Options{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(res.Patches) != 1 || len(res.CohortsOf(res.Patches[0].ID)) != 2 {
		t.Fatalf("patches = %+v, want one patch holding both cohorts", res.Patches)
	}
	assertOnePatchEach(t, res)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeBasic, false},
		{"basic", ModeBasic, false},
		{"patch simplified", ModePatchSimplified, false},
		{"patch-simplified", ModePatchSimplified, false},
		{"One_Patch", ModeOnePatch, false},
		{"squares", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInputFrom(t *testing.T) {
	param := dataset.NewMemory().
		Float(allometry.ParamCMode, 1).
		Float(allometry.ParamD2BL2, 1.5).
		Float(allometry.ParamD2CAMax, 0.6).
		Float(allometry.ParamD2CAMin, 0.2).
		Float(allometry.ParamBLCAExpntDiff, 0.5).
		Float(allometry.ParamDBHMaxHeight, 90)
	restart := dataset.NewMemory().
		Float(allometry.VarPFT, 1, 0, 1).
		Float(allometry.VarDBH, 10, 10, 20).
		Float(allometry.VarNPlant, 0.01, 0.01, 0.01).
		Float(allometry.VarSpread, 0.5).
		Float(VarHeight, 8, 9, 12).
		Float(VarCanopyLayer, 1, 1, 2).
		Float(VarArea, 700, 0, 0).
		Float(VarAge, 12, 0, 0)

	in, err := InputFrom(restart, param, 2)
	if err != nil {
		t.Fatalf("InputFrom: %v", err)
	}
	res, err := Reduce(in, Options{})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	// the type 0 slot has no crown area and is dropped
	if got := heights(res.Cohorts); !slices.Equal(got, []float64{8, 12}) {
		t.Errorf("heights = %v, want [8 12]", got)
	}
	for _, c := range res.Cohorts {
		if c.PatchArea != 700 || c.PatchAge != 12 {
			t.Errorf("cohort patch = (%v, %v), want (700, 12)", c.PatchArea, c.PatchAge)
		}
	}

	if _, err := InputFrom(dataset.NewMemory(), param, 1); err == nil {
		t.Error("InputFrom on empty restart should fail")
	}
}
