package reduce

import (
	"math"
	"slices"
	"testing"
)

func TestSizeClassEdges(t *testing.T) {
	edges := SizeClassEdges(40)
	if len(edges) != NumSizeClasses+1 {
		t.Fatalf("len(edges) = %d, want %d", len(edges), NumSizeClasses+1)
	}
	if edges[len(edges)-1] != 101 {
		t.Errorf("top edge for small trees = %v, want 101", edges[len(edges)-1])
	}

	big := SizeClassEdges(150)
	top := big[len(big)-1]
	if top <= 150 || top > 150.000001 {
		t.Errorf("top edge for 150 = %v, want just above 150", top)
	}
	if SizeClass(150, big) != NumSizeClasses-1 {
		t.Errorf("largest tree should fall in the last class")
	}
}

func TestSizeClass(t *testing.T) {
	edges := SizeClassEdges(60)
	tests := []struct {
		dbh  float64
		want int
	}{
		{0, 0},
		{4.99, 0},
		{5, 1},
		{19.9, 3},
		{20, 4},
		{29.9, 4},
		{30, 5},
		{99.99, 11},
		{100, 12},
		{100.5, 12},
		{101, -1},
		{-1, -1},
		{math.NaN(), -1},
	}
	for _, tt := range tests {
		if got := SizeClass(tt.dbh, edges); got != tt.want {
			t.Errorf("SizeClass(%v) = %d, want %d", tt.dbh, got, tt.want)
		}
	}
	if SizeClassLabel(0) != "SC1" || SizeClassLabel(12) != "SC13" {
		t.Error("labels should run SC1..SC13")
	}
}

func TestSizeClassCoversRange(t *testing.T) {
	for _, maxDBH := range []float64{0, 12.5, 100, 101, 250.25} {
		edges := SizeClassEdges(maxDBH)
		for x := 0.0; x <= maxDBH; x += 0.25 {
			i := SizeClass(x, edges)
			if i < 0 {
				t.Fatalf("max %v: dbh %v not binned", maxDBH, x)
			}
			if x < edges[i] || x >= edges[i+1] {
				t.Errorf("dbh %v in bin [%v, %v)", x, edges[i], edges[i+1])
			}
		}
	}
}

func binnedInput() Input {
	return inputOf(4,
		slot{height: 4, crown: 1, pft: 1, layer: 1, dbh: 3, nplant: 0.001, area: 800, age: 15},
		slot{height: 6, crown: 2, pft: 1, layer: 1, dbh: 4, nplant: 0.002},
		slot{height: 14, crown: 3, pft: 1, layer: 1, dbh: 12, nplant: 0.001},
		slot{height: 40, crown: 30, pft: 1, layer: 1, dbh: 150, nplant: 0.001},
		slot{height: 5, crown: 1, pft: 2, layer: 2, dbh: 7, nplant: 0.004},
	)
}

func TestReducePatchSimplified(t *testing.T) {
	res, err := Reduce(binnedInput(), Options{Mode: ModePatchSimplified})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	type row struct {
		pft   int
		layer Layer
		class string
	}
	var got []row
	for _, c := range res.Cohorts {
		got = append(got, row{c.PFT, c.Layer, c.SizeClass})
	}
	want := []row{
		{2, LayerUnderstory, "SC2"},
		{1, LayerCanopy, "SC1"},
		{1, LayerCanopy, "SC3"},
		{1, LayerCanopy, "SC13"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}

	sc1 := res.Cohorts[1]
	if sc1.DBH != 3.5 || sc1.Height != 5 {
		t.Errorf("SC1 medians = (%v, %v), want (3.5, 5)", sc1.DBH, sc1.Height)
	}
	if sc1.CrownArea != 3 {
		t.Errorf("SC1 crown = %v, want 3", sc1.CrownArea)
	}
	if math.Abs(sc1.NPlant-0.003*PlantScale) > 1e-9 {
		t.Errorf("SC1 plants = %v, want %v", sc1.NPlant, 0.003*PlantScale)
	}
	if sc1.CanopyBottom != 3 {
		t.Errorf("SC1 canopy bottom = %v, want 3", sc1.CanopyBottom)
	}
	if sc1.PatchArea != 800 || sc1.PatchAge != 15 || sc1.Year != 4 {
		t.Errorf("SC1 patch/year = (%v, %v, %d)", sc1.PatchArea, sc1.PatchAge, sc1.Year)
	}

	// stems are packed again over the aggregated rows
	widths := make([]float64, len(res.Cohorts))
	for i, c := range res.Cohorts {
		widths[i] = c.CanopyWidth
	}
	for i, x := range PackStems(widths) {
		if res.Cohorts[i].StemLocation != x {
			t.Errorf("row %d stem = %v, want %v", i, res.Cohorts[i].StemLocation, x)
		}
	}

	if len(res.Patches) != 1 || res.Patches[0].Area != 800 {
		t.Errorf("patches = %+v, want the single 800 patch", res.Patches)
	}
}

func TestReducePatchSimplifiedPerPatch(t *testing.T) {
	in := inputOf(1,
		slot{height: 10, crown: 2, pft: 1, layer: 1, dbh: 12, nplant: 1, area: 2000, age: 5},
		slot{height: 12, crown: 2, pft: 1, layer: 1, dbh: 14, nplant: 1},
		slot{height: 10, crown: 2, pft: 1, layer: 1, dbh: 12, nplant: 1, area: 3000, age: 9},
	)
	res, err := Reduce(in, Options{Mode: ModePatchSimplified})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(res.Cohorts) != 2 {
		t.Fatalf("rows = %d, want one per patch", len(res.Cohorts))
	}
	if res.Cohorts[0].PatchArea != 2000 || res.Cohorts[1].PatchArea != 3000 {
		t.Errorf("row patches = %v, %v", res.Cohorts[0].PatchArea, res.Cohorts[1].PatchArea)
	}
	if res.Cohorts[0].NPlant != 2*PlantScale {
		t.Errorf("plants = %v, want %v", res.Cohorts[0].NPlant, 2*PlantScale)
	}
	// each patch starts its own stem row
	for _, c := range res.Cohorts {
		if want := (c.CanopyWidth + StemGap) / 2; c.StemLocation != want {
			t.Errorf("patch %v stem = %v, want %v", c.PatchArea, c.StemLocation, want)
		}
	}
}

func TestReduceOnePatch(t *testing.T) {
	res, err := Reduce(binnedInput(), Options{Mode: ModeOnePatch})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got := heights(res.Cohorts); !slices.IsSorted(got) {
		t.Errorf("heights = %v, want ascending", got)
	}
	for _, c := range res.Cohorts {
		if c.PatchArea != 1 || c.PatchAge != 0 {
			t.Errorf("row patch = (%v, %v), want (1, 0)", c.PatchArea, c.PatchAge)
		}
	}
	if len(res.Patches) != 1 {
		t.Fatalf("patches = %+v, want one", res.Patches)
	}
	p := res.Patches[0]
	if p.Area != 1 || p.Age != 0 || p.Year != 4 {
		t.Errorf("patch = %+v", p)
	}
	if p.Coverage.Canopy != 36 || p.Coverage.Understory != 1 || p.Coverage.Bare != 0 {
		t.Errorf("coverage = %+v, want canopy 36, understory 1, bare 0", p.Coverage)
	}
}
