package sunburst

import (
	"bytes"
	"math"
	"testing"

	"gonum.org/v1/plot/vg"

	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/reduce"
	"github.com/mchxo/fates-visualization/pkg/render"
)

// histVar builds a (time, 13*types, 1) variable whose value is v at every
// time step after the first.
func histVar(name string, steps, types int, v float64) dataset.Array {
	cols := reduce.NumSizeClasses * types
	data := make([]float64, steps*cols)
	for t := range steps {
		for k := range cols {
			if t == 0 {
				data[t*cols+k] = 999
			} else {
				data[t*cols+k] = v
			}
		}
	}
	return dataset.NewArray(name, []int{steps, cols, 1}, data)
}

var testVars = []Variable{{Label: "Mortality", Name: "M"}, {Label: "Growth", Name: "G"}}

func TestNodes(t *testing.T) {
	nodes := Nodes([]string{"Pine", "Cedar"}, testVars)
	want := []Node{
		{"Pine", -1}, {"Cedar", -1},
		{"Mortality", 0}, {"Mortality", 1},
		{"Growth", 0}, {"Growth", 1},
	}
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(nodes), len(want))
	}
	for i := range want {
		if nodes[i] != want[i] {
			t.Errorf("node %d = %+v, want %+v", i, nodes[i], want[i])
		}
	}
}

func TestNumYears(t *testing.T) {
	hist := dataset.NewMemory(histVar("M", 4, 2, 1), dataset.NewArray("flat", nil, []float64{1, 2}))
	if n, err := NumYears(hist, "M"); err != nil || n != 3 {
		t.Errorf("NumYears = %d, %v; want 3", n, err)
	}
	if _, err := NumYears(hist, "flat"); !errors.Is(err, errors.ErrCodeShapeMismatch) {
		t.Errorf("flat variable: err = %v, want SHAPE_MISMATCH", err)
	}
	if _, err := NumYears(hist, "nope"); !errors.Is(err, errors.ErrCodeMissingVariable) {
		t.Errorf("missing variable: err = %v, want MISSING_VARIABLE", err)
	}
}

func TestProcess(t *testing.T) {
	m := histVar("M", 3, 2, 1)
	m.Data[reduce.NumSizeClasses*2] = math.NaN() // year 1, type 0, class 0
	hist := dataset.NewMemory(m, histVar("G", 3, 2, 2))

	s, err := Process(hist, testVars, []string{"Pine", "Cedar"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if s.Years() != 2 {
		t.Fatalf("Years = %d, want 2", s.Years())
	}
	want := [][]float64{
		{12 + 26, 13 + 26, 12, 13, 26, 26},
		{13 + 26, 13 + 26, 13, 13, 26, 26},
	}
	for y := range want {
		for n := range want[y] {
			if s.Values[y][n] != want[y][n] {
				t.Errorf("year %d node %d = %v, want %v", y+1, n, s.Values[y][n], want[y][n])
			}
		}
	}
}

func TestProcessTypeIsSumOfVariables(t *testing.T) {
	hist := dataset.NewMemory(histVar("M", 2, 3, 0.5), histVar("G", 2, 3, 1.5))
	types := []string{"a", "b", "c"}
	s, err := Process(hist, testVars, types)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for ti := range types {
		sum := 0.0
		for n, node := range s.Nodes {
			if node.Parent == ti {
				sum += s.Values[0][n]
			}
		}
		if math.Abs(s.Values[0][ti]-sum) > 1e-12 {
			t.Errorf("type %d = %v, children sum to %v", ti, s.Values[0][ti], sum)
		}
	}
}

func TestProcessErrors(t *testing.T) {
	hist := dataset.NewMemory(histVar("M", 3, 2, 1), histVar("Short", 2, 2, 1), histVar("Narrow", 3, 1, 1))
	tests := []struct {
		name  string
		vars  []Variable
		types []string
		code  errors.Code
	}{
		{"no variables", nil, []string{"a"}, errors.ErrCodeInvalidInput},
		{"no types", testVars, nil, errors.ErrCodeInvalidInput},
		{"missing variable", []Variable{{Name: "M"}, {Name: "X"}}, []string{"a", "b"}, errors.ErrCodeMissingVariable},
		{"too few steps", []Variable{{Name: "M"}, {Name: "Short"}}, []string{"a", "b"}, errors.ErrCodeShapeMismatch},
		{"too few columns", []Variable{{Name: "Narrow"}}, []string{"a", "b"}, errors.ErrCodeShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Process(hist, tt.vars, tt.types); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func grid(t *testing.T) [][]Cell {
	t.Helper()
	hist := dataset.NewMemory(histVar("M", 3, 2, 1), histVar("G", 3, 2, 2))
	s, err := Process(hist, testVars, []string{"Pine", "Cedar"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	empty := &Series{Nodes: s.Nodes, Values: [][]float64{make([]float64, 6), make([]float64, 6)}}
	return [][]Cell{
		{{Name: "control", Series: s}, {Name: "burned", Series: empty}},
	}
}

func TestRender(t *testing.T) {
	data, err := Render(grid(t), 2, render.FormatSVG)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"<svg", "Year 2", "control", "burned", "Pine"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("svg missing %q", want)
		}
	}

	png, err := Render(grid(t), 1, render.FormatPNG, WithSize(4*vg.Inch, 3*vg.Inch))
	if err != nil {
		t.Fatalf("Render png: %v", err)
	}
	if _, err := render.DecodePNG(png); err != nil {
		t.Errorf("DecodePNG: %v", err)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(nil, 1, render.FormatSVG); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty matrix: err = %v", err)
	}
	for _, year := range []int{0, 3} {
		if _, err := Render(grid(t), year, render.FormatSVG); !errors.Is(err, errors.ErrCodeYearNotFound) {
			t.Errorf("year %d: err = %v, want YEAR_NOT_FOUND", year, err)
		}
	}
	if _, err := Render(grid(t), 1, "bmp"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bmp: err = %v, want INVALID_FORMAT", err)
	}
}
