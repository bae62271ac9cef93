package allometry

import (
	"math"
	"testing"

	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
)

func params() Params {
	return Params{
		CMode:         []float64{1, 1},
		D2BL2:         []float64{1.5, 1.2},
		D2CAMax:       []float64{0.6, 0.8},
		D2CAMin:       []float64{0.2, 0.4},
		BLCAExpntDiff: []float64{0.5, -0.2},
		DBHMaxHeight:  []float64{90, 50},
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestCrownArea(t *testing.T) {
	p := params()
	c := Cohorts{
		PFT:    []float64{1, 2, 0, 2},
		DBH:    []float64{10, 80, 30, 4},
		NPlant: []float64{0.01, 0.002, 1, 0.5},
		Spread: []float64{0.5},
	}

	got, err := CrownArea(c, p)
	if err != nil {
		t.Fatalf("CrownArea: %v", err)
	}

	want := []float64{
		// pft 1: coeff 0.4, exponent 2.0, dbh below cap
		0.4 * math.Pow(10, 2.0) * 0.01,
		// pft 2: coeff 0.6, exponent 1.0, dbh clamped to 50
		0.6 * 50 * 0.002,
		math.NaN(),
		0.6 * 4 * 0.5,
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("crown[%d] = %v, want NaN", i, got[i])
			}
			continue
		}
		if !approx(got[i], want[i]) {
			t.Errorf("crown[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCrownAreaPerCohortSpread(t *testing.T) {
	p := params()
	c := Cohorts{
		PFT:    []float64{1, 1},
		DBH:    []float64{10, 10},
		NPlant: []float64{1, 1},
		Spread: []float64{0, 1},
	}
	got, err := CrownArea(c, p)
	if err != nil {
		t.Fatalf("CrownArea: %v", err)
	}
	if !approx(got[0], 0.2*100) {
		t.Errorf("spread 0 crown = %v, want %v", got[0], 0.2*100)
	}
	if !approx(got[1], 0.6*100) {
		t.Errorf("spread 1 crown = %v, want %v", got[1], 0.6*100)
	}
}

func TestCrownAreaNoType(t *testing.T) {
	c := Cohorts{
		PFT:    []float64{0, -1, math.NaN()},
		DBH:    []float64{10, 10, 10},
		NPlant: []float64{1, 1, 1},
		Spread: []float64{0.5},
	}
	got, err := CrownArea(c, params())
	if err != nil {
		t.Fatalf("CrownArea: %v", err)
	}
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("crown[%d] = %v, want NaN", i, v)
		}
	}
}

func TestCrownAreaErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Cohorts, *Params)
		code   errors.Code
	}{
		{"unsupported mode", func(c *Cohorts, p *Params) { p.CMode = []float64{1, 2} }, errors.ErrCodeUnsupportedAllometry},
		{"empty mode", func(c *Cohorts, p *Params) { p.CMode = nil }, errors.ErrCodeMissingVariable},
		{"type out of range", func(c *Cohorts, p *Params) { c.PFT = []float64{3} }, errors.ErrCodeShapeMismatch},
		{"short dbh", func(c *Cohorts, p *Params) { c.DBH = nil }, errors.ErrCodeShapeMismatch},
		{"no spread", func(c *Cohorts, p *Params) { c.Spread = nil }, errors.ErrCodeShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Cohorts{
				PFT:    []float64{1},
				DBH:    []float64{10},
				NPlant: []float64{1},
				Spread: []float64{0.5},
			}
			p := params()
			tt.mutate(&c, &p)
			_, err := CrownArea(c, p)
			if !errors.Is(err, tt.code) {
				t.Errorf("CrownArea() error = %v, want %s", err, tt.code)
			}
			if tt.code == errors.ErrCodeUnsupportedAllometry && !errors.IsConfig(err) {
				t.Error("unsupported allometry should be a configuration error")
			}
		})
	}
}

func TestCompute(t *testing.T) {
	p := params()
	param := dataset.NewMemory().
		Float(ParamCMode, p.CMode...).
		Float(ParamD2BL2, p.D2BL2...).
		Float(ParamD2CAMax, p.D2CAMax...).
		Float(ParamD2CAMin, p.D2CAMin...).
		Float(ParamBLCAExpntDiff, p.BLCAExpntDiff...).
		Float(ParamDBHMaxHeight, p.DBHMaxHeight...)
	restart := dataset.NewMemory().
		Float(VarPFT, 1, 0).
		Float(VarDBH, 10, 0).
		Float(VarNPlant, 1, 0).
		Float(VarSpread, 0.5)

	got, err := Compute(restart, param)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !approx(got[0], 40) {
		t.Errorf("crown[0] = %v, want 40", got[0])
	}
	if !math.IsNaN(got[1]) {
		t.Errorf("crown[1] = %v, want NaN", got[1])
	}

	if _, err := Compute(dataset.NewMemory(), param); !errors.Is(err, errors.ErrCodeMissingVariable) {
		t.Errorf("Compute on empty restart error = %v, want MISSING_VARIABLE", err)
	}
}
