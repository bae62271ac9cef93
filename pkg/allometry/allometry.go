// Package allometry computes cohort crown areas from plant functional type
// parameters.
//
// Only the allometry variant selected by fates_allom_cmode = 1 is supported:
//
//	eff   = min(dbh, dbh_maxheight[p])
//	coeff = d2ca_max[p]*spread + d2ca_min[p]*(1-spread)
//	crown = coeff * eff^(d2bl2[p] + blca_expnt_diff[p]) * nplant
//
// where p is the cohort's functional type (1-based in the files). Cohort slots
// with no functional type (p <= 0 or masked) have no crown and get NaN.
package allometry

import (
	"math"

	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
)

// SupportedMode is the only accepted value of fates_allom_cmode.
const SupportedMode = 1

// Restart file variables.
const (
	VarPFT    = "fates_pft"
	VarDBH    = "fates_dbh"
	VarNPlant = "fates_nplant"
	VarSpread = "fates_spread"
)

// Parameter file variables.
const (
	ParamCMode         = "fates_allom_cmode"
	ParamD2BL2         = "fates_allom_d2bl2"
	ParamD2CAMax       = "fates_allom_d2ca_coefficient_max"
	ParamD2CAMin       = "fates_allom_d2ca_coefficient_min"
	ParamBLCAExpntDiff = "fates_allom_blca_expnt_diff"
	ParamDBHMaxHeight  = "fates_allom_dbh_maxheight"
)

// Params holds the per functional type allometry parameters. Index i is
// functional type i+1.
type Params struct {
	CMode         []float64
	D2BL2         []float64
	D2CAMax       []float64
	D2CAMin       []float64
	BLCAExpntDiff []float64
	DBHMaxHeight  []float64
}

// Cohorts holds the per cohort slot measurements of one restart file.
type Cohorts struct {
	PFT    []float64
	DBH    []float64
	NPlant []float64
	// Spread is either one value per cohort slot or a site value whose
	// first element applies to every slot.
	Spread []float64
}

// Len returns the number of cohort slots.
func (c Cohorts) Len() int { return len(c.PFT) }

// ParamsFrom reads the allometry parameters from a parameter dataset.
func ParamsFrom(ds dataset.Dataset) (Params, error) {
	var p Params
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{
		{ParamCMode, &p.CMode},
		{ParamD2BL2, &p.D2BL2},
		{ParamD2CAMax, &p.D2CAMax},
		{ParamD2CAMin, &p.D2CAMin},
		{ParamBLCAExpntDiff, &p.BLCAExpntDiff},
		{ParamDBHMaxHeight, &p.DBHMaxHeight},
	} {
		arr, err := ds.Variable(v.name)
		if err != nil {
			return Params{}, err
		}
		*v.dst = arr.Data
	}
	return p, nil
}

// CohortsFrom reads the cohort measurements from a restart dataset.
func CohortsFrom(ds dataset.Dataset) (Cohorts, error) {
	var c Cohorts
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{
		{VarPFT, &c.PFT},
		{VarDBH, &c.DBH},
		{VarNPlant, &c.NPlant},
		{VarSpread, &c.Spread},
	} {
		arr, err := ds.Variable(v.name)
		if err != nil {
			return Cohorts{}, err
		}
		*v.dst = arr.Data
	}
	return c, nil
}

// Validate checks that every allometry mode is supported.
func (p Params) Validate() error {
	if len(p.CMode) == 0 {
		return errors.New(errors.ErrCodeMissingVariable, "%s is empty", ParamCMode)
	}
	for i, m := range p.CMode {
		if m != SupportedMode {
			return errors.New(errors.ErrCodeUnsupportedAllometry,
				"%s[%d] = %v, only mode %d is supported", ParamCMode, i, m, SupportedMode)
		}
	}
	return nil
}

// NumTypes returns the number of functional types covered by every
// parameter array.
func (p Params) NumTypes() int {
	n := len(p.D2BL2)
	for _, arr := range [][]float64{p.D2CAMax, p.D2CAMin, p.BLCAExpntDiff, p.DBHMaxHeight} {
		n = min(n, len(arr))
	}
	return n
}

// CrownArea returns one crown area per cohort slot. Slots without a
// functional type are NaN.
func CrownArea(c Cohorts, p Params) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := c.Len()
	if len(c.DBH) < n || len(c.NPlant) < n {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"cohort arrays disagree: %d types, %d dbh, %d nplant", n, len(c.DBH), len(c.NPlant))
	}
	if len(c.Spread) == 0 {
		return nil, errors.New(errors.ErrCodeShapeMismatch, "%s is empty", VarSpread)
	}
	perCohort := len(c.Spread) == n
	ntypes := p.NumTypes()

	crown := make([]float64, n)
	for i := range n {
		crown[i] = math.NaN()
		ft := c.PFT[i]
		if math.IsNaN(ft) || ft <= 0 {
			continue
		}
		k := int(ft) - 1
		if k >= ntypes {
			return nil, errors.New(errors.ErrCodeShapeMismatch,
				"cohort %d has functional type %d, parameters cover %d", i, k+1, ntypes)
		}
		spread := c.Spread[0]
		if perCohort {
			spread = c.Spread[i]
		}
		eff := math.Min(c.DBH[i], p.DBHMaxHeight[k])
		coeff := p.D2CAMax[k]*spread + p.D2CAMin[k]*(1-spread)
		crown[i] = coeff * math.Pow(eff, p.D2BL2[k]+p.BLCAExpntDiff[k]) * c.NPlant[i]
	}
	return crown, nil
}

// Compute reads a restart and a parameter dataset and returns the crown
// area of every cohort slot.
func Compute(restart, param dataset.Dataset) ([]float64, error) {
	p, err := ParamsFrom(param)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c, err := CohortsFrom(restart)
	if err != nil {
		return nil, err
	}
	return CrownArea(c, p)
}
