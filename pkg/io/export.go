package io

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/reduce"
)

type document struct {
	Results []*reduce.Result `json:"results"`
}

// WriteJSON encodes results as an indented JSON document and writes it to
// w. The output can be re-imported with [ReadJSON].
func WriteJSON(w io.Writer, results ...*reduce.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Results: results}); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "encode tables")
	}
	return nil
}

// CohortColumns is the header of the cohort table.
var CohortColumns = []string{
	"year", "pft", "canopy_layer", "trunk_width", "cohort_height", "crown_area",
	"num_plants", "patch_area", "patch_age", "canopy_bottom", "canopy_width",
	"stem_location", "dbh_binned", "patch",
}

// PatchColumns is the header of the patch table.
var PatchColumns = []string{
	"year", "patch_area", "patch_age", "canopy", "understory", "bare", "patch",
}

// WriteCohortsCSV writes the cohort rows of every result as one table.
func WriteCohortsCSV(w io.Writer, results ...*reduce.Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(CohortColumns)
	for _, res := range results {
		for _, c := range res.Cohorts {
			_ = cw.Write([]string{
				strconv.Itoa(c.Year), strconv.Itoa(c.PFT), strconv.Itoa(int(c.Layer)),
				num(c.DBH), num(c.Height), num(c.CrownArea), num(c.NPlant),
				num(c.PatchArea), num(c.PatchAge), num(c.CanopyBottom), num(c.CanopyWidth),
				num(c.StemLocation), c.SizeClass, strconv.Itoa(c.Patch),
			})
		}
	}
	return flush(cw)
}

// WritePatchesCSV writes the patch rows of every result as one table.
func WritePatchesCSV(w io.Writer, results ...*reduce.Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(PatchColumns)
	for _, res := range results {
		for _, p := range res.Patches {
			_ = cw.Write([]string{
				strconv.Itoa(p.Year), num(p.Area), num(p.Age),
				num(p.Coverage.Canopy), num(p.Coverage.Understory), num(p.Coverage.Bare),
				strconv.Itoa(p.ID),
			})
		}
	}
	return flush(cw)
}

func num(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "write csv")
	}
	return nil
}
