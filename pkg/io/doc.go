// Package io reads and writes reduced treemap tables.
//
// # Overview
//
// A [reduce.Result] holds the cohort and patch tables of one year. This
// package serializes one or more results so the tables can be inspected,
// post-processed by other tools, or cached between runs.
//
// # JSON Format
//
// The JSON document has one top-level array holding a result per year:
//
//	{
//	  "results": [
//	    {
//	      "year": 1,
//	      "mode": "basic",
//	      "cohorts": [{"pft": 1, "canopy_layer": 1, "trunk_width": 30.2, ...}],
//	      "patches": [{"patch_area": 350, "patch_age": 12, "coverages": {...}}],
//	      "merge": {"count": 3, "area": 350, "age": 12}
//	    }
//	  ]
//	}
//
// Cohort and patch field names follow the column names of the tables, so a
// JSON export and a CSV export of the same year carry the same fields.
//
// # CSV Format
//
// [WriteCohortsCSV] and [WritePatchesCSV] write one flat table each, with a
// header row and a year column, concatenating every result given.
//
// # Import
//
// [ReadJSON] decodes a JSON document back into results. The pipeline uses
// it to load reduced tables from its cache:
//
//	results, err := io.ReadJSON(r)
//
// [reduce.Result]: github.com/mchxo/fates-visualization/pkg/reduce.Result
package io
