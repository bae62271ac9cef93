// Package sunburst draws functional type sunbursts of history variables for
// a matrix of model runs.
//
// The inner ring has one sector per functional type sized by the sum of all
// selected variables for that type; the outer ring splits every type into
// one sector per variable. History variables are dimensioned
// (time, size class x functional type, site): the first time step is
// skipped and the 13 size class columns of each type are summed at the
// first site.
package sunburst

import (
	"math"

	"github.com/mchxo/fates-visualization/pkg/dataset"
	"github.com/mchxo/fates-visualization/pkg/errors"
	"github.com/mchxo/fates-visualization/pkg/reduce"
)

// Variable is one history variable shown in the outer ring.
type Variable struct {
	Label string `toml:"label" json:"label"`
	Name  string `toml:"name" json:"name"`
}

// Node is one sector of the sunburst. Parent is -1 for the inner ring.
type Node struct {
	Label  string
	Parent int
}

// Series holds the node values of one run for every year.
type Series struct {
	Nodes []Node
	// Values[y][n] is the value of node n in year y+1.
	Values [][]float64
}

// Years returns the number of years in the series.
func (s *Series) Years() int { return len(s.Values) }

// Nodes builds the node list for the given types and variables: first one
// node per type, then one node per (variable, type).
func Nodes(types []string, vars []Variable) []Node {
	nodes := make([]Node, 0, len(types)*(len(vars)+1))
	for _, t := range types {
		nodes = append(nodes, Node{Label: t, Parent: -1})
	}
	for _, v := range vars {
		for i := range types {
			nodes = append(nodes, Node{Label: v.Label, Parent: i})
		}
	}
	return nodes
}

// NumYears returns the number of plotted years of a history variable: its
// time dimension minus the initial step.
func NumYears(hist dataset.Dataset, name string) (int, error) {
	arr, err := hist.Variable(name)
	if err != nil {
		return 0, err
	}
	if len(arr.Shape) != 3 {
		return 0, errors.New(errors.ErrCodeShapeMismatch, "%s has %d dimensions, want (time, scpf, site)", name, len(arr.Shape))
	}
	return max(arr.Dim(0)-1, 0), nil
}

// Process sums the size classes of every type for each variable and year.
func Process(hist dataset.Dataset, vars []Variable, types []string) (*Series, error) {
	if len(vars) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no sunburst variables")
	}
	if len(types) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no functional types")
	}
	years, err := NumYears(hist, vars[0].Name)
	if err != nil {
		return nil, err
	}

	s := &Series{Nodes: Nodes(types, vars), Values: make([][]float64, years)}
	for y := range s.Values {
		s.Values[y] = make([]float64, len(s.Nodes))
	}
	nt := len(types)
	for vi, v := range vars {
		arr, err := hist.Variable(v.Name)
		if err != nil {
			return nil, err
		}
		if len(arr.Shape) != 3 {
			return nil, errors.New(errors.ErrCodeShapeMismatch, "%s has %d dimensions, want (time, scpf, site)", v.Name, len(arr.Shape))
		}
		if arr.Dim(0)-1 < years {
			return nil, errors.New(errors.ErrCodeShapeMismatch, "%s has %d time steps, want %d", v.Name, arr.Dim(0), years+1)
		}
		if arr.Dim(1) < reduce.NumSizeClasses*nt || arr.Dim(2) == 0 {
			return nil, errors.New(errors.ErrCodeShapeMismatch,
				"%s has shape %v, want at least %d size class columns and one site", v.Name, arr.Shape, reduce.NumSizeClasses*nt)
		}
		for y := range years {
			for ti := range nt {
				sum := 0.0
				for k := ti * reduce.NumSizeClasses; k < (ti+1)*reduce.NumSizeClasses; k++ {
					if x := arr.At(y+1, k, 0); !math.IsNaN(x) {
						sum += x
					}
				}
				s.Values[y][nt+vi*nt+ti] = sum
				s.Values[y][ti] += sum
			}
		}
	}
	return s, nil
}
