// Package dataset reads FATES simulation output.
//
// A [Dataset] is an opened array file (netCDF classic or netCDF4/HDF5)
// exposing named numeric variables. A [Bundle] groups the files one
// visualization needs: the restart files of a run (one per simulated year),
// the parameter file, and optionally a history file.
//
// Files are read with github.com/batchatco/go-native-netcdf. Values equal to a
// variable's _FillValue or missing_value attribute are masked and come back
// as NaN, so callers never see the raw fill sentinel.
//
//	b, err := dataset.Open(dataset.Options{
//	    RestartDir: "runs/ca-sierra/restart",
//	    ParamPath:  "runs/ca-sierra/params.nc",
//	})
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	rest, err := b.Restart(1)
//	height, err := rest.Variable("fates_height")
package dataset

import (
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/mchxo/fates-visualization/pkg/errors"
)

// Dataset is a read-only collection of named numeric variables.
type Dataset interface {
	// Variable returns the named variable with masked entries set to NaN.
	Variable(name string) (Array, error)
	// Variables lists the variable names in file order.
	Variables() []string
	// Close releases the underlying file.
	Close() error
}

// Opener opens the dataset stored at path.
type Opener func(path string) (Dataset, error)

// OpenFile opens a netCDF file from disk.
func OpenFile(path string) (Dataset, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatasetOpen, err, "open %s", path)
	}
	return &ncFile{path: path, group: g}, nil
}

// ncFile adapts a netCDF root group to Dataset.
type ncFile struct {
	path  string
	group api.Group
}

func (f *ncFile) Variable(name string) (Array, error) {
	v, err := f.group.GetVariable(name)
	if err != nil {
		return Array{}, errors.Wrap(errors.ErrCodeMissingVariable, err, "%s: variable %s", f.path, name)
	}
	arr, err := fromValues(name, v.Values)
	if err != nil {
		return Array{}, errors.Wrap(errors.ErrCodeMissingVariable, err, "%s", f.path)
	}
	if v.Attributes != nil {
		for _, key := range []string{"_FillValue", "missing_value"} {
			if raw, ok := v.Attributes.Get(key); ok {
				if fill, ok := attrFloat(raw); ok {
					arr.mask(fill)
				}
			}
		}
	}
	return arr, nil
}

func (f *ncFile) Variables() []string { return f.group.ListVariables() }

func (f *ncFile) Close() error {
	f.group.Close()
	return nil
}

// Memory is an in-memory Dataset. It is used by tests and by callers that
// assemble arrays themselves.
type Memory struct {
	vars   map[string]Array
	order  []string
	closed bool
}

// NewMemory creates a Memory dataset from arrays, keeping their order.
func NewMemory(arrays ...Array) *Memory {
	m := &Memory{vars: make(map[string]Array, len(arrays))}
	for _, a := range arrays {
		m.Set(a)
	}
	return m
}

// Set adds or replaces a variable.
func (m *Memory) Set(a Array) {
	if _, ok := m.vars[a.Name]; !ok {
		m.order = append(m.order, a.Name)
	}
	m.vars[a.Name] = a
}

// Float sets a one-dimensional variable from values.
func (m *Memory) Float(name string, values ...float64) *Memory {
	m.Set(NewArray(name, nil, values))
	return m
}

func (m *Memory) Variable(name string) (Array, error) {
	a, ok := m.vars[name]
	if !ok {
		return Array{}, errors.New(errors.ErrCodeMissingVariable, "variable %s not found", name)
	}
	a.Data = slices.Clone(a.Data)
	return a, nil
}

func (m *Memory) Variables() []string { return slices.Clone(m.order) }

func (m *Memory) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool { return m.closed }
