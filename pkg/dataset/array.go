package dataset

import (
	"fmt"
	"math"
	"reflect"
)

// Array is a dense, row-major numeric variable. Masked entries (fill values
// in the file) are stored as NaN.
type Array struct {
	Name  string
	Shape []int
	Data  []float64
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.Data) }

// Dim returns the length of dimension i, or 0 if the array has fewer
// dimensions.
func (a Array) Dim(i int) int {
	if i < 0 || i >= len(a.Shape) {
		return 0
	}
	return a.Shape[i]
}

// At returns the element at the given multi-dimensional index. It panics if
// the index rank does not match the shape, like a slice index would.
func (a Array) At(idx ...int) float64 {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("dataset: %s: index rank %d, shape rank %d", a.Name, len(idx), len(a.Shape)))
	}
	off := 0
	for i, n := range a.Shape {
		if idx[i] < 0 || idx[i] >= n {
			panic(fmt.Sprintf("dataset: %s: index %v out of range %v", a.Name, idx, a.Shape))
		}
		off = off*n + idx[i]
	}
	return a.Data[off]
}

// Masked reports whether element i is masked.
func (a Array) Masked(i int) bool { return math.IsNaN(a.Data[i]) }

// NewArray builds an Array from flat data. A nil shape means one dimension
// covering all of data.
func NewArray(name string, shape []int, data []float64) Array {
	if shape == nil {
		shape = []int{len(data)}
	}
	return Array{Name: name, Shape: shape, Data: data}
}

// fromValues flattens the nested slice (or scalar) produced by the netCDF
// reader into an Array. Integer and float element types of any width are
// accepted; character and string variables are rejected.
func fromValues(name string, values any) (Array, error) {
	v := reflect.ValueOf(values)
	if !v.IsValid() {
		return Array{}, fmt.Errorf("variable %s has no values", name)
	}

	var shape []int
	for t := v; t.Kind() == reflect.Slice; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}

	var data []float64
	var walk func(reflect.Value) error
	walk = func(x reflect.Value) error {
		if x.Kind() == reflect.Slice {
			for i := 0; i < x.Len(); i++ {
				if err := walk(x.Index(i)); err != nil {
					return err
				}
			}
			return nil
		}
		f, ok := toFloat(x)
		if !ok {
			return fmt.Errorf("variable %s: unsupported element type %s", name, x.Type())
		}
		data = append(data, f)
		return nil
	}
	if err := walk(v); err != nil {
		return Array{}, err
	}
	if shape == nil {
		shape = []int{1}
	}
	return Array{Name: name, Shape: shape, Data: data}, nil
}

// toFloat converts a numeric scalar to float64.
func toFloat(x reflect.Value) (float64, bool) {
	switch x.Kind() {
	case reflect.Float32, reflect.Float64:
		return x.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(x.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(x.Uint()), true
	case reflect.Interface:
		if x.IsNil() {
			return 0, false
		}
		return toFloat(x.Elem())
	}
	return 0, false
}

// attrFloat reads a numeric attribute value, which the reader may return as
// a scalar or a one-element slice.
func attrFloat(val any) (float64, bool) {
	v := reflect.ValueOf(val)
	if !v.IsValid() {
		return 0, false
	}
	if v.Kind() == reflect.Slice {
		if v.Len() == 0 {
			return 0, false
		}
		v = v.Index(0)
	}
	return toFloat(v)
}

// mask replaces every element equal to fill with NaN.
func (a *Array) mask(fill float64) {
	for i, x := range a.Data {
		if x == fill {
			a.Data[i] = math.NaN()
		}
	}
}
