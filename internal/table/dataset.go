package table

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Dataset is an ordered collection of named arrays with string attributes.
// Field order is insertion order and is preserved by every operation.
type Dataset struct {
	names []string
	vars  map[string]Variable
	attrs map[string]string
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		vars:  make(map[string]Variable),
		attrs: make(map[string]string),
	}
}

// Set stores v under name. Replacing a field keeps its position.
func (d *Dataset) Set(name string, v Variable) {
	if _, ok := d.vars[name]; !ok {
		d.names = append(d.names, name)
	}
	d.vars[name] = v
}

// Get returns the field stored under name.
func (d *Dataset) Get(name string) (Variable, bool) {
	v, ok := d.vars[name]
	return v, ok
}

// Delete removes a field if present.
func (d *Dataset) Delete(name string) {
	if _, ok := d.vars[name]; !ok {
		return
	}
	delete(d.vars, name)
	d.names = slices.DeleteFunc(d.names, func(n string) bool { return n == name })
}

// Has reports whether a field exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.vars[name]
	return ok
}

// Names returns field names in order.
func (d *Dataset) Names() []string {
	return slices.Clone(d.names)
}

// Len returns the number of fields.
func (d *Dataset) Len() int {
	return len(d.names)
}

// SetAttr sets a dataset-level attribute.
func (d *Dataset) SetAttr(key, value string) {
	d.attrs[key] = value
}

// Attr returns a dataset-level attribute.
func (d *Dataset) Attr(key string) (string, bool) {
	v, ok := d.attrs[key]
	return v, ok
}

// Attrs returns a copy of the attributes.
func (d *Dataset) Attrs() map[string]string {
	return maps.Clone(d.attrs)
}

// Rename returns a new dataset whose fields and attribute keys are renamed by fn.
// Arrays are shared, not copied.
func (d *Dataset) Rename(fn func(string) string) (*Dataset, error) {
	out := NewDataset()
	for _, name := range d.names {
		to := fn(name)
		if out.Has(to) {
			return nil, fmt.Errorf("%w: %q after rename", ErrDuplicateField, to)
		}
		out.Set(to, d.vars[name])
	}
	for k, v := range d.attrs {
		to := fn(k)
		if _, ok := out.attrs[to]; ok {
			return nil, fmt.Errorf("%w: attribute %q after rename", ErrDuplicateField, to)
		}
		out.attrs[to] = v
	}
	return out, nil
}

// SelectPrefix returns the fields and attributes whose name starts with prefix,
// with the prefix stripped.
func (d *Dataset) SelectPrefix(prefix string) *Dataset {
	out := NewDataset()
	for _, name := range d.names {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			out.Set(rest, d.vars[name])
		}
	}
	for k, v := range d.attrs {
		if rest, ok := strings.CutPrefix(k, prefix); ok {
			out.attrs[rest] = v
		}
	}
	return out
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := NewDataset()
	for _, name := range d.names {
		out.Set(name, d.vars[name].CloneVariable())
	}
	maps.Copy(out.attrs, d.attrs)
	return out
}

// Equal reports whether both datasets hold the same fields in the same order with equal arrays.
// Attributes are compared too.
func (d *Dataset) Equal(o *Dataset) bool {
	if !slices.Equal(d.names, o.names) || !maps.Equal(d.attrs, o.attrs) {
		return false
	}
	for _, name := range d.names {
		if !d.vars[name].EqualVariable(o.vars[name]) {
			return false
		}
	}
	return true
}

// Merge combines datasets into a new one. A field name present twice is an error;
// attributes are merged with later datasets winning.
func Merge(sets ...*Dataset) (*Dataset, error) {
	out := NewDataset()
	for _, ds := range sets {
		for _, name := range ds.names {
			if out.Has(name) {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateField, name)
			}
			out.Set(name, ds.vars[name])
		}
		maps.Copy(out.attrs, ds.attrs)
	}
	return out, nil
}

// Field returns a typed field of a dataset.
func Field[T Elem](d *Dataset, name string) (*Array[T], error) {
	v, ok := d.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	a, err := As[T](v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	return a, nil
}
