package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/born-ml/lpio/internal/table"
)

// CategoriesAttr is the container attribute listing the categories that were written.
// Empty categories contribute no fields, so presence is recorded explicitly.
const CategoriesAttr = "categories"

// ErrMissingData is matched by every MissingKeyError.
var ErrMissingData = errors.New("missing data")

// MissingKeyError reports a category or attribute absent from a container.
type MissingKeyError struct {
	Kind string // "category" or "attribute"
	Key  string
}

// Error implements the error interface.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing %s %q", e.Kind, e.Key)
}

// Is makes errors.Is(err, ErrMissingData) match.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingData
}

// Pack flattens a model into one dataset.
// Every field and category attribute is renamed to "<category>-<key>"; the scalar
// model attributes become unprefixed dataset attributes.
func Pack(m *Model) (*table.Dataset, error) {
	if m.Objective == nil {
		return nil, fmt.Errorf("objective: %w", ErrMissingGroup)
	}
	parts := make([]*table.Dataset, 0, len(categories))
	for _, c := range categories {
		prefix := c.name + "-"
		renamed, err := c.get(m).Rename(func(field string) string { return prefix + field })
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.name, err)
		}
		parts = append(parts, renamed)
	}

	ds, err := table.Merge(parts...)
	if err != nil {
		return nil, err
	}
	for _, a := range attributes {
		ds.SetAttr(a.name, a.get(m))
	}
	ds.SetAttr(CategoriesAttr, strings.Join(Categories(), ","))
	return ds, nil
}

// Unpack rebuilds a model from a dataset produced by Pack.
// ds is not modified; the returned model shares its arrays.
func Unpack(ds *table.Dataset) (*Model, error) {
	listed, ok := ds.Attr(CategoriesAttr)
	if !ok {
		return nil, &MissingKeyError{Kind: "attribute", Key: CategoriesAttr}
	}
	present := strings.Split(listed, ",")

	m := New()
	for _, c := range categories {
		if !slices.Contains(present, c.name) {
			return nil, &MissingKeyError{Kind: "category", Key: c.name}
		}
		if err := c.set(m, ds.SelectPrefix(c.name+"-")); err != nil {
			return nil, fmt.Errorf("category %q: %w", c.name, err)
		}
	}

	for _, a := range attributes {
		v, ok := ds.Attr(a.name)
		if !ok {
			return nil, &MissingKeyError{Kind: "attribute", Key: a.name}
		}
		if err := a.set(m, v); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.name, err)
		}
	}
	return m, nil
}
