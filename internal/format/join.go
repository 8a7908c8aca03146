package format

import (
	"fmt"
	"slices"
	"strings"

	"github.com/born-ml/lpio/internal/parallel"
	"github.com/born-ml/lpio/internal/table"
)

// Join concatenates parts cell by cell, left to right.
// Parts are aligned by dimension name; scalars broadcast everywhere.
// Null cells contribute the empty string.
func (p *Formatter) Join(parts ...*table.Array[string]) (*table.Array[string], error) {
	groups := make([][]table.Dim, len(parts))
	for i, part := range parts {
		groups[i] = part.DimLens()
	}
	dims, err := table.BroadcastDims(groups...)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	names := make([]string, len(dims))
	shape := make(table.Shape, len(dims))
	for i, d := range dims {
		names[i] = d.Name
		shape[i] = d.Len
	}
	out, err := table.New[string](names, shape)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	// strides[k][j] is how far part k moves when output axis j advances by one.
	strides := make([][]int, len(parts))
	for k, part := range parts {
		own := part.Shape().ComputeStrides()
		strides[k] = make([]int, len(names))
		for j, name := range names {
			if pos := part.Axis(name); pos >= 0 {
				strides[k][j] = own[pos]
			}
		}
	}

	dst := out.Data()
	parallel.ForChunks(len(dst), func(s, e int) {
		coords := make([]int, len(shape))
		var sb strings.Builder
		for i := s; i < e; i++ {
			unravelInto(i, shape, coords)
			sb.Reset()
			for k, part := range parts {
				idx := 0
				for j, c := range coords {
					idx += c * strides[k][j]
				}
				if !part.IsNull(idx) {
					sb.WriteString(part.At(idx))
				}
			}
			dst[i] = sb.String()
		}
	}, p.cfg)

	return out, nil
}

// Where returns a copy of a with every cell blanked where the mask is false.
func Where(a *table.Array[string], m *table.Mask) (*table.Array[string], error) {
	if !slices.Equal(a.Dims(), m.Dims()) || !a.Shape().Equal(m.Shape()) {
		return nil, fmt.Errorf("where: %w: array %v%v, mask %v%v",
			table.ErrShapeMismatch, a.Dims(), a.Shape(), m.Dims(), m.Shape())
	}

	out := mustNew[string](a.Dims(), a.Shape())
	src, dst := a.Data(), out.Data()
	for i := range src {
		if m.Test(i) && !a.IsNull(i) {
			dst[i] = src[i]
		}
	}
	return out, nil
}

// ReduceConcat concatenates cells along the given axes in ascending index order,
// leaving one string per combination of the remaining dims.
func ReduceConcat(a *table.Array[string], axes ...string) (*table.Array[string], error) {
	dims, shape := a.Dims(), a.Shape()
	drop := make([]bool, len(dims))
	for _, ax := range axes {
		pos := a.Axis(ax)
		if pos < 0 {
			return nil, fmt.Errorf("reduce: %w: no dimension %q in %v", table.ErrDimMismatch, ax, dims)
		}
		drop[pos] = true
	}

	var (
		outDims  []string
		outShape table.Shape
	)
	for i, d := range dims {
		if !drop[i] {
			outDims = append(outDims, d)
			outShape = append(outShape, shape[i])
		}
	}
	out := mustNew[string](outDims, outShape)
	outStrides := outShape.ComputeStrides()

	builders := make([]strings.Builder, out.Len())
	coords := make([]int, len(shape))
	src := a.Data()
	// Row-major traversal visits the reduced axes in ascending order for every output cell.
	for i, s := range src {
		if s == "" || a.IsNull(i) {
			continue
		}
		unravelInto(i, shape, coords)
		flat, k := 0, 0
		for j, c := range coords {
			if drop[j] {
				continue
			}
			flat += c * outStrides[k]
			k++
		}
		builders[flat].WriteString(s)
	}

	dst := out.Data()
	for i := range builders {
		dst[i] = builders[i].String()
	}
	return out, nil
}

func unravelInto(flat int, shape table.Shape, coords []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		coords[i] = flat % shape[i]
		flat /= shape[i]
	}
}
