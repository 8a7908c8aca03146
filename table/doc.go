// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package table provides the labelled, null-aware arrays used to build models.
//
// # Overview
//
// Every model table is an Array[T] with named dimensions:
//   - Generic element types (float64, int64, bool, string)
//   - A null bitmap per array; NaN floats are null as well
//   - Broadcasting by dimension name, not position
//
// # Basic Usage
//
//	import "github.com/born-ml/lpio/table"
//
//	lower := table.Vector("i", 0, 0, 0.0)
//	lower.SetNull(2) // no lower bound for x[2]
//
//	coeffs, err := table.FromSlice([]string{"con", "c_term"}, table.Shape{2, 2},
//	    []float64{1, 2, 3, 4})
//
// # Datasets
//
// A Dataset is an ordered set of named arrays plus string attributes. Models
// keep one Dataset per category, and snapshots store them flattened.
package table
