// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package lpio exports sparse linear optimization models as LP text files
// and saves them losslessly as binary snapshots.
//
// This package wraps the internal implementations and exports a small public API.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/lpio"
//	    "github.com/born-ml/lpio/table"
//	)
//
//	m := lpio.NewModel()
//	x, _ := m.AddVariables("x", table.Vector("i", 0, 0.0), table.Vector("i", 10, 20.0))
//	// ... constraints and objective ...
//
//	// Write the model for an external solver
//	if err := lpio.WriteLP("model.lp", m); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save and restore it
//	if err := lpio.WriteSnapshot("model.lpsn", m); err != nil {
//	    log.Fatal(err)
//	}
//	restored, err := lpio.ReadSnapshot("model.lpsn")
package lpio
