// Package lpfile writes a model in the CPLEX LP text format.
//
// Output layout (whitespace is significant):
//
//	min
//	obj:
//	+1.000000 x0
//
//
//	s.t.
//
//	c0:
//	+2.000000 x0
//	<=
//	+10.000000
//
//
//	bounds
//	+0.000000 <= x0 <= +10.000000
//
//	binary
//	x3
//	end
//
// Sections are produced in that fixed order. Each section is formatted into a
// string array, masked, and written in row-major order before the next starts.
package lpfile
