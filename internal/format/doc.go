// Package format turns numeric arrays into LP text tokens.
//
// Every operation is elementwise and shape-preserving except ReduceConcat:
//
//	coeffs  (con, con_term)  --Floats-->  "+2.000000"
//	vars    (con, con_term)  --Ints---->  "0"
//	Join(coeff, " x", var, "\n")         "+2.000000 x0\n"
//	Where(mask)                          "" where the term is invalid
//	ReduceConcat("con_term")             one string per constraint
//
// Results are fully materialized arrays; callers write them out afterwards.
package format
