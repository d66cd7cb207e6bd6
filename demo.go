// SPDX-License-Identifier: Apache-2.0
package main

import (
	"bvterm/internal/term"
	"bvterm/repl"
)

// demoTerms builds a handful of representative QF_ABV terms by hand —
// standing in for terms an upstream symbolic executor would construct,
// since parsing term syntax from text is out of scope here.
func demoTerms() []repl.Example {
	x := term.NewBitVecVariable("x", 32)
	y := term.NewBitVecVariable("y", 32)
	zero := term.NewBitVecConstantU64(32, 0)

	addZero, _ := term.NewBitVecAdd(x, zero)
	subSelf, _ := term.NewBitVecSub(x, x)

	c1 := term.NewBitVecConstantU64(32, 5)
	c2 := term.NewBitVecConstantU64(32, 7)
	nested, _ := term.NewBitVecAdd(y, c2)
	reassoc, _ := term.NewBitVecAdd(c1, nested)

	arr := term.NewArrayVariable("mem", 8, 8, intPtr(3))
	idx0 := term.NewBitVecConstantU64(8, 0)
	idx1 := term.NewBitVecConstantU64(8, 1)
	idx2 := term.NewBitVecConstantU64(8, 2)
	idx3 := term.NewBitVecConstantU64(8, 3)
	v0 := term.NewBitVecConstantU64(8, 0xde)
	v1 := term.NewBitVecConstantU64(8, 0xad)
	v2 := term.NewBitVecConstantU64(8, 0xbe)
	v3 := term.NewBitVecConstantU64(8, 0xef)
	s0, _ := term.NewArrayStore(arr, idx0, v0)
	s1, _ := term.NewArrayStore(s0, idx1, v1)
	s2, _ := term.NewArrayStore(s1, idx2, v2)
	s3, _ := term.NewArrayStore(s2, idx3, v3)
	sel, _ := term.NewArraySelect(s3, idx2)

	cond := term.NewBoolVariable("cond")
	ite, _ := term.NewBitVecITE(cond, x, x)

	foldable, _ := term.NewBitVecMul(
		must(term.NewBitVecAdd(c1, c2)),
		term.NewBitVecConstantU64(32, 2),
	)

	return []repl.Example{
		{Name: "x + 0  (identity)", Expr: addZero},
		{Name: "x - x  (self-cancel)", Expr: subSelf},
		{Name: "5 + (y + 7)  (reassociate)", Expr: reassoc},
		{Name: "select(store-chain, 2)  (array walk)", Expr: sel},
		{Name: "ite(cond, x, x)  (branch merge)", Expr: ite},
		{Name: "(5 + 7) * 2  (fully constant)", Expr: foldable},
		{Name: "array byte extraction", Expr: s3},
	}
}

func intPtr(v int) *int { return &v }

func must(x *term.Operation, err error) *term.Operation {
	if err != nil {
		panic(err)
	}
	return x
}
