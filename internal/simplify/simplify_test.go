// SPDX-License-Identifier: Apache-2.0
package simplify_test

import (
	"testing"

	"bvterm/internal/query"
	"bvterm/internal/simplify"
	"bvterm/internal/term"
)

func TestSimplifyAddZeroIdentity(t *testing.T) {
	x := term.NewBitVecVariable("x", 32)
	zero := term.NewBitVecConstantU64(32, 0)
	sum, err := term.NewBitVecAdd(x, zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := simplify.New().Simplify(sum)
	if result != term.Expression(x) {
		t.Fatalf("expected x+0 to simplify to x, got %v", result)
	}
}

func TestSimplifySubSelfIsZero(t *testing.T) {
	x := term.NewBitVecVariable("x", 32)
	sub, err := term.NewBitVecSub(x, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := simplify.New().Simplify(sub)
	c, ok := result.(*term.Constant)
	if !ok || c.BitVecValue.Sign() != 0 {
		t.Fatalf("expected x-x to simplify to 0, got %v", result)
	}
}

func TestSimplifyShiftLeftAtWidthKeepsSymbolicOperand(t *testing.T) {
	x := term.NewBitVecVariable("x", 8)
	amount := term.NewBitVecConstantU64(8, 8)
	shifted, err := term.NewBitVecShiftLeft(x, amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := simplify.New().Simplify(shifted)
	if result != term.Expression(x) {
		t.Fatalf("expected the shift-left quirk to return x unchanged, got %v", result)
	}
}

func TestSimplifyReassociatesNestedConstants(t *testing.T) {
	y := term.NewBitVecVariable("y", 32)
	c1 := term.NewBitVecConstantU64(32, 5)
	c2 := term.NewBitVecConstantU64(32, 7)
	nested, _ := term.NewBitVecAdd(y, c2)
	outer, err := term.NewBitVecAdd(c1, nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := simplify.New().Simplify(outer)
	op, ok := result.(*term.Operation)
	if !ok || op.Kind() != term.KindBitVecAdd {
		t.Fatalf("expected a residual BitVecAdd(12, y), got %v", result)
	}
	foundConst, foundVar := false, false
	for _, operand := range op.Operands() {
		if c, ok := operand.(*term.Constant); ok && c.BitVecValue.Int64() == 12 {
			foundConst = true
		}
		if operand == term.Expression(y) {
			foundVar = true
		}
	}
	if !foundConst || !foundVar {
		t.Fatalf("expected operands {12, y}, got %v", op.Operands())
	}
}

func TestSimplifyITESameBranchesCollapses(t *testing.T) {
	cond := term.NewBoolVariable("cond")
	x := term.NewBitVecVariable("x", 8)
	ite, err := term.NewBitVecITE(cond, x, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := simplify.New().Simplify(ite)
	if result != term.Expression(x) {
		t.Fatalf("expected ite(c,x,x) to simplify to x, got %v", result)
	}
}

func TestSimplifyArraySelectWalksPastIrrelevantStore(t *testing.T) {
	arr := term.NewArrayVariable("mem", 8, 8, nil)
	idx0 := term.NewBitVecConstantU64(8, 0)
	idx1 := term.NewBitVecConstantU64(8, 1)
	v0 := term.NewBitVecConstantU64(8, 0xaa)
	v1 := term.NewBitVecConstantU64(8, 0xbb)

	s0, _ := term.NewArrayStore(arr, idx0, v0)
	s1, _ := term.NewArrayStore(s0, idx1, v1)
	sel, err := term.NewArraySelect(s1, idx0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := simplify.New().Simplify(sel)
	c, ok := result.(*term.Constant)
	if !ok || c.BitVecValue.Int64() != 0xaa {
		t.Fatalf("expected select to read through to 0xaa at index 0, got %v", result)
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	x := term.NewBitVecVariable("x", 32)
	y := term.NewBitVecVariable("y", 32)
	sum, _ := term.NewBitVecAdd(x, y)
	extraZero, err := term.NewBitVecAdd(sum, term.NewBitVecConstantU64(32, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := simplify.New()
	once := s.Simplify(extraZero)
	twice := s.Simplify(once)
	if once != twice {
		t.Fatalf("expected Simplify to be idempotent on its own output")
	}
}

func TestSimplifyPreservesDepthInvariant(t *testing.T) {
	x := term.NewBitVecVariable("x", 32)
	zero := term.NewBitVecConstantU64(32, 0)
	sum, _ := term.NewBitVecAdd(x, zero)

	before := query.GetDepth(sum)
	after := query.GetDepth(simplify.New().Simplify(sum))
	if after > before {
		t.Fatalf("expected simplification not to increase depth, before=%d after=%d", before, after)
	}
}
