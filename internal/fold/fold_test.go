// SPDX-License-Identifier: Apache-2.0
package fold

import (
	"math/big"
	"testing"

	"bvterm/internal/term"
)

func TestFoldArithmetic(t *testing.T) {
	a := term.NewBitVecConstantU64(8, 5)
	b := term.NewBitVecConstantU64(8, 7)
	sum, err := term.NewBitVecAdd(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	folded := New().Fold(sum)
	c, ok := folded.(*term.Constant)
	if !ok {
		t.Fatalf("expected a folded Constant, got %T", folded)
	}
	if c.BitVecValue.Cmp(big.NewInt(12)) != 0 {
		t.Fatalf("expected 12, got %s", c.BitVecValue)
	}
}

func TestFoldWrapsModuloWidth(t *testing.T) {
	a := term.NewBitVecConstantU64(8, 250)
	b := term.NewBitVecConstantU64(8, 10)
	sum, _ := term.NewBitVecAdd(a, b)

	folded := New().Fold(sum).(*term.Constant)
	if folded.BitVecValue.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("expected (250+10) mod 256 == 4, got %s", folded.BitVecValue)
	}
}

func TestFoldDivisionByZeroLeavesOperationUnchanged(t *testing.T) {
	a := term.NewBitVecVariable("a", 8)
	zero := term.NewBitVecConstantU64(8, 0)
	// a is not constant, so this never folds regardless; check the
	// all-constant division-by-zero case explicitly instead.
	_ = a

	c := term.NewBitVecConstantU64(8, 5)
	div, err := term.NewBitVecUnsignedDiv(c, zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	folded := New().Fold(div)
	if _, ok := folded.(*term.Constant); ok {
		t.Fatal("expected division by zero not to fold to a constant")
	}
	if folded.Kind() != term.KindBitVecUnsignedDiv {
		t.Fatalf("expected the unevaluated BitVecUnsignedDiv to survive, got %s", folded.Kind())
	}
}

func TestFoldBitwiseNot(t *testing.T) {
	c := term.NewBitVecConstantU64(8, 0x0f)
	not, err := term.NewBitVecNot(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	folded := New().Fold(not).(*term.Constant)
	if folded.BitVecValue.Cmp(big.NewInt(0xf0)) != 0 {
		t.Fatalf("expected 0xf0, got %s", folded.BitVecValue)
	}
}

func TestFoldConcatConstants(t *testing.T) {
	hi := term.NewBitVecConstantU64(8, 0xab)
	lo := term.NewBitVecConstantU64(8, 0xcd)
	concat, err := term.NewBitVecConcat([]term.Expression{hi, lo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	folded := New().Fold(concat).(*term.Constant)
	if folded.BitVecValue.Cmp(big.NewInt(0xabcd)) != 0 {
		t.Fatalf("expected 0xabcd, got %s", folded.BitVecValue.Text(16))
	}
}

func TestFoldShiftLeftAtWidthIsPlainModularShift(t *testing.T) {
	x := term.NewBitVecConstantU64(8, 0x01)
	amount := term.NewBitVecConstantU64(8, 8)
	shifted, err := term.NewBitVecShiftLeft(x, amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	folded := New().Fold(shifted).(*term.Constant)
	if folded.BitVecValue.Cmp(big.NewInt(0)) != 0 {
		t.Fatalf("expected plain modular left shift (1<<8 mod 256 = 0), got %s", folded.BitVecValue)
	}
}

func TestFoldBitVecITESelectsBranch(t *testing.T) {
	cond := term.NewBoolConstant(true)
	a := term.NewBitVecConstantU64(8, 1)
	b := term.NewBitVecConstantU64(8, 2)
	ite, err := term.NewBitVecITE(cond, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	folded := New().Fold(ite)
	if folded != term.Expression(a) {
		t.Fatalf("expected true branch %v, got %v", a, folded)
	}
}
