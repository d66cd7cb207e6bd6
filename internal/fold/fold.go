// SPDX-License-Identifier: Apache-2.0

// Package fold implements constant folding: evaluating an operation whose
// every operand is already a Constant down to a single Constant, using
// SMT-LIB-correct bit-vector and boolean semantics. It never looks at
// non-constant structure — that is the job of package simplify's
// Simplifier, which delegates the all-constant case to this package.
package fold

import (
	"math/big"

	"bvterm/internal/term"
	"bvterm/internal/visit"
)

// cacheCapacity bounds the fold memo the way the source bounds its visitor
// caches; 256 entries covers a typical rewrite pass without growing
// unboundedly across many calls sharing one Folder.
const cacheCapacity = 256

// Folder applies constant folding to a term graph, memoizing results
// across calls so repeated folding of shared subterms is free.
type Folder struct {
	cache *visit.Cache[term.Expression]
}

func New() *Folder {
	return &Folder{cache: visit.NewCache[term.Expression](cacheCapacity)}
}

// Fold returns x with every all-constant subterm replaced by the single
// Constant it evaluates to. Non-constant structure, and operations with a
// non-constant operand, pass through rebuilt but otherwise unchanged.
func (f *Folder) Fold(x term.Expression) term.Expression {
	return visit.Run(x, handlers, f.cache)
}

var handlers = visit.Handler[term.Expression]{
	term.LevelVariable:   passthroughLeaf,
	term.LevelConstant:   passthroughLeaf,
	term.LevelOperation:  foldOperation,
}

func passthroughLeaf(x term.Expression, _ []term.Expression) term.Expression {
	return x
}

func foldOperation(x term.Expression, operandResults []term.Expression) term.Expression {
	op := x.(*term.Operation)

	if term.SameOperands(op, operandResults) {
		if folded, ok := tryFold(op, operandResults); ok {
			return folded
		}
		return op
	}

	rebuilt, err := term.Rebuild(op, operandResults)
	if err != nil {
		return op
	}
	if folded, ok := tryFold(rebuilt.(*term.Operation), operandResults); ok {
		return folded
	}
	return rebuilt
}

func tryFold(op *term.Operation, operands []term.Expression) (term.Expression, bool) {
	if !allConstant(operands) {
		return nil, false
	}
	return evaluate(op.Kind(), op, operands)
}

func allConstant(operands []term.Expression) bool {
	for _, o := range operands {
		if _, ok := o.(*term.Constant); !ok {
			return false
		}
	}
	return true
}

func bv(x term.Expression) *big.Int   { return x.(*term.Constant).BitVecValue }
func bl(x term.Expression) bool       { return x.(*term.Constant).BoolValue }
func width(x term.Expression) int     { return x.Sort().(term.BitVec).Width }

// evaluate computes the constant result of an all-constant operation.
// Division-family operators by zero are left unevaluated — the caller gets
// ok=false and the original (unfolded) operation survives, matching §7's
// "division by zero returns the operation unchanged" rule.
func evaluate(kind term.Kind, op *term.Operation, ops []term.Expression) (term.Expression, bool) {
	switch kind {
	case term.KindBoolNot:
		return term.NewBoolConstant(!bl(ops[0])), true
	case term.KindBoolAnd:
		return term.NewBoolConstant(bl(ops[0]) && bl(ops[1])), true
	case term.KindBoolOr:
		return term.NewBoolConstant(bl(ops[0]) || bl(ops[1])), true
	case term.KindBoolXor:
		return term.NewBoolConstant(bl(ops[0]) != bl(ops[1])), true
	case term.KindBoolEq:
		return term.NewBoolConstant(bl(ops[0]) == bl(ops[1])), true
	case term.KindBoolITE:
		if bl(ops[0]) {
			return ops[1], true
		}
		return ops[2], true

	case term.KindBitVecAdd:
		return constBV(op, new(big.Int).Add(bv(ops[0]), bv(ops[1]))), true
	case term.KindBitVecSub:
		return constBV(op, new(big.Int).Sub(bv(ops[0]), bv(ops[1]))), true
	case term.KindBitVecMul:
		return constBV(op, new(big.Int).Mul(bv(ops[0]), bv(ops[1]))), true
	case term.KindBitVecDiv:
		return foldSignedDiv(op, ops)
	case term.KindBitVecUnsignedDiv:
		if bv(ops[1]).Sign() == 0 {
			return nil, false
		}
		return constBV(op, new(big.Int).Div(bv(ops[0]), bv(ops[1]))), true
	case term.KindBitVecMod:
		return foldSignedMod(op, ops)
	case term.KindBitVecRem:
		return foldSignedRem(op, ops)
	case term.KindBitVecUnsignedRem:
		if bv(ops[1]).Sign() == 0 {
			return nil, false
		}
		return constBV(op, new(big.Int).Mod(bv(ops[0]), bv(ops[1]))), true

	case term.KindBitVecShiftLeft:
		return constBV(op, new(big.Int).Lsh(bv(ops[0]), shiftAmount(ops[1], width(ops[0])))), true
	case term.KindBitVecShiftRight:
		return constBV(op, new(big.Int).Rsh(bv(ops[0]), shiftAmount(ops[1], width(ops[0])))), true
	case term.KindBitVecArithmeticShiftLeft:
		return constBV(op, new(big.Int).Lsh(bv(ops[0]), shiftAmount(ops[1], width(ops[0])))), true
	case term.KindBitVecArithmeticShiftRight:
		return constBV(op, arithShiftRight(bv(ops[0]), width(ops[0]), shiftAmount(ops[1], width(ops[0])))), true

	case term.KindBitVecAnd:
		return constBV(op, new(big.Int).And(bv(ops[0]), bv(ops[1]))), true
	case term.KindBitVecOr:
		return constBV(op, new(big.Int).Or(bv(ops[0]), bv(ops[1]))), true
	case term.KindBitVecXor:
		return constBV(op, new(big.Int).Xor(bv(ops[0]), bv(ops[1]))), true
	case term.KindBitVecNot:
		return constBV(op, bitwiseNot(bv(ops[0]), width(ops[0]))), true
	case term.KindBitVecNeg:
		return constBV(op, new(big.Int).Neg(bv(ops[0]))), true

	case term.KindBitVecSignExtend:
		return constBV(op, signExtend(bv(ops[0]), width(ops[0]))), true
	case term.KindBitVecZeroExtend:
		return constBV(op, new(big.Int).Set(bv(ops[0]))), true
	case term.KindBitVecExtract:
		shifted := new(big.Int).Rsh(bv(ops[0]), uint(op.Begin))
		return constBV(op, shifted), true
	case term.KindBitVecConcat:
		return constBV(op, concatConstants(ops)), true
	case term.KindBitVecITE:
		if bl(ops[0]) {
			return ops[1], true
		}
		return ops[2], true

	case term.KindLessThan:
		return term.NewBoolConstant(signed(bv(ops[0]), width(ops[0])).Cmp(signed(bv(ops[1]), width(ops[1]))) < 0), true
	case term.KindLessOrEqual:
		return term.NewBoolConstant(signed(bv(ops[0]), width(ops[0])).Cmp(signed(bv(ops[1]), width(ops[1]))) <= 0), true
	case term.KindGreaterThan:
		return term.NewBoolConstant(signed(bv(ops[0]), width(ops[0])).Cmp(signed(bv(ops[1]), width(ops[1]))) > 0), true
	case term.KindGreaterOrEqual:
		return term.NewBoolConstant(signed(bv(ops[0]), width(ops[0])).Cmp(signed(bv(ops[1]), width(ops[1]))) >= 0), true
	case term.KindUnsignedLessThan:
		return term.NewBoolConstant(bv(ops[0]).Cmp(bv(ops[1])) < 0), true
	case term.KindUnsignedLessOrEqual:
		return term.NewBoolConstant(bv(ops[0]).Cmp(bv(ops[1])) <= 0), true
	case term.KindUnsignedGreaterThan:
		return term.NewBoolConstant(bv(ops[0]).Cmp(bv(ops[1])) > 0), true
	case term.KindUnsignedGreaterOrEqual:
		return term.NewBoolConstant(bv(ops[0]).Cmp(bv(ops[1])) >= 0), true
	case term.KindEqual:
		return term.NewBoolConstant(equalConstants(ops[0].(*term.Constant), ops[1].(*term.Constant))), true

	default:
		return nil, false
	}
}

func constBV(op *term.Operation, v *big.Int) *term.Constant {
	return term.NewBitVecConstant(op.Sort().(term.BitVec).Width, v)
}

// shiftAmount saturates at w: any shift of w bits or more empties (or, for
// arithmetic right shift, sign-fills) the whole value, so there is no need
// to actually shift by the literal (possibly huge) constant.
func shiftAmount(x term.Expression, w int) uint {
	v := bv(x)
	if !v.IsUint64() || v.Uint64() > uint64(w) {
		return uint(w)
	}
	return uint(v.Uint64())
}

func signed(v *big.Int, w int) *big.Int {
	if v.Bit(w-1) == 0 {
		return new(big.Int).Set(v)
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(w))
	return new(big.Int).Sub(v, mod)
}

func bitwiseNot(v *big.Int, w int) *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)), big.NewInt(1))
	return new(big.Int).Xor(v, mask)
}

func arithShiftRight(v *big.Int, w int, amount uint) *big.Int {
	s := signed(v, w)
	return new(big.Int).Rsh(s, amount)
}

func signExtend(v *big.Int, w int) *big.Int {
	return signed(v, w)
}

func concatConstants(ops []term.Expression) *big.Int {
	result := new(big.Int)
	for _, o := range ops {
		c := o.(*term.Constant)
		w := uint(c.Sort().(term.BitVec).Width)
		result.Lsh(result, w)
		result.Or(result, c.BitVecValue)
	}
	return result
}

func equalConstants(a, b *term.Constant) bool {
	if a.BitVecValue != nil && b.BitVecValue != nil {
		return a.BitVecValue.Cmp(b.BitVecValue) == 0
	}
	return a.BoolValue == b.BoolValue
}

func foldSignedDiv(op *term.Operation, ops []term.Expression) (term.Expression, bool) {
	if bv(ops[1]).Sign() == 0 {
		return nil, false
	}
	w := width(ops[0])
	a, b := signed(bv(ops[0]), w), signed(bv(ops[1]), w)
	q := new(big.Int).Quo(a, b) // truncating division, matching SMT-LIB bvsdiv
	return constBV(op, q), true
}

func foldSignedRem(op *term.Operation, ops []term.Expression) (term.Expression, bool) {
	if bv(ops[1]).Sign() == 0 {
		return nil, false
	}
	w := width(ops[0])
	a, b := signed(bv(ops[0]), w), signed(bv(ops[1]), w)
	r := new(big.Int).Rem(a, b)
	return constBV(op, r), true
}

// foldSignedMod implements bvsmod: the result takes the sign of the
// divisor (floored modulo), unlike bvsrem which takes the sign of the
// dividend.
func foldSignedMod(op *term.Operation, ops []term.Expression) (term.Expression, bool) {
	if bv(ops[1]).Sign() == 0 {
		return nil, false
	}
	w := width(ops[0])
	a, b := signed(bv(ops[0]), w), signed(bv(ops[1]), w)
	m := new(big.Int).Rem(a, b) // truncated remainder: sign(m) == sign(a) or m == 0
	if m.Sign() != 0 && (m.Sign() < 0) != (b.Sign() < 0) {
		m.Add(m, b)
	}
	return constBV(op, m), true
}

