// SPDX-License-Identifier: Apache-2.0

// Package simplify implements algebraic rewriting to a fixed point:
// identities (x+0, x|0, x&~0, ITE(true,a,b)), nested-constant
// reassociation, bitwise distribution through Extract, and ArraySelect
// walking through an ArrayStore chain. Any operation whose operands are
// all constant is delegated to package fold rather than special-cased
// here twice.
package simplify

import (
	"errors"
	"math/big"

	"bvterm/internal/fold"
	"bvterm/internal/term"
	"bvterm/internal/visit"
)

var errUnsupportedReassociation = errors.New("simplify: unsupported reassociation kind")

const cacheCapacity = 256

// maxFixedPointIterations bounds the fold+rewrite loop; no rule set here
// is known to cycle, but the bound is cheap insurance against one that
// does after a future edit.
const maxFixedPointIterations = 64

// Simplifier rewrites a term graph to a fixed point under the rule set in
// this package, folding constants along the way.
type Simplifier struct {
	folder *fold.Folder
	cache  *visit.Cache[term.Expression]
}

func New() *Simplifier {
	return &Simplifier{folder: fold.New(), cache: visit.NewCache[term.Expression](cacheCapacity)}
}

// Simplify rewrites x to a fixed point: one full pass, repeated until a
// pass produces no change (§8 property 1: Simplify is idempotent on its
// own output).
func (s *Simplifier) Simplify(x term.Expression) term.Expression {
	return visit.FixedPoint(x, s.pass, maxFixedPointIterations)
}

func (s *Simplifier) pass(x term.Expression) term.Expression {
	return visit.Run(x, s.handlers(), s.cache)
}

func (s *Simplifier) handlers() visit.Handler[term.Expression] {
	return visit.Handler[term.Expression]{
		term.LevelVariable:  passthroughLeaf,
		term.LevelConstant:  passthroughLeaf,
		term.LevelOperation: s.rewrite,
	}
}

func passthroughLeaf(x term.Expression, _ []term.Expression) term.Expression { return x }

func (s *Simplifier) rewrite(x term.Expression, operandResults []term.Expression) term.Expression {
	op := x.(*term.Operation)

	var current term.Expression
	if term.SameOperands(op, operandResults) {
		current = op
	} else {
		r, err := term.Rebuild(op, operandResults)
		if err != nil {
			return op
		}
		current = r
	}

	if folded := s.folder.Fold(current); folded != current {
		return folded
	}

	co, ok := current.(*term.Operation)
	if !ok {
		return current
	}
	if rule, ok := rules[co.Kind()]; ok {
		if result := rule(co); result != nil {
			return result
		}
	}
	return current
}

var rules = map[term.Kind]func(*term.Operation) term.Expression{
	term.KindBitVecAdd:            ruleAdd,
	term.KindBitVecSub:            ruleSub,
	term.KindBitVecOr:             ruleOr,
	term.KindBitVecAnd:            ruleAnd,
	term.KindBitVecXor:            ruleXor,
	term.KindBitVecShiftLeft:      ruleShiftLeft,
	term.KindBitVecShiftRight:     ruleShiftRight,
	term.KindBoolAnd:              ruleBoolAnd,
	term.KindBoolOr:                ruleBoolOr,
	term.KindBoolNot:               ruleBoolNot,
	term.KindBoolITE:               ruleBoolITE,
	term.KindBitVecITE:             ruleBitVecITE,
	term.KindBitVecExtract:         ruleExtract,
	term.KindArraySelect:           ruleArraySelect,
}

func asConst(x term.Expression) (*term.Constant, bool) {
	c, ok := x.(*term.Constant)
	return c, ok
}

func isZero(x term.Expression) bool {
	c, ok := asConst(x)
	return ok && c.BitVecValue != nil && c.BitVecValue.Sign() == 0
}

func isAllOnes(x term.Expression, w int) bool {
	c, ok := asConst(x)
	if !ok || c.BitVecValue == nil {
		return false
	}
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)), big.NewInt(1))
	return c.BitVecValue.Cmp(mask) == 0
}

func width(x term.Expression) int { return x.Sort().(term.BitVec).Width }

// ruleAdd: x+0 = x; 0+x = x; reassociate (c1 + y) + c2 (or symmetric
// arrangements) into (c1+c2) + y so a later pass folds the constant pair.
func ruleAdd(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	if isZero(b) {
		return a
	}
	if isZero(a) {
		return b
	}
	if merged := reassociateConstant(term.KindBitVecAdd, a, b); merged != nil {
		return merged
	}
	return nil
}

// ruleSub: x-0 = x; x-x = 0. The x-x case fires only when both operands
// are the same pointer; constructors do not intern, so two separately
// built but structurally equal operands are not matched.
func ruleSub(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	if isZero(b) {
		return a
	}
	if a == b {
		c := term.NewBitVecConstantU64(width(a), 0)
		return c
	}
	return nil
}

// ruleOr: x|0 = x; x|allones = allones; reassociate nested constants.
func ruleOr(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	w := width(a)
	if isZero(b) {
		return a
	}
	if isZero(a) {
		return b
	}
	if isAllOnes(a, w) || isAllOnes(b, w) {
		return term.NewBitVecConstant(w, allOnes(w))
	}
	if merged := reassociateConstant(term.KindBitVecOr, a, b); merged != nil {
		return merged
	}
	return nil
}

// ruleAnd: x&0 = 0; x&allones = x; distributes over Or: (p|q)&k ==
// (k&p)|(k&q), a sound boolean-algebra identity regardless of constants.
func ruleAnd(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	w := width(a)
	if isZero(a) || isZero(b) {
		return term.NewBitVecConstantU64(w, 0)
	}
	if isAllOnes(a, w) {
		return b
	}
	if isAllOnes(b, w) {
		return a
	}
	if orOp, ok := b.(*term.Operation); ok && orOp.Kind() == term.KindBitVecOr {
		return distributeAndOverOr(a, orOp)
	}
	if orOp, ok := a.(*term.Operation); ok && orOp.Kind() == term.KindBitVecOr {
		return distributeAndOverOr(b, orOp)
	}
	if merged := reassociateConstant(term.KindBitVecAnd, a, b); merged != nil {
		return merged
	}
	return nil
}

func distributeAndOverOr(k term.Expression, orOp *term.Operation) term.Expression {
	p, q := orOp.Operands()[0], orOp.Operands()[1]
	left, err := term.NewBitVecAnd(k, p)
	if err != nil {
		return nil
	}
	right, err := term.NewBitVecAnd(k, q)
	if err != nil {
		return nil
	}
	result, err := term.NewBitVecOr(left, right)
	if err != nil {
		return nil
	}
	return result
}

// ruleXor: x^x = 0; x^0 = x.
func ruleXor(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	if a == b {
		return term.NewBitVecConstantU64(width(a), 0)
	}
	if isZero(b) {
		return a
	}
	if isZero(a) {
		return b
	}
	return nil
}

// ruleShiftLeft: x<<0 = x. Also carries the BitVecShiftLeft quirk (kept,
// not silently fixed): a constant shift amount at or beyond the operand's
// width returns the left operand unchanged instead of the SMT-LIB-correct
// zero. Constant folding already handles the case where x is constant
// too, so this only fires on the genuinely symbolic left operand.
func ruleShiftLeft(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	if isZero(b) {
		return a
	}
	if bc, ok := asConst(b); ok && bc.BitVecValue != nil {
		w := width(a)
		if bc.BitVecValue.CmpAbs(big.NewInt(int64(w))) >= 0 {
			return a
		}
	}
	return nil
}

func ruleShiftRight(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	if isZero(b) {
		return a
	}
	return nil
}

// ruleBoolAnd: And(false,_)=false; And(true,x)=x (either order).
func ruleBoolAnd(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	if c, ok := asConst(a); ok {
		if !c.BoolValue {
			return term.NewBoolConstant(false)
		}
		return b
	}
	if c, ok := asConst(b); ok {
		if !c.BoolValue {
			return term.NewBoolConstant(false)
		}
		return a
	}
	if a == b {
		return a
	}
	return nil
}

// ruleBoolOr: Or(true,_)=true; Or(false,x)=x (either order).
func ruleBoolOr(op *term.Operation) term.Expression {
	a, b := op.Operands()[0], op.Operands()[1]
	if c, ok := asConst(a); ok {
		if c.BoolValue {
			return term.NewBoolConstant(true)
		}
		return b
	}
	if c, ok := asConst(b); ok {
		if c.BoolValue {
			return term.NewBoolConstant(true)
		}
		return a
	}
	if a == b {
		return a
	}
	return nil
}

// ruleBoolNot: Not(Not(x)) = x.
func ruleBoolNot(op *term.Operation) term.Expression {
	inner, ok := op.Operands()[0].(*term.Operation)
	if ok && inner.Kind() == term.KindBoolNot {
		return inner.Operands()[0]
	}
	return nil
}

// ruleBoolITE / ruleBitVecITE: ITE(true,a,b)=a, ITE(false,a,b)=b,
// ITE(c,a,a)=a.
func ruleBoolITE(op *term.Operation) term.Expression  { return ruleITE(op) }
func ruleBitVecITE(op *term.Operation) term.Expression { return ruleITE(op) }

func ruleITE(op *term.Operation) term.Expression {
	cond, a, b := op.Operands()[0], op.Operands()[1], op.Operands()[2]
	if a == b {
		return a
	}
	if c, ok := asConst(cond); ok {
		if c.BoolValue {
			return a
		}
		return b
	}
	return nil
}

// ruleExtract distributes Extract through bitwise BitVecAnd/Or/Xor (each
// bit of a bitwise op depends only on the same bit of its operands, so
// extracting commutes with the op) and collapses a full-width Extract to
// its operand.
func ruleExtract(op *term.Operation) term.Expression {
	x := op.Operands()[0]
	if op.Begin == 0 && op.End == width(x)-1 {
		return x
	}
	inner, ok := x.(*term.Operation)
	if !ok {
		return nil
	}
	switch inner.Kind() {
	case term.KindBitVecAnd, term.KindBitVecOr, term.KindBitVecXor:
		p, err := term.NewBitVecExtract(inner.Operands()[0], op.Begin, op.End)
		if err != nil {
			return nil
		}
		q, err := term.NewBitVecExtract(inner.Operands()[1], op.Begin, op.End)
		if err != nil {
			return nil
		}
		return rebuildBinaryBV(inner.Kind(), p, q)
	case term.KindBitVecConcat:
		return extractFromConcat(op, inner)
	}
	return nil
}

func rebuildBinaryBV(kind term.Kind, a, b term.Expression) term.Expression {
	var r term.Expression
	var err error
	switch kind {
	case term.KindBitVecAnd:
		r, err = term.NewBitVecAnd(a, b)
	case term.KindBitVecOr:
		r, err = term.NewBitVecOr(a, b)
	case term.KindBitVecXor:
		r, err = term.NewBitVecXor(a, b)
	}
	if err != nil {
		return nil
	}
	return r
}

// extractFromConcat walks a Concat's MSB-first operand list and returns
// the single operand an Extract falls entirely within, re-based to that
// operand's own bit numbering. Falls through (returns nil) when the
// range spans more than one operand — that case is left to a future
// rule rather than guessed at.
func extractFromConcat(op, concat *term.Operation) term.Expression {
	operands := concat.Operands()
	// LSB of operands[len-1] is global bit 0; walk from the end.
	lsb := 0
	for i := len(operands) - 1; i >= 0; i-- {
		w := width(operands[i])
		msb := lsb + w - 1
		if op.Begin >= lsb && op.End <= msb {
			localBegin := op.Begin - lsb
			localEnd := op.End - lsb
			if localBegin == 0 && localEnd == w-1 {
				return operands[i]
			}
			r, err := term.NewBitVecExtract(operands[i], localBegin, localEnd)
			if err != nil {
				return nil
			}
			return r
		}
		lsb = msb + 1
	}
	return nil
}

// ruleArraySelect walks Select(Store(arr,idx,val), sel): if sel is
// provably the same index as idx it returns val; if it is provably
// different it recurses into arr, skipping the irrelevant store.
// "Provably" means either pointer-identical or both constant.
func ruleArraySelect(op *term.Operation) term.Expression {
	arr, sel := op.Operands()[0], op.Operands()[1]
	store, ok := arr.(*term.Operation)
	if !ok || store.Kind() != term.KindArrayStore {
		return nil
	}
	storeArr, idx, val := store.Operands()[0], store.Operands()[1], store.Operands()[2]
	ic, iok := asConst(idx)
	sc, sok := asConst(sel)
	if idx == sel || (iok && sok && ic.BitVecValue.Cmp(sc.BitVecValue) == 0) {
		return val
	}
	if iok && sok {
		r, err := term.NewArraySelect(storeArr, sel)
		if err != nil {
			return nil
		}
		return r
	}
	return nil
}

func allOnes(w int) *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)), big.NewInt(1))
}

// reassociateConstant folds a constant operand into a same-kind nested
// operation's own constant operand: op(c1, op(c2, y)) (or any of the
// three other arrangements) becomes op(fold(c1,c2), y), firing only when
// both the outer operand and the matching inner operand are constants so
// the rewrite never has to guess at non-constant algebra.
func reassociateConstant(kind term.Kind, a, b term.Expression) term.Expression {
	outerConst, outerIsConst := asConst(a)
	nested, nestedIsOp := b.(*term.Operation)
	if !outerIsConst || !nestedIsOp || nested.Kind() != kind {
		outerConst, outerIsConst = asConst(b)
		nested, nestedIsOp = a.(*term.Operation)
		if !outerIsConst || !nestedIsOp || nested.Kind() != kind {
			return nil
		}
	}
	innerA, innerB := nested.Operands()[0], nested.Operands()[1]
	innerConst, innerIsConst := asConst(innerA)
	rest := innerB
	if !innerIsConst {
		innerConst, innerIsConst = asConst(innerB)
		rest = innerA
		if !innerIsConst {
			return nil
		}
	}
	combinedOp, err := rebuildConstBinary(kind, outerConst, innerConst)
	if err != nil {
		return nil
	}
	result := rebuildBinaryBV(kind, combinedOp, rest)
	if result == nil {
		return nil
	}
	return result
}

func rebuildConstBinary(kind term.Kind, a, b *term.Constant) (term.Expression, error) {
	switch kind {
	case term.KindBitVecAdd:
		return term.NewBitVecAdd(a, b)
	case term.KindBitVecOr:
		return term.NewBitVecOr(a, b)
	case term.KindBitVecAnd:
		return term.NewBitVecAnd(a, b)
	default:
		return nil, errUnsupportedReassociation
	}
}
