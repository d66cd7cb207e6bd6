// SPDX-License-Identifier: Apache-2.0
package term

import "fmt"

// Rebuild reconstructs an Operation of the same Kind from newOperands,
// preserving any non-Expression fields (Extract's Begin/End, SignExtend's
// ExtendBy). This is the Go analogue of the source's generic _rebuild:
// every visitor that replaces operands (substitution, folding,
// simplification) funnels through one reconstruction path instead of a
// switch per visitor.
func Rebuild(op *Operation, newOperands []Expression) (Expression, error) {
	switch op.kind {
	case KindBoolNot:
		return NewBoolNot(newOperands[0])
	case KindBoolAnd:
		return NewBoolAnd(newOperands[0], newOperands[1])
	case KindBoolOr:
		return NewBoolOr(newOperands[0], newOperands[1])
	case KindBoolXor:
		return NewBoolXor(newOperands[0], newOperands[1])
	case KindBoolEq:
		return NewBoolEq(newOperands[0], newOperands[1])
	case KindBoolITE:
		return NewBoolITE(newOperands[0], newOperands[1], newOperands[2])

	case KindBitVecAdd:
		return NewBitVecAdd(newOperands[0], newOperands[1])
	case KindBitVecSub:
		return NewBitVecSub(newOperands[0], newOperands[1])
	case KindBitVecMul:
		return NewBitVecMul(newOperands[0], newOperands[1])
	case KindBitVecDiv:
		return NewBitVecDiv(newOperands[0], newOperands[1])
	case KindBitVecUnsignedDiv:
		return NewBitVecUnsignedDiv(newOperands[0], newOperands[1])
	case KindBitVecMod:
		return NewBitVecMod(newOperands[0], newOperands[1])
	case KindBitVecRem:
		return NewBitVecRem(newOperands[0], newOperands[1])
	case KindBitVecUnsignedRem:
		return NewBitVecUnsignedRem(newOperands[0], newOperands[1])
	case KindBitVecShiftLeft:
		return NewBitVecShiftLeft(newOperands[0], newOperands[1])
	case KindBitVecShiftRight:
		return NewBitVecShiftRight(newOperands[0], newOperands[1])
	case KindBitVecArithmeticShiftLeft:
		return NewBitVecArithmeticShiftLeft(newOperands[0], newOperands[1])
	case KindBitVecArithmeticShiftRight:
		return NewBitVecArithmeticShiftRight(newOperands[0], newOperands[1])
	case KindBitVecAnd:
		return NewBitVecAnd(newOperands[0], newOperands[1])
	case KindBitVecOr:
		return NewBitVecOr(newOperands[0], newOperands[1])
	case KindBitVecXor:
		return NewBitVecXor(newOperands[0], newOperands[1])
	case KindBitVecNot:
		return NewBitVecNot(newOperands[0])
	case KindBitVecNeg:
		return NewBitVecNeg(newOperands[0])

	case KindBitVecSignExtend:
		return NewBitVecSignExtend(newOperands[0], op.ExtendBy)
	case KindBitVecZeroExtend:
		return NewBitVecZeroExtend(newOperands[0], op.ExtendBy)
	case KindBitVecExtract:
		return NewBitVecExtract(newOperands[0], op.Begin, op.End)
	case KindBitVecConcat:
		return NewBitVecConcat(newOperands)
	case KindBitVecITE:
		return NewBitVecITE(newOperands[0], newOperands[1], newOperands[2])

	case KindLessThan:
		return NewLessThan(newOperands[0], newOperands[1])
	case KindLessOrEqual:
		return NewLessOrEqual(newOperands[0], newOperands[1])
	case KindGreaterThan:
		return NewGreaterThan(newOperands[0], newOperands[1])
	case KindGreaterOrEqual:
		return NewGreaterOrEqual(newOperands[0], newOperands[1])
	case KindUnsignedLessThan:
		return NewUnsignedLessThan(newOperands[0], newOperands[1])
	case KindUnsignedLessOrEqual:
		return NewUnsignedLessOrEqual(newOperands[0], newOperands[1])
	case KindUnsignedGreaterThan:
		return NewUnsignedGreaterThan(newOperands[0], newOperands[1])
	case KindUnsignedGreaterOrEqual:
		return NewUnsignedGreaterOrEqual(newOperands[0], newOperands[1])
	case KindEqual:
		return NewEqual(newOperands[0], newOperands[1])

	case KindArrayStore:
		return NewArrayStore(newOperands[0], newOperands[1], newOperands[2])
	case KindArraySelect:
		return NewArraySelect(newOperands[0], newOperands[1])

	default:
		return nil, fmt.Errorf("term: Rebuild has no case for %s", op.kind)
	}
}

// SameOperands reports whether newOperands is pointer-identical to op's
// current operands, the cheap check that lets a rebuilding visitor skip
// reconstruction (and so preserve interning) when nothing actually changed.
func SameOperands(op *Operation, newOperands []Expression) bool {
	if len(newOperands) != len(op.operands) {
		return false
	}
	for i := range newOperands {
		if newOperands[i] != op.operands[i] {
			return false
		}
	}
	return true
}
