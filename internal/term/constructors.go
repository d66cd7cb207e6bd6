// SPDX-License-Identifier: Apache-2.0
package term

import (
	"fmt"
	"math/big"
)

// normalizeWidth reduces v modulo 2^width and returns a fresh, non-negative
// big.Int (§3: "Bit-vector constants are normalized modulo 2^width").
func normalizeWidth(v *big.Int, width int) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width))
	out := new(big.Int).Mod(v, mod)
	if out.Sign() < 0 {
		out.Add(out, mod)
	}
	return out
}

// --- Leaves ---

func NewBoolVariable(name string, taint ...string) *Variable {
	return &Variable{kind: KindBoolVariable, sort: Bool{}, Name: name, taint: NewTaint(taint...)}
}

func NewBitVecVariable(name string, width int, taint ...string) *Variable {
	return &Variable{kind: KindBitVecVariable, sort: BitVec{Width: width}, Name: name, taint: NewTaint(taint...)}
}

func NewArrayVariable(name string, indexWidth, elemWidth int, indexMax *int, taint ...string) *Variable {
	return &Variable{
		kind: KindArrayVariable, sort: Array{IndexWidth: indexWidth, ElemWidth: elemWidth},
		Name: name, taint: NewTaint(taint...), IndexMax: indexMax,
	}
}

func NewBoolConstant(v bool, taint ...string) *Constant {
	return &Constant{kind: KindBoolConstant, sort: Bool{}, BoolValue: v, taint: NewTaint(taint...)}
}

func NewBitVecConstant(width int, v *big.Int, taint ...string) *Constant {
	return &Constant{
		kind: KindBitVecConstant, sort: BitVec{Width: width},
		BitVecValue: normalizeWidth(v, width), taint: NewTaint(taint...),
	}
}

func NewBitVecConstantU64(width int, v uint64, taint ...string) *Constant {
	return NewBitVecConstant(width, new(big.Int).SetUint64(v), taint...)
}

// --- Bool operations ---

func NewBoolNot(x Expression, taint ...string) (*Operation, error) {
	if _, ok := x.Sort().(Bool); !ok {
		return nil, fmt.Errorf("term: BoolNot operand must be Bool, got %s", x.Sort())
	}
	return &Operation{kind: KindBoolNot, sort: Bool{}, operands: []Expression{x}, taint: Union(NewTaint(taint...), x.Taint())}, nil
}

func boolBinary(kind Kind, a, b Expression, taint ...string) (*Operation, error) {
	if _, ok := a.Sort().(Bool); !ok {
		return nil, fmt.Errorf("term: %s left operand must be Bool, got %s", kind, a.Sort())
	}
	if _, ok := b.Sort().(Bool); !ok {
		return nil, fmt.Errorf("term: %s right operand must be Bool, got %s", kind, b.Sort())
	}
	return &Operation{kind: kind, sort: Bool{}, operands: []Expression{a, b}, taint: Union(NewTaint(taint...), a.Taint(), b.Taint())}, nil
}

func NewBoolAnd(a, b Expression, taint ...string) (*Operation, error) { return boolBinary(KindBoolAnd, a, b, taint...) }
func NewBoolOr(a, b Expression, taint ...string) (*Operation, error)  { return boolBinary(KindBoolOr, a, b, taint...) }
func NewBoolXor(a, b Expression, taint ...string) (*Operation, error) { return boolBinary(KindBoolXor, a, b, taint...) }
func NewBoolEq(a, b Expression, taint ...string) (*Operation, error)  { return boolBinary(KindBoolEq, a, b, taint...) }

func NewBoolITE(c, a, b Expression, taint ...string) (*Operation, error) {
	if _, ok := c.Sort().(Bool); !ok {
		return nil, fmt.Errorf("term: BoolITE condition must be Bool, got %s", c.Sort())
	}
	if _, ok := a.Sort().(Bool); !ok {
		return nil, fmt.Errorf("term: BoolITE branch must be Bool, got %s", a.Sort())
	}
	if !a.Sort().Equal(b.Sort()) {
		return nil, fmt.Errorf("term: BoolITE branches have different sorts: %s vs %s", a.Sort(), b.Sort())
	}
	return &Operation{
		kind: KindBoolITE, sort: Bool{}, operands: []Expression{c, a, b},
		taint: Union(NewTaint(taint...), c.Taint(), a.Taint(), b.Taint()),
	}, nil
}

// --- BitVec arithmetic / shifts / bitwise (same-width binary) ---

func bitvecBinarySameSort(kind Kind, a, b Expression, taint ...string) (*Operation, error) {
	aw, ok := a.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: %s left operand must be BitVec, got %s", kind, a.Sort())
	}
	bw, ok := b.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: %s right operand must be BitVec, got %s", kind, b.Sort())
	}
	if aw.Width != bw.Width {
		return nil, fmt.Errorf("term: %s operand width mismatch: %d vs %d", kind, aw.Width, bw.Width)
	}
	return &Operation{kind: kind, sort: aw, operands: []Expression{a, b}, taint: Union(NewTaint(taint...), a.Taint(), b.Taint())}, nil
}

func NewBitVecAdd(a, b Expression, taint ...string) (*Operation, error) { return bitvecBinarySameSort(KindBitVecAdd, a, b, taint...) }
func NewBitVecSub(a, b Expression, taint ...string) (*Operation, error) { return bitvecBinarySameSort(KindBitVecSub, a, b, taint...) }
func NewBitVecMul(a, b Expression, taint ...string) (*Operation, error) { return bitvecBinarySameSort(KindBitVecMul, a, b, taint...) }
func NewBitVecDiv(a, b Expression, taint ...string) (*Operation, error) { return bitvecBinarySameSort(KindBitVecDiv, a, b, taint...) }
func NewBitVecUnsignedDiv(a, b Expression, taint ...string) (*Operation, error) {
	return bitvecBinarySameSort(KindBitVecUnsignedDiv, a, b, taint...)
}
func NewBitVecMod(a, b Expression, taint ...string) (*Operation, error) { return bitvecBinarySameSort(KindBitVecMod, a, b, taint...) }
func NewBitVecRem(a, b Expression, taint ...string) (*Operation, error) { return bitvecBinarySameSort(KindBitVecRem, a, b, taint...) }
func NewBitVecUnsignedRem(a, b Expression, taint ...string) (*Operation, error) {
	return bitvecBinarySameSort(KindBitVecUnsignedRem, a, b, taint...)
}
func NewBitVecShiftLeft(a, b Expression, taint ...string) (*Operation, error) {
	return bitvecBinarySameSort(KindBitVecShiftLeft, a, b, taint...)
}
func NewBitVecShiftRight(a, b Expression, taint ...string) (*Operation, error) {
	return bitvecBinarySameSort(KindBitVecShiftRight, a, b, taint...)
}
func NewBitVecArithmeticShiftLeft(a, b Expression, taint ...string) (*Operation, error) {
	return bitvecBinarySameSort(KindBitVecArithmeticShiftLeft, a, b, taint...)
}
func NewBitVecArithmeticShiftRight(a, b Expression, taint ...string) (*Operation, error) {
	return bitvecBinarySameSort(KindBitVecArithmeticShiftRight, a, b, taint...)
}
func NewBitVecAnd(a, b Expression, taint ...string) (*Operation, error) { return bitvecBinarySameSort(KindBitVecAnd, a, b, taint...) }
func NewBitVecOr(a, b Expression, taint ...string) (*Operation, error)  { return bitvecBinarySameSort(KindBitVecOr, a, b, taint...) }
func NewBitVecXor(a, b Expression, taint ...string) (*Operation, error) { return bitvecBinarySameSort(KindBitVecXor, a, b, taint...) }

func bitvecUnarySameSort(kind Kind, x Expression, taint ...string) (*Operation, error) {
	w, ok := x.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: %s operand must be BitVec, got %s", kind, x.Sort())
	}
	return &Operation{kind: kind, sort: w, operands: []Expression{x}, taint: Union(NewTaint(taint...), x.Taint())}, nil
}

func NewBitVecNot(x Expression, taint ...string) (*Operation, error) { return bitvecUnarySameSort(KindBitVecNot, x, taint...) }
func NewBitVecNeg(x Expression, taint ...string) (*Operation, error) { return bitvecUnarySameSort(KindBitVecNeg, x, taint...) }

// --- Width-adjusting ---

func NewBitVecSignExtend(x Expression, extendBy int, taint ...string) (*Operation, error) {
	w, ok := x.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: SignExtend operand must be BitVec, got %s", x.Sort())
	}
	return &Operation{
		kind: KindBitVecSignExtend, sort: BitVec{Width: w.Width + extendBy}, operands: []Expression{x},
		ExtendBy: extendBy, taint: Union(NewTaint(taint...), x.Taint()),
	}, nil
}

func NewBitVecZeroExtend(x Expression, extendBy int, taint ...string) (*Operation, error) {
	w, ok := x.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: ZeroExtend operand must be BitVec, got %s", x.Sort())
	}
	return &Operation{
		kind: KindBitVecZeroExtend, sort: BitVec{Width: w.Width + extendBy}, operands: []Expression{x},
		ExtendBy: extendBy, taint: Union(NewTaint(taint...), x.Taint()),
	}, nil
}

// NewBitVecExtract builds Extract(x, begin, end), an inclusive bit range
// with LSB = 0 (§3: 0 <= begin <= end < width(x), result width = end-begin+1).
func NewBitVecExtract(x Expression, begin, end int, taint ...string) (*Operation, error) {
	w, ok := x.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: Extract operand must be BitVec, got %s", x.Sort())
	}
	if begin < 0 || begin > end || end >= w.Width {
		return nil, fmt.Errorf("term: Extract(%d,%d) out of range for width %d", begin, end, w.Width)
	}
	return &Operation{
		kind: KindBitVecExtract, sort: BitVec{Width: end - begin + 1}, operands: []Expression{x},
		Begin: begin, End: end, taint: Union(NewTaint(taint...), x.Taint()),
	}, nil
}

// NewBitVecConcat builds Concat(x1,...,xn), MSB-first (§3: result width is
// the sum of operand widths).
func NewBitVecConcat(xs []Expression, taint ...string) (*Operation, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("term: Concat requires at least one operand")
	}
	total := 0
	taints := make([]Taint, 0, len(xs))
	for _, x := range xs {
		w, ok := x.Sort().(BitVec)
		if !ok {
			return nil, fmt.Errorf("term: Concat operand must be BitVec, got %s", x.Sort())
		}
		total += w.Width
		taints = append(taints, x.Taint())
	}
	return &Operation{
		kind: KindBitVecConcat, sort: BitVec{Width: total}, operands: append([]Expression(nil), xs...),
		taint: Union(NewTaint(taint...), taints...),
	}, nil
}

func NewBitVecITE(c, a, b Expression, taint ...string) (*Operation, error) {
	if _, ok := c.Sort().(Bool); !ok {
		return nil, fmt.Errorf("term: BitVecITE condition must be Bool, got %s", c.Sort())
	}
	aw, ok := a.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: BitVecITE branch must be BitVec, got %s", a.Sort())
	}
	if !a.Sort().Equal(b.Sort()) {
		return nil, fmt.Errorf("term: BitVecITE branches have different sorts: %s vs %s", a.Sort(), b.Sort())
	}
	return &Operation{
		kind: KindBitVecITE, sort: aw, operands: []Expression{c, a, b},
		taint: Union(NewTaint(taint...), c.Taint(), a.Taint(), b.Taint()),
	}, nil
}

// --- Comparisons ---

func comparison(kind Kind, a, b Expression, taint ...string) (*Operation, error) {
	aw, ok := a.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: %s left operand must be BitVec, got %s", kind, a.Sort())
	}
	bw, ok := b.Sort().(BitVec)
	if !ok {
		return nil, fmt.Errorf("term: %s right operand must be BitVec, got %s", kind, b.Sort())
	}
	if aw.Width != bw.Width {
		return nil, fmt.Errorf("term: %s operand width mismatch: %d vs %d", kind, aw.Width, bw.Width)
	}
	return &Operation{kind: kind, sort: Bool{}, operands: []Expression{a, b}, taint: Union(NewTaint(taint...), a.Taint(), b.Taint())}, nil
}

func NewLessThan(a, b Expression, taint ...string) (*Operation, error) { return comparison(KindLessThan, a, b, taint...) }
func NewLessOrEqual(a, b Expression, taint ...string) (*Operation, error) {
	return comparison(KindLessOrEqual, a, b, taint...)
}
func NewGreaterThan(a, b Expression, taint ...string) (*Operation, error) {
	return comparison(KindGreaterThan, a, b, taint...)
}
func NewGreaterOrEqual(a, b Expression, taint ...string) (*Operation, error) {
	return comparison(KindGreaterOrEqual, a, b, taint...)
}
func NewUnsignedLessThan(a, b Expression, taint ...string) (*Operation, error) {
	return comparison(KindUnsignedLessThan, a, b, taint...)
}
func NewUnsignedLessOrEqual(a, b Expression, taint ...string) (*Operation, error) {
	return comparison(KindUnsignedLessOrEqual, a, b, taint...)
}
func NewUnsignedGreaterThan(a, b Expression, taint ...string) (*Operation, error) {
	return comparison(KindUnsignedGreaterThan, a, b, taint...)
}
func NewUnsignedGreaterOrEqual(a, b Expression, taint ...string) (*Operation, error) {
	return comparison(KindUnsignedGreaterOrEqual, a, b, taint...)
}

// NewEqual is polymorphic: both operands must share a sort (Bool or
// BitVec of equal width) but Equal itself is not a BitVec comparison op.
func NewEqual(a, b Expression, taint ...string) (*Operation, error) {
	if !a.Sort().Equal(b.Sort()) {
		return nil, fmt.Errorf("term: Equal operand sorts differ: %s vs %s", a.Sort(), b.Sort())
	}
	switch a.Sort().(type) {
	case Bool, BitVec:
	default:
		return nil, fmt.Errorf("term: Equal operands must be Bool or BitVec, got %s", a.Sort())
	}
	return &Operation{kind: KindEqual, sort: Bool{}, operands: []Expression{a, b}, taint: Union(NewTaint(taint...), a.Taint(), b.Taint())}, nil
}

// --- Arrays ---

func NewArrayStore(arr, idx, val Expression, taint ...string) (*Operation, error) {
	as, ok := arr.Sort().(Array)
	if !ok {
		return nil, fmt.Errorf("term: ArrayStore first operand must be Array, got %s", arr.Sort())
	}
	iw, ok := idx.Sort().(BitVec)
	if !ok || iw.Width != as.IndexWidth {
		return nil, fmt.Errorf("term: ArrayStore index must be BitVec(%d), got %s", as.IndexWidth, idx.Sort())
	}
	vw, ok := val.Sort().(BitVec)
	if !ok || vw.Width != as.ElemWidth {
		return nil, fmt.Errorf("term: ArrayStore value must be BitVec(%d), got %s", as.ElemWidth, val.Sort())
	}
	return &Operation{
		kind: KindArrayStore, sort: as, operands: []Expression{arr, idx, val},
		taint: Union(NewTaint(taint...), arr.Taint(), idx.Taint(), val.Taint()),
	}, nil
}

func NewArraySelect(arr, idx Expression, taint ...string) (*Operation, error) {
	as, ok := arr.Sort().(Array)
	if !ok {
		return nil, fmt.Errorf("term: ArraySelect first operand must be Array, got %s", arr.Sort())
	}
	iw, ok := idx.Sort().(BitVec)
	if !ok || iw.Width != as.IndexWidth {
		return nil, fmt.Errorf("term: ArraySelect index must be BitVec(%d), got %s", as.IndexWidth, idx.Sort())
	}
	return &Operation{
		kind: KindArraySelect, sort: BitVec{Width: as.ElemWidth}, operands: []Expression{arr, idx},
		taint: Union(NewTaint(taint...), arr.Taint(), idx.Taint()),
	}, nil
}
