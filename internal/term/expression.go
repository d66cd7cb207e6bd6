// SPDX-License-Identifier: Apache-2.0
package term

import "math/big"

// Expression is the root of the term algebra (§3). Every concrete shape —
// Variable, Constant, Operation — implements it. Terms are immutable after
// construction; rewrites produce new terms rather than mutating existing
// ones.
type Expression interface {
	Kind() Kind
	Sort() Sort
	Operands() []Expression
	Taint() Taint
}

// Variable is a named leaf: BoolVariable, BitVecVariable(width), or
// ArrayVariable(idx_bits, elem_bits).
type Variable struct {
	kind  Kind
	sort  Sort
	Name  string
	taint Taint
	// IndexMax bounds an ArrayVariable's concrete index range for
	// ToConstant's byte-sequence extraction (§4.11); nil means unbounded.
	IndexMax *int
}

func (v *Variable) Kind() Kind          { return v.kind }
func (v *Variable) Sort() Sort          { return v.sort }
func (v *Variable) Operands() []Expression { return nil }
func (v *Variable) Taint() Taint        { return v.taint }

// Constant is a literal leaf: BoolConstant(bool) or BitVecConstant(width,
// value) with 0 <= value < 2^width.
type Constant struct {
	kind        Kind
	sort        Sort
	BoolValue   bool
	BitVecValue *big.Int // normalized modulo 2^width; nil for BoolConstant
	taint       Taint
}

func (c *Constant) Kind() Kind             { return c.kind }
func (c *Constant) Sort() Sort             { return c.sort }
func (c *Constant) Operands() []Expression { return nil }
func (c *Constant) Taint() Taint           { return c.taint }

// Operation is an internal node with an ordered operand list. Subkind is
// carried entirely by Kind; the few operators that need non-Expression
// parameters (Extract's bit range, SignExtend/ZeroExtend's width delta)
// store them alongside the operand list.
type Operation struct {
	kind     Kind
	sort     Sort
	operands []Expression
	taint    Taint

	// Begin, End: inclusive bit range for BitVecExtract (LSB = 0).
	Begin, End int
	// ExtendBy: additional width for SignExtend/ZeroExtend.
	ExtendBy int
}

func (o *Operation) Kind() Kind             { return o.kind }
func (o *Operation) Sort() Sort             { return o.sort }
func (o *Operation) Operands() []Expression { return o.operands }
func (o *Operation) Taint() Taint           { return o.taint }
