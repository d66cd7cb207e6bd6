// SPDX-License-Identifier: Apache-2.0

// Package smtlib serializes a term graph to SMT-LIB 2 S-expressions, with
// optional let-binding compression for subterms that are either shared
// (appear more than once) or long enough that inlining them everywhere
// would bloat the output.
package smtlib

import (
	"fmt"
	"strings"

	"bvterm/internal/rwerrors"
	"bvterm/internal/term"
	"bvterm/internal/visit"
)

// Options configures translation.
type Options struct {
	// UseLetBindings enables let-compression. Off by default renders a
	// fully inlined (and potentially exponential-size) expression.
	UseLetBindings bool
	// LengthThreshold is the rendered-string length above which a
	// once-used subterm is still worth a let binding. 0 selects a
	// sensible default.
	LengthThreshold int
}

const defaultLengthThreshold = 48

// Translator holds the naming counter and binding table for one
// translation. Each Translator is used for exactly one TranslateSMTLIB
// call; the counter lives on the instance rather than at package scope so
// concurrent translations never share (and race on) it.
type Translator struct {
	opts     Options
	counter  int
	bindings map[term.Expression]string // subterm -> let name, insertion order in order
	order    []term.Expression
	rendered map[term.Expression]string // subterm -> its own body (pre-substitution)
}

// TranslateSMTLIB renders x as an SMT-LIB 2 term.
func TranslateSMTLIB(x term.Expression, opts Options) string {
	if opts.LengthThreshold <= 0 {
		opts.LengthThreshold = defaultLengthThreshold
	}
	t := &Translator{opts: opts, bindings: make(map[term.Expression]string), rendered: make(map[term.Expression]string)}
	return t.translate(x)
}

func (t *Translator) translate(x term.Expression) string {
	counts := countUses(x)
	forced := storesUnderSelect(x)

	handlers := visit.Handler[string]{
		term.LevelVariable: func(x term.Expression, _ []string) string {
			return x.(*term.Variable).Name
		},
		term.LevelConstant: func(x term.Expression, _ []string) string {
			return renderConstant(x.(*term.Constant))
		},
		term.LevelOperation: func(x term.Expression, operandStrings []string) string {
			return t.renderOperation(x.(*term.Operation), operandStrings, counts, forced)
		},
	}

	body := visit.Run(x, handlers, nil)
	if !t.opts.UseLetBindings || len(t.order) == 0 {
		return body
	}
	return t.wrapLetBindings(body)
}

func countUses(root term.Expression) map[term.Expression]int {
	counts := make(map[term.Expression]int)
	var walk func(term.Expression)
	seen := make(map[term.Expression]bool)
	walk = func(x term.Expression) {
		counts[x]++
		if seen[x] {
			return
		}
		seen[x] = true
		for _, op := range x.Operands() {
			walk(op)
		}
	}
	walk(root)
	return counts
}

func (t *Translator) renderOperation(op *term.Operation, operandStrings []string, counts map[term.Expression]int, forced map[term.Expression]bool) string {
	s := renderSExpr(op, operandStrings)

	if !t.opts.UseLetBindings {
		return s
	}
	if name, already := t.bindings[op]; already {
		return name
	}

	if forced[op] || counts[op] > 1 || len(s) > t.opts.LengthThreshold {
		name := t.bindName()
		t.bindings[op] = name
		t.order = append(t.order, op)
		t.rendered[op] = s
		return name
	}
	return s
}

// storesUnderSelect marks every ArrayStore that is the array operand of
// an ArraySelect anywhere in the term: the one case where a let binding
// is forced regardless of size or sharing, since an unbound nested store
// chain feeding a select re-renders the whole chain at every select site.
func storesUnderSelect(root term.Expression) map[term.Expression]bool {
	forced := make(map[term.Expression]bool)
	seen := make(map[term.Expression]bool)
	var walk func(term.Expression)
	walk = func(x term.Expression) {
		if seen[x] {
			return
		}
		seen[x] = true
		if op, ok := x.(*term.Operation); ok {
			if op.Kind() == term.KindArraySelect {
				if store, ok := op.Operands()[0].(*term.Operation); ok && store.Kind() == term.KindArrayStore {
					forced[store] = true
				}
			}
			for _, o := range op.Operands() {
				walk(o)
			}
		}
	}
	walk(root)
	return forced
}

func (t *Translator) bindName() string {
	t.counter++
	return fmt.Sprintf("a_%d", t.counter)
}

// wrapLetBindings nests one (let ((name rendered)) ...) per binding, outer
// first. SMT-LIB's let binds its whole group in parallel, so a binding
// whose rendered form references an earlier name (exactly the case here,
// since t.order is already bottom-up) must sit in its own enclosing let
// rather than share one binding group with it.
func (t *Translator) wrapLetBindings(body string) string {
	result := body
	for i := len(t.order) - 1; i >= 0; i-- {
		subterm := t.order[i]
		name := t.bindings[subterm]
		result = fmt.Sprintf("(let ((%s %s)) %s)", name, t.rendered[subterm], result)
	}
	return result
}

// renderConstant formats a BitVecConstant as SMT-LIB bit-vector literal
// syntax (§4.10): #b0/#b1 for a single bit, otherwise #x followed by
// w/4 zero-padded hex digits (width must be a multiple of 4 for any
// non-unit width).
func renderConstant(c *term.Constant) string {
	if c.BitVecValue != nil {
		w := c.Sort().(term.BitVec).Width
		if w == 1 {
			return fmt.Sprintf("#b%s", c.BitVecValue.Text(2))
		}
		digits := w / 4
		return fmt.Sprintf("#x%0*x", digits, c.BitVecValue)
	}
	if c.BoolValue {
		return "true"
	}
	return "false"
}

var opSymbols = map[term.Kind]string{
	term.KindBoolNot: "not", term.KindBoolAnd: "and", term.KindBoolOr: "or",
	term.KindBoolXor: "xor", term.KindBoolEq: "=",
	term.KindBitVecAdd: "bvadd", term.KindBitVecSub: "bvsub", term.KindBitVecMul: "bvmul",
	term.KindBitVecDiv: "bvsdiv", term.KindBitVecUnsignedDiv: "bvudiv",
	term.KindBitVecMod: "bvsmod", term.KindBitVecRem: "bvsrem", term.KindBitVecUnsignedRem: "bvurem",
	term.KindBitVecShiftLeft: "bvshl", term.KindBitVecShiftRight: "bvlshr",
	term.KindBitVecArithmeticShiftLeft: "bvashl", term.KindBitVecArithmeticShiftRight: "bvashr",
	term.KindBitVecAnd: "bvand", term.KindBitVecOr: "bvor", term.KindBitVecXor: "bvxor",
	term.KindBitVecNot: "bvnot", term.KindBitVecNeg: "bvneg",
	term.KindLessThan: "bvslt", term.KindLessOrEqual: "bvsle",
	term.KindGreaterThan: "bvsgt", term.KindGreaterOrEqual: "bvsge",
	term.KindUnsignedLessThan: "bvult", term.KindUnsignedLessOrEqual: "bvule",
	term.KindUnsignedGreaterThan: "bvugt", term.KindUnsignedGreaterOrEqual: "bvuge",
	term.KindEqual: "=",
	term.KindArrayStore: "store", term.KindArraySelect: "select",
}

func renderSExpr(op *term.Operation, operandStrings []string) string {
	switch op.Kind() {
	case term.KindBoolITE, term.KindBitVecITE:
		return fmt.Sprintf("(ite %s %s %s)", operandStrings[0], operandStrings[1], operandStrings[2])
	case term.KindBitVecSignExtend:
		return fmt.Sprintf("((_ sign_extend %d) %s)", op.ExtendBy, operandStrings[0])
	case term.KindBitVecZeroExtend:
		return fmt.Sprintf("((_ zero_extend %d) %s)", op.ExtendBy, operandStrings[0])
	case term.KindBitVecExtract:
		return fmt.Sprintf("((_ extract %d %d) %s)", op.End, op.Begin, operandStrings[0])
	case term.KindBitVecConcat:
		return fmt.Sprintf("(concat %s)", strings.Join(operandStrings, " "))
	}
	sym, ok := opSymbols[op.Kind()]
	if !ok {
		rwerrors.Raise(nil, rwerrors.FaultUnknownOperator, fmt.Sprintf("no SMT-LIB symbol for operator %s", op.Kind()))
	}
	return fmt.Sprintf("(%s %s)", sym, strings.Join(operandStrings, " "))
}
