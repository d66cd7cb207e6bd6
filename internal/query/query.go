// SPDX-License-Identifier: Apache-2.0

// Package query implements the read-only and substitution operations that
// ride on top of the same post-order traversal as folding and
// simplification: collecting free variables, measuring term depth,
// pretty-printing, substituting variables for replacement terms, and
// evaluating a fully-constant term down to a Go value.
package query

import (
	"fmt"
	"strings"

	"bvterm/internal/simplify"
	"bvterm/internal/term"
	"bvterm/internal/visit"
)

// GetVariables returns the set of distinct Variable leaves reachable from
// x, deduplicated by name+sort (two Variable nodes with the same name and
// sort denote the same free variable, even if not pointer-identical).
func GetVariables(x term.Expression) []*term.Variable {
	seen := make(map[string]*term.Variable)
	order := []string{}

	handlers := visit.Handler[struct{}]{
		term.LevelVariable: func(x term.Expression, _ []struct{}) struct{} {
			v := x.(*term.Variable)
			key := v.Name + "/" + v.Sort().String()
			if _, ok := seen[key]; !ok {
				seen[key] = v
				order = append(order, key)
			}
			return struct{}{}
		},
		term.LevelConstant:  passthrough,
		term.LevelOperation: passthrough,
	}
	visit.Run(x, handlers, nil)

	result := make([]*term.Variable, 0, len(order))
	for _, key := range order {
		result = append(result, seen[key])
	}
	return result
}

func passthrough(_ term.Expression, _ []struct{}) struct{} { return struct{}{} }

// GetDepth returns the length of the longest root-to-leaf path, where a
// leaf has depth 1.
func GetDepth(x term.Expression) int {
	handlers := visit.Handler[int]{
		term.LevelVariable: func(_ term.Expression, _ []int) int { return 1 },
		term.LevelConstant: func(_ term.Expression, _ []int) int { return 1 },
		term.LevelOperation: func(_ term.Expression, operandDepths []int) int {
			max := 0
			for _, d := range operandDepths {
				if d > max {
					max = d
				}
			}
			return max + 1
		},
	}
	return visit.Run(x, handlers, nil)
}

// PrettyPrint renders x as an indented tree, one node per line (nesting
// shown by indentation only, without parentheses), truncating any subtree beyond maxDepth with "...". maxDepth
// <= 0 means unbounded.
func PrettyPrint(x term.Expression, maxDepth int) string {
	var b strings.Builder
	printNode(&b, x, 0, maxDepth)
	return b.String()
}

func printNode(b *strings.Builder, x term.Expression, depth, maxDepth int) {
	indent := strings.Repeat(" ", depth*2)
	if maxDepth > 0 && depth > maxDepth {
		fmt.Fprintf(b, "%s...\n", indent)
		return
	}
	switch v := x.(type) {
	case *term.Variable:
		fmt.Fprintf(b, "%s%s\n", indent, v.Name)
	case *term.Constant:
		if v.BitVecValue != nil {
			fmt.Fprintf(b, "%s0x%s\n", indent, v.BitVecValue.Text(16))
		} else {
			fmt.Fprintf(b, "%s%v\n", indent, v.BoolValue)
		}
	case *term.Operation:
		label := v.Kind().String()
		if v.Kind() == term.KindBitVecExtract {
			label = fmt.Sprintf("Extract{%d:%d}", v.Begin, v.End)
		}
		fmt.Fprintf(b, "%s%s\n", indent, label)
		for _, op := range v.Operands() {
			printNode(b, op, depth+1, maxDepth)
		}
	}
}

// Replace substitutes every Variable in x that matches a key in bindings
// (by name+sort) with its bound Expression, rebuilding ancestors along
// the way. Operand sorts are assumed compatible — callers are expected to
// bind a variable only to a same-sorted replacement.
func Replace(x term.Expression, bindings map[string]term.Expression) term.Expression {
	handlers := visit.Handler[term.Expression]{
		term.LevelVariable: func(x term.Expression, _ []term.Expression) term.Expression {
			v := x.(*term.Variable)
			if repl, ok := bindings[v.Name+"/"+v.Sort().String()]; ok {
				return repl
			}
			return x
		},
		term.LevelConstant: func(x term.Expression, _ []term.Expression) term.Expression { return x },
		term.LevelOperation: func(x term.Expression, operandResults []term.Expression) term.Expression {
			op := x.(*term.Operation)
			if term.SameOperands(op, operandResults) {
				return op
			}
			rebuilt, err := term.Rebuild(op, operandResults)
			if err != nil {
				return op
			}
			return rebuilt
		},
	}
	return visit.Run(x, handlers, nil)
}

// ToConstant fully simplifies x and returns its Go value: a *big.Int or
// bool if it reduced to a Constant, a []byte if it reduced to a fully
// concrete array, or otherwise the simplified term.Expression itself. ok
// is true in every case — simplification never fails, it just may not
// reach a Constant (typically when x contains an unresolved ArraySelect
// over a symbolic index); callers that only care about the concrete
// cases can type-switch on the returned value.
func ToConstant(x term.Expression) (any, bool) {
	s := simplify.New()
	reduced := s.Simplify(x)
	if c, ok := reduced.(*term.Constant); ok {
		if c.BitVecValue != nil {
			return c.BitVecValue, true
		}
		return c.BoolValue, true
	}
	if _, isArray := reduced.Sort().(term.Array); isArray {
		if bytes, ok := arrayBytes(reduced); ok {
			return bytes, true
		}
	}
	return reduced, true
}

// arrayBytes walks a concrete ArrayStore chain rooted at an
// ArrayVariable with a bounded IndexMax, extracting one byte per index
// 0..IndexMax. It silently gives up (returns ok=false) the moment it
// meets a non-constant index or value anywhere in the chain, since a
// partially-concrete array isn't a byte sequence.
func arrayBytes(x term.Expression) ([]byte, bool) {
	var base *term.Variable
	stores := []*term.Operation{}

	cur := x
	for {
		switch v := cur.(type) {
		case *term.Variable:
			base = v
		case *term.Operation:
			if v.Kind() != term.KindArrayStore {
				return nil, false
			}
			stores = append(stores, v)
			cur = v.Operands()[0]
			continue
		default:
			return nil, false
		}
		break
	}
	if base == nil || base.IndexMax == nil {
		return nil, false
	}

	out := make([]byte, *base.IndexMax+1)
	written := make([]bool, len(out))
	for i := len(stores) - 1; i >= 0; i-- {
		idxC, ok := asConstIndex(stores[i].Operands()[1])
		if !ok {
			return nil, false
		}
		valC, ok := asConstByte(stores[i].Operands()[2])
		if !ok {
			return nil, false
		}
		if idxC < 0 || idxC >= len(out) {
			continue
		}
		out[idxC] = valC
		written[idxC] = true
	}
	for _, w := range written {
		if !w {
			return nil, false
		}
	}
	return out, true
}

func asConstIndex(x term.Expression) (int, bool) {
	c, ok := x.(*term.Constant)
	if !ok || c.BitVecValue == nil || !c.BitVecValue.IsInt64() {
		return 0, false
	}
	return int(c.BitVecValue.Int64()), true
}

func asConstByte(x term.Expression) (byte, bool) {
	c, ok := x.(*term.Constant)
	if !ok || c.BitVecValue == nil {
		return 0, false
	}
	return byte(c.BitVecValue.Uint64()), true
}
