// SPDX-License-Identifier: Apache-2.0
package term

import (
	"fmt"
	"sort"
	"strings"
)

// Interner hash-conses Expressions so that structurally (and taint-)
// equal terms share one pointer. The New* constructors do not call it:
// each constructor call allocates a fresh node, so visitor caches (keyed
// on pointer identity) share work only between pointer-identical
// subterms unless a caller interns terms itself.
type Interner struct {
	table map[string]Expression
}

func NewInterner() *Interner {
	return &Interner{table: make(map[string]Expression)}
}

// Intern returns the canonical pointer for an expression structurally
// equal to x, registering x itself the first time its shape is seen.
func (in *Interner) Intern(x Expression) Expression {
	key := structuralKey(x)
	if existing, ok := in.table[key]; ok {
		return existing
	}
	in.table[key] = x
	return x
}

// structuralKey builds a string uniquely identifying kind, sort, leaf
// payload, operand identity (by nested key, not by pointer) and taint.
// It is a construction-time cost paid once per fresh shape; interned
// operands make nested keys cheap since equal subterms already share
// one pointer and the same key is recomputed only for genuinely new
// shapes.
func structuralKey(x Expression) string {
	var b strings.Builder
	writeKey(&b, x)
	return b.String()
}

func writeKey(b *strings.Builder, x Expression) {
	fmt.Fprintf(b, "%d:%s[", x.Kind(), x.Sort())
	switch v := x.(type) {
	case *Variable:
		fmt.Fprintf(b, "name=%s", v.Name)
	case *Constant:
		if v.BitVecValue != nil {
			fmt.Fprintf(b, "val=%s", v.BitVecValue.String())
		} else {
			fmt.Fprintf(b, "val=%v", v.BoolValue)
		}
	case *Operation:
		if v.Kind() == KindBitVecExtract {
			fmt.Fprintf(b, "begin=%d,end=%d;", v.Begin, v.End)
		}
		if v.Kind() == KindBitVecSignExtend || v.Kind() == KindBitVecZeroExtend {
			fmt.Fprintf(b, "extendBy=%d;", v.ExtendBy)
		}
		for i, op := range v.Operands() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeKey(b, op)
		}
	}
	b.WriteString("]taint{")
	tags := make([]string, 0, len(x.Taint()))
	for tag := range x.Taint() {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(b, "%s,", tag)
	}
	b.WriteByte('}')
}
