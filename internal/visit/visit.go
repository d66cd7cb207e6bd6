// SPDX-License-Identifier: Apache-2.0

// Package visit implements the generic post-order term-graph traversal
// shared by every concrete visitor (folding, simplification, queries,
// translation). A traversal visits every distinct subterm exactly once,
// children before parents, and looks up a handler by walking a term's
// dispatch chain from its most specific Kind down to the generic
// Expression level — the Go analogue of dispatching on a Python class's
// method-resolution order.
package visit

import "bvterm/internal/term"

// Handler maps dispatch Levels to a function computing a result of type V
// for a node given the already-computed results of its operands, in
// operand order. A traversal looks up the first Level in the node's
// DispatchChain that has an entry.
type Handler[V any] map[term.Level]func(x term.Expression, operandResults []V) V

// Dispatch finds the most specific handler registered for x's Kind and
// invokes it with operandResults. ok is false if no Level in the chain has
// a registered handler.
func Dispatch[V any](handlers Handler[V], x term.Expression, operandResults []V) (result V, ok bool) {
	for _, lvl := range term.DispatchChain(x.Kind()) {
		if fn, found := handlers[lvl]; found {
			return fn(x, operandResults), true
		}
	}
	var zero V
	return zero, false
}

// Run performs one iterative, memoized post-order traversal of root (an
// explicit work stack plus a map of per-node results) using handlers, visiting shared subterms once. cache may be nil to
// disable memoization. It panics with rwerrors.RwFault (via the caller's
// handlers, which hold the logger) only indirectly: Run itself never
// raises faults, since a missing handler simply falls through to the
// Expression-level default the caller is expected to register.
func Run[V any](root term.Expression, handlers Handler[V], cache *Cache[V]) V {
	type frame struct {
		node    term.Expression
		visited bool
	}

	work := []frame{{node: root}}
	results := make(map[term.Expression]V)

	for len(work) > 0 {
		top := work[len(work)-1]

		if cached, ok := lookup(cache, results, top.node); ok {
			work = work[:len(work)-1]
			results[top.node] = cached
			continue
		}

		if top.visited {
			work = work[:len(work)-1]
			operands := top.node.Operands()
			operandResults := make([]V, len(operands))
			for i, op := range operands {
				operandResults[i] = results[op]
			}
			v, _ := Dispatch(handlers, top.node, operandResults)
			results[top.node] = v
			store(cache, top.node, v)
			continue
		}

		work[len(work)-1].visited = true
		for _, op := range top.node.Operands() {
			if _, already := results[op]; !already {
				work = append(work, frame{node: op})
			}
		}
	}

	return results[root]
}

func lookup[V any](cache *Cache[V], results map[term.Expression]V, x term.Expression) (V, bool) {
	if v, ok := results[x]; ok {
		return v, true
	}
	if cache != nil {
		if v, ok := cache.Get(x); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func store[V any](cache *Cache[V], x term.Expression, v V) {
	if cache != nil {
		cache.Put(x, v)
	}
}

// FixedPoint repeatedly applies step to root and its successors until the
// result no longer changes (a step that rewrites nothing returns the same
// pointer, so pointer equality detects it — §8 property 1) or
// maxIterations is reached. maxIterations
// guards against a pair of rewrite rules that cycle instead of converging.
func FixedPoint(root term.Expression, step func(term.Expression) term.Expression, maxIterations int) term.Expression {
	cur := root
	for i := 0; i < maxIterations; i++ {
		next := step(cur)
		if next == cur {
			return cur
		}
		cur = next
	}
	return cur
}
