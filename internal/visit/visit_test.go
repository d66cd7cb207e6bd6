// SPDX-License-Identifier: Apache-2.0
package visit

import (
	"testing"

	"bvterm/internal/term"
)

func TestRunVisitsSharedSubtermOnce(t *testing.T) {
	x := term.NewBitVecVariable("x", 8)
	visits := 0

	handlers := Handler[int]{
		term.LevelVariable: func(_ term.Expression, _ []int) int {
			visits++
			return 1
		},
		term.LevelOperation: func(_ term.Expression, operandResults []int) int {
			sum := 0
			for _, r := range operandResults {
				sum += r
			}
			return sum
		},
	}

	sum, err := term.NewBitVecAdd(x, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := Run[int](sum, handlers, nil)
	if result != 2 {
		t.Fatalf("expected 2, got %d", result)
	}
	if visits != 1 {
		t.Fatalf("expected shared operand to be visited once, visited %d times", visits)
	}
}

func TestFixedPointConvergesOnNoChange(t *testing.T) {
	x := term.NewBitVecVariable("x", 8)
	calls := 0
	step := func(e term.Expression) term.Expression {
		calls++
		return e
	}
	result := FixedPoint(x, step, 10)
	if result != x {
		t.Fatal("expected fixed point to return the same pointer")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one step call once step stabilizes, got %d", calls)
	}
}

func TestFixedPointStopsAtMaxIterations(t *testing.T) {
	x := term.NewBitVecConstantU64(8, 0)
	calls := 0
	// step never converges; FixedPoint must still terminate.
	step := func(e term.Expression) term.Expression {
		calls++
		return term.NewBitVecConstantU64(8, uint64(calls))
	}
	FixedPoint(x, step, 5)
	if calls != 5 {
		t.Fatalf("expected exactly maxIterations calls, got %d", calls)
	}
}
