// SPDX-License-Identifier: Apache-2.0
package query

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bvterm/internal/term"
)

func TestGetVariablesDeduplicates(t *testing.T) {
	x1 := term.NewBitVecVariable("x", 32)
	x2 := term.NewBitVecVariable("x", 32)
	sum, err := term.NewBitVecAdd(x1, x2)
	require.NoError(t, err)

	vars := GetVariables(sum)
	assert.Len(t, vars, 1, "x and a second x/32 node denote the same free variable")
}

func TestGetVariablesSkipsConstants(t *testing.T) {
	c := term.NewBitVecConstantU64(32, 7)
	assert.Empty(t, GetVariables(c))
}

func TestGetDepthOfLeafIsOne(t *testing.T) {
	x := term.NewBitVecVariable("x", 32)
	assert.Equal(t, 1, GetDepth(x))
}

func TestGetDepthTakesMaxBranch(t *testing.T) {
	x := term.NewBitVecVariable("x", 8)
	y := term.NewBitVecVariable("y", 8)
	shallow, err := term.NewBitVecAdd(x, y) // depth 2
	require.NoError(t, err)
	deep, err := term.NewBitVecNot(shallow) // depth 3
	require.NoError(t, err)
	ite, err := term.NewBitVecITE(term.NewBoolVariable("c"), deep, x)
	require.NoError(t, err)

	assert.Equal(t, 4, GetDepth(ite))
}

func TestPrettyPrintLabelsExtractWithItsRange(t *testing.T) {
	x := term.NewBitVecVariable("x", 32)
	extract, err := term.NewBitVecExtract(x, 0, 7)
	require.NoError(t, err)

	out := PrettyPrint(extract, 0)
	assert.Contains(t, out, "Extract{0:7}")
	assert.Contains(t, out, "x")
}

func TestPrettyPrintTruncatesBeyondMaxDepth(t *testing.T) {
	x := term.NewBitVecVariable("x", 8)
	y := term.NewBitVecVariable("y", 8)
	sum, err := term.NewBitVecAdd(x, y)
	require.NoError(t, err)
	not, err := term.NewBitVecNot(sum)
	require.NoError(t, err)

	out := PrettyPrint(not, 1)
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "x")
}

func TestReplaceSubstitutesByNameAndSort(t *testing.T) {
	x := term.NewBitVecVariable("x", 32)
	y := term.NewBitVecVariable("y", 32)
	sum, err := term.NewBitVecAdd(x, y)
	require.NoError(t, err)

	replacement := term.NewBitVecConstantU64(32, 42)
	bindings := map[string]term.Expression{
		"x/BitVec(32)": replacement,
	}
	result := Replace(sum, bindings)

	op, ok := result.(*term.Operation)
	require.True(t, ok)
	assert.Equal(t, term.Expression(replacement), op.Operands()[0])
	assert.Equal(t, term.Expression(y), op.Operands()[1])
}

func TestReplaceLeavesUnboundVariablesAlone(t *testing.T) {
	x := term.NewBitVecVariable("x", 32)
	assert.Equal(t, term.Expression(x), Replace(x, map[string]term.Expression{}))
}

func TestToConstantOnGroundArithmetic(t *testing.T) {
	a := term.NewBitVecConstantU64(8, 3)
	b := term.NewBitVecConstantU64(8, 4)
	sum, err := term.NewBitVecAdd(a, b)
	require.NoError(t, err)

	val, ok := ToConstant(sum)
	require.True(t, ok)
	bi, ok := val.(*big.Int)
	require.True(t, ok)
	assert.Equal(t, int64(7), bi.Int64())
}

func TestToConstantOnBoolGround(t *testing.T) {
	eq, err := term.NewEqual(term.NewBitVecConstantU64(8, 1), term.NewBitVecConstantU64(8, 1))
	require.NoError(t, err)

	val, ok := ToConstant(eq)
	require.True(t, ok)
	assert.Equal(t, true, val)
}

func TestToConstantOnFreeVariableReturnsSimplifiedTerm(t *testing.T) {
	x := term.NewBitVecVariable("x", 8)
	value, ok := ToConstant(x)
	assert.True(t, ok)
	assert.Equal(t, term.Expression(x), value)
}

func TestToConstantExtractsArrayBytes(t *testing.T) {
	indexMax := 1
	arr := term.NewArrayVariable("mem", 8, 8, &indexMax)
	idx0 := term.NewBitVecConstantU64(8, 0)
	idx1 := term.NewBitVecConstantU64(8, 1)
	v0 := term.NewBitVecConstantU64(8, 0xde)
	v1 := term.NewBitVecConstantU64(8, 0xad)

	s0, err := term.NewArrayStore(arr, idx0, v0)
	require.NoError(t, err)
	s1, err := term.NewArrayStore(s0, idx1, v1)
	require.NoError(t, err)

	val, ok := ToConstant(s1)
	require.True(t, ok)
	bytes, ok := val.([]byte)
	require.True(t, ok)
	assert.Equal(t, []byte{0xde, 0xad}, bytes)
}

func TestToConstantOnPartiallyWrittenArrayReturnsSimplifiedTerm(t *testing.T) {
	indexMax := 2
	arr := term.NewArrayVariable("mem", 8, 8, &indexMax)
	idx0 := term.NewBitVecConstantU64(8, 0)
	v0 := term.NewBitVecConstantU64(8, 0xde)

	s0, err := term.NewArrayStore(arr, idx0, v0)
	require.NoError(t, err)

	// Only index 0 of a 3-element array is written; indices 1 and 2
	// remain symbolic, so this must not report partial bytes: it falls
	// through to the simplified-term case instead.
	value, ok := ToConstant(s0)
	assert.True(t, ok)
	assert.NotNil(t, value)
	_, isBytes := value.([]byte)
	assert.False(t, isBytes)
}
