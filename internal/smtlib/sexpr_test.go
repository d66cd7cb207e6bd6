// SPDX-License-Identifier: Apache-2.0
package smtlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSExprAtom(t *testing.T) {
	s, err := ParseSExpr("x")
	require.NoError(t, err)
	require.NotNil(t, s.Atom)
	assert.Equal(t, "x", *s.Atom)
	assert.Equal(t, 1, s.NodeCount())
}

func TestParseSExprNestedList(t *testing.T) {
	s, err := ParseSExpr("(bvadd x #x05)")
	require.NoError(t, err)
	require.Nil(t, s.Atom)
	require.Len(t, s.List, 3)
	assert.Equal(t, "bvadd", *s.List[0].Atom)
	assert.Equal(t, "x", *s.List[1].Atom)
	require.NotNil(t, s.List[2].Atom)
	assert.Equal(t, "#x05", *s.List[2].Atom)
}

func TestParseSExprBitVectorLiterals(t *testing.T) {
	hex, err := ParseSExpr("#x0f")
	require.NoError(t, err)
	require.NotNil(t, hex.Atom)
	assert.Equal(t, "#x0f", *hex.Atom)

	bin, err := ParseSExpr("#b1")
	require.NoError(t, err)
	require.NotNil(t, bin.Atom)
	assert.Equal(t, "#b1", *bin.Atom)
}

func TestParseSExprNodeCountMatchesStructure(t *testing.T) {
	s, err := ParseSExpr("(a (b c) d)")
	require.NoError(t, err)
	// root + a + (b c) + b + c + d = 6
	assert.Equal(t, 6, s.NodeCount())
}

func TestParseSExprRejectsUnbalancedParens(t *testing.T) {
	_, err := ParseSExpr("(a b")
	assert.Error(t, err)
}

func TestNodeCountOfNilIsZero(t *testing.T) {
	var s *SExpr
	assert.Equal(t, 0, s.NodeCount())
}
