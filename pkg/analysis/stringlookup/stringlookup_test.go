package stringlookup_test

import (
	"testing"

	"github.com/contract-ace/smartace-sub002/pkg/analysis/stringlookup"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/stretchr/testify/require"
)

var strT = ast.StringType{}

func strLit(v string) *ast.Literal {
	return &ast.Literal{ExprType: ast.ExprType{Type: strT}, Kind: ast.LiteralString, Value: v}
}

func TestEmptyStringIsPreassignedZero(t *testing.T) {
	t.Parallel()
	lit := strLit("")
	fn := &ast.FunctionDefinition{Name: "f", Body: &ast.Block{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: lit},
	}}}

	l, err := stringlookup.Build([]*ast.FunctionDefinition{fn}, nil)
	require.NoError(t, err)

	code, err := l.Code(lit)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Empty(t, l.Values())
}

func TestDistinctStringsGetDistinctAscendingCodes(t *testing.T) {
	t.Parallel()
	a, b := strLit("alpha"), strLit("beta")
	fn := &ast.FunctionDefinition{Name: "f", Body: &ast.Block{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: a},
		&ast.ExpressionStatement{Expression: b},
	}}}

	l, err := stringlookup.Build([]*ast.FunctionDefinition{fn}, nil)
	require.NoError(t, err)

	ca, err := l.Code(a)
	require.NoError(t, err)
	cb, err := l.Code(b)
	require.NoError(t, err)

	require.Equal(t, 1, ca)
	require.Equal(t, 2, cb)
	require.Equal(t, []string{"alpha", "beta"}, l.Values())
}

func TestRepeatedLiteralGetsSameCode(t *testing.T) {
	t.Parallel()
	first, second := strLit("dup"), strLit("dup")
	fn := &ast.FunctionDefinition{Name: "f", Body: &ast.Block{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: first},
		&ast.ExpressionStatement{Expression: second},
	}}}

	l, err := stringlookup.Build([]*ast.FunctionDefinition{fn}, nil)
	require.NoError(t, err)

	c1, err := l.Code(first)
	require.NoError(t, err)
	c2, err := l.Code(second)
	require.NoError(t, err)
	require.Equal(t, c1, c2)
	require.Equal(t, []string{"dup"}, l.Values())
}

func TestStateVariableInitialiserStringIsVisited(t *testing.T) {
	t.Parallel()
	lit := strLit("greeting")
	v := &ast.VariableDeclaration{Name: "g", Type: strT, Value: lit, IsStateVariable: true}

	l, err := stringlookup.Build(nil, []*ast.VariableDeclaration{v})
	require.NoError(t, err)

	code, err := l.Code(lit)
	require.NoError(t, err)
	require.Equal(t, 1, code)
}

func TestCodeOfNonStringLiteralFails(t *testing.T) {
	t.Parallel()
	numLit := &ast.Literal{ExprType: ast.ExprType{Type: ast.ElementaryType{Bits: 256}}, Kind: ast.LiteralNumber, Value: "42"}

	l, err := stringlookup.Build(nil, nil)
	require.NoError(t, err)

	_, err = l.Code(numLit)
	require.Error(t, err)
}
