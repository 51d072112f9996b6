package exprtype_test

import (
	"testing"

	"github.com/contract-ace/smartace-sub002/pkg/analysis/allocation"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/exprtype"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/stretchr/testify/require"
)

func TestResolveNewExpression(t *testing.T) {
	t.Parallel()
	impl := &ast.ContractDefinition{Name: "Impl"}
	owner := &ast.ContractDefinition{Name: "Owner"}

	a := exprtype.New(nil)
	got, ok := a.Resolve(owner, &ast.NewExpression{Definition: impl})
	require.True(t, ok)
	require.Same(t, impl, got)
}

func TestResolveThisField(t *testing.T) {
	t.Parallel()

	iface := &ast.ContractDefinition{Name: "I", Kind: ast.KindInterface}
	impl := &ast.ContractDefinition{Name: "Impl"}
	field := &ast.VariableDeclaration{Name: "dep", Type: ast.ContractType{Definition: iface}, Value: &ast.NewExpression{Definition: impl}}
	owner := &ast.ContractDefinition{Name: "Owner", StateVariables: []*ast.VariableDeclaration{field}}
	owner.LinearizedBaseContracts = []*ast.ContractDefinition{owner}

	g, err := allocation.Build([]*ast.ContractDefinition{owner})
	require.NoError(t, err)

	a := exprtype.New(g)

	byIdent, ok := a.Resolve(owner, &ast.Identifier{Name: "dep"})
	require.True(t, ok)
	require.Same(t, impl, byIdent)

	byMember, ok := a.Resolve(owner, &ast.MemberAccess{Base: &ast.Identifier{Name: "this"}, Member: "dep"})
	require.True(t, ok)
	require.Same(t, impl, byMember)
}

func TestResolveFallsBackToStaticType(t *testing.T) {
	t.Parallel()
	iface := &ast.ContractDefinition{Name: "I", Kind: ast.KindInterface}
	owner := &ast.ContractDefinition{Name: "Owner"}

	a := exprtype.New(nil)
	expr := &ast.Identifier{Name: "unknown", ExprType: ast.ExprType{Type: ast.ContractType{Definition: iface}}}
	got, ok := a.Resolve(owner, expr)
	require.True(t, ok)
	require.Same(t, iface, got)
}
