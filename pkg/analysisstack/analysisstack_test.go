package analysisstack_test

import (
	"testing"

	"github.com/contract-ace/smartace-sub002/pkg/analysisstack"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/stretchr/testify/require"
)

func block(stmts ...ast.Statement) *ast.Block { return &ast.Block{Statements: stmts} }

func TestBuildAssemblesFullStackForASimpleContract(t *testing.T) {
	t.Parallel()

	g := &ast.FunctionDefinition{Name: "helper", Visibility: ast.VisibilityPrivate, IsImplemented: true}
	f := &ast.FunctionDefinition{
		Name:          "f",
		Visibility:    ast.VisibilityPublic,
		IsImplemented: true,
		Body: block(&ast.ExpressionStatement{Expression: &ast.FunctionCall{
			Callee: &ast.Identifier{Name: "helper"},
		}}),
	}
	c := &ast.ContractDefinition{Name: "C", Functions: []*ast.FunctionDefinition{f, g}}
	c.LinearizedBaseContracts = []*ast.ContractDefinition{c}
	f.Contract, g.Contract = c, c

	units := []*ast.SourceUnit{{Path: "x.sol", Contracts: []*ast.ContractDefinition{c}}}

	stack, result, err := analysisstack.Build(units, []string{"C"})
	require.NoError(t, err)
	require.Empty(t, result.Missing)
	require.NotNil(t, stack)

	require.ElementsMatch(t, []*ast.FunctionDefinition{f, g}, stack.CallGraph.ExecutedCode())
	require.Equal(t, 1, stack.Tree.Size())
	require.Equal(t, 1, stack.AddressSpace.MaxAddr)
	require.Empty(t, stack.Libraries)
}

func TestBuildFlattensEveryBundledContractRegardlessOfGoroutineOrder(t *testing.T) {
	t.Parallel()

	a := &ast.ContractDefinition{Name: "A"}
	a.LinearizedBaseContracts = []*ast.ContractDefinition{a}
	b := &ast.ContractDefinition{Name: "B"}
	b.LinearizedBaseContracts = []*ast.ContractDefinition{b}
	cDef := &ast.ContractDefinition{Name: "C"}
	cDef.LinearizedBaseContracts = []*ast.ContractDefinition{cDef}

	units := []*ast.SourceUnit{{Path: "x.sol", Contracts: []*ast.ContractDefinition{a, b, cDef}}}

	stack, result, err := analysisstack.Build(units, []string{"A", "B", "C"})
	require.NoError(t, err)
	require.Empty(t, result.Missing)
	require.Len(t, stack.Flats, 3)
	require.NotNil(t, stack.Flats[a])
	require.NotNil(t, stack.Flats[b])
	require.NotNil(t, stack.Flats[cDef])
}

func TestBuildReturnsMissingNamesButStillBuildsAnEmptyStack(t *testing.T) {
	t.Parallel()

	stack, result, err := analysisstack.Build(nil, []string{"Ghost"})
	require.NoError(t, err)
	require.NotNil(t, stack)
	require.Equal(t, []string{"Ghost"}, result.Missing)
	require.Equal(t, 0, stack.Tree.Size())
}

func TestBuildContinuesWithTheResolvedSubsetWhenSomeNamesAreMissing(t *testing.T) {
	t.Parallel()

	c := &ast.ContractDefinition{Name: "C"}
	c.LinearizedBaseContracts = []*ast.ContractDefinition{c}
	units := []*ast.SourceUnit{{Path: "x.sol", Contracts: []*ast.ContractDefinition{c}}}

	stack, result, err := analysisstack.Build(units, []string{"C", "Ghost"})
	require.NoError(t, err)
	require.NotNil(t, stack)
	require.Equal(t, []string{"Ghost"}, result.Missing)
	require.Equal(t, []*ast.ContractDefinition{c}, result.Contracts)
	require.Equal(t, 1, stack.Tree.Size())
}
