package metrics_test

import (
	"testing"

	"github.com/contract-ace/smartace-sub002/pkg/analysisstack"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func TestFromStackSummarisesAnAssembledStack(t *testing.T) {
	t.Parallel()

	c := &ast.ContractDefinition{Name: "C"}
	c.LinearizedBaseContracts = []*ast.ContractDefinition{c}
	f := &ast.FunctionDefinition{Name: "f", Visibility: ast.VisibilityPublic, IsImplemented: true, Body: &ast.Block{}}
	c.Functions = []*ast.FunctionDefinition{f}
	f.Contract = c

	units := []*ast.SourceUnit{{Path: "c.sol", Contracts: []*ast.ContractDefinition{c}}}
	stack, result, err := analysisstack.Build(units, []string{"C"})
	require.NoError(t, err)
	require.Empty(t, result.Missing)

	snap := metrics.FromStack(stack)
	require.Equal(t, 1, snap.BundleSize)
	require.Equal(t, 1, snap.ExecutedFunctions)
	require.Equal(t, 0, snap.Libraries)
	require.Equal(t, 0, snap.MapViolations)
	require.Equal(t, 0, snap.StringCodes)
}

func TestRecordAcceptsASnapshotWithoutPanicking(t *testing.T) {
	metrics.Record(metrics.Snapshot{BundleSize: 3, ExecutedFunctions: 7, Libraries: 1, MapViolations: 2, StringCodes: 5})
}
