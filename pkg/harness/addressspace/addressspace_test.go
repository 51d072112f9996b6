package addressspace_test

import (
	"testing"

	"github.com/contract-ace/smartace-sub002/pkg/harness/addressspace"
	"github.com/stretchr/testify/require"
)

func TestZeroLiteralIsPinnedNotNonDeterministic(t *testing.T) {
	t.Parallel()
	s := addressspace.Build(4, []string{"0"})
	require.Equal(t, 1, addressspace.MinAddr)
	require.Len(t, s.Assignments, 1)
	require.False(t, s.Assignments[0].NonZero)
	require.Empty(t, s.Constraints)
}

func TestPairwiseDistinctConstraintsAreQuadraticOverNonZeroLiterals(t *testing.T) {
	t.Parallel()
	s := addressspace.Build(8, []string{"0xa", "0xb", "0xc"})
	require.Len(t, s.Assignments, 3)
	require.ElementsMatch(t, []addressspace.Constraint{
		{A: "0xa", B: "0xb"},
		{A: "0xa", B: "0xc"},
		{A: "0xb", B: "0xc"},
	}, s.Constraints)
}

func TestZeroLiteralNeverParticipatesInConstraints(t *testing.T) {
	t.Parallel()
	s := addressspace.Build(8, []string{"0", "0xa", "0xb"})
	for _, c := range s.Constraints {
		require.NotEqual(t, "0", c.A)
		require.NotEqual(t, "0", c.B)
	}
	require.Len(t, s.Constraints, 1)
}
