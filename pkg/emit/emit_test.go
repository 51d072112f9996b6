package emit_test

import (
	"bytes"
	"testing"

	"github.com/contract-ace/smartace-sub002/pkg/emit"
	"github.com/stretchr/testify/require"
)

func TestLineIndentsAndAppendsNoTerminator(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := emit.New(&buf)
	p.Indented(func() {
		p.Line("struct Foo {")
	})
	require.Equal(t, "  struct Foo {\n", buf.String())
}

func TestStmtAppendsTerminatorUnlessSuppressed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := emit.New(&buf)
	p.Stmt("return x")
	require.Equal(t, "return x;\n", buf.String())

	buf.Reset()
	p.SuppressTerminator(func() {
		p.Stmt("x = y")
	})
	require.Equal(t, "x = y\n", buf.String())
}

func TestSwapRedirectsAndRestores(t *testing.T) {
	t.Parallel()
	var main, sub bytes.Buffer
	p := emit.New(&main)

	restore := p.Swap(&sub)
	p.Line("inner")
	restore()
	p.Line("outer")

	require.Equal(t, "inner\n", sub.String())
	require.Equal(t, "outer\n", main.String())
}

func TestSuppressedNestingRestoresPreviousFlag(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := emit.New(&buf)

	p.SuppressTerminator(func() {
		require.True(t, p.Suppressed())
		p.SuppressTerminator(func() {
			require.True(t, p.Suppressed())
		})
		require.True(t, p.Suppressed())
	})
	require.False(t, p.Suppressed())
}
