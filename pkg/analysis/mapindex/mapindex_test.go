package mapindex_test

import (
	"testing"

	"github.com/contract-ace/smartace-sub002/pkg/analysis/mapindex"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/stretchr/testify/require"
)

var addrT = ast.ElementaryType{IsAddress: true, Bits: 160}
var uintT = ast.ElementaryType{Bits: 256, Signed: false}

func addrLit(v string) *ast.Literal {
	return &ast.Literal{ExprType: ast.ExprType{Type: addrT}, Kind: ast.LiteralAddress, Value: v}
}

func addrIdent(name string) *ast.Identifier {
	return &ast.Identifier{ExprType: ast.ExprType{Type: addrT}, Name: name}
}

func fnWith(body *ast.Block) *ast.FunctionDefinition {
	return &ast.FunctionDefinition{Name: "f", Body: body}
}

func TestCastFromAddressToIntegerIsAViolation(t *testing.T) {
	t.Parallel()
	cast := &ast.CastExpression{ExprType: ast.ExprType{Type: uintT}, Target: uintT, Argument: addrIdent("a")}
	fn := fnWith(&ast.Block{Statements: []ast.Statement{&ast.ExpressionStatement{Expression: cast}}})

	s := mapindex.Build([]*ast.FunctionDefinition{fn}, nil)
	require.Len(t, s.Violations, 1)
	require.Equal(t, mapindex.Cast, s.Violations[0].Kind)
	require.Same(t, fn, s.Violations[0].Function)
}

func TestArithmeticOnAddressIsMutateViolation(t *testing.T) {
	t.Parallel()
	bin := &ast.BinaryOperation{ExprType: ast.ExprType{Type: addrT}, Operator: ast.OpAdd, Left: addrIdent("a"), Right: &ast.Literal{ExprType: ast.ExprType{Type: uintT}, Kind: ast.LiteralNumber, Value: "1"}}
	fn := fnWith(&ast.Block{Statements: []ast.Statement{&ast.ExpressionStatement{Expression: bin}}})

	s := mapindex.Build([]*ast.FunctionDefinition{fn}, nil)
	require.Len(t, s.Violations, 1)
	require.Equal(t, mapindex.Mutate, s.Violations[0].Kind)
}

func TestOrderingComparisonOnAddressIsCompareViolation(t *testing.T) {
	t.Parallel()
	bin := &ast.BinaryOperation{ExprType: ast.ExprType{Type: ast.ElementaryType{IsBool: true}}, Operator: ast.OpLT, Left: addrIdent("a"), Right: addrIdent("b")}
	fn := fnWith(&ast.Block{Statements: []ast.Statement{&ast.ExpressionStatement{Expression: bin}}})

	s := mapindex.Build([]*ast.FunctionDefinition{fn}, nil)
	require.Len(t, s.Violations, 1)
	require.Equal(t, mapindex.Compare, s.Violations[0].Kind)
}

func TestEqualityComparisonOnAddressIsNotAViolation(t *testing.T) {
	t.Parallel()
	bin := &ast.BinaryOperation{ExprType: ast.ExprType{Type: ast.ElementaryType{IsBool: true}}, Operator: ast.OpEQ, Left: addrIdent("a"), Right: addrIdent("b")}
	fn := fnWith(&ast.Block{Statements: []ast.Statement{&ast.ExpressionStatement{Expression: bin}}})

	s := mapindex.Build([]*ast.FunctionDefinition{fn}, nil)
	require.Empty(t, s.Violations)
}

func TestIncrementOnAddressIsMutateViolation(t *testing.T) {
	t.Parallel()
	un := &ast.UnaryOperation{ExprType: ast.ExprType{Type: addrT}, Operator: ast.OpIncrement, Operand: addrIdent("a"), Prefix: true}
	fn := fnWith(&ast.Block{Statements: []ast.Statement{&ast.ExpressionStatement{Expression: un}}})

	s := mapindex.Build([]*ast.FunctionDefinition{fn}, nil)
	require.Len(t, s.Violations, 1)
	require.Equal(t, mapindex.Mutate, s.Violations[0].Kind)
}

func TestLiteralAddressesAreCollectedOncePerValue(t *testing.T) {
	t.Parallel()
	stmt := &ast.ExpressionStatement{Expression: &ast.BinaryOperation{
		ExprType: ast.ExprType{Type: ast.ElementaryType{IsBool: true}},
		Operator: ast.OpEQ,
		Left:     addrLit("0xdead"),
		Right:    addrLit("0xdead"),
	}}
	another := &ast.ExpressionStatement{Expression: addrLit("0x0")}
	fn := fnWith(&ast.Block{Statements: []ast.Statement{stmt, another}})

	s := mapindex.Build([]*ast.FunctionDefinition{fn}, nil)
	require.Equal(t, []string{"0xdead", "0x0"}, s.Literals)
}

func TestWellFormedAddressLiteralsAreCanonicalisedAndDeduplicated(t *testing.T) {
	t.Parallel()
	lower := "0x00000000000000000000000000000000000000ab"
	upper := "0x00000000000000000000000000000000000000AB"
	stmt := &ast.ExpressionStatement{Expression: &ast.BinaryOperation{
		ExprType: ast.ExprType{Type: ast.ElementaryType{IsBool: true}},
		Operator: ast.OpEQ,
		Left:     addrLit(lower),
		Right:    addrLit(upper),
	}}
	fn := fnWith(&ast.Block{Statements: []ast.Statement{stmt}})

	s := mapindex.Build([]*ast.FunctionDefinition{fn}, nil)
	require.Len(t, s.Literals, 1, "differently-cased spellings of the same address should collapse to one literal")
}

func TestStateVariableInitialiserIsScannedWithNilFunction(t *testing.T) {
	t.Parallel()
	cast := &ast.CastExpression{ExprType: ast.ExprType{Type: uintT}, Target: uintT, Argument: addrIdent("owner")}
	v := &ast.VariableDeclaration{Name: "x", Type: uintT, Value: cast, IsStateVariable: true}

	s := mapindex.Build(nil, []*ast.VariableDeclaration{v})
	require.Len(t, s.Violations, 1)
	require.Nil(t, s.Violations[0].Function)
}
