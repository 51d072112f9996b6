// Package mapindex implements the map index summary of spec §4.7: it
// tracks whether a contract treats address-typed values as abstract
// tokens (the expected discipline for a bundle's address space) or as
// plain integers, and collects every address literal the contract
// mentions so the address-space generator (§4.10) can give each one a
// concrete, collision-free value.
package mapindex

import (
	"github.com/contract-ace/smartace-sub002/pkg/analysis/typeinfo"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/walk"
	"github.com/ethereum/go-ethereum/common"
)

// Kind distinguishes the three ways a contract can break the
// address-as-abstract-token discipline.
type Kind int

const (
	// Cast: an address value is converted to a non-address integer.
	Cast Kind = iota
	// Mutate: an arithmetic operator is applied to an address value.
	Mutate
	// Compare: an ordering operator is applied to an address value.
	// Equality is permitted and never flagged.
	Compare
)

func (k Kind) String() string {
	switch k {
	case Cast:
		return "cast"
	case Mutate:
		return "mutate"
	case Compare:
		return "compare"
	default:
		return "unknown"
	}
}

// Violation records one offending use of an address value, and the
// function it occurred in (nil for a state-variable initialiser, which
// has no enclosing function).
type Violation struct {
	Kind     Kind
	Function *ast.FunctionDefinition
	Site     ast.Expression
}

// Summary is the per-contract result: every violation found, and every
// distinct address literal mentioned, in first-occurrence order.
type Summary struct {
	Violations []Violation
	Literals   []string
}

// Build scans every function body in functions and every non-nil
// state-variable initialiser in stateVars, in the order given, and
// produces the combined summary.
func Build(functions []*ast.FunctionDefinition, stateVars []*ast.VariableDeclaration) *Summary {
	s := &Summary{}
	seen := make(map[string]struct{})

	for _, fn := range functions {
		fn := fn
		walk.Body(fn.Body, nil, func(e ast.Expression) {
			inspect(s, seen, fn, e)
		})
	}
	for _, v := range stateVars {
		if v.Value == nil {
			continue
		}
		walk.Expressions(v.Value, func(e ast.Expression) {
			inspect(s, seen, nil, e)
		})
	}
	return s
}

func inspect(s *Summary, seen map[string]struct{}, fn *ast.FunctionDefinition, e ast.Expression) {
	switch v := e.(type) {
	case *ast.Literal:
		if v.Kind != ast.LiteralAddress {
			return
		}
		lit := canonicalAddress(v.Value)
		if _, ok := seen[lit]; ok {
			return
		}
		seen[lit] = struct{}{}
		s.Literals = append(s.Literals, lit)

	case *ast.CastExpression:
		if isAddress(v.Argument.StaticType()) && isNonAddressInteger(v.Target) {
			s.Violations = append(s.Violations, Violation{Kind: Cast, Function: fn, Site: v})
		}

	case *ast.BinaryOperation:
		if !isAddress(v.Left.StaticType()) && !isAddress(v.Right.StaticType()) {
			return
		}
		switch v.Operator {
		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpExp:
			s.Violations = append(s.Violations, Violation{Kind: Mutate, Function: fn, Site: v})
		case ast.OpLT, ast.OpLE, ast.OpGT, ast.OpGE:
			s.Violations = append(s.Violations, Violation{Kind: Compare, Function: fn, Site: v})
		}

	case *ast.UnaryOperation:
		if !isAddress(v.Operand.StaticType()) {
			return
		}
		switch v.Operator {
		case ast.OpNeg, ast.OpIncrement, ast.OpDecrement:
			s.Violations = append(s.Violations, Violation{Kind: Mutate, Function: fn, Site: v})
		}
	}
}

// canonicalAddress normalises a hex address literal to its checksummed
// form, so "0xabc..." and "0xABC..." collapse to the same address-space
// literal instead of reserving two distinct slots for one address. The
// bare "0" literal (the reserved null address) and any literal that
// isn't a well-formed 20-byte hex address pass through unchanged.
func canonicalAddress(value string) string {
	if !common.IsHexAddress(value) {
		return value
	}
	return common.HexToAddress(value).Hex()
}

func isAddress(t ast.TypeName) bool {
	et, ok := typeinfo.Unwrap(t).(ast.ElementaryType)
	return ok && et.IsAddress
}

func isNonAddressInteger(t ast.TypeName) bool {
	et, ok := typeinfo.Unwrap(t).(ast.ElementaryType)
	return ok && !et.IsAddress && !et.IsBool && !et.IsFixedPoint
}
