// Package stringlookup implements the string lookup pass of spec §4.8: a
// deterministic, injective map from literal string value to a positive
// integer, assigned in AST visit order so equal inputs produce equal
// codes across runs.
package stringlookup

import (
	"math"

	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/diag"
	"github.com/contract-ace/smartace-sub002/pkg/walk"
)

// Lookup is the built table: every distinct non-empty string literal
// encountered, mapped to the positive integer it was assigned.
type Lookup struct {
	codes map[string]int
	order []string
	next  int
}

// Build scans every function body in functions and every non-nil
// state-variable initialiser in stateVars, in the order given, assigning
// a code to each distinct string literal on first sight.
func Build(functions []*ast.FunctionDefinition, stateVars []*ast.VariableDeclaration) (*Lookup, error) {
	l := &Lookup{codes: make(map[string]int), next: 1}

	var visitErr error
	record := func(e ast.Expression) {
		if visitErr != nil {
			return
		}
		lit, ok := e.(*ast.Literal)
		if !ok || lit.Kind != ast.LiteralString {
			return
		}
		if _, err := l.assign(lit.Value); err != nil {
			visitErr = err
		}
	}

	for _, fn := range functions {
		walk.Body(fn.Body, nil, record)
		if visitErr != nil {
			return nil, visitErr
		}
	}
	for _, v := range stateVars {
		if v.Value == nil {
			continue
		}
		walk.Expressions(v.Value, record)
		if visitErr != nil {
			return nil, visitErr
		}
	}
	return l, nil
}

func (l *Lookup) assign(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	if code, ok := l.codes[value]; ok {
		return code, nil
	}
	if l.next >= math.MaxInt32 {
		return 0, diag.ErrLookupExhausted{Literal: value}
	}
	code := l.next
	l.codes[value] = code
	l.order = append(l.order, value)
	l.next++
	return code, nil
}

// Code returns the positive integer code assigned to lit, or 0 for the
// empty string. Fails with ErrNonStringLookup for a non-string literal,
// and with ErrInternal if lit's value was never visited by Build.
func (l *Lookup) Code(lit *ast.Literal) (int, error) {
	if lit.Kind != ast.LiteralString {
		return 0, diag.ErrNonStringLookup{Kind: literalKindName(lit.Kind)}
	}
	if lit.Value == "" {
		return 0, nil
	}
	code, ok := l.codes[lit.Value]
	if !ok {
		return 0, diag.ErrInternal{Pass: "stringlookup", Reason: "code requested for a literal never visited by Build"}
	}
	return code, nil
}

// Values returns every distinct non-empty string assigned a code, in
// assignment order — the order the code-registry dump (§4.11) needs.
func (l *Lookup) Values() []string { return l.order }

// Len returns the number of distinct non-empty string literals assigned
// a code.
func (l *Lookup) Len() int { return len(l.order) }

func literalKindName(k ast.LiteralKind) string {
	switch k {
	case ast.LiteralNumber:
		return "number"
	case ast.LiteralBool:
		return "bool"
	case ast.LiteralAddress:
		return "address"
	default:
		return "unknown"
	}
}
