// Package exprtype implements the contract-return / expression analyser
// of spec §2 step 4 and §4.4: for an expression whose static type is a
// contract, it determines the concrete deployed contract the expression
// refers to, so virtual dispatch in the call graph builder can be
// resolved against that contract's flat interface instead of its
// (possibly more abstract) static type.
package exprtype

import (
	"github.com/contract-ace/smartace-sub002/pkg/analysis/allocation"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
)

// Analyser resolves contract-typed expressions to their concrete
// deployed contract using the allocation graph's field specialisations.
type Analyser struct {
	graph *allocation.Graph
}

// New builds an Analyser over an already-constructed allocation graph.
func New(g *allocation.Graph) *Analyser {
	return &Analyser{graph: g}
}

// Resolve returns the concrete contract that expr (appearing lexically
// inside owner) refers to, and whether resolution succeeded. A `new`
// expression, `this`, a field with an allocation edge, or a conditional
// whose branches resolve to the same contract yields that contract; any
// other expression (including a bare field name with no allocation edge)
// yields its static contract type. A `this.field` access whose field has
// no allocation edge, and an expression with no static contract type, are
// not resolved.
func (a *Analyser) Resolve(owner *ast.ContractDefinition, expr ast.Expression) (*ast.ContractDefinition, bool) {
	switch e := expr.(type) {
	case *ast.NewExpression:
		return e.Definition, true

	case *ast.Identifier:
		if e.Name == "this" {
			return owner, true
		}
		if target, ok := a.resolveField(owner, e.Name); ok {
			return target, true
		}

	case *ast.MemberAccess:
		if id, ok := e.Base.(*ast.Identifier); ok && id.Name == "this" {
			return a.resolveField(owner, e.Member)
		}
		// Fall through to the static type for anything more dynamic
		// than a direct `this.field` access.

	case *ast.Conditional:
		t, okT := a.Resolve(owner, e.True)
		f, okF := a.Resolve(owner, e.False)
		if okT && okF && t == f {
			return t, true
		}
	}

	if ct, ok := expr.StaticType().(ast.ContractType); ok && ct.Definition != nil {
		return ct.Definition, true
	}
	return nil, false
}

func (a *Analyser) resolveField(owner *ast.ContractDefinition, field string) (*ast.ContractDefinition, bool) {
	if a.graph == nil {
		return nil, false
	}
	for _, edge := range a.graph.Edges(owner) {
		if edge.Field == field {
			return edge.Target, true
		}
	}
	return nil, false
}
