// Package allocation builds the AllocationGraph of spec §3/§4.2: a
// directed graph of "contract X constructs one instance of contract Y"
// edges, derived by walking every constructor body and state-variable
// initialiser and resolving each contract-typed field to its concrete
// instantiated type (specialisation).
package allocation

import (
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/diag"
	"github.com/contract-ace/smartace-sub002/pkg/logging"
)

var log = logging.Component("allocation")

// Edge is "Contract constructs one instance of Target, stored in Field".
type Edge struct {
	Contract *ast.ContractDefinition
	Field    string
	Target   *ast.ContractDefinition
}

// Graph is the allocation graph: nodes are contract definitions
// (implicit, referenced by edges), edges are instance-of-at-field.
type Graph struct {
	edges map[*ast.ContractDefinition][]Edge
}

// Edges returns the outgoing allocation edges for a contract, in the
// order its state variables were declared.
func (g *Graph) Edges(c *ast.ContractDefinition) []Edge {
	return g.edges[c]
}

// Build walks every contract's linearization looking for construction
// sites and produces the allocation graph. It fails with
// ErrAmbiguousSpecialisation if a single field's concrete type can't be
// determined uniquely across the linearization's constructors.
func Build(contracts []*ast.ContractDefinition) (*Graph, error) {
	g := &Graph{edges: make(map[*ast.ContractDefinition][]Edge)}
	for _, c := range contracts {
		for _, sv := range c.StateVariables {
			ct, ok := contractTypeOf(sv.Type)
			if !ok {
				continue
			}
			target, err := specialise(c, sv, ct.Definition)
			if err != nil {
				return nil, err
			}
			edge := Edge{Contract: c, Field: sv.Name, Target: target}
			g.edges[c] = append(g.edges[c], edge)
			log.Debug().Str("contract", c.Name).Str("field", sv.Name).Str("target", target.Name).Msg("allocation edge")
		}
	}
	return g, nil
}

func contractTypeOf(t ast.TypeName) (ast.ContractType, bool) {
	ct, ok := t.(ast.ContractType)
	return ct, ok
}

// specialise maps state variable v of static type T (declared in c) to
// its concrete instantiated type: the assigned target of the unique
// construction expression found in the linearization's constructors,
// else T itself (spec §4.2).
func specialise(c *ast.ContractDefinition, v *ast.VariableDeclaration, declared *ast.ContractDefinition) (*ast.ContractDefinition, error) {
	var found *ast.ContractDefinition

	consider := func(target *ast.ContractDefinition) error {
		if target == nil {
			return nil
		}
		if found == nil {
			found = target
			return nil
		}
		if found != target {
			return diag.ErrAmbiguousSpecialisation{
				Field:      v.Name,
				DeclaredIn: c.Name,
				Candidate1: found.Name,
				Candidate2: target.Name,
			}
		}
		return nil
	}

	// Look for an explicit `new T(...)` or direct assignment in the
	// initialiser itself.
	if v.Value != nil {
		if target := constructionTarget(v.Value); target != nil {
			if err := consider(target); err != nil {
				return nil, err
			}
		}
	}

	// Look across every constructor in the linearization for an
	// assignment to this field.
	for _, base := range c.LinearizedBaseContracts {
		if base.Constructor == nil || base.Constructor.Body == nil {
			continue
		}
		for _, target := range assignmentsToField(base.Constructor.Body, v.Name) {
			if err := consider(target); err != nil {
				return nil, err
			}
		}
	}

	if found != nil {
		return found, nil
	}
	return declared, nil
}

// constructionTarget returns the contract definition a NewExpression (or
// a FunctionCall whose callee is a NewExpression) constructs, or nil if
// expr isn't a construction site.
func constructionTarget(expr ast.Expression) *ast.ContractDefinition {
	switch e := expr.(type) {
	case *ast.NewExpression:
		return e.Definition
	case *ast.FunctionCall:
		if ne, ok := e.Callee.(*ast.NewExpression); ok {
			return ne.Definition
		}
	}
	return nil
}

// assignmentsToField walks a constructor body for top-level assignment
// statements `field = new T(...)` (or `this.field = new T(...)`) and
// returns every construction target found, in source order.
func assignmentsToField(body *ast.Block, field string) []*ast.ContractDefinition {
	var out []*ast.ContractDefinition
	var walkStmt func(ast.Statement)
	walkStmt = func(s ast.Statement) {
		switch st := s.(type) {
		case *ast.Block:
			for _, inner := range st.Statements {
				walkStmt(inner)
			}
		case *ast.IfStatement:
			walkStmt(st.TrueBody)
			if st.FalseBody != nil {
				walkStmt(st.FalseBody)
			}
		case *ast.ExpressionStatement:
			if target := assignmentTarget(st.Expression, field); target != nil {
				out = append(out, target)
			}
		}
	}
	walkStmt(body)
	return out
}

func assignmentTarget(expr ast.Expression, field string) *ast.ContractDefinition {
	bin, ok := expr.(*ast.BinaryOperation)
	if !ok || bin.Operator != ast.OpAssign {
		return nil
	}
	if !lvalueNames(bin.Left, field) {
		return nil
	}
	return constructionTarget(bin.Right)
}

func lvalueNames(expr ast.Expression, field string) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name == field
	case *ast.MemberAccess:
		if id, ok := e.Base.(*ast.Identifier); ok && id.Name == "this" {
			return e.Member == field
		}
		return false
	default:
		return false
	}
}
