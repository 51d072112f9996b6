// Package walk provides the shared statement/expression traversal used by
// every pass that needs to see every node in a function body exactly once:
// the call graph builder (spec §4.4), the map index summary (§4.7), and
// the string lookup pass (§4.8) all walk bodies the same way rather than
// re-implementing their own AST descent.
package walk

import "github.com/contract-ace/smartace-sub002/pkg/ast"

// Statements visits s and every statement nested inside it, depth-first,
// calling visit on each one (s included). nil statements are skipped.
func Statements(s ast.Statement, visit func(ast.Statement)) {
	if s == nil {
		return
	}
	visit(s)
	switch v := s.(type) {
	case *ast.Block:
		for _, st := range v.Statements {
			Statements(st, visit)
		}
	case *ast.IfStatement:
		Statements(v.TrueBody, visit)
		Statements(v.FalseBody, visit)
	case *ast.WhileStatement:
		Statements(v.Body, visit)
	case *ast.ForStatement:
		Statements(v.Init, visit)
		Statements(v.Post, visit)
		Statements(v.Body, visit)
	}
}

// Expressions visits e and every expression nested inside it, depth-first,
// calling visit on each one (e included). nil expressions are skipped.
func Expressions(e ast.Expression, visit func(ast.Expression)) {
	if e == nil {
		return
	}
	visit(e)
	switch v := e.(type) {
	case *ast.BinaryOperation:
		Expressions(v.Left, visit)
		Expressions(v.Right, visit)
	case *ast.UnaryOperation:
		Expressions(v.Operand, visit)
	case *ast.Conditional:
		Expressions(v.Condition, visit)
		Expressions(v.True, visit)
		Expressions(v.False, visit)
	case *ast.CastExpression:
		Expressions(v.Argument, visit)
	case *ast.FunctionCall:
		Expressions(v.Callee, visit)
		for _, a := range v.Arguments {
			Expressions(a, visit)
		}
	case *ast.MemberAccess:
		Expressions(v.Base, visit)
	case *ast.IndexAccess:
		Expressions(v.Base, visit)
		Expressions(v.Index, visit)
	case *ast.TupleExpression:
		for _, c := range v.Components {
			Expressions(c, visit)
		}
	case *ast.NewExpression:
		for _, a := range v.Arguments {
			Expressions(a, visit)
		}
	}
}

// Body walks every statement in body (nil-safe) and, for each one, every
// expression it directly holds — covering conditions, initializers,
// declaration values, emitted arguments and bare expression statements —
// passing each to onExpr. onStmt, if non-nil, is called for every
// statement in the same traversal.
func Body(body *ast.Block, onStmt func(ast.Statement), onExpr func(ast.Expression)) {
	if body == nil {
		return
	}
	Statements(body, func(s ast.Statement) {
		if onStmt != nil {
			onStmt(s)
		}
		switch v := s.(type) {
		case *ast.IfStatement:
			Expressions(v.Condition, onExpr)
		case *ast.WhileStatement:
			Expressions(v.Condition, onExpr)
		case *ast.ForStatement:
			Expressions(v.Condition, onExpr)
		case *ast.ReturnStatement:
			Expressions(v.Value, onExpr)
		case *ast.EmitStatement:
			for _, a := range v.Arguments {
				Expressions(a, onExpr)
			}
		case *ast.VariableDeclarationStatement:
			for _, d := range v.Declarations {
				Expressions(d.Value, onExpr)
			}
		case *ast.ExpressionStatement:
			Expressions(v.Expression, onExpr)
		}
	})
}
