// Package callgraph implements the call graph builder of spec §2 step 5
// and §4.4: starting from each bundled contract's public interface,
// constructor and fallback, it closes over every function and modifier
// transitively reachable by direct internal calls, member calls resolved
// through the expression analyser, library calls, modifier applications,
// and `super` chain calls.
package callgraph

import (
	"github.com/contract-ace/smartace-sub002/pkg/analysis/exprtype"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/typeinfo"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/logging"
	"github.com/contract-ace/smartace-sub002/pkg/walk"
)

var log = logging.Component("callgraph")

// Graph is the transitive closure of everything reachable from a bundle's
// entry points: the executed code set and the applied modifier set.
type Graph struct {
	execOrder []*ast.FunctionDefinition
	execSeen  map[*ast.FunctionDefinition]bool

	modOrder []*ast.ModifierDefinition
	modSeen  map[*ast.ModifierDefinition]bool
}

// ExecutedCode returns every function reachable from the roots, in first-
// visit order (the roots themselves come first, in the order given).
func (g *Graph) ExecutedCode() []*ast.FunctionDefinition { return g.execOrder }

// AppliedModifiers returns every modifier reachable from the roots, in
// first-visit order.
func (g *Graph) AppliedModifiers() []*ast.ModifierDefinition { return g.modOrder }

// Superchain returns f and every function it overrides walking up the
// linearization, stopping at the top of the chain or at the first
// unimplemented function (spec §4.4's "follow the frontend-provided
// superFunction pointer until unimplemented").
func Superchain(f *ast.FunctionDefinition) []*ast.FunctionDefinition {
	var chain []*ast.FunctionDefinition
	for cur := f; cur != nil && cur.IsImplemented; cur = cur.SuperFunction {
		chain = append(chain, cur)
	}
	return chain
}

type builder struct {
	analyser  *exprtype.Analyser
	libraries map[string]*ast.ContractDefinition
	dispatch  map[*ast.ContractDefinition][]*ast.FunctionDefinition

	graph   *Graph
	pending []*ast.FunctionDefinition
}

// Build closes the call graph over roots (a bundle's public interface,
// constructor and fallback functions). libraries maps a library's source
// name to its definition, so a `Lib.foo(...)` static call can be told
// apart from a member call through an instance field.
func Build(roots []*ast.FunctionDefinition, a *exprtype.Analyser, libraries map[string]*ast.ContractDefinition) *Graph {
	b := &builder{
		analyser:  a,
		libraries: libraries,
		dispatch:  make(map[*ast.ContractDefinition][]*ast.FunctionDefinition),
		graph: &Graph{
			execSeen: make(map[*ast.FunctionDefinition]bool),
			modSeen:  make(map[*ast.ModifierDefinition]bool),
		},
	}
	for _, r := range roots {
		b.enqueueFunction(r)
	}
	for len(b.pending) > 0 {
		fn := b.pending[0]
		b.pending = b.pending[1:]
		b.visitFunction(fn)
	}
	log.Debug().Int("functions", len(b.graph.execOrder)).Int("modifiers", len(b.graph.modOrder)).Msg("call graph closed")
	return b.graph
}

func (b *builder) enqueueFunction(fn *ast.FunctionDefinition) {
	if fn == nil || !fn.IsImplemented || b.graph.execSeen[fn] {
		return
	}
	b.graph.execSeen[fn] = true
	b.graph.execOrder = append(b.graph.execOrder, fn)
	b.pending = append(b.pending, fn)
}

func (b *builder) enqueueModifier(m *ast.ModifierDefinition) {
	if m == nil || b.graph.modSeen[m] {
		return
	}
	b.graph.modSeen[m] = true
	b.graph.modOrder = append(b.graph.modOrder, m)
	for _, call := range b.callsIn(m.Body) {
		b.resolveAndEnqueue(m.Contract, fnOwnerOf(m), call)
	}
}

func (b *builder) visitFunction(fn *ast.FunctionDefinition) {
	for _, mi := range fn.ModifierInvocations {
		b.enqueueModifier(mi.Modifier)
		for _, arg := range mi.Arguments {
			for _, call := range callsInExpr(arg) {
				b.resolveAndEnqueue(fn.Contract, fn, call)
			}
		}
	}
	for _, call := range b.callsIn(fn.Body) {
		b.resolveAndEnqueue(fn.Contract, fn, call)
	}
}

// fnOwnerOf exists only to document that a modifier's own super-chain
// resolution never applies: modifiers have no SuperFunction pointer, so
// resolveAndEnqueue is passed a nil caller function for modifier bodies.
func fnOwnerOf(*ast.ModifierDefinition) *ast.FunctionDefinition { return nil }

func (b *builder) callsIn(body *ast.Block) []*ast.FunctionCall {
	var calls []*ast.FunctionCall
	walk.Body(body, nil, func(e ast.Expression) {
		if call, ok := e.(*ast.FunctionCall); ok {
			calls = append(calls, call)
		}
	})
	return calls
}

func callsInExpr(e ast.Expression) []*ast.FunctionCall {
	var calls []*ast.FunctionCall
	walk.Expressions(e, func(e ast.Expression) {
		if call, ok := e.(*ast.FunctionCall); ok {
			calls = append(calls, call)
		}
	})
	return calls
}

func (b *builder) resolveAndEnqueue(owner *ast.ContractDefinition, caller *ast.FunctionDefinition, call *ast.FunctionCall) {
	target := b.resolveCall(owner, caller, call)
	b.enqueueFunction(target)
}

func (b *builder) resolveCall(owner *ast.ContractDefinition, caller *ast.FunctionDefinition, call *ast.FunctionCall) *ast.FunctionDefinition {
	switch callee := call.Callee.(type) {
	case *ast.Identifier:
		return methodByNameAndParams(b.dispatchTableOf(owner), callee.Name, argTypes(call.Arguments))

	case *ast.MemberAccess:
		if base, ok := callee.Base.(*ast.Identifier); ok && base.Name == "super" {
			if caller == nil || caller.SuperFunction == nil {
				return nil
			}
			return caller.SuperFunction
		}
		if lib, ok := b.libraryOf(callee.Base); ok {
			return methodByNameAndParams(b.dispatchTableOf(lib), callee.Member, argTypes(call.Arguments))
		}
		if b.analyser != nil {
			if target, ok := b.analyser.Resolve(owner, callee.Base); ok {
				return methodByNameAndParams(b.dispatchTableOf(target), callee.Member, argTypes(call.Arguments))
			}
		}
	}
	return nil
}

// libraryOf reports whether base is a bare reference to one of the
// bundle's libraries used for a static `Lib.foo(...)` call, as opposed to
// a member call through an instance expression.
func (b *builder) libraryOf(base ast.Expression) (*ast.ContractDefinition, bool) {
	id, ok := base.(*ast.Identifier)
	if !ok {
		return nil, false
	}
	lib, ok := b.libraries[id.Name]
	return lib, ok
}

// dispatchTableOf linearizes c's implemented functions, most-derived
// override winning on a SignatureCollision match — the same merge rule
// flatcontract.Build applies to the public interface, but unfiltered by
// visibility: an internal call can target a private or internal function
// that never appears in the contract's public dispatch table.
func (b *builder) dispatchTableOf(c *ast.ContractDefinition) []*ast.FunctionDefinition {
	if fns, ok := b.dispatch[c]; ok {
		return fns
	}
	var fns []*ast.FunctionDefinition
	for _, base := range c.LinearizedBaseContracts {
		for _, fn := range base.Functions {
			if !fn.IsImplemented {
				continue
			}
			if methodByNameAndParams(fns, fn.Name, paramTypes(fn)) != nil {
				continue
			}
			fns = append(fns, fn)
		}
	}
	b.dispatch[c] = fns
	return fns
}

func paramTypes(fn *ast.FunctionDefinition) []ast.TypeName {
	types := make([]ast.TypeName, len(fn.Parameters))
	for i, p := range fn.Parameters {
		types[i] = p.Type
	}
	return types
}

func methodByNameAndParams(fns []*ast.FunctionDefinition, name string, params []ast.TypeName) *ast.FunctionDefinition {
	for _, fn := range fns {
		if fn.Name != name || len(fn.Parameters) != len(params) {
			continue
		}
		match := true
		for i, p := range params {
			if !typeinfo.TypesEqual(fn.Parameters[i].Type, p) {
				match = false
				break
			}
		}
		if match {
			return fn
		}
	}
	return nil
}

func argTypes(args []ast.Expression) []ast.TypeName {
	types := make([]ast.TypeName, len(args))
	for i, a := range args {
		types[i] = a.StaticType()
	}
	return types
}
