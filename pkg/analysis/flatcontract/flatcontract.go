// Package flatcontract builds the FlatContract summary of spec §3/§4.3:
// for each bundled contract, linearizes base contracts, merges state
// variables (first occurrence wins), and merges public methods using
// the SignatureCollision predicate, with most-derived overrides winning.
package flatcontract

import (
	"github.com/contract-ace/smartace-sub002/pkg/analysis/typeinfo"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/logging"
)

var log = logging.Component("flatcontract")

// FlatContract is the concrete dispatch table and storage layout for one
// bundled contract.
type FlatContract struct {
	Source         *ast.ContractDefinition
	Methods        []*ast.FunctionDefinition
	StateVariables []*ast.VariableDeclaration
}

// Collide is the SignatureCollision predicate (spec §3): two methods
// collide iff they share a name and have equal positional parameter
// types under type-equivalence.
func Collide(a, b *ast.FunctionDefinition) bool {
	if a.Name != b.Name {
		return false
	}
	if len(a.Parameters) != len(b.Parameters) {
		return false
	}
	for i := range a.Parameters {
		if !typeinfo.TypesEqual(a.Parameters[i].Type, b.Parameters[i].Type) {
			return false
		}
	}
	return true
}

// Build linearizes c's bases from most-derived to most-base (the order
// the frontend already computed; never re-sorted) and merges methods and
// state variables per spec §4.3.
func Build(c *ast.ContractDefinition) *FlatContract {
	fc := &FlatContract{Source: c}

	seenVars := make(map[string]struct{})
	for _, base := range c.LinearizedBaseContracts {
		for _, sv := range base.StateVariables {
			if _, ok := seenVars[sv.Name]; ok {
				continue
			}
			seenVars[sv.Name] = struct{}{}
			fc.StateVariables = append(fc.StateVariables, sv)
		}
	}

	for _, base := range c.LinearizedBaseContracts {
		for _, fn := range base.Functions {
			if !fn.IsImplemented || !fn.Visibility.IsPubliclyReachable() {
				continue
			}
			if collidesWithExisting(fc.Methods, fn) {
				continue
			}
			fc.Methods = append(fc.Methods, fn)
		}
	}

	log.Debug().Str("contract", c.Name).Int("methods", len(fc.Methods)).Int("vars", len(fc.StateVariables)).Msg("flattened")
	return fc
}

func collidesWithExisting(methods []*ast.FunctionDefinition, fn *ast.FunctionDefinition) bool {
	for _, existing := range methods {
		if Collide(existing, fn) {
			return true
		}
	}
	return false
}

// MethodByNameAndParams looks up a method in fc's dispatch table matching
// name and positional parameter types under type-equivalence — the
// "direct internal call" resolution rule of spec §4.4.
func (fc *FlatContract) MethodByNameAndParams(name string, params []ast.TypeName) *ast.FunctionDefinition {
	for _, m := range fc.Methods {
		if m.Name != name || len(m.Parameters) != len(params) {
			continue
		}
		match := true
		for i, p := range params {
			if !typeinfo.TypesEqual(m.Parameters[i].Type, p) {
				match = false
				break
			}
		}
		if match {
			return m
		}
	}
	return nil
}
