// Package library implements the library summary of spec §2 step 9:
// partitions the call graph's executed code by enclosing library
// contract, emitting only libraries that actually have a called method.
package library

import "github.com/contract-ace/smartace-sub002/pkg/ast"

// Summary is one library and the subset of its methods the call graph
// reached, in first-call order.
type Summary struct {
	Library *ast.ContractDefinition
	Methods []*ast.FunctionDefinition
}

// Build partitions executed (the call graph's executed-code view) by
// enclosing library contract, preserving the order libraries were first
// called in.
func Build(executed []*ast.FunctionDefinition) []Summary {
	var order []*ast.ContractDefinition
	byLib := make(map[*ast.ContractDefinition]*Summary)

	for _, fn := range executed {
		if fn.Contract == nil || fn.Contract.Kind != ast.KindLibrary {
			continue
		}
		s, ok := byLib[fn.Contract]
		if !ok {
			s = &Summary{Library: fn.Contract}
			byLib[fn.Contract] = s
			order = append(order, fn.Contract)
		}
		s.Methods = append(s.Methods, fn)
	}

	summaries := make([]Summary, len(order))
	for i, c := range order {
		summaries[i] = *byLib[c]
	}
	return summaries
}
