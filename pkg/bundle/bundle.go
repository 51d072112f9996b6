// Package bundle implements the bundle extractor of spec §4.1: given
// source units and a list of requested contract names, resolves each
// name to a deployable (neither library nor interface) contract
// definition, preserving request order, and separately reports names
// that failed to resolve.
package bundle

import "github.com/contract-ace/smartace-sub002/pkg/ast"

// Result is the bundle extraction outcome: the resolved contracts, in
// request order, and the subset of requested names that didn't resolve
// to a deployable contract.
type Result struct {
	Contracts []*ast.ContractDefinition
	Missing   []string
}

// Extract resolves requested names against units, skipping libraries and
// interfaces. The caller decides whether a non-empty Missing is fatal.
func Extract(units []*ast.SourceUnit, requested []string) Result {
	byName := make(map[string]*ast.ContractDefinition)
	for _, u := range units {
		for _, c := range u.Contracts {
			if c.Kind == ast.KindLibrary || c.Kind == ast.KindInterface {
				continue
			}
			byName[c.Name] = c
		}
	}

	var r Result
	for _, name := range requested {
		if c, ok := byName[name]; ok {
			r.Contracts = append(r.Contracts, c)
			continue
		}
		r.Missing = append(r.Missing, name)
	}
	return r
}
