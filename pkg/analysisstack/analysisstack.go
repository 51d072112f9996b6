// Package analysisstack owns and sequences the whole semantic-lowering
// pipeline (spec §2): it runs every analysis pass in dependency order
// over a parsed set of source units and a requested bundle, and hands
// the assembled, read-only result to the code generator.
package analysisstack

import (
	"github.com/contract-ace/smartace-sub002/pkg/analysis/allocation"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/callgraph"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/exprtype"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/flatcontract"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/library"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/mapindex"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/stringlookup"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/bundle"
	"github.com/contract-ace/smartace-sub002/pkg/bundletree"
	"github.com/contract-ace/smartace-sub002/pkg/harness/addressspace"
	"github.com/contract-ace/smartace-sub002/pkg/harness/nondet"
	"github.com/contract-ace/smartace-sub002/pkg/logging"
	"golang.org/x/sync/errgroup"
)

var log = logging.Component("analysisstack")

// Stack is the fully assembled, read-only result of running every pass.
// Every field is written once, during Build, and only ever read
// afterward (spec §5's concurrency model: no shared mutable state
// beyond this construction step).
type Stack struct {
	Bundle       bundle.Result
	Allocation   *allocation.Graph
	ExprAnalyser *exprtype.Analyser
	Flats        map[*ast.ContractDefinition]*flatcontract.FlatContract
	CallGraph    *callgraph.Graph
	Libraries    []library.Summary
	MapIndex     *mapindex.Summary
	Strings      *stringlookup.Lookup
	Tree         *bundletree.Tree
	AddressSpace *addressspace.Space
	Nondet       *nondet.Registry
}

// Build runs every pass in dependency order. The address-space
// generator's representative count (spec §4.10, the number of distinct
// abstract addresses the model considers) is the tight bundle's size.
//
// Build always assembles a Stack from whichever requested names resolved
// (r.Contracts), even when r.Missing is non-empty — bundle-resolution
// failure is the one error stratum spec §7 says is *collected*, not
// thrown: "Bundle name not found → recorded in missing, other names
// still resolved" (spec §8). The caller decides whether a non-empty
// r.Missing is fatal (the CLI's --strict-bundle flag) or just a warning
// to print alongside the model built from the resolved subset.
func Build(units []*ast.SourceUnit, requested []string) (*Stack, bundle.Result, error) {
	r := bundle.Extract(units, requested)

	// The allocation graph must cover every contract reachable in units, not
	// just the requested bundle roots: bundletree.expand recurses through
	// allocGraph.Edges on whatever contract type it reaches next, and Edges
	// only has entries for contracts Build saw. A contract instantiated two
	// or more allocation hops deep (a bundled Wallet building a Vault that
	// itself builds a Logger, where Vault was never itself requested) would
	// otherwise get zero outgoing edges and the tight bundle would stop
	// expanding one level early.
	allocGraph, err := allocation.Build(allContracts(units))
	if err != nil {
		return nil, r, err
	}

	analyser := exprtype.New(allocGraph)

	// Flattening each contract is independent of every other: one goroutine
	// per contract, writing into its own slot, then a sequential map
	// assembly below keeps the result deterministic regardless of
	// completion order.
	flatList := make([]*flatcontract.FlatContract, len(r.Contracts))
	var g errgroup.Group
	for i, c := range r.Contracts {
		i, c := i, c
		g.Go(func() error {
			flatList[i] = flatcontract.Build(c)
			return nil
		})
	}
	_ = g.Wait()

	flats := make(map[*ast.ContractDefinition]*flatcontract.FlatContract, len(r.Contracts))
	for i, c := range r.Contracts {
		flats[c] = flatList[i]
	}

	roots := entryPoints(r.Contracts, flats)
	libraries := libraryNames(units)
	graph := callgraph.Build(roots, analyser, libraries)

	libSummaries := library.Build(graph.ExecutedCode())

	var allStateVars []*ast.VariableDeclaration
	for _, c := range r.Contracts {
		allStateVars = append(allStateVars, flats[c].StateVariables...)
	}

	mapIdx := mapindex.Build(graph.ExecutedCode(), allStateVars)
	strings, err := stringlookup.Build(graph.ExecutedCode(), allStateVars)
	if err != nil {
		return nil, r, err
	}

	tree := bundletree.Build(r.Contracts, allocGraph)
	addrSpace := addressspace.Build(tree.Size(), mapIdx.Literals)
	registry := nondet.New(tree.Size())

	// Every contract instantiated anywhere in the tight bundle needs a
	// flat summary too, not just the bundled roots: a field-constructed
	// instance (e.g. a Vault a Wallet holds) still needs a storage
	// record, even though it never appears in r.Contracts itself.
	for _, n := range tree.AllNodes() {
		if _, ok := flats[n.Flat.Source]; !ok {
			flats[n.Flat.Source] = n.Flat
		}
	}

	log.Debug().
		Int("contracts", len(r.Contracts)).
		Int("executed_functions", len(graph.ExecutedCode())).
		Int("libraries", len(libSummaries)).
		Int("bundle_size", tree.Size()).
		Msg("analysis stack assembled")

	return &Stack{
		Bundle:       r,
		Allocation:   allocGraph,
		ExprAnalyser: analyser,
		Flats:        flats,
		CallGraph:    graph,
		Libraries:    libSummaries,
		MapIndex:     mapIdx,
		Strings:      strings,
		Tree:         tree,
		AddressSpace: addrSpace,
		Nondet:       registry,
	}, r, nil
}

// entryPoints collects each bundled contract's public interface,
// constructor, and fallback — the call graph builder's roots (spec
// §4.4).
func entryPoints(contracts []*ast.ContractDefinition, flats map[*ast.ContractDefinition]*flatcontract.FlatContract) []*ast.FunctionDefinition {
	var roots []*ast.FunctionDefinition
	for _, c := range contracts {
		roots = append(roots, flats[c].Methods...)
		if c.Constructor != nil {
			roots = append(roots, c.Constructor)
		}
		if c.Fallback != nil {
			roots = append(roots, c.Fallback)
		}
	}
	return roots
}

// libraryNames maps every library contract's source name to its
// definition, for the call graph builder's static `Lib.foo(...)` calls.
func libraryNames(units []*ast.SourceUnit) map[string]*ast.ContractDefinition {
	libs := make(map[string]*ast.ContractDefinition)
	for _, u := range units {
		for _, c := range u.Contracts {
			if c.Kind == ast.KindLibrary {
				libs[c.Name] = c
			}
		}
	}
	return libs
}

// allContracts flattens every contract definition across every source
// unit, regardless of kind or whether it's a requested bundle root — the
// universe the allocation graph must be built over so it has edges for
// every contract the tight bundle might recurse into.
func allContracts(units []*ast.SourceUnit) []*ast.ContractDefinition {
	var out []*ast.ContractDefinition
	for _, u := range units {
		out = append(out, u.Contracts...)
	}
	return out
}
