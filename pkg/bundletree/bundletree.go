// Package bundletree implements the tight bundle of spec §4.9: a
// depth-first expansion of the allocation graph from each bundled root
// contract into a tree of instances, each given a unique dense address
// starting at 1 (address 0 is reserved for the null contract).
package bundletree

import (
	"github.com/contract-ace/smartace-sub002/pkg/analysis/allocation"
	"github.com/contract-ace/smartace-sub002/pkg/analysis/flatcontract"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
)

// BundleContract is one node: an allocated instance of a contract, the
// field name it's reachable through from its parent ("" for a root), and
// its own children in allocation-graph order.
type BundleContract struct {
	Address  int
	Var      string
	Flat     *flatcontract.FlatContract
	Children []*BundleContract
}

// Tree is the rooted forest of every instance reachable from the bundle.
type Tree struct {
	Roots []*BundleContract
	count int
}

// Size returns the total number of allocated contracts across the whole
// forest.
func (t *Tree) Size() int { return t.count }

// AllNodes flattens the forest into the same depth-first order Build
// assigned addresses in: every root, then its children before its
// siblings' children, recursively.
func (t *Tree) AllNodes() []*BundleContract {
	var out []*BundleContract
	var walk func(n *BundleContract)
	walk = func(n *BundleContract) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range t.Roots {
		walk(r)
	}
	return out
}

// Build expands roots (the bundled contracts) depth-first over g,
// assigning each node encountered a unique, dense address.
func Build(roots []*ast.ContractDefinition, g *allocation.Graph) *Tree {
	t := &Tree{}
	for _, r := range roots {
		t.Roots = append(t.Roots, t.expand(r, "", g))
	}
	return t
}

func (t *Tree) expand(c *ast.ContractDefinition, varName string, g *allocation.Graph) *BundleContract {
	id := t.count
	t.count++
	bc := &BundleContract{Address: id + 1, Var: varName, Flat: flatcontract.Build(c)}
	for _, edge := range g.Edges(c) {
		bc.Children = append(bc.Children, t.expand(edge.Target, edge.Field, g))
	}
	return bc
}
