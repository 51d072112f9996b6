// Package scope implements the VariableScopeResolver described in spec
// §3/§4.5: a stack of named sets that resolves a source identifier to
// its lowered C-like name across the source language's three visibility
// layers (local, member/storage, chain-global).
package scope

import "github.com/contract-ace/smartace-sub002/pkg/diag"

// Resolver is a stack of lexical scopes. The zero value is an empty
// resolver with no scopes pushed, the same value New returns.
type Resolver struct {
	scopes []map[string]struct{}
}

// New returns an empty Resolver (no scopes pushed).
func New() *Resolver {
	return &Resolver{}
}

// Enter pushes a new, empty scope — called on entering any lexical
// block or function parameter list.
func (r *Resolver) Enter() {
	r.scopes = append(r.scopes, make(map[string]struct{}))
}

// Exit pops the innermost scope. Calling Exit with no scope pushed is a
// caller bug and panics, matching the stack-discipline invariant callers
// must uphold (every Enter is paired with exactly one Exit).
func (r *Resolver) Exit() {
	if len(r.scopes) == 0 {
		panic("scope: Exit called with no scope entered")
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// Record inserts name into the innermost (current) scope.
func (r *Resolver) Record(name string) {
	if len(r.scopes) == 0 {
		panic("scope: Record called with no scope entered")
	}
	r.scopes[len(r.scopes)-1][name] = struct{}{}
}

// rewrite is the fixed rewriting rule from spec §4.5, applied when
// name isn't bound in any enclosing lexical scope.
func rewrite(name string) (string, error) {
	switch name {
	case "this":
		return "self", nil
	case "super":
		return "", diag.ErrUnsupportedFeature{Construct: "super", Detail: "scope resolver rejects unqualified super references"}
	case "block", "msg", "tx":
		return "state", nil
	case "now":
		return "state->blocknum", nil
	default:
		return "self->d_" + name, nil
	}
}

// Resolve returns the lowered name for an identifier appearing inside a
// function body. Scans scopes innermost-to-outermost; the first scope
// containing name means it's a local variable and resolves to itself.
// Otherwise the fixed rewriting table applies.
func (r *Resolver) Resolve(name string) (string, error) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			return name, nil
		}
	}
	return rewrite(name)
}

// ResolveStructField applies the same `d_` prefix as Resolve's storage
// fallback, but without the `self->` qualifier, for naming fields inside
// record (struct) definitions rather than inside function bodies (spec
// §4.5, "struct-context rewriting").
func ResolveStructField(name string) string {
	return "d_" + name
}
