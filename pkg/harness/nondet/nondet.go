// Package nondet implements the non-deterministic source registry of
// spec §4.11: it issues one uniquely-named non-deterministic function
// per (type, purpose) pair encountered during code generation, and dumps
// the body of every function it issued at the end of a run. Naming is
// deterministic — equal inputs always yield equal function names — so
// the emitted model is reproducible bit-for-bit from the same AST.
package nondet

import (
	"fmt"
	"strings"

	"github.com/contract-ace/smartace-sub002/pkg/analysis/typeinfo"
	"github.com/contract-ace/smartace-sub002/pkg/ast"
	"github.com/contract-ace/smartace-sub002/pkg/runtimesyms"
)

// Entry is one issued function: its deterministic name and body text.
type Entry struct {
	Name string
	Body string
}

// Registry accumulates issued functions over one translation run.
// BundleSize bounds the address range non-deterministic address values
// are drawn from ("[0, bundle_size]", spec §4.11).
type Registry struct {
	BundleSize int

	bodies map[string]string
	order  []string
}

// New builds an empty registry for a bundle of the given size.
func New(bundleSize int) *Registry {
	return &Registry{BundleSize: bundleSize, bodies: make(map[string]string)}
}

// Byte is the primitive single-byte non-deterministic source; it always
// resolves to the fixed runtime symbol, never registers a new function.
func (r *Registry) Byte(msg string) string {
	return fmt.Sprintf("%s(%q)", runtimesyms.NondetByte, msg)
}

// Range is the primitive bounded non-deterministic source.
func (r *Registry) Range(lower, upper int, msg string) string {
	return fmt.Sprintf("%s(%d, %d, %q)", runtimesyms.NondetRange, lower, upper, msg)
}

// Increase issues (or reuses) the function returning a value no less
// than (and, if strict, strictly greater than) its current value —
// the monotonic-field non-determinism used for fields like block number.
func (r *Registry) Increase(field string, strict bool) string {
	name := "nd_increase_" + field
	if !strict {
		name += "_nonstrict"
	}
	if _, ok := r.bodies[name]; ok {
		return name
	}
	lowerOffset := "0"
	if strict {
		lowerOffset = "1"
	}
	body := fmt.Sprintf(
		"value_t %s(value_t curr) { value_t delta = %s; return curr + %s + delta; }",
		name, r.Range(0, r.maxDelta(), field), lowerOffset,
	)
	r.register(name, body)
	return name
}

// Val issues (or reuses) the function producing a non-deterministic
// value of type t for the given purpose, dispatching on t's
// classification: scalars draw from the matching runtime width, address
// values are bounded to [0, BundleSize], and compound (struct) types
// recurse structurally over their members. Other compound shapes fall
// back to an opaque byte-driven value, since they carry no further
// internal structure this registry can recurse over.
func (r *Registry) Val(t ast.TypeName, purpose string) string {
	cls := typeinfo.Classify(t, "")
	name := r.valName(cls, purpose)
	if _, ok := r.bodies[name]; ok {
		return name
	}

	unwrapped := typeinfo.Unwrap(t)
	switch cls.Tag {
	case typeinfo.Simple:
		if et, ok := unwrapped.(ast.ElementaryType); ok && et.IsAddress {
			body := fmt.Sprintf("address_t %s(void) { return %s; }", name, r.Range(0, r.BundleSize, purpose))
			r.register(name, body)
			return name
		}
		scalar := runtimesyms.NondetFuncName(cls.Bits, cls.Signed)
		body := fmt.Sprintf("%s %s(void) { return %s(); }", scalar, name, scalar)
		r.register(name, body)
		return name

	case typeinfo.Compound:
		if st, ok := unwrapped.(ast.StructType); ok {
			var assigns []string
			for _, m := range st.Definition.Members {
				memberFn := r.Val(m.Type, purpose+"_"+m.Name)
				assigns = append(assigns, fmt.Sprintf("rec.%s = %s();", m.Name, memberFn))
			}
			body := fmt.Sprintf("%s %s(void) { %s rec; %s return rec; }",
				cls.RecordName, name, cls.RecordName, strings.Join(assigns, " "))
			r.register(name, body)
			return name
		}
		body := fmt.Sprintf("%s %s(void) { return (%s)%s; }", cls.RecordName, name, cls.RecordName, r.Byte(purpose))
		r.register(name, body)
		return name
	}
	return name
}

// Dump returns every issued function, in issuance order.
func (r *Registry) Dump() []Entry {
	entries := make([]Entry, len(r.order))
	for i, name := range r.order {
		entries[i] = Entry{Name: name, Body: r.bodies[name]}
	}
	return entries
}

func (r *Registry) register(name, body string) {
	r.bodies[name] = body
	r.order = append(r.order, name)
}

func (r *Registry) valName(cls typeinfo.Classification, purpose string) string {
	if cls.Tag == typeinfo.Simple {
		return fmt.Sprintf("nd_val_%s_%d_%v", purpose, cls.Bits, cls.Signed)
	}
	return "nd_val_" + purpose + "_" + cls.RecordName
}

// maxDelta bounds the step a monotonic field can take in one
// non-deterministic increase; kept generous and fixed so the function
// name (and therefore determinism) never depends on it.
func (r *Registry) maxDelta() int { return 1 << 20 }
