// Package typeinfo implements the type analyser of spec §4.6: it
// classifies each AST type node as simple or compound, assigns a
// lowered record name to compound types, and exposes the declaration
// name-escaping rule that keeps distinct source names from colliding
// after lowering.
package typeinfo

import (
	"math/big"
	"strings"

	"github.com/contract-ace/smartace-sub002/pkg/ast"
)

// Tag is the simple/compound classification of a type node.
type Tag int

const (
	Simple Tag = iota
	Compound
)

// Classification is the per-type-node summary the analyser produces.
type Classification struct {
	Tag Tag

	// Populated when Tag == Simple.
	Bits   int
	Signed bool

	// Populated when Tag == Compound: the lowered record name assigned
	// to this compound type.
	RecordName string
}

// Unwrap strips a TypeType wrapper and resolves a RationalLiteralType to
// its smallest storage type (spec §3, TypeClassification's `unwrap`).
// Every other TypeName passes through unchanged.
func Unwrap(t ast.TypeName) ast.TypeName {
	switch v := t.(type) {
	case ast.TypeType:
		return Unwrap(v.Inner)
	case ast.RationalLiteralType:
		return smallestStorageType(v.Value)
	default:
		return t
	}
}

// smallestStorageType picks the narrowest scalar elementary type able to
// hold an integer-valued rational literal. Non-integer rationals (fixed
// point) are embedded as a signed 128-bit fixed-point scalar, matching
// the widest fixed-point width the embedding supports.
func smallestStorageType(v *big.Rat) ast.TypeName {
	if !v.IsInt() {
		return ast.ElementaryType{IsFixedPoint: true, Bits: 128, Signed: true}
	}
	signed := v.Sign() < 0
	bits := v.Num().BitLen()
	for _, width := range []int{8, 16, 32, 64, 128, 256} {
		capacity := width
		if signed {
			capacity--
		}
		if bits <= capacity {
			return ast.ElementaryType{Bits: width, Signed: signed}
		}
	}
	return ast.ElementaryType{Bits: 256, Signed: signed}
}

// IsSimpleType reports whether a (already-unwrapped) TypeName is simple:
// addresses, fixed-width integers, booleans, enums, fixed-point numbers.
func IsSimpleType(t ast.TypeName) bool {
	switch t.(type) {
	case ast.ElementaryType, ast.EnumType:
		return true
	default:
		return false
	}
}

// HasSimpleType is the AST-node variant: it unwraps v's static type
// before classifying it.
func HasSimpleType(v ast.Expression) bool {
	return IsSimpleType(Unwrap(v.StaticType()))
}

// Classify produces the full Classification for a type node, assigning a
// lowered record name for compound types. name is used as a human-
// readable seed for that record name (e.g. the struct/array's natural
// name); callers pass "" when no natural name exists (anonymous tuples,
// mapping value records), in which case RecordName is built purely from
// structure.
func Classify(t ast.TypeName, name string) Classification {
	u := Unwrap(t)
	if IsSimpleType(u) {
		if et, ok := u.(ast.ElementaryType); ok {
			return Classification{Tag: Simple, Bits: et.Bits, Signed: et.Signed}
		}
		// Enums are simple but width/signedness don't apply the same
		// way; model as an unsigned 8-bit discriminant.
		return Classification{Tag: Simple, Bits: 8, Signed: false}
	}
	return Classification{Tag: Compound, RecordName: recordName(u, name)}
}

func recordName(t ast.TypeName, name string) string {
	switch v := t.(type) {
	case ast.StructType:
		return "struct" + EscapeDeclName(structOrEnumName(v.Definition.Name, name))
	case ast.ContractType:
		return "struct" + EscapeDeclName(v.Definition.Name)
	case ast.ContractConstructionType:
		return "struct" + EscapeDeclName(v.Definition.Name) + "_ctor"
	case ast.ArrayType:
		return "Array_" + recordName(Unwrap(v.Base), "")
	case ast.MappingType:
		return "Map_" + recordName(Unwrap(v.Key), "") + "_" + recordName(Unwrap(v.Value), "")
	case ast.StringType:
		return "sc_string"
	case ast.BytesType:
		if v.Fixed == 0 {
			return "sc_bytes"
		}
		return "sc_bytes" + itoa(v.Fixed)
	case ast.TupleType:
		name := "Tuple"
		for _, c := range v.Components {
			name += "_" + recordName(Unwrap(c), "")
		}
		return name
	case ast.ModifierType:
		return "Modifier" + EscapeDeclName(v.Definition.Name)
	case ast.MagicType:
		switch v.Kind {
		case ast.MagicBlock:
			return "CallState"
		case ast.MagicMessage:
			return "CallState"
		case ast.MagicTransaction:
			return "CallState"
		}
	}
	return "sc_opaque"
}

func structOrEnumName(defName, fallback string) string {
	if defName != "" {
		return defName
	}
	return fallback
}

// EscapeDeclName returns d with every run of consecutive underscores
// doubled in length, so every escaped run is even-length and no two
// distinct source names ever map to the same escaped form (spec §4.6).
// The single-underscore separator `_` used elsewhere in lowered names
// therefore never collides with an escaped run of underscores from the
// source name, since escaped runs are always even-length (2, 4, 6, ...).
func EscapeDeclName(d string) string {
	var b strings.Builder
	i := 0
	for i < len(d) {
		if d[i] == '_' {
			j := i
			for j < len(d) && d[j] == '_' {
				j++
			}
			run := 2 * (j - i)
			b.WriteString(strings.Repeat("_", run))
			i = j
			continue
		}
		b.WriteByte(d[i])
		i++
	}
	return b.String()
}

// TypesEqual implements the type-equivalence predicate spec §3 defines
// for SignatureCollision: structural and width-sensitive for scalars,
// name-sensitive (by declaration identity) for compounds.
func TypesEqual(a, b ast.TypeName) bool {
	ua, ub := Unwrap(a), Unwrap(b)
	switch x := ua.(type) {
	case ast.ElementaryType:
		y, ok := ub.(ast.ElementaryType)
		return ok && x == y
	case ast.EnumType:
		y, ok := ub.(ast.EnumType)
		return ok && x.Definition == y.Definition
	case ast.StringType:
		_, ok := ub.(ast.StringType)
		return ok
	case ast.BytesType:
		y, ok := ub.(ast.BytesType)
		return ok && x.Fixed == y.Fixed
	case ast.StructType:
		y, ok := ub.(ast.StructType)
		return ok && x.Definition == y.Definition
	case ast.ContractType:
		y, ok := ub.(ast.ContractType)
		return ok && x.Definition == y.Definition
	case ast.ArrayType:
		y, ok := ub.(ast.ArrayType)
		if !ok || !TypesEqual(x.Base, y.Base) {
			return false
		}
		if (x.Length == nil) != (y.Length == nil) {
			return false
		}
		return x.Length == nil || *x.Length == *y.Length
	case ast.MappingType:
		y, ok := ub.(ast.MappingType)
		return ok && TypesEqual(x.Key, y.Key) && TypesEqual(x.Value, y.Value)
	case ast.TupleType:
		y, ok := ub.(ast.TupleType)
		if !ok || len(x.Components) != len(y.Components) {
			return false
		}
		for i := range x.Components {
			if !TypesEqual(x.Components[i], y.Components[i]) {
				return false
			}
		}
		return true
	case ast.ModifierType:
		y, ok := ub.(ast.ModifierType)
		return ok && x.Definition == y.Definition
	case ast.MagicType:
		y, ok := ub.(ast.MagicType)
		return ok && x.Kind == y.Kind
	case ast.ContractConstructionType:
		y, ok := ub.(ast.ContractConstructionType)
		return ok && x.Definition == y.Definition
	}
	return false
}

// MapDepth returns the nesting depth of a mapping type: 1 for
// `mapping(K=>V)` where V isn't itself a mapping, 2 for
// `mapping(K=>mapping(K2=>V))`, and so on. Non-mapping types have depth 0.
func MapDepth(t ast.TypeName) int {
	m, ok := Unwrap(t).(ast.MappingType)
	if !ok {
		return 0
	}
	return 1 + MapDepth(m.Value)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
