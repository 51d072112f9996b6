package ast

import "math/big"

// TypeName is the common interface for every type-node the frontend can
// attach to an expression, variable or parameter. Concrete
// implementations are value-comparable where that is meaningful
// (ElementaryType), and pointer-identity comparable where the underlying
// declaration matters (ContractType, StructType, EnumType).
type TypeName interface {
	typeName()
}

// ElementaryType covers addresses, fixed-width integers, booleans, fixed
// point numbers: the scalar vocabulary of the source language.
type ElementaryType struct {
	IsAddress    bool
	IsBool       bool
	IsFixedPoint bool
	// Bits and Signed are meaningful for integers and fixed-point types.
	Bits   int
	Signed bool
}

func (ElementaryType) typeName() {}

// RationalLiteralType is the static type of a numeric literal before
// `unwrap` resolves it to its inferred storage type (spec §3,
// TypeClassification's `unwrap` operation).
type RationalLiteralType struct {
	Value *big.Rat
}

func (RationalLiteralType) typeName() {}

// StringType is the dynamic `string` type.
type StringType struct{}

func (StringType) typeName() {}

// BytesType is a byte-string type; Fixed is the declared width in bytes,
// or 0 for the dynamic `bytes` type.
type BytesType struct {
	Fixed int
}

func (BytesType) typeName() {}

// ArrayType is a fixed- or dynamic-length array. Length is nil for a
// dynamic array.
type ArrayType struct {
	Base   TypeName
	Length *int
}

func (ArrayType) typeName() {}

// MappingType is `mapping(Key => Value)`.
type MappingType struct {
	Key   TypeName
	Value TypeName
}

func (MappingType) typeName() {}

// ContractType refers to a contract or interface by its definition.
type ContractType struct {
	Definition *ContractDefinition
}

func (ContractType) typeName() {}

// StructType refers to a struct by its definition.
type StructType struct {
	Definition *StructDefinition
}

func (StructType) typeName() {}

// EnumType refers to an enum by its definition.
type EnumType struct {
	Definition *EnumDefinition
}

func (EnumType) typeName() {}

// TupleType is the static type of a tuple expression (an unpacked
// multi-value), e.g. `(uint, bool)`.
type TupleType struct {
	Components []TypeName
}

func (TupleType) typeName() {}

// ModifierType is the pseudo-type of a modifier reference.
type ModifierType struct {
	Definition *ModifierDefinition
}

func (ModifierType) typeName() {}

// MagicKind distinguishes the three chain-global magic values.
type MagicKind int

const (
	MagicBlock MagicKind = iota
	MagicMessage
	MagicTransaction
)

// MagicType is the type of `block`, `msg`, or `tx`.
type MagicType struct {
	Kind MagicKind
}

func (MagicType) typeName() {}

// ContractConstructionType is the pseudo-type of a bare contract name
// used only in `new T(...)` position (§4.6 "construction type of a
// contract").
type ContractConstructionType struct {
	Definition *ContractDefinition
}

func (ContractConstructionType) typeName() {}

// TypeType is the type-of-type wrapper around another TypeName, as
// produced by a bare type reference (e.g. the callee of an explicit
// type-conversion). `unwrap` strips this.
type TypeType struct {
	Inner TypeName
}

func (TypeType) typeName() {}
