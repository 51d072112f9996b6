// Package ast defines the AST vocabulary that the external frontend
// (parser and semantic analysis stage) hands to the translator. It is a
// plain data model, not a parser: nodes are constructed by the frontend
// and only ever read here. Pointers between nodes (e.g. a ContractType's
// Definition, a FunctionDefinition's SuperFunction) are resolved by the
// frontend before the pipeline ever sees the tree, per spec §6.
package ast

// SourceUnit is one parsed input file.
type SourceUnit struct {
	Path      string
	Contracts []*ContractDefinition
}

// ContractKind distinguishes a deployable contract from a library or an
// interface, matching the vocabulary bundle extraction filters on.
type ContractKind int

const (
	KindContract ContractKind = iota
	KindLibrary
	KindInterface
)

func (k ContractKind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindLibrary:
		return "library"
	case KindInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// ContractDefinition is a single contract/library/interface declaration.
//
// LinearizedBaseContracts is ordered from most-derived (the contract
// itself, first) to most-base, exactly as the frontend computed it; the
// translator never re-sorts this list (spec §3 invariant).
type ContractDefinition struct {
	Name                     string
	Kind                     ContractKind
	LinearizedBaseContracts  []*ContractDefinition
	StateVariables           []*VariableDeclaration
	Functions                []*FunctionDefinition
	Modifiers                []*ModifierDefinition
	Structs                  []*StructDefinition
	Enums                    []*EnumDefinition
	Constructor              *FunctionDefinition
	Fallback                 *FunctionDefinition
}

// Visibility is a function's declared visibility.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityExternal
	VisibilityInternal
	VisibilityPrivate
)

// IsPubliclyReachable reports whether a flat contract builder should
// consider this visibility part of the concrete public interface.
func (v Visibility) IsPubliclyReachable() bool {
	return v == VisibilityPublic || v == VisibilityExternal
}

// FunctionDefinition is a method, free function, constructor or
// fallback. Constructors and fallbacks are represented the same way and
// distinguished only by where the frontend links them
// (ContractDefinition.Constructor / .Fallback).
type FunctionDefinition struct {
	Name             string
	Contract         *ContractDefinition
	Parameters       []*VariableDeclaration
	ReturnParameters []*VariableDeclaration
	Visibility       Visibility
	IsImplemented    bool
	ModifierInvocations []*ModifierInvocation
	Body             *Block

	// SuperFunction is the frontend-resolved pointer to the next
	// function up the linearization that this one overrides, or nil at
	// the top of the chain. Used by the call graph builder to follow
	// `super` chains (spec §4.4).
	SuperFunction *FunctionDefinition
}

// IsMultiReturn reports whether lowering this function is unsupported
// per the Open Question in spec §9: multi-return functions are rejected.
func (f *FunctionDefinition) IsMultiReturn() bool {
	return len(f.ReturnParameters) > 1
}

// ModifierDefinition is a contract modifier declaration.
type ModifierDefinition struct {
	Name       string
	Contract   *ContractDefinition
	Parameters []*VariableDeclaration
	Body       *Block
}

// ModifierInvocation applies a modifier (with arguments) to a function.
type ModifierInvocation struct {
	Modifier  *ModifierDefinition
	Arguments []Expression
}

// VariableDeclaration is a state variable, local variable or parameter.
type VariableDeclaration struct {
	Name            string
	Type            TypeName
	Value           Expression // initializer; nil if absent
	IsStateVariable bool
}

// StructDefinition declares a struct type scoped to a contract.
type StructDefinition struct {
	Name     string
	Contract *ContractDefinition
	Members  []*VariableDeclaration
}

// EnumDefinition declares an enum type scoped to a contract.
type EnumDefinition struct {
	Name     string
	Contract *ContractDefinition
	Values   []string
}
