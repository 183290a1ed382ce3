// Package types implements the Type representation (spec.md §3 "Type") and
// the bidirectional type checker (spec.md §4.6) that annotates a resolved
// AST and reports TypeError diagnostics.
package types

import (
	"fmt"
	"strings"
)

// Kind tags which variant of the type lattice a Type currently holds.
type Kind uint8

// Type kinds (spec.md §3 "Type": tagged variant).
const (
	Int Kind = iota
	Float
	Bool
	Null
	String
	Bytes
	Json
	List
	Map
	Set
	Tuple
	Record
	Enum
	Result
	Union
	Fn
	Generic
	TypeRef
	Any
)

// Type is a tagged sum over the language's type lattice. Only the fields
// relevant to Kind are meaningful; composite kinds (List, Map, Tuple, Fn,
// Union, Result, Record, Enum, Generic, TypeRef) use Elems/Params/Return/
// Name as documented per-constructor below.
type Type struct {
	Kind   Kind
	Name   string // Record/Enum/Generic/TypeRef name
	Elems  []Type // List: [T]; Set: [T]; Tuple: members; Union: members; Map: [K,V]; Result: [T,E]
	Params []Type // Fn parameter types; TypeRef generic arguments
	Return *Type  // Fn return type
}

// Primitive type constructors.
var (
	TInt    = Type{Kind: Int}
	TFloat  = Type{Kind: Float}
	TBool   = Type{Kind: Bool}
	TNull   = Type{Kind: Null}
	TString = Type{Kind: String}
	TBytes  = Type{Kind: Bytes}
	TJson   = Type{Kind: Json}
	TAny    = Type{Kind: Any}
)

// TList constructs a List(T) type.
func TList(elem Type) Type { return Type{Kind: List, Elems: []Type{elem}} }

// TSet constructs a Set(T) type.
func TSet(elem Type) Type { return Type{Kind: Set, Elems: []Type{elem}} }

// TMap constructs a Map(K, V) type.
func TMap(k, v Type) Type { return Type{Kind: Map, Elems: []Type{k, v}} }

// TTuple constructs a Tuple(Ts...) type.
func TTuple(elems ...Type) Type { return Type{Kind: Tuple, Elems: elems} }

// TUnion constructs a Union(Ts...) type.
func TUnion(members ...Type) Type { return Type{Kind: Union, Elems: members} }

// TResult constructs a Result(T, E) type.
func TResult(ok, err Type) Type { return Type{Kind: Result, Elems: []Type{ok, err}} }

// TRecord constructs a named record type reference.
func TRecord(name string) Type { return Type{Kind: Record, Name: name} }

// TEnum constructs a named enum type reference.
func TEnum(name string) Type { return Type{Kind: Enum, Name: name} }

// TGeneric constructs a generic type parameter reference (e.g. `T`).
func TGeneric(name string) Type { return Type{Kind: Generic, Name: name} }

// TRef constructs a named type reference with type arguments (e.g.
// `Foo(A, B)` before it is resolved to Record/Enum/alias).
func TRef(name string, args ...Type) Type { return Type{Kind: TypeRef, Name: name, Params: args} }

// TFn constructs a function type.
func TFn(params []Type, ret Type) Type {
	r := ret
	return Type{Kind: Fn, Params: params, Return: &r}
}

// IsNumeric reports whether t is Int or Float.
func (t Type) IsNumeric() bool { return t.Kind == Int || t.Kind == Float }

// String renders t in Lumen's surface syntax, for diagnostics.
func (t Type) String() string {
	switch t.Kind {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case Null:
		return "Null"
	case String:
		return "String"
	case Bytes:
		return "Bytes"
	case Json:
		return "Json"
	case Any:
		return "Any"
	case List:
		return fmt.Sprintf("List(%s)", t.Elems[0])
	case Set:
		return fmt.Sprintf("Set(%s)", t.Elems[0])
	case Map:
		return fmt.Sprintf("Map(%s, %s)", t.Elems[0], t.Elems[1])
	case Tuple:
		return fmt.Sprintf("(%s)", joinTypes(t.Elems))
	case Record:
		return t.Name
	case Enum:
		return t.Name
	case Result:
		return fmt.Sprintf("Result(%s, %s)", t.Elems[0], t.Elems[1])
	case Union:
		return joinTypesSep(t.Elems, " | ")
	case Fn:
		return fmt.Sprintf("Fn(%s) -> %s", joinTypes(t.Params), t.Return)
	case Generic:
		return t.Name
	case TypeRef:
		if len(t.Params) == 0 {
			return t.Name
		}

		return fmt.Sprintf("%s(%s)", t.Name, joinTypes(t.Params))
	default:
		return "?"
	}
}

func joinTypes(ts []Type) string { return joinTypesSep(ts, ", ") }

func joinTypesSep(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}

	return strings.Join(parts, sep)
}

// Equal reports structural equality between t and other. Any unifies with
// everything (it is the escape hatch for externs/untyped interop).
func (t Type) Equal(other Type) bool {
	if t.Kind == Any || other.Kind == Any {
		return true
	}

	if t.Kind != other.Kind {
		return false
	}

	switch t.Kind {
	case Record, Enum, Generic:
		return t.Name == other.Name
	case TypeRef:
		return t.Name == other.Name && equalTypeSlice(t.Params, other.Params)
	case List, Set, Map, Tuple, Union, Result:
		return equalTypeSlice(t.Elems, other.Elems)
	case Fn:
		return equalTypeSlice(t.Params, other.Params) && t.Return.Equal(*other.Return)
	default:
		return true
	}
}

func equalTypeSlice(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

// CommonSupertype returns the narrowest type both a and b can be treated as
// (spec.md §4.6 "if/else... common supertype"), and false if none exists.
// Numeric widening (Int, Float -> Float) and Null (which joins with any
// type as that type) are the only non-trivial joins; everything else
// requires equality.
func CommonSupertype(a, b Type) (Type, bool) {
	if a.Equal(b) {
		return a, true
	}

	if a.IsNumeric() && b.IsNumeric() {
		return TFloat, true
	}

	if a.Kind == Null {
		return b, true
	}

	if b.Kind == Null {
		return a, true
	}

	return Type{}, false
}
