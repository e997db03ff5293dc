package types

import "fmt"

// TypeID uniquely identifies a resolved type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all resolved type kinds the lowering core consumes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindChar
	KindStr
	KindNever
	KindInt
	KindUint
	KindFloat
	KindAdt
	KindTuple
	KindArray
	KindSlice
	KindReference
	KindFnDef
	KindFnPtr
	KindDynamic
	KindParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindStr:
		return "str"
	case KindNever:
		return "never"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindAdt:
		return "adt"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindReference:
		return "reference"
	case KindFnDef:
		return "fndef"
	case KindFnPtr:
		return "fnptr"
	case KindDynamic:
		return "dyn"
	case KindParam:
		return "param"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats. WidthPtr marks the
// pointer-sized integers (isize/usize); the concrete bit count comes from
// the layout target.
type Width uint8

const (
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
	WidthPtr Width = 255
)

// Type is a compact descriptor for any resolved type. Structured kinds
// (ADT, tuple, fn, dyn, param) keep their payload in a side table reached
// through Info.
type Type struct {
	Kind    Kind
	Width   Width  // for numeric primitives
	Elem    TypeID // for array/slice/reference
	Count   uint32 // for arrays (static element count)
	Mutable bool   // for references
	Info    uint32 // side-table index for adt/tuple/fn/dyn/param
}

// FieldDef is one ordered field of a variant. Field order given by type
// checking is the binary layout order.
type FieldDef struct {
	Name string
	Type TypeID
}

// VariantDef describes one variant of an ADT. For enum variants the
// discriminant is the folded tag value and Index is the variant's stable
// position in the union-of-variants layout.
type VariantDef struct {
	Name         string
	Fields       []FieldDef
	Discriminant int64
	Index        int
}

// AdtInfo is the side-table payload for KindAdt.
type AdtInfo struct {
	Name     string
	IsEnum   bool
	Variants []VariantDef
}

// FnInfo is the side-table payload for KindFnDef and KindFnPtr.
type FnInfo struct {
	Name     string
	Params   []TypeID
	Result   TypeID
	Variadic bool
	// Generic marks signatures that still carry unsubstituted parameters
	// and need monomorphization before a direct call.
	Generic bool
}

// TupleInfo is the side-table payload for KindTuple.
type TupleInfo struct {
	Elems []TypeID
}

// DynItem pairs a trait item with its function type. The fn TypeID is the
// item's identity: dynamic dispatch matches call-site fn types against it.
type DynItem struct {
	TraitItem string
	Fn        TypeID
}

// DynInfo is the side-table payload for KindDynamic. Item order is the
// vtable slot order.
type DynInfo struct {
	Name  string
	Items []DynItem
}

// ParamInfo is the side-table payload for KindParam.
type ParamInfo struct {
	Name     string
	Resolved TypeID
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer of the given width.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeArray describes a fixed-size array.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice describes a dynamically-sized slice of elem.
func MakeSlice(elem TypeID) Type {
	return Type{Kind: KindSlice, Elem: elem}
}

// MakeReference describes &T or &mut T depending on the mutable flag.
func MakeReference(elem TypeID, mutable bool) Type {
	return Type{Kind: KindReference, Elem: elem, Mutable: mutable}
}

// IsPrimitive reports whether the kind lowers to a scalar backend value.
func IsPrimitive(k Kind) bool {
	switch k {
	case KindBool, KindChar, KindInt, KindUint, KindFloat:
		return true
	default:
		return false
	}
}
