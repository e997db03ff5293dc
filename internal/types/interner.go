package types

import (
	"fmt"
	"math/big"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types every lowering needs.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Char    TypeID
	Str     TypeID
	Never   TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	ISize   TypeID
	U8      TypeID
	U16     TypeID
	U32     TypeID
	U64     TypeID
	USize   TypeID
	F32     TypeID
	F64     TypeID
}

// Interner provides stable TypeIDs. Structural descriptors are deduplicated;
// nominal types (ADTs, fn defs, dyn objects, params) get a fresh id per
// registration, which is what makes a fn TypeID usable as identity.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins

	adts   []AdtInfo
	fns    []FnInfo
	tuples []TupleInfo
	dyns   []DynInfo
	params []ParamInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 64),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.I8 = in.Intern(MakeInt(Width8))
	in.builtins.I16 = in.Intern(MakeInt(Width16))
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.ISize = in.Intern(MakeInt(WidthPtr))
	in.builtins.U8 = in.Intern(MakeUint(Width8))
	in.builtins.U16 = in.Intern(MakeUint(Width16))
	in.builtins.U32 = in.Intern(MakeUint(Width32))
	in.builtins.U64 = in.Intern(MakeUint(Width64))
	in.builtins.USize = in.Intern(MakeUint(WidthPtr))
	in.builtins.F32 = in.Intern(MakeFloat(Width32))
	in.builtins.F64 = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the structural descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || int(id) >= len(in.types) {
		return Type{}, false
	}
	t := in.types[id]
	if t.Kind == KindInvalid {
		return Type{}, false
	}
	return t, true
}

// NewAdt registers an ADT and returns its nominal TypeID.
func (in *Interner) NewAdt(info AdtInfo) TypeID {
	idx, err := safecast.Conv[uint32](len(in.adts))
	if err != nil {
		panic(fmt.Errorf("len(adts) overflow: %w", err))
	}
	in.adts = append(in.adts, info)
	return in.internRaw(Type{Kind: KindAdt, Info: idx})
}

// Adt returns the side-table payload for an ADT type.
func (in *Interner) Adt(id TypeID) (*AdtInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindAdt || int(t.Info) >= len(in.adts) {
		return nil, false
	}
	return &in.adts[t.Info], true
}

// NewFn registers a function signature. kind must be KindFnDef or KindFnPtr.
func (in *Interner) NewFn(kind Kind, info FnInfo) TypeID {
	if kind != KindFnDef && kind != KindFnPtr {
		panic(fmt.Errorf("types: NewFn with kind %s", kind))
	}
	idx, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("len(fns) overflow: %w", err))
	}
	in.fns = append(in.fns, info)
	return in.internRaw(Type{Kind: kind, Info: idx})
}

// Fn returns the signature payload for a fn def/ptr type.
func (in *Interner) Fn(id TypeID) (*FnInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || (t.Kind != KindFnDef && t.Kind != KindFnPtr) || int(t.Info) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[t.Info], true
}

// NewTuple registers a tuple type. Element order is layout order.
func (in *Interner) NewTuple(elems []TypeID) TypeID {
	idx, err := safecast.Conv[uint32](len(in.tuples))
	if err != nil {
		panic(fmt.Errorf("len(tuples) overflow: %w", err))
	}
	in.tuples = append(in.tuples, TupleInfo{Elems: elems})
	return in.internRaw(Type{Kind: KindTuple, Info: idx})
}

// Tuple returns the element list of a tuple type.
func (in *Interner) Tuple(id TypeID) (*TupleInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTuple || int(t.Info) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[t.Info], true
}

// NewDyn registers a dynamic (trait-object) type with its ordered item list.
func (in *Interner) NewDyn(info DynInfo) TypeID {
	idx, err := safecast.Conv[uint32](len(in.dyns))
	if err != nil {
		panic(fmt.Errorf("len(dyns) overflow: %w", err))
	}
	in.dyns = append(in.dyns, info)
	return in.internRaw(Type{Kind: KindDynamic, Info: idx})
}

// Dyn returns the item list of a dynamic type.
func (in *Interner) Dyn(id TypeID) (*DynInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindDynamic || int(t.Info) >= len(in.dyns) {
		return nil, false
	}
	return &in.dyns[t.Info], true
}

// NewParam registers a generic placeholder.
func (in *Interner) NewParam(name string) TypeID {
	idx, err := safecast.Conv[uint32](len(in.params))
	if err != nil {
		panic(fmt.Errorf("len(params) overflow: %w", err))
	}
	in.params = append(in.params, ParamInfo{Name: name})
	return in.internRaw(Type{Kind: KindParam, Info: idx})
}

// BindParam records the concrete type a placeholder resolves to.
func (in *Interner) BindParam(param, concrete TypeID) {
	t, ok := in.Lookup(param)
	if !ok || t.Kind != KindParam || int(t.Info) >= len(in.params) {
		return
	}
	in.params[t.Info].Resolved = concrete
}

// ResolveParam peels a generic placeholder down to its concrete binding.
// Non-param ids are returned unchanged.
func (in *Interner) ResolveParam(id TypeID) TypeID {
	for {
		t, ok := in.Lookup(id)
		if !ok || t.Kind != KindParam || int(t.Info) >= len(in.params) {
			return id
		}
		resolved := in.params[t.Info].Resolved
		if resolved == NoTypeID || resolved == id {
			return id
		}
		id = resolved
	}
}

// Root peels references and resolved params down to the underlying type.
func (in *Interner) Root(id TypeID) TypeID {
	for {
		id = in.ResolveParam(id)
		t, ok := in.Lookup(id)
		if !ok {
			return id
		}
		if t.Kind != KindReference {
			return id
		}
		id = t.Elem
	}
}

// IsUnit reports whether the type is the unit type.
func (in *Interner) IsUnit(id TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindUnit
}

// IsFatPointer reports whether values of this type already carry the
// {data, length} slice representation. Borrowing such a value is a no-op.
func (in *Interner) IsFatPointer(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindSlice, KindStr:
		return true
	case KindReference:
		et, ok := in.Lookup(t.Elem)
		return ok && (et.Kind == KindSlice || et.Kind == KindStr)
	default:
		return false
	}
}

// IntegerBounds returns the inclusive [min, max] range of an integer type.
// ptrBits supplies the width of pointer-sized integers.
func IntegerBounds(t Type, ptrBits uint) (minVal, maxVal *big.Int, ok bool) {
	bits := uint(t.Width)
	if t.Width == WidthPtr {
		bits = ptrBits
	}
	if bits == 0 {
		return nil, nil, false
	}
	one := big.NewInt(1)
	switch t.Kind {
	case KindInt:
		// [-2^(bits-1), 2^(bits-1)-1]
		half := new(big.Int).Lsh(one, bits-1)
		return new(big.Int).Neg(half), new(big.Int).Sub(half, one), true
	case KindUint:
		// [0, 2^bits-1]
		full := new(big.Int).Lsh(one, bits)
		return big.NewInt(0), full.Sub(full, one), true
	default:
		return nil, nil, false
	}
}
