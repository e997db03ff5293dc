package sema

import (
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// AdjustKind enumerates the implicit conversion steps type checking can
// record for an expression.
type AdjustKind uint8

const (
	// AdjustBorrow takes the value's address (no-op on fat pointers).
	AdjustBorrow AdjustKind = iota
	// AdjustDeref dereferences, possibly through an operator overload.
	AdjustDeref
	// AdjustIndirection is a plain pointer/reference indirection.
	AdjustIndirection
	// AdjustUnsize converts a fixed-size array into a fat slice value.
	AdjustUnsize
)

func (k AdjustKind) String() string {
	switch k {
	case AdjustBorrow:
		return "borrow"
	case AdjustDeref:
		return "deref"
	case AdjustIndirection:
		return "indirection"
	case AdjustUnsize:
		return "unsize"
	default:
		return "?"
	}
}

// Adjustment is one implicit conversion step. Applying an expression's
// full ordered list left-to-right must yield a value of the last step's
// expected type.
type Adjustment struct {
	Kind     AdjustKind
	Expected types.TypeID
	Mutable  bool // borrow mutability

	// OverloadFn/OverloadItem carry the resolved deref operator for
	// AdjustDeref steps that go through an overload; OverloadFn is
	// NoTypeID for the plain deref form.
	OverloadFn   types.TypeID
	OverloadItem symbols.SymbolID
	// OverloadNeedsRef marks overloads whose receiver parameter is a
	// reference, requiring a borrow before the call.
	OverloadNeedsRef bool
}
