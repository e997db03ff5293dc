package backend

import (
	"math/big"

	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// NodeKind enumerates the expression forms of the backend tree.
type NodeKind uint8

const (
	// NodeError is the error sentinel. Consumers skip codegen for it.
	NodeError NodeKind = iota
	NodeUnit
	NodeConstBool
	NodeConstInt
	NodeConstFloat
	NodeConstString
	NodeConstChar
	NodeVar
	NodeFuncRef
	NodeAddressOf
	NodeIndirect
	NodeField
	NodeConstructor
	NodeArrayCtor
	NodeArrayIndex
	NodeCall
	NodeBinary
	NodeNegation
	NodeCompound
)

func (k NodeKind) String() string {
	switch k {
	case NodeError:
		return "error"
	case NodeUnit:
		return "unit"
	case NodeConstBool:
		return "const_bool"
	case NodeConstInt:
		return "const_int"
	case NodeConstFloat:
		return "const_float"
	case NodeConstString:
		return "const_string"
	case NodeConstChar:
		return "const_char"
	case NodeVar:
		return "var"
	case NodeFuncRef:
		return "func_ref"
	case NodeAddressOf:
		return "addr_of"
	case NodeIndirect:
		return "indirect"
	case NodeField:
		return "field"
	case NodeConstructor:
		return "constructor"
	case NodeArrayCtor:
		return "array_ctor"
	case NodeArrayIndex:
		return "array_index"
	case NodeCall:
		return "call"
	case NodeBinary:
		return "binary"
	case NodeNegation:
		return "negation"
	case NodeCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// BinOp is an arithmetic or logical binary operation in the backend tree.
// The lowering layer maps source-level operators onto these.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinLazyAnd
	BinLazyOr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinRem:
		return "%"
	case BinAnd:
		return "&"
	case BinOr:
		return "|"
	case BinXor:
		return "^"
	case BinShl:
		return "<<"
	case BinShr:
		return ">>"
	case BinLazyAnd:
		return "&&"
	case BinLazyOr:
		return "||"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	default:
		return "?"
	}
}

// UnOp is a unary operation in the backend tree.
type UnOp uint8

const (
	UnNeg UnOp = iota
	UnNot
)

func (op UnOp) String() string {
	if op == UnNot {
		return "!"
	}
	return "-"
}

// Var is a local or temporary variable slot in the function being built.
type Var struct {
	Name string
	Type types.TypeID
	Temp bool
}

// Label names a jump target inside a function body. Artificial labels
// carry no source name.
type Label struct {
	ID   int
	Name string
}

// Node is one expression in the backend tree. The payload fields used
// depend on Kind; unused fields stay zero.
type Node struct {
	Kind NodeKind
	Type types.TypeID
	Span source.Span

	BoolVal  bool
	IntVal   *big.Int
	FloatVal float64
	StrVal   string
	CharVal  rune

	Var  *Var
	Sym  symbols.SymbolID
	Name string

	// Operand: AddressOf, Indirect, Field, Negation, ArrayIndex (the array).
	Operand *Node
	// Index: ArrayIndex subscript.
	Index *Node
	// FieldIdx: Field offset, or the active member for union constructors.
	FieldIdx int
	// KnownValid marks an indirection that cannot fault and needs no check.
	KnownValid bool

	Fields  []*Node
	IsUnion bool

	Callee *Node
	Args   []*Node

	Left  *Node
	Right *Node
	Bin   BinOp
	Un    UnOp

	// Block and Value form a compound expression: run Block, yield Value.
	Block *Block
	Value *Node
}

// ErrorNode is the shared error sentinel.
var ErrorNode = &Node{Kind: NodeError}

// IsError reports whether n is absent or the error sentinel.
func IsError(n *Node) bool {
	return n == nil || n.Kind == NodeError
}
