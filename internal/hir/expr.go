package hir

import (
	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/symbols"
)

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	// ExprLiteral represents literals (int, float, bool, char, byte,
	// string, byte string).
	ExprLiteral ExprKind = iota
	// ExprIdentifier represents a resolved name reference.
	ExprIdentifier
	// ExprBorrow represents &expr / &mut expr.
	ExprBorrow
	// ExprDeref represents *expr, possibly operator-overloaded.
	ExprDeref
	// ExprNegation represents unary - and !.
	ExprNegation
	// ExprArith represents binary arithmetic/logical operators.
	ExprArith
	// ExprAssign represents lhs = rhs.
	ExprAssign
	// ExprCompoundAssign represents lhs op= rhs.
	ExprCompoundAssign
	// ExprCall represents call expressions, including ADT constructors.
	ExprCall
	// ExprMethodCall represents method calls (static or dynamic dispatch).
	ExprMethodCall
	// ExprFieldAccess represents expr.field.
	ExprFieldAccess
	// ExprIndex represents expr[index].
	ExprIndex
	// ExprTuple represents tuple construction (a, b, c).
	ExprTuple
	// ExprArray represents array construction, listed or copied elements.
	ExprArray
	// ExprRangeFromTo represents from..to.
	ExprRangeFromTo
	// ExprRangeFrom represents from.. .
	ExprRangeFrom
	// ExprRangeTo represents ..to.
	ExprRangeTo
	// ExprRangeFull represents .. .
	ExprRangeFull
	// ExprRangeFromToIncl represents from..=to.
	ExprRangeFromToIncl
	// ExprMatch represents match expressions.
	ExprMatch
	// ExprBlock represents a block of expressions valued by its tail.
	ExprBlock
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprIdentifier:
		return "Identifier"
	case ExprBorrow:
		return "Borrow"
	case ExprDeref:
		return "Deref"
	case ExprNegation:
		return "Negation"
	case ExprArith:
		return "Arith"
	case ExprAssign:
		return "Assign"
	case ExprCompoundAssign:
		return "CompoundAssign"
	case ExprCall:
		return "Call"
	case ExprMethodCall:
		return "MethodCall"
	case ExprFieldAccess:
		return "FieldAccess"
	case ExprIndex:
		return "Index"
	case ExprTuple:
		return "Tuple"
	case ExprArray:
		return "Array"
	case ExprRangeFromTo:
		return "RangeFromTo"
	case ExprRangeFrom:
		return "RangeFrom"
	case ExprRangeTo:
		return "RangeTo"
	case ExprRangeFull:
		return "RangeFull"
	case ExprRangeFromToIncl:
		return "RangeFromToIncl"
	case ExprMatch:
		return "Match"
	case ExprBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Expr represents an HIR expression node.
type Expr struct {
	ID   ExprID      // identity for facade lookups
	Kind ExprKind    // node kind
	Span source.Span // source location for diagnostics
	Data ExprData    // kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// ArithOp enumerates arithmetic and logical binary operators.
type ArithOp uint8

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpLazyAnd
	OpLazyOr
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpLazyAnd:
		return "&&"
	case OpLazyOr:
		return "||"
	default:
		return "?"
	}
}

// NegOp enumerates unary prefix operators.
type NegOp uint8

const (
	OpNeg NegOp = iota
	OpNot
)

func (op NegOp) String() string {
	if op == OpNot {
		return "!"
	}
	return "-"
}

// LiteralKind enumerates literal token kinds.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitChar
	LitByte
	LitString
	LitByteString
)

func (k LiteralKind) String() string {
	switch k {
	case LitInt:
		return "integer"
	case LitFloat:
		return "float"
	case LitBool:
		return "bool"
	case LitChar:
		return "char"
	case LitByte:
		return "byte"
	case LitString:
		return "string"
	case LitByteString:
		return "byte string"
	default:
		return "unknown"
	}
}

// LiteralData holds data for ExprLiteral. Value is the raw token text;
// numeric parsing and bounds checking happen during lowering.
type LiteralData struct {
	Kind  LiteralKind
	Value string
}

func (LiteralData) exprData() {}

// IdentifierData holds data for ExprIdentifier.
type IdentifierData struct {
	Name string
	Sym  symbols.SymbolID
}

func (IdentifierData) exprData() {}

// BorrowData holds data for ExprBorrow.
type BorrowData struct {
	Operand *Expr
	Mutable bool
}

func (BorrowData) exprData() {}

// DerefData holds data for ExprDeref.
type DerefData struct {
	Operand *Expr
}

func (DerefData) exprData() {}

// NegationData holds data for ExprNegation.
type NegationData struct {
	Op      NegOp
	Operand *Expr
}

func (NegationData) exprData() {}

// ArithData holds data for ExprArith.
type ArithData struct {
	Op    ArithOp
	Left  *Expr
	Right *Expr
}

func (ArithData) exprData() {}

// AssignData holds data for ExprAssign.
type AssignData struct {
	Left  *Expr
	Right *Expr
}

func (AssignData) exprData() {}

// CompoundAssignData holds data for ExprCompoundAssign.
type CompoundAssignData struct {
	Op    ArithOp
	Left  *Expr
	Right *Expr
}

func (CompoundAssignData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Fn   *Expr
	Args []*Expr
}

func (CallData) exprData() {}

// MethodCallData holds data for ExprMethodCall.
type MethodCallData struct {
	Receiver *Expr
	Method   string
	Args     []*Expr
}

func (MethodCallData) exprData() {}

// FieldAccessData holds data for ExprFieldAccess.
type FieldAccessData struct {
	Object *Expr
	Name   string
	Index  int
}

func (FieldAccessData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// TupleData holds data for ExprTuple.
type TupleData struct {
	Elems []*Expr
}

func (TupleData) exprData() {}

// ArrayElemsKind distinguishes listed elements from the copied form.
type ArrayElemsKind uint8

const (
	// ArrayElemsValues is [a, b, c].
	ArrayElemsValues ArrayElemsKind = iota
	// ArrayElemsCopied is [elem; count].
	ArrayElemsCopied
)

// ArrayData holds data for ExprArray.
type ArrayData struct {
	Kind   ArrayElemsKind
	Values []*Expr // listed form
	Elem   *Expr   // copied form
	Count  *Expr   // copied form, must fold to a constant
}

func (ArrayData) exprData() {}

// RangeData holds data for the range expression kinds. From/To may be nil
// depending on the kind.
type RangeData struct {
	From *Expr
	To   *Expr
}

func (RangeData) exprData() {}

// MatchData holds data for ExprMatch.
type MatchData struct {
	Scrutinee *Expr
	Cases     []MatchCase
}

func (MatchData) exprData() {}

// BlockData holds data for ExprBlock. The block's value is the last
// expression, or unit when empty.
type BlockData struct {
	Exprs []*Expr
}

func (BlockData) exprData() {}
