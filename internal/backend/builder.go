package backend

import (
	"fmt"
	"math/big"

	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// Builder accumulates the backend tree for one function. Statements go
// into the innermost block on the stack; the root block holds the whole
// body once building finishes.
type Builder struct {
	fnName string
	stack  []*Block

	temps  int
	labels int

	vars   map[symbols.SymbolID]*Var
	consts map[symbols.SymbolID]*Node

	// compiledFns caches function references by the nominal identity of
	// their function type, so repeated references to the same item share
	// one node and monomorphized instances are built once.
	compiledFns map[types.TypeID]*Node
	usedFns     map[symbols.SymbolID]bool
}

// NewBuilder starts a builder for the named function with the root block
// already pushed.
func NewBuilder(fnName string) *Builder {
	return &Builder{
		fnName:      fnName,
		stack:       []*Block{{}},
		vars:        make(map[symbols.SymbolID]*Var),
		consts:      make(map[symbols.SymbolID]*Node),
		compiledFns: make(map[types.TypeID]*Node),
		usedFns:     make(map[symbols.SymbolID]bool),
	}
}

// FnName returns the name of the function being built.
func (b *Builder) FnName() string { return b.fnName }

// PushBlock opens a nested block and makes it current.
func (b *Builder) PushBlock() *Block {
	blk := &Block{}
	b.stack = append(b.stack, blk)
	return blk
}

// PopBlock closes the current block and returns it. Popping the root
// block is a builder bug.
func (b *Builder) PopBlock() *Block {
	if len(b.stack) <= 1 {
		panic("backend: block stack underflow")
	}
	blk := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return blk
}

// CurrentBlock returns the innermost open block.
func (b *Builder) CurrentBlock() *Block {
	return b.stack[len(b.stack)-1]
}

// Finish returns the root block. It is an error to finish with nested
// blocks still open.
func (b *Builder) Finish() (*Block, error) {
	if len(b.stack) != 1 {
		return nil, fmt.Errorf("backend: %d block(s) left open in %s", len(b.stack)-1, b.fnName)
	}
	return b.stack[0], nil
}

// Append adds a statement to the current block.
func (b *Builder) Append(s *Stmt) {
	b.CurrentBlock().Add(s)
}

// Temporary declares a fresh temporary of the given type in the current
// block and returns its slot.
func (b *Builder) Temporary(ty types.TypeID, span source.Span) *Var {
	v := &Var{Name: fmt.Sprintf("t%d", b.temps), Type: ty, Temp: true}
	b.temps++
	b.Append(&Stmt{Kind: StmtDecl, Var: v, Span: span})
	return v
}

// NewLabel mints an artificial label.
func (b *Builder) NewLabel() *Label {
	l := &Label{ID: b.labels}
	b.labels++
	return l
}

// BindVar associates a symbol with its variable slot.
func (b *Builder) BindVar(sym symbols.SymbolID, v *Var) {
	b.vars[sym] = v
}

// VarFor returns the slot bound to sym, if any.
func (b *Builder) VarFor(sym symbols.SymbolID) (*Var, bool) {
	v, ok := b.vars[sym]
	return v, ok
}

// BindConst associates a symbol with its folded constant value.
func (b *Builder) BindConst(sym symbols.SymbolID, n *Node) {
	b.consts[sym] = n
}

// ConstFor returns the constant bound to sym, if any.
func (b *Builder) ConstFor(sym symbols.SymbolID) (*Node, bool) {
	n, ok := b.consts[sym]
	return n, ok
}

// CompiledFn returns the cached reference for a function type identity.
func (b *Builder) CompiledFn(fn types.TypeID) (*Node, bool) {
	n, ok := b.compiledFns[fn]
	return n, ok
}

// RegisterFn caches a function reference under its type identity and
// marks the symbol as used.
func (b *Builder) RegisterFn(fn types.TypeID, n *Node) {
	b.compiledFns[fn] = n
	if n != nil && n.Sym != 0 {
		b.usedFns[n.Sym] = true
	}
}

// MarkUsed records that a function symbol is referenced by the body.
func (b *Builder) MarkUsed(sym symbols.SymbolID) {
	if sym != 0 {
		b.usedFns[sym] = true
	}
}

// UsedFns reports every function symbol the built body references.
func (b *Builder) UsedFns() map[symbols.SymbolID]bool {
	return b.usedFns
}

// Statement constructors.

func Assign(lhs, rhs *Node, span source.Span) *Stmt {
	return &Stmt{Kind: StmtAssign, Lhs: lhs, Rhs: rhs, Span: span}
}

func ExprStmt(n *Node, span source.Span) *Stmt {
	return &Stmt{Kind: StmtExpr, Expr: n, Span: span}
}

func DefineLabel(l *Label, span source.Span) *Stmt {
	return &Stmt{Kind: StmtLabel, Label: l, Span: span}
}

func Goto(l *Label, span source.Span) *Stmt {
	return &Stmt{Kind: StmtGoto, Label: l, Span: span}
}

func Switch(value *Node, body *Block, span source.Span) *Stmt {
	return &Stmt{Kind: StmtSwitch, Expr: value, Body: body, Span: span}
}

func Case(low, high *Node, target *Label, span source.Span) *Stmt {
	return &Stmt{Kind: StmtCase, Low: low, High: high, Label: target, Span: span}
}

func DefaultCase(target *Label, span source.Span) *Stmt {
	return &Stmt{Kind: StmtCase, Label: target, Span: span}
}

func DeclInit(v *Var, init *Node, span source.Span) *Stmt {
	return &Stmt{Kind: StmtDecl, Var: v, Init: init, Span: span}
}

func ArrayInit(v *Var, count, elem *Node, span source.Span) *Stmt {
	return &Stmt{Kind: StmtArrayInit, Var: v, Count: count, Elem: elem, Span: span}
}

// Expression constructors.

func Unit(ty types.TypeID, span source.Span) *Node {
	return &Node{Kind: NodeUnit, Type: ty, Span: span}
}

func ConstBool(ty types.TypeID, v bool, span source.Span) *Node {
	return &Node{Kind: NodeConstBool, Type: ty, BoolVal: v, Span: span}
}

func ConstInt(ty types.TypeID, v *big.Int, span source.Span) *Node {
	return &Node{Kind: NodeConstInt, Type: ty, IntVal: v, Span: span}
}

func ConstIntVal(ty types.TypeID, v int64, span source.Span) *Node {
	return ConstInt(ty, big.NewInt(v), span)
}

func ConstFloat(ty types.TypeID, v float64, span source.Span) *Node {
	return &Node{Kind: NodeConstFloat, Type: ty, FloatVal: v, Span: span}
}

func ConstString(ty types.TypeID, v string, span source.Span) *Node {
	return &Node{Kind: NodeConstString, Type: ty, StrVal: v, Span: span}
}

func ConstChar(ty types.TypeID, v rune, span source.Span) *Node {
	return &Node{Kind: NodeConstChar, Type: ty, CharVal: v, Span: span}
}

func VarRef(v *Var, span source.Span) *Node {
	return &Node{Kind: NodeVar, Type: v.Type, Var: v, Span: span}
}

func FuncRef(ty types.TypeID, sym symbols.SymbolID, name string, span source.Span) *Node {
	return &Node{Kind: NodeFuncRef, Type: ty, Sym: sym, Name: name, Span: span}
}

func AddressOf(ty types.TypeID, operand *Node, span source.Span) *Node {
	if IsError(operand) {
		return ErrorNode
	}
	return &Node{Kind: NodeAddressOf, Type: ty, Operand: operand, Span: span}
}

func Indirect(ty types.TypeID, operand *Node, knownValid bool, span source.Span) *Node {
	if IsError(operand) {
		return ErrorNode
	}
	return &Node{Kind: NodeIndirect, Type: ty, Operand: operand, KnownValid: knownValid, Span: span}
}

func Field(ty types.TypeID, object *Node, index int, span source.Span) *Node {
	if IsError(object) {
		return ErrorNode
	}
	return &Node{Kind: NodeField, Type: ty, Operand: object, FieldIdx: index, Span: span}
}

func Constructor(ty types.TypeID, fields []*Node, span source.Span) *Node {
	for _, f := range fields {
		if IsError(f) {
			return ErrorNode
		}
	}
	return &Node{Kind: NodeConstructor, Type: ty, Fields: fields, Span: span}
}

// UnionConstructor builds an aggregate with only the member at index
// active, as enum variant payloads require.
func UnionConstructor(ty types.TypeID, index int, field *Node, span source.Span) *Node {
	if IsError(field) {
		return ErrorNode
	}
	return &Node{Kind: NodeConstructor, Type: ty, IsUnion: true, FieldIdx: index, Fields: []*Node{field}, Span: span}
}

func ArrayCtor(ty types.TypeID, values []*Node, span source.Span) *Node {
	for _, v := range values {
		if IsError(v) {
			return ErrorNode
		}
	}
	return &Node{Kind: NodeArrayCtor, Type: ty, Fields: values, Span: span}
}

func ArrayIndexExpr(ty types.TypeID, array, index *Node, span source.Span) *Node {
	if IsError(array) || IsError(index) {
		return ErrorNode
	}
	return &Node{Kind: NodeArrayIndex, Type: ty, Operand: array, Index: index, Span: span}
}

func Call(ty types.TypeID, callee *Node, args []*Node, span source.Span) *Node {
	if IsError(callee) {
		return ErrorNode
	}
	for _, a := range args {
		if IsError(a) {
			return ErrorNode
		}
	}
	return &Node{Kind: NodeCall, Type: ty, Callee: callee, Args: args, Span: span}
}

func Binary(ty types.TypeID, op BinOp, left, right *Node, span source.Span) *Node {
	if IsError(left) || IsError(right) {
		return ErrorNode
	}
	return &Node{Kind: NodeBinary, Type: ty, Bin: op, Left: left, Right: right, Span: span}
}

func Negation(ty types.TypeID, op UnOp, operand *Node, span source.Span) *Node {
	if IsError(operand) {
		return ErrorNode
	}
	return &Node{Kind: NodeNegation, Type: ty, Un: op, Operand: operand, Span: span}
}

func Compound(ty types.TypeID, block *Block, value *Node, span source.Span) *Node {
	return &Node{Kind: NodeCompound, Type: ty, Block: block, Value: value, Span: span}
}

// Fold evaluates n down to a constant where it can: negations of integer
// constants fold, everything else is returned untouched. Discriminant
// expressions rely on this.
func Fold(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == NodeNegation && n.Un == UnNeg {
		op := Fold(n.Operand)
		if op != nil && op.Kind == NodeConstInt {
			return ConstInt(n.Type, new(big.Int).Neg(op.IntVal), n.Span)
		}
	}
	return n
}
