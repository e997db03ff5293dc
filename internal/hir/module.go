package hir

import (
	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/symbols"
	"github.com/dafaust/gccrs/internal/types"
)

// Param is one formal parameter of a function body.
type Param struct {
	Name string
	Sym  symbols.SymbolID
	Type types.TypeID
}

// Func is a fully type-checked function body awaiting lowering.
type Func struct {
	Name   string
	Sym    symbols.SymbolID
	Type   types.TypeID // the FnDef type
	Params []Param
	Body   *Expr
	Span   source.Span
}

// Module is a compilation unit: an ordered list of function bodies.
type Module struct {
	Name  string
	Funcs []*Func
}
