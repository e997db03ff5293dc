package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/dafaust/gccrs/internal/types"
)

// SymbolID identifies a declaration produced by name resolution.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol.
const NoSymbolID SymbolID = 0

// IsValid reports whether the id refers to a real declaration.
func (id SymbolID) IsValid() bool {
	return id != NoSymbolID
}

// DeclKind classifies what a symbol refers to.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclFunc
	DeclImplItem
	DeclTraitItem
	DeclVar
	DeclConst
)

// Decl is one resolved declaration. The lowering core only reads these;
// earlier phases populate them.
type Decl struct {
	ID   SymbolID
	Kind DeclKind
	Name string
	Type types.TypeID

	// Receiver is the root receiver type for impl items.
	Receiver types.TypeID
	// Trait names the owning trait for trait items.
	Trait string
	// HasDefault marks trait items that carry a default body.
	HasDefault bool
}

// Table holds every declaration the lowering core can be asked about.
type Table struct {
	decls []Decl

	// implsByRecv indexes impl items by their receiver root type for
	// method probing.
	implsByRecv map[types.TypeID][]SymbolID
}

// NewTable creates an empty symbol table. Id 0 stays reserved as invalid.
func NewTable() *Table {
	return &Table{
		decls:       make([]Decl, 1, 64),
		implsByRecv: make(map[types.TypeID][]SymbolID, 16),
	}
}

func (t *Table) add(d Decl) SymbolID {
	lenDecls, err := safecast.Conv[uint32](len(t.decls))
	if err != nil {
		panic(fmt.Errorf("len(decls) overflow: %w", err))
	}
	id := SymbolID(lenDecls)
	d.ID = id
	t.decls = append(t.decls, d)
	return id
}

// AddFunc registers a free function declaration.
func (t *Table) AddFunc(name string, fnType types.TypeID) SymbolID {
	return t.add(Decl{Kind: DeclFunc, Name: name, Type: fnType})
}

// AddVar registers a variable declaration.
func (t *Table) AddVar(name string, ty types.TypeID) SymbolID {
	return t.add(Decl{Kind: DeclVar, Name: name, Type: ty})
}

// AddConst registers a constant declaration.
func (t *Table) AddConst(name string, ty types.TypeID) SymbolID {
	return t.add(Decl{Kind: DeclConst, Name: name, Type: ty})
}

// AddImplItem registers a method of an inherent or trait impl block,
// keyed by the receiver's root type for probing.
func (t *Table) AddImplItem(recv types.TypeID, name string, fnType types.TypeID) SymbolID {
	id := t.add(Decl{Kind: DeclImplItem, Name: name, Type: fnType, Receiver: recv})
	t.implsByRecv[recv] = append(t.implsByRecv[recv], id)
	return id
}

// AddTraitItem registers a trait method, optionally carrying a default body.
func (t *Table) AddTraitItem(trait, name string, fnType types.TypeID, hasDefault bool) SymbolID {
	return t.add(Decl{Kind: DeclTraitItem, Name: name, Type: fnType, Trait: trait, HasDefault: hasDefault})
}

// Lookup returns the declaration for a symbol.
func (t *Table) Lookup(id SymbolID) (Decl, bool) {
	if t == nil || !id.IsValid() || int(id) >= len(t.decls) {
		return Decl{}, false
	}
	return t.decls[id], true
}

// ProbeImpls returns every impl item with the given name on the receiver's
// root type, in registration order.
func (t *Table) ProbeImpls(recv types.TypeID, name string) []Decl {
	if t == nil {
		return nil
	}
	var out []Decl
	for _, id := range t.implsByRecv[recv] {
		d := t.decls[id]
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}
