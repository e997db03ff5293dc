package backend

import "github.com/dafaust/gccrs/internal/source"

// StmtKind enumerates the statement forms of the backend tree.
type StmtKind uint8

const (
	StmtAssign StmtKind = iota
	StmtExpr
	StmtDecl
	StmtLabel
	StmtGoto
	StmtSwitch
	StmtCase
	// StmtArrayInit fills Var with Count copies of Elem. Code generators
	// expand it to a loop when Count is not a foldable constant.
	StmtArrayInit
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssign:
		return "assign"
	case StmtExpr:
		return "expr"
	case StmtDecl:
		return "decl"
	case StmtLabel:
		return "label"
	case StmtGoto:
		return "goto"
	case StmtSwitch:
		return "switch"
	case StmtCase:
		return "case"
	case StmtArrayInit:
		return "array_init"
	default:
		return "unknown"
	}
}

// Stmt is one statement in the backend tree. Payload fields depend on Kind.
type Stmt struct {
	Kind StmtKind
	Span source.Span

	// Assign.
	Lhs *Node
	Rhs *Node

	// Expr statement value, or the switch discriminant.
	Expr *Node

	// Label definition, goto target, or case jump target.
	Label *Label

	// Switch body.
	Body *Block

	// Case bounds. Low==nil means the default case; High==nil means a
	// single-value case; both set means an inclusive range case.
	Low  *Node
	High *Node

	// Decl and ArrayInit.
	Var   *Var
	Init  *Node
	Count *Node
	Elem  *Node
}

// Block is an ordered statement list.
type Block struct {
	Stmts []*Stmt
}

// Add appends a statement to the block.
func (b *Block) Add(s *Stmt) {
	if s != nil {
		b.Stmts = append(b.Stmts, s)
	}
}
