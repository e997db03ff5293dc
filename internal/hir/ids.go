package hir

// ExprID is the stable identity of an HIR expression node. The lookup
// facade keys every resolution fact (type, callee, adjustments, ...) by it.
type ExprID uint32

// NoExprID marks the absence of an expression identity.
const NoExprID ExprID = 0

// IsValid reports whether the id refers to a real expression.
func (id ExprID) IsValid() bool {
	return id != NoExprID
}

// IDGen hands out fresh expression ids. Id 0 stays reserved as invalid.
type IDGen struct {
	next ExprID
}

// NewIDGen creates a generator starting at 1.
func NewIDGen() *IDGen {
	return &IDGen{next: 1}
}

// NewIDGenFrom creates a generator starting at the given id. Lowering
// uses a high start so synthesized nodes never collide with upstream ids.
func NewIDGenFrom(start ExprID) *IDGen {
	if start == NoExprID {
		start = 1
	}
	return &IDGen{next: start}
}

// Next returns a fresh ExprID.
func (g *IDGen) Next() ExprID {
	id := g.next
	g.next++
	return id
}
