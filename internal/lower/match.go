package lower

import (
	"fmt"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/types"
)

// lowerMatch routes a match expression by the scrutinee's root type kind.
// Primitives and enums lower to one switch directly; tuple scrutinees go
// through the decomposition into nested single-discriminant matches.
func (l *Lowerer) lowerMatch(e *hir.Expr, data hir.MatchData) (*backend.Node, error) {
	scrRoot := l.rootOf(l.typeOf(data.Scrutinee))
	root, ok := l.res.Types.Lookup(scrRoot)
	if !ok {
		return backend.ErrorNode, nil
	}
	switch root.Kind {
	case types.KindTuple:
		if len(l.headBinds[e.ID]) > 0 {
			l.bag.Sorry(data.Scrutinee.Span, "cannot bind a tuple-valued match head")
			return backend.ErrorNode, nil
		}
		outer, err := l.simplifyTupleMatch(e, data)
		if err != nil || outer == nil {
			return backend.ErrorNode, err
		}
		return l.lowerExpr(outer)
	case types.KindFloat:
		// The switch construct has no continuous-range case labels.
		l.bag.Sorry(data.Scrutinee.Span, "cannot match on floating-point values")
		return backend.ErrorNode, nil
	case types.KindBool, types.KindChar, types.KindInt, types.KindUint:
		return l.lowerMatchDirect(e, data, scrRoot, false)
	case types.KindAdt:
		adt, _ := l.res.Types.Adt(scrRoot)
		if adt == nil || !adt.IsEnum {
			l.bag.Sorry(data.Scrutinee.Span, "cannot match on struct values")
			return backend.ErrorNode, nil
		}
		return l.lowerMatchDirect(e, data, scrRoot, true)
	default:
		l.bag.Sorry(data.Scrutinee.Span, "cannot match on %s values", root.Kind)
		return backend.ErrorNode, nil
	}
}

// lowerMatchDirect lowers a single-discriminant match: one switch whose
// discriminant is either the scrutinee itself or, for enums, the tag
// field at offset zero. Each case gets a fresh label, its bindings, its
// body, and an unconditional jump to a shared end label.
func (l *Lowerer) lowerMatchDirect(e *hir.Expr, data hir.MatchData, scrRoot types.TypeID, isEnum bool) (*backend.Node, error) {
	bt := l.res.Types.Builtins()
	resultTy := l.typeOf(e)
	needTmp := resultTy != types.NoTypeID && !l.res.Types.IsUnit(resultTy)

	var tmp *backend.Var
	if needTmp {
		tmp = l.b.Temporary(resultTy, e.Span)
	}

	scrVal, err := l.lowerExpr(data.Scrutinee)
	if err != nil || backend.IsError(scrVal) {
		return backend.ErrorNode, err
	}
	// Bindings and the discriminant read both consume the scrutinee, so
	// it is evaluated exactly once into a temporary.
	scrVar := l.b.Temporary(scrRoot, data.Scrutinee.Span)
	scrRef := backend.VarRef(scrVar, data.Scrutinee.Span)
	l.b.Append(backend.Assign(scrRef, scrVal, data.Scrutinee.Span))

	// Binding patterns lifted off a tuple-head position bind the
	// scrutinee temporary; the declarations sit ahead of the switch and
	// cover every branch the arm was merged into.
	for _, bind := range l.headBinds[e.ID] {
		v := &backend.Var{Name: bind.Name, Type: scrRef.Type}
		l.b.BindVar(bind.Sym, v)
		l.b.Append(backend.DeclInit(v, scrRef, data.Scrutinee.Span))
	}

	discr := scrRef
	if isEnum {
		discr = backend.Field(bt.ISize, scrRef, 0, data.Scrutinee.Span)
	}

	end := l.b.NewLabel()
	body := l.b.PushBlock()
	defaultSeen := false
	for i := range data.Cases {
		c := &data.Cases[i]
		caseLabel := l.b.NewLabel()
		for _, pat := range c.Arm.Patterns {
			// A switch carries at most one default; later catch-alls are
			// unreachable behind the first.
			if pat.IsCatchAll() {
				if !defaultSeen {
					l.b.Append(backend.DefaultCase(caseLabel, pat.Span))
					defaultSeen = true
				}
				continue
			}
			if err := l.emitCaseGuards(pat, scrRoot, caseLabel); err != nil {
				l.b.PopBlock()
				return nil, err
			}
		}
		l.b.Append(backend.DefineLabel(caseLabel, c.Arm.Span))
		if len(c.Arm.Patterns) > 0 {
			if err := l.bindPatternVars(c.Arm.Patterns[0], scrRef, scrRoot); err != nil {
				l.b.PopBlock()
				return nil, err
			}
		}
		if c.Arm.Guard != nil {
			l.bag.Sorry(c.Arm.Guard.Span, "match arm guards are not supported")
		}
		bodyVal, err := l.lowerExpr(c.Body)
		if err != nil {
			l.b.PopBlock()
			return nil, err
		}
		switch {
		case backend.IsError(bodyVal):
			// Reported at the offending subexpression; the arm still
			// closes so later arms get lowered.
		case needTmp:
			l.b.Append(backend.Assign(backend.VarRef(tmp, c.Body.Span), bodyVal, c.Body.Span))
		case bodyVal.Kind != backend.NodeUnit:
			l.b.Append(backend.ExprStmt(bodyVal, c.Body.Span))
		}
		l.b.Append(backend.Goto(end, c.Arm.Span))
		if defaultSeen {
			// Every later arm sits behind this catch-all.
			break
		}
	}
	l.b.PopBlock()
	l.b.Append(backend.Switch(discr, body, e.Span))
	l.b.Append(backend.DefineLabel(end, e.Span))

	if needTmp {
		return backend.VarRef(tmp, e.Span), nil
	}
	return backend.Unit(bt.Unit, e.Span), nil
}

// casePair is one (remaining-pattern, arm) entry of a decomposition group.
type casePair struct {
	pat   *hir.Pattern
	guard *hir.Expr
	body  *hir.Expr
}

// patternGroup collects the cases whose first tuple element is
// structurally equal. Groups keep first-insertion order; pairs keep
// source order.
type patternGroup struct {
	key   *hir.Pattern
	pairs []casePair
}

// add appends a pair unless an earlier catch-all already dominates it: a
// switch default from an earlier arm must win over later value cases.
func addPair(pairs []casePair, p casePair) []casePair {
	for _, existing := range pairs {
		if existing.pat.IsCatchAll() {
			return pairs
		}
	}
	return append(pairs, p)
}

// simplifyTupleMatch rewrites a match over a tuple scrutinee into an
// outer match on the first element whose case bodies are inner matches
// over the remaining elements. Catch-all first elements become a real
// default: their arm joins every existing group and seeds a trailing
// default group, so dropping them cannot change behavior. Binding heads
// additionally declare their name against the head value.
func (l *Lowerer) simplifyTupleMatch(e *hir.Expr, data hir.MatchData) (*hir.Expr, error) {
	scr := data.Scrutinee
	tuple, ok := scr.Data.(hir.TupleData)
	if !ok || len(tuple.Elems) < 2 {
		l.bag.Sorry(scr.Span, "cannot decompose a non-literal tuple scrutinee")
		return nil, nil
	}
	elems := tuple.Elems
	head := elems[0]
	tail := l.tailTupleExpr(elems[1:], scr)

	var groups []*patternGroup
	var headBinds []hir.BindingData
	var defaults []casePair
	for i := range data.Cases {
		c := &data.Cases[i]
		if len(c.Arm.Patterns) == 0 {
			return nil, fmt.Errorf("lower: match arm without patterns")
		}
		// Only the first alternative takes part in the decomposition.
		first := c.Arm.Patterns[0]
		if first.IsCatchAll() {
			pair := casePair{pat: wildcardAt(first), guard: c.Arm.Guard, body: c.Body}
			for _, g := range groups {
				g.pairs = addPair(g.pairs, pair)
			}
			defaults = addPair(defaults, pair)
			continue
		}
		tp, ok := first.Data.(hir.TuplePatData)
		if !ok {
			l.bag.Sorry(first.Span, "unsupported pattern %s against a tuple scrutinee", first.Kind)
			continue
		}
		if tp.ItemsKind == hir.TupleItemsRanged {
			l.bag.Sorry(first.Span, "ranged tuple patterns are not supported")
			continue
		}
		if len(tp.Patterns) != len(elems) {
			return nil, fmt.Errorf("lower: tuple pattern arity %d against %d-tuple", len(tp.Patterns), len(elems))
		}
		key := tp.Patterns[0].Clone()
		var rest *hir.Pattern
		if len(tp.Patterns) == 2 {
			rest = tp.Patterns[1].Clone()
		} else {
			rest = &hir.Pattern{
				Kind: hir.PatTuple,
				Span: first.Span,
				Data: hir.TuplePatData{
					ItemsKind: hir.TupleItemsMultiple,
					Patterns:  clonePatternSlice(tp.Patterns[1:]),
				},
			}
		}
		pair := casePair{pat: rest, guard: c.Arm.Guard, body: c.Body}
		// A catch-all first element matches every head: its tail joins
		// every group and seeds the trailing default group. A binding
		// head additionally binds the head value itself.
		if key.IsCatchAll() {
			if bd, ok := key.Data.(hir.BindingData); ok {
				headBinds = append(headBinds, bd)
			}
			for _, g := range groups {
				g.pairs = addPair(g.pairs, pair)
			}
			defaults = addPair(defaults, pair)
			continue
		}
		g := findGroup(groups, key)
		if g == nil {
			// A group born after a catch-all case still has to honor it.
			g = &patternGroup{key: key, pairs: append([]casePair(nil), defaults...)}
			groups = append(groups, g)
		}
		g.pairs = addPair(g.pairs, pair)
	}
	if len(groups) == 0 && len(defaults) == 0 {
		l.bag.Sorry(e.Span, "tuple match with no usable cases")
		return nil, nil
	}

	resultTy := l.typeOf(e)
	outerCases := make([]hir.MatchCase, 0, len(groups)+1)
	for _, g := range groups {
		outerCases = append(outerCases, hir.MatchCase{
			Arm:  hir.MatchArm{Patterns: []*hir.Pattern{g.key}, Span: g.key.Span},
			Body: l.innerMatchExpr(tail, g.pairs, resultTy, e),
		})
	}
	if len(defaults) > 0 {
		wc := &hir.Pattern{Kind: hir.PatWildcard, Span: e.Span, Data: hir.WildcardData{}}
		outerCases = append(outerCases, hir.MatchCase{
			Arm:  hir.MatchArm{Patterns: []*hir.Pattern{wc}, Span: e.Span},
			Body: l.innerMatchExpr(tail, defaults, resultTy, e),
		})
	}

	outer := &hir.Expr{
		ID:   l.ids.Next(),
		Kind: hir.ExprMatch,
		Span: e.Span,
		Data: hir.MatchData{Scrutinee: head, Cases: outerCases},
	}
	l.typeCache[outer.ID] = resultTy
	if len(headBinds) > 0 {
		l.headBinds[outer.ID] = headBinds
	}
	return outer, nil
}

// tailTupleExpr wraps the remaining scrutinee elements: the single
// element is used directly, more get re-wrapped as a fresh tuple
// expression whose type is registered for this body's lookups.
func (l *Lowerer) tailTupleExpr(rest []*hir.Expr, scr *hir.Expr) *hir.Expr {
	if len(rest) == 1 {
		return rest[0]
	}
	elemTys := make([]types.TypeID, len(rest))
	for i, elem := range rest {
		elemTys[i] = l.typeOf(elem)
	}
	tail := &hir.Expr{
		ID:   l.ids.Next(),
		Kind: hir.ExprTuple,
		Span: scr.Span,
		Data: hir.TupleData{Elems: rest},
	}
	l.typeCache[tail.ID] = l.res.Types.NewTuple(elemTys)
	return tail
}

// innerMatchExpr synthesizes the match over the tail for one group.
func (l *Lowerer) innerMatchExpr(tail *hir.Expr, pairs []casePair, resultTy types.TypeID, origin *hir.Expr) *hir.Expr {
	cases := make([]hir.MatchCase, 0, len(pairs))
	for _, p := range pairs {
		cases = append(cases, hir.MatchCase{
			Arm:  hir.MatchArm{Patterns: []*hir.Pattern{p.pat}, Guard: p.guard, Span: p.pat.Span},
			Body: p.body,
		})
	}
	inner := &hir.Expr{
		ID:   l.ids.Next(),
		Kind: hir.ExprMatch,
		Span: origin.Span,
		Data: hir.MatchData{Scrutinee: tail, Cases: cases},
	}
	l.typeCache[inner.ID] = resultTy
	return inner
}

func findGroup(groups []*patternGroup, key *hir.Pattern) *patternGroup {
	for _, g := range groups {
		if g.key.Equal(key) {
			return g
		}
	}
	return nil
}

func wildcardAt(p *hir.Pattern) *hir.Pattern {
	return &hir.Pattern{Kind: hir.PatWildcard, Span: p.Span, Data: hir.WildcardData{}}
}

func clonePatternSlice(ps []*hir.Pattern) []*hir.Pattern {
	out := make([]*hir.Pattern, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}
