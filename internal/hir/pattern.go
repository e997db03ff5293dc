package hir

import (
	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/symbols"
)

// PatternKind enumerates HIR pattern kinds.
type PatternKind uint8

const (
	// PatWildcard matches anything and binds nothing.
	PatWildcard PatternKind = iota
	// PatLiteral matches one constant value.
	PatLiteral
	// PatBinding matches anything and binds the scrutinee to a name.
	PatBinding
	// PatTuple destructures a tuple.
	PatTuple
	// PatVariant matches one enum variant, optionally destructuring its
	// payload fields.
	PatVariant
	// PatRange matches an inclusive constant range.
	PatRange
)

func (k PatternKind) String() string {
	switch k {
	case PatWildcard:
		return "Wildcard"
	case PatLiteral:
		return "Literal"
	case PatBinding:
		return "Binding"
	case PatTuple:
		return "Tuple"
	case PatVariant:
		return "Variant"
	case PatRange:
		return "Range"
	default:
		return "Unknown"
	}
}

// Pattern is one HIR pattern node. A pattern is owned by exactly one
// MatchArm; decomposition works on clones, never on the original tree.
type Pattern struct {
	Kind PatternKind
	Span source.Span
	Data PatternData
}

// PatternData is the interface for pattern-specific data.
type PatternData interface {
	patternData()
}

// WildcardData holds data for PatWildcard.
type WildcardData struct{}

func (WildcardData) patternData() {}

// LiteralPatData holds data for PatLiteral. Value is the raw literal text
// in the same form ExprLiteral carries.
type LiteralPatData struct {
	Kind  LiteralKind
	Value string
}

func (LiteralPatData) patternData() {}

// BindingData holds data for PatBinding.
type BindingData struct {
	Name string
	Sym  symbols.SymbolID
}

func (BindingData) patternData() {}

// TupleItemsKind distinguishes the two tuple-pattern item shapes.
type TupleItemsKind uint8

const (
	// TupleItemsMultiple is (p0, p1, ..., pn).
	TupleItemsMultiple TupleItemsKind = iota
	// TupleItemsRanged is (p0, .., pn) with a gap in the middle.
	TupleItemsRanged
)

// TuplePatData holds data for PatTuple.
type TuplePatData struct {
	ItemsKind TupleItemsKind
	// Patterns holds the item patterns for the Multiple shape.
	Patterns []*Pattern
	// Lower/Upper hold the items on each side of the gap for the Ranged
	// shape.
	Lower []*Pattern
	Upper []*Pattern
}

func (TuplePatData) patternData() {}

// VariantPatData holds data for PatVariant.
type VariantPatData struct {
	// Path is the source path text (diagnostics only); the resolved
	// variant comes from the lookup facade keyed by the match expression.
	Path string
	// VariantIdx is the variant's stable index inside its ADT.
	VariantIdx int
	// Elems destructure the variant payload positionally; empty for
	// fieldless variants.
	Elems []*Pattern
}

func (VariantPatData) patternData() {}

// RangePatData holds data for PatRange. Bounds are literal texts; the
// range is inclusive on both ends.
type RangePatData struct {
	Kind LiteralKind
	Lo   string
	Hi   string
}

func (RangePatData) patternData() {}

// Clone returns a deep copy of the pattern. Decomposition retries and
// partial discards rely on the original tree staying untouched.
func (p *Pattern) Clone() *Pattern {
	if p == nil {
		return nil
	}
	out := &Pattern{Kind: p.Kind, Span: p.Span}
	switch data := p.Data.(type) {
	case WildcardData:
		out.Data = data
	case LiteralPatData:
		out.Data = data
	case BindingData:
		out.Data = data
	case TuplePatData:
		out.Data = TuplePatData{
			ItemsKind: data.ItemsKind,
			Patterns:  clonePatterns(data.Patterns),
			Lower:     clonePatterns(data.Lower),
			Upper:     clonePatterns(data.Upper),
		}
	case VariantPatData:
		out.Data = VariantPatData{
			Path:       data.Path,
			VariantIdx: data.VariantIdx,
			Elems:      clonePatterns(data.Elems),
		}
	case RangePatData:
		out.Data = data
	default:
		out.Data = p.Data
	}
	return out
}

func clonePatterns(ps []*Pattern) []*Pattern {
	if ps == nil {
		return nil
	}
	out := make([]*Pattern, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

// Equal reports structural equality of two patterns. Binding names are
// ignored; two bindings compare equal because they accept the same values.
func (p *Pattern) Equal(other *Pattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Kind != other.Kind {
		return false
	}
	switch a := p.Data.(type) {
	case WildcardData:
		return true
	case BindingData:
		return true
	case LiteralPatData:
		b, ok := other.Data.(LiteralPatData)
		return ok && a.Kind == b.Kind && a.Value == b.Value
	case RangePatData:
		b, ok := other.Data.(RangePatData)
		return ok && a.Kind == b.Kind && a.Lo == b.Lo && a.Hi == b.Hi
	case VariantPatData:
		b, ok := other.Data.(VariantPatData)
		if !ok || a.VariantIdx != b.VariantIdx || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !a.Elems[i].Equal(b.Elems[i]) {
				return false
			}
		}
		return true
	case TuplePatData:
		b, ok := other.Data.(TuplePatData)
		if !ok || a.ItemsKind != b.ItemsKind {
			return false
		}
		return patternsEqual(a.Patterns, b.Patterns) &&
			patternsEqual(a.Lower, b.Lower) &&
			patternsEqual(a.Upper, b.Upper)
	default:
		return false
	}
}

func patternsEqual(a, b []*Pattern) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// IsCatchAll reports whether the pattern matches every value of its type
// (wildcards and bare bindings).
func (p *Pattern) IsCatchAll() bool {
	return p != nil && (p.Kind == PatWildcard || p.Kind == PatBinding)
}
