package lower

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/dafaust/gccrs/internal/backend"
	"github.com/dafaust/gccrs/internal/diag"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/source"
	"github.com/dafaust/gccrs/internal/types"
)

// emitCaseGuards appends the case-label statement(s) that route the
// switch discriminant to the given label for one pattern.
func (l *Lowerer) emitCaseGuards(pat *hir.Pattern, scrRoot types.TypeID, label *backend.Label) error {
	switch data := pat.Data.(type) {
	case hir.WildcardData, hir.BindingData:
		l.b.Append(backend.DefaultCase(label, pat.Span))
		return nil
	case hir.LiteralPatData:
		val, err := l.patternConst(data.Kind, data.Value, scrRoot, pat.Span)
		if err != nil {
			return err
		}
		if backend.IsError(val) {
			return nil
		}
		l.b.Append(backend.Case(val, nil, label, pat.Span))
		return nil
	case hir.RangePatData:
		lo, err := l.patternConst(data.Kind, data.Lo, scrRoot, pat.Span)
		if err != nil {
			return err
		}
		hi, err := l.patternConst(data.Kind, data.Hi, scrRoot, pat.Span)
		if err != nil {
			return err
		}
		if backend.IsError(lo) || backend.IsError(hi) {
			return nil
		}
		l.b.Append(backend.Case(lo, hi, label, pat.Span))
		return nil
	case hir.VariantPatData:
		adt, ok := l.res.Types.Adt(scrRoot)
		if !ok {
			return fmt.Errorf("lower: variant pattern against non-ADT scrutinee")
		}
		if data.VariantIdx >= len(adt.Variants) {
			return fmt.Errorf("lower: variant index %d out of range for %s", data.VariantIdx, adt.Name)
		}
		bt := l.res.Types.Builtins()
		tag := backend.ConstIntVal(bt.ISize, adt.Variants[data.VariantIdx].Discriminant, pat.Span)
		l.b.Append(backend.Case(tag, nil, label, pat.Span))
		return nil
	case hir.TuplePatData:
		return fmt.Errorf("lower: tuple pattern survived decomposition")
	default:
		return fmt.Errorf("lower: unhandled pattern kind %s", pat.Kind)
	}
}

// bindPatternVars declares the pattern's bindings against the scrutinee
// value. Enum payload bindings read the field one past the tag.
func (l *Lowerer) bindPatternVars(pat *hir.Pattern, scrRef *backend.Node, scrRoot types.TypeID) error {
	switch data := pat.Data.(type) {
	case hir.WildcardData, hir.LiteralPatData, hir.RangePatData:
		return nil
	case hir.BindingData:
		v := &backend.Var{Name: data.Name, Type: scrRef.Type}
		l.b.BindVar(data.Sym, v)
		l.b.Append(backend.DeclInit(v, scrRef, pat.Span))
		return nil
	case hir.VariantPatData:
		adt, ok := l.res.Types.Adt(scrRoot)
		if !ok || data.VariantIdx >= len(adt.Variants) {
			return fmt.Errorf("lower: variant pattern against non-ADT scrutinee")
		}
		variant := adt.Variants[data.VariantIdx]
		for i, elem := range data.Elems {
			if i >= len(variant.Fields) {
				return fmt.Errorf("lower: %d payload patterns for %d-field variant %s", len(data.Elems), len(variant.Fields), variant.Name)
			}
			switch elemData := elem.Data.(type) {
			case hir.WildcardData:
			case hir.BindingData:
				fieldTy := variant.Fields[i].Type
				field := backend.Field(fieldTy, scrRef, i+1, elem.Span)
				v := &backend.Var{Name: elemData.Name, Type: fieldTy}
				l.b.BindVar(elemData.Sym, v)
				l.b.Append(backend.DeclInit(v, field, elem.Span))
			default:
				l.bag.Sorry(elem.Span, "nested %s pattern in variant payload", elem.Kind)
			}
		}
		return nil
	case hir.TuplePatData:
		return fmt.Errorf("lower: tuple pattern survived decomposition")
	default:
		return fmt.Errorf("lower: unhandled pattern kind %s", pat.Kind)
	}
}

// patternConst materializes a pattern literal as a case-label constant of
// the scrutinee's type.
func (l *Lowerer) patternConst(kind hir.LiteralKind, text string, scrRoot types.TypeID, span source.Span) (*backend.Node, error) {
	switch kind {
	case hir.LitInt:
		val, ok := new(big.Int).SetString(text, 0)
		if !ok {
			l.bag.Error(diag.LowInvalidLiteral, span, "invalid integer pattern %q", text)
			return backend.ErrorNode, nil
		}
		root, ok := l.res.Types.Lookup(scrRoot)
		if !ok {
			return nil, fmt.Errorf("lower: integer pattern with unknown scrutinee type")
		}
		minVal, maxVal, ok := types.IntegerBounds(root, l.target.PtrBits())
		if ok && (val.Cmp(minVal) < 0 || val.Cmp(maxVal) > 0) {
			l.bag.Error(diag.LowLiteralOverflow, span, "integer pattern %s out of range [%s, %s]", text, minVal, maxVal)
			return backend.ErrorNode, nil
		}
		return backend.ConstInt(scrRoot, val, span), nil
	case hir.LitBool:
		return backend.ConstBool(scrRoot, text == "true", span), nil
	case hir.LitChar:
		r, size := utf8.DecodeRuneInString(text)
		if size == 0 {
			l.bag.Error(diag.LowInvalidLiteral, span, "invalid char pattern %q", text)
			return backend.ErrorNode, nil
		}
		return backend.ConstChar(scrRoot, r, span), nil
	case hir.LitByte:
		if len(text) != 1 {
			l.bag.Error(diag.LowInvalidLiteral, span, "invalid byte pattern %q", text)
			return backend.ErrorNode, nil
		}
		return backend.ConstIntVal(scrRoot, int64(text[0]), span), nil
	default:
		l.bag.Sorry(span, "%s patterns in case position", kind)
		return backend.ErrorNode, nil
	}
}
