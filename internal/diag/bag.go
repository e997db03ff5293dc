package diag

import (
	"fmt"

	"github.com/dafaust/gccrs/internal/source"
)

// Bag accumulates diagnostics up to a fixed limit.
type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 100
	}
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add appends a diagnostic, honoring the limit. Returns false when the
// diagnostic was not recorded.
func (b *Bag) Add(d Diagnostic) bool {
	if b == nil || len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Error records a SevError diagnostic at the given span.
func (b *Bag) Error(code Code, primary source.Span, format string, args ...any) {
	b.Add(Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Primary:  primary,
	})
}

// Sorry records a "not yet supported" diagnostic (UnsupportedConstruct class).
func (b *Bag) Sorry(primary source.Span, format string, args ...any) {
	b.Add(Diagnostic{
		Severity: SevError,
		Code:     LowUnsupportedConstruct,
		Message:  fmt.Sprintf(format, args...),
		Primary:  primary,
	})
}

// HasErrors reports whether any diagnostic with Severity >= Error is present.
func (b *Bag) HasErrors() bool {
	if b == nil {
		return false
	}
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items returns a read-only view of the recorded diagnostics. Callers must
// not modify the returned slice.
func (b *Bag) Items() []Diagnostic {
	if b == nil {
		return nil
	}
	return b.items
}
