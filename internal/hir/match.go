package hir

import (
	"github.com/dafaust/gccrs/internal/source"
)

// MatchArm owns an ordered, non-empty list of alternative patterns
// (OR-patterns) and an optional guard.
type MatchArm struct {
	Patterns []*Pattern
	Guard    *Expr
	Span     source.Span
}

// MatchCase pairs one arm with its result expression.
type MatchCase struct {
	Arm  MatchArm
	Body *Expr
}

// CloneArm deep-copies the arm's patterns. The guard and body expressions
// are shared: lowering never mutates expression nodes.
func (a MatchArm) CloneArm() MatchArm {
	return MatchArm{
		Patterns: clonePatterns(a.Patterns),
		Guard:    a.Guard,
		Span:     a.Span,
	}
}
