package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dafaust/gccrs/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	pathColor = color.New(color.FgWhite, color.Bold)
)

// Reporter renders diagnostics to a writer.
type Reporter struct {
	Out      io.Writer
	Files    *source.FileSet
	UseColor bool
}

// Report writes every diagnostic in the bag.
func (r Reporter) Report(bag *Bag) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		r.one(d)
	}
}

func (r Reporter) one(d Diagnostic) {
	sev := d.Severity.String()
	if r.UseColor {
		switch d.Severity {
		case SevError:
			sev = errColor.Sprint(sev)
		case SevWarning:
			sev = warnColor.Sprint(sev)
		case SevInfo:
			sev = infoColor.Sprint(sev)
		}
	}
	loc := r.spanString(d.Primary)
	fmt.Fprintf(r.Out, "%s %s[%04d]: %s\n", loc, sev, uint16(d.Code), d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(r.Out, "  note: %s (%s)\n", n.Msg, r.spanString(n.Span))
	}
}

func (r Reporter) spanString(sp source.Span) string {
	path := ""
	if r.Files != nil {
		path = r.Files.Path(sp.File)
	}
	if path == "" {
		return sp.String()
	}
	if r.UseColor {
		path = pathColor.Sprint(path)
	}
	return fmt.Sprintf("%s:%d-%d", path, sp.Start, sp.End)
}
