package driver_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dafaust/gccrs/internal/driver"
	"github.com/dafaust/gccrs/internal/hir"
	"github.com/dafaust/gccrs/internal/layout"
)

func TestDemoModuleLowersClean(t *testing.T) {
	in := driver.Demo()
	r, err := driver.LowerModule(in.Res, layout.X86_64LinuxGNU(), in.Module)
	if err != nil {
		t.Fatalf("LowerModule: %v", err)
	}
	if r.Broken() {
		t.Fatalf("demo module reported diagnostics: %v", r.Bag.Items())
	}
	if len(r.Funcs) != 3 {
		t.Fatalf("lowered %d functions, want 3", len(r.Funcs))
	}
	for _, fn := range r.Funcs {
		if fn.Dump == "" {
			t.Errorf("function %s produced an empty dump", fn.Name)
		}
	}
	if !strings.Contains(r.Funcs[0].Dump, "switch") {
		t.Errorf("tuple_match dump carries no switch:\n%s", r.Funcs[0].Dump)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := driver.OpenDiskCache("gccrs-test", t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	in := driver.Demo()
	key := driver.DigestOf(in.Module, "x86_64-linux-gnu")

	var miss driver.DiskPayload
	if hit, err := cache.Get(key, &miss); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	r, err := driver.LowerModule(in.Res, layout.X86_64LinuxGNU(), in.Module)
	if err != nil {
		t.Fatalf("LowerModule: %v", err)
	}
	if err := cache.Put(key, driver.PayloadOf(r, "x86_64-linux-gnu")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got driver.DiskPayload
	hit, err := cache.Get(key, &got)
	if err != nil || !hit {
		t.Fatalf("Get after Put: hit=%v err=%v", hit, err)
	}
	if got.Module != "demo" || len(got.FuncDumps) != 3 {
		t.Fatalf("payload = %q with %d dumps", got.Module, len(got.FuncDumps))
	}
	if got.FuncDumps[0] != r.Funcs[0].Dump {
		t.Fatal("cached dump differs from the lowered one")
	}
}

func TestDigestChangesWithTriple(t *testing.T) {
	mod := driver.Demo().Module
	a := driver.DigestOf(mod, "x86_64-linux-gnu")
	b := driver.DigestOf(mod, "riscv64-linux-gnu")
	if a == b {
		t.Fatal("different triples share a cache key")
	}
}

func TestDigestChangesWithContent(t *testing.T) {
	modWith := func(text string) *hir.Module {
		body := &hir.Expr{Kind: hir.ExprLiteral, Data: hir.LiteralData{Kind: hir.LitInt, Value: text}}
		return &hir.Module{Name: "demo", Funcs: []*hir.Func{{Name: "f", Body: body}}}
	}
	a := driver.DigestOf(modWith("1"), "x86_64-linux-gnu")
	b := driver.DigestOf(modWith("2"), "x86_64-linux-gnu")
	if a == b {
		t.Fatal("an edited function body shares a cache key")
	}
	if a != driver.DigestOf(modWith("1"), "x86_64-linux-gnu") {
		t.Fatal("identical content produced different keys")
	}
}

func TestLowerModulesParallel(t *testing.T) {
	inputs := []driver.Input{driver.Demo(), driver.Demo(), driver.Demo()}
	var events []driver.Event
	results, err := driver.LowerModules(context.Background(), inputs, driver.Options{
		Target: layout.X86_64LinuxGNU(),
		Jobs:   2,
		Notify: func(ev driver.Event) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatalf("LowerModules: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("%d results, want 3", len(results))
	}
	for i, r := range results {
		if r == nil || r.Module != "demo" {
			t.Fatalf("result %d = %+v", i, r)
		}
	}
	var done int
	for _, ev := range events {
		if ev.Kind == driver.EventModuleDone {
			done++
		}
	}
	if done != 3 {
		t.Fatalf("%d done events, want 3", done)
	}
}

func TestLowerModulesUsesCache(t *testing.T) {
	cache, err := driver.OpenDiskCache("gccrs-test", t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	opts := driver.Options{Target: layout.X86_64LinuxGNU(), Cache: cache}

	if _, err := driver.LowerModules(context.Background(), []driver.Input{driver.Demo()}, opts); err != nil {
		t.Fatalf("first run: %v", err)
	}

	var cachedEvents int
	opts.Notify = func(ev driver.Event) {
		if ev.Kind == driver.EventModuleCached {
			cachedEvents++
		}
	}
	if _, err := driver.LowerModules(context.Background(), []driver.Input{driver.Demo()}, opts); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if cachedEvents != 1 {
		t.Fatalf("%d cached events on the second run, want 1", cachedEvents)
	}
}
