package layout_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dafaust/gccrs/internal/layout"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTarget(t *testing.T) {
	path := writeTemp(t, `
[target]
triple = "riscv32-unknown-elf"
ptr-size = 4
`)
	got, err := layout.LoadTarget(path)
	if err != nil {
		t.Fatalf("LoadTarget: %v", err)
	}
	if got.Triple != "riscv32-unknown-elf" || got.PtrSize != 4 {
		t.Fatalf("unexpected target: %+v", got)
	}
	if got.PtrAlign != 4 {
		t.Fatalf("PtrAlign default = %d, want ptr-size", got.PtrAlign)
	}
	if got.PtrBits() != 32 {
		t.Fatalf("PtrBits = %d, want 32", got.PtrBits())
	}
}

func TestLoadTargetRejectsIncomplete(t *testing.T) {
	for name, content := range map[string]string{
		"no triple":   "[target]\nptr-size = 8\n",
		"no ptr-size": "[target]\ntriple = \"x86_64-linux-gnu\"\n",
	} {
		path := writeTemp(t, content)
		if _, err := layout.LoadTarget(path); err == nil {
			t.Errorf("%s: LoadTarget accepted an incomplete file", name)
		}
	}
}
