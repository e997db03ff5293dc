package layout

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// targetFile mirrors the [target] section of a target description file.
type targetFile struct {
	Target struct {
		Triple   string `toml:"triple"`
		PtrSize  int    `toml:"ptr-size"`
		PtrAlign int    `toml:"ptr-align"`
	} `toml:"target"`
}

// LoadTarget reads a TOML target description. Missing alignment defaults
// to the pointer size.
func LoadTarget(path string) (Target, error) {
	var cfg targetFile
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Target{}, fmt.Errorf("layout: decode %q: %w", path, err)
	}
	t := Target{
		Triple:   cfg.Target.Triple,
		PtrSize:  cfg.Target.PtrSize,
		PtrAlign: cfg.Target.PtrAlign,
	}
	if t.Triple == "" {
		return Target{}, fmt.Errorf("layout: %q has no target.triple", path)
	}
	if t.PtrSize <= 0 {
		return Target{}, fmt.Errorf("layout: %q has no usable target.ptr-size", path)
	}
	if t.PtrAlign <= 0 {
		t.PtrAlign = t.PtrSize
	}
	return t, nil
}
