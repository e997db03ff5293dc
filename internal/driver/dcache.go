package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dafaust/gccrs/internal/hir"
)

// Bump when the payload format changes so stale entries self-invalidate.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 cache key over a module's lowering inputs.
type Digest [sha256.Size]byte

// DigestOf keys a cache entry by the module's content, the target triple
// and the schema version. The fingerprint walks every function body, so
// an edited expression misses the cache even when the module keeps its
// name.
func DigestOf(mod *hir.Module, triple string) Digest {
	h := sha256.New()
	h.Write([]byte{byte(diskCacheSchemaVersion), byte(diskCacheSchemaVersion >> 8)})
	h.Write([]byte(mod.Name))
	h.Write([]byte{0})
	h.Write([]byte(triple))
	for _, fn := range mod.Funcs {
		fmt.Fprintf(h, "\x00fn %s %d", fn.Name, fn.Type)
		for _, p := range fn.Params {
			fmt.Fprintf(h, " %s:%d", p.Name, p.Type)
		}
		hashExpr(h, fn.Body)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// hashExpr writes a structural fingerprint of the expression tree:
// kinds, operators, names, raw literal texts and resolved ids.
func hashExpr(h io.Writer, e *hir.Expr) {
	if e == nil {
		fmt.Fprint(h, " .")
		return
	}
	fmt.Fprintf(h, " (%s", e.Kind)
	switch data := e.Data.(type) {
	case hir.LiteralData:
		fmt.Fprintf(h, " %s %q", data.Kind, data.Value)
	case hir.IdentifierData:
		fmt.Fprintf(h, " %s#%d", data.Name, data.Sym)
	case hir.BorrowData:
		fmt.Fprintf(h, " mut=%v", data.Mutable)
		hashExpr(h, data.Operand)
	case hir.DerefData:
		hashExpr(h, data.Operand)
	case hir.NegationData:
		fmt.Fprintf(h, " %d", data.Op)
		hashExpr(h, data.Operand)
	case hir.ArithData:
		fmt.Fprintf(h, " %d", data.Op)
		hashExpr(h, data.Left)
		hashExpr(h, data.Right)
	case hir.AssignData:
		hashExpr(h, data.Left)
		hashExpr(h, data.Right)
	case hir.CompoundAssignData:
		fmt.Fprintf(h, " %d", data.Op)
		hashExpr(h, data.Left)
		hashExpr(h, data.Right)
	case hir.CallData:
		hashExpr(h, data.Fn)
		for _, a := range data.Args {
			hashExpr(h, a)
		}
	case hir.MethodCallData:
		fmt.Fprintf(h, " %s", data.Method)
		hashExpr(h, data.Receiver)
		for _, a := range data.Args {
			hashExpr(h, a)
		}
	case hir.FieldAccessData:
		fmt.Fprintf(h, " %s@%d", data.Name, data.Index)
		hashExpr(h, data.Object)
	case hir.IndexData:
		hashExpr(h, data.Object)
		hashExpr(h, data.Index)
	case hir.TupleData:
		for _, el := range data.Elems {
			hashExpr(h, el)
		}
	case hir.ArrayData:
		fmt.Fprintf(h, " %d", data.Kind)
		for _, el := range data.Values {
			hashExpr(h, el)
		}
		hashExpr(h, data.Elem)
		hashExpr(h, data.Count)
	case hir.RangeData:
		hashExpr(h, data.From)
		hashExpr(h, data.To)
	case hir.MatchData:
		hashExpr(h, data.Scrutinee)
		for i := range data.Cases {
			c := &data.Cases[i]
			for _, p := range c.Arm.Patterns {
				hashPattern(h, p)
			}
			hashExpr(h, c.Arm.Guard)
			hashExpr(h, c.Body)
		}
	case hir.BlockData:
		for _, el := range data.Exprs {
			hashExpr(h, el)
		}
	}
	fmt.Fprint(h, ")")
}

func hashPattern(h io.Writer, p *hir.Pattern) {
	if p == nil {
		fmt.Fprint(h, " .")
		return
	}
	fmt.Fprintf(h, " [%s", p.Kind)
	switch data := p.Data.(type) {
	case hir.LiteralPatData:
		fmt.Fprintf(h, " %s %q", data.Kind, data.Value)
	case hir.BindingData:
		fmt.Fprintf(h, " %s#%d", data.Name, data.Sym)
	case hir.TuplePatData:
		fmt.Fprintf(h, " %d", data.ItemsKind)
		for _, sub := range data.Patterns {
			hashPattern(h, sub)
		}
		for _, sub := range data.Lower {
			hashPattern(h, sub)
		}
		fmt.Fprint(h, " ..")
		for _, sub := range data.Upper {
			hashPattern(h, sub)
		}
	case hir.VariantPatData:
		fmt.Fprintf(h, " %s@%d", data.Path, data.VariantIdx)
		for _, sub := range data.Elems {
			hashPattern(h, sub)
		}
	case hir.RangePatData:
		fmt.Fprintf(h, " %s %q %q", data.Kind, data.Lo, data.Hi)
	}
	fmt.Fprint(h, "]")
}

// DiskPayload is the cached artifact of one lowered module: the printable
// backend dumps per function, enough to skip re-lowering unchanged input.
type DiskPayload struct {
	Schema uint16
	Module string
	Triple string
	Broken bool

	FuncNames []string
	FuncDumps []string
}

// DiskCache stores lowered-module payloads on disk, safe for concurrent
// use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a disk cache under dir; an empty dir picks
// the standard XDG location.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "mods", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically replaces a payload on disk.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload; a missing entry or a schema mismatch is a clean
// miss, not an error.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// PayloadOf flattens a module result for caching.
func PayloadOf(r *ModuleResult, triple string) *DiskPayload {
	p := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Module: r.Module,
		Triple: triple,
		Broken: r.Broken(),
	}
	for _, fn := range r.Funcs {
		p.FuncNames = append(p.FuncNames, fn.Name)
		p.FuncDumps = append(p.FuncDumps, fn.Dump)
	}
	return p
}
