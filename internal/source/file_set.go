package source

import (
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

// File is a registered source file. The lowering core never reads file
// contents itself; it only needs stable names for diagnostic rendering.
type File struct {
	ID   FileID
	Path string
}

// FileSet manages the files referenced by spans.
type FileSet struct {
	files []File
	index map[string]FileID
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0, 8),
		index: make(map[string]FileID, 8),
	}
}

// Add registers a path and returns its FileID. Adding the same path twice
// returns the existing id.
func (fs *FileSet) Add(path string) FileID {
	normalized := filepath.ToSlash(path)
	if id, ok := fs.index[normalized]; ok {
		return id
	}
	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, File{ID: id, Path: normalized})
	fs.index[normalized] = id
	return id
}

// Path returns the registered path for an id, or "" if unknown.
func (fs *FileSet) Path(id FileID) string {
	if fs == nil || int(id) >= len(fs.files) {
		return ""
	}
	return fs.files[id].Path
}

// Len returns the number of registered files.
func (fs *FileSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.files)
}
