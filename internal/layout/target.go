package layout

// Target describes the ABI target triple and its pointer properties.
// Pointer width decides the concrete size of isize/usize and of the
// length field in fat-pointer values.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}

// PtrBits returns the pointer width in bits.
func (t Target) PtrBits() uint {
	return uint(t.PtrSize) * 8
}
