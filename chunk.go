package archetype

import (
	"math"
	"unsafe"
)

// chunkByteSize is the fixed size of every real chunk's usable region.
const chunkByteSize = 16384 // 16 KiB

// chunk is one fixed-size, aligned block of rows for a single archetype.
// Real chunks own their backing bytes; a "virtual" chunk (base == nil)
// represents rows of a zero-sized family (the archetype's components are
// all zero-width), whose row pointers are never dereferenced.
type chunk struct {
	raw      []byte // keeps the aligned allocation alive; nil for virtual chunks
	base     unsafe.Pointer
	capacity int
	count    int // high-water mark of rows ever committed into this chunk
	live     []bool
	virtual  bool
}

func newRealChunk(layout Layout) *chunk {
	align := layout.Alignment
	if align == 0 {
		align = 1
	}
	capacity := int(chunkByteSize / layout.FamilySize)
	if capacity < 1 {
		capacity = 1
	}
	needed := uintptr(capacity) * layout.FamilySize
	raw := make([]byte, needed+align)
	start := uintptr(unsafe.Pointer(&raw[0]))
	aligned := (start + align - 1) &^ (align - 1)
	base := unsafe.Pointer(aligned)
	return &chunk{
		raw:      raw,
		base:     base,
		capacity: capacity,
		live:     make([]bool, capacity),
	}
}

func newVirtualChunk(capacity int) *chunk {
	return &chunk{
		capacity: capacity,
		live:     make([]bool, capacity),
		virtual:  true,
	}
}

// rowPointer returns the address of row within the chunk according to
// layout. For a virtual chunk it always returns nil: the family has no
// bytes to address and the contract guarantees such pointers are never
// dereferenced.
func (c *chunk) rowPointer(layout Layout, row int) unsafe.Pointer {
	if c.virtual {
		return nil
	}
	return unsafe.Add(c.base, uintptr(row)*layout.FamilySize)
}

// zeroRow clears the bytes of row back to zero. Used when a recycled row
// is reused so freshly spawned rows are always all-zero, even if the row
// previously belonged to a despawned entity.
func (c *chunk) zeroRow(layout Layout, row int) {
	if c.virtual || layout.FamilySize == 0 {
		return
	}
	dst := (*[math.MaxInt32]byte)(c.rowPointer(layout, row))[:layout.FamilySize:layout.FamilySize]
	clear(dst)
}
