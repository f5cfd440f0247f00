// Package decoder implements a length-disassembler for 32-bit x86: given a
// byte cursor pointing at the start of an instruction, it reports how many
// bytes that instruction occupies, or that the opcode could not be
// recognized, or that the instruction is position-dependent (its operand
// encodes a PC-relative target) and therefore cannot be copied verbatim to
// another address.
//
// The decoder never models operands beyond what is needed to measure
// length: it is not a disassembler in the human-readable sense, and it
// never mutates the bytes it inspects.
package decoder

// Cursor is a read-only view into executable memory: a backing byte slice
// plus an offset pointing at the first byte of the next instruction to
// classify. The decoder may read up to 15 bytes starting at the cursor and
// assumes that range is mapped and stable for the duration of the call.
type Cursor struct {
	Bytes  []byte
	Offset int
	// Addr is the logical address of the byte at Offset (Advance moves it
	// along with Offset). It has no
	// effect on decoding; it is carried only so the undecodable
	// diagnostic (§7) can name a meaningful address.
	Addr uintptr
}

// NewCursor returns a Cursor over b starting at offset 0.
func NewCursor(b []byte) Cursor {
	return Cursor{Bytes: b, Offset: 0}
}

// NewCursorAt returns a Cursor over b whose first byte is addr.
func NewCursorAt(b []byte, addr uintptr) Cursor {
	return Cursor{Bytes: b, Offset: 0, Addr: addr}
}

// At returns the byte i positions past the cursor's current offset.
func (c Cursor) At(i int) byte {
	return c.Bytes[c.Offset+i]
}

// Advance returns a new cursor moved forward by n bytes.
func (c Cursor) Advance(n int) Cursor {
	return Cursor{Bytes: c.Bytes, Offset: c.Offset + n, Addr: c.Addr + uintptr(n)}
}

// tail returns the remaining bytes from the cursor's offset onward, for
// callers (modrm.go, onebyte.go, twobyte.go) that want plain slice
// indexing instead of repeated At() calls.
func (c Cursor) tail() []byte {
	return c.Bytes[c.Offset:]
}
