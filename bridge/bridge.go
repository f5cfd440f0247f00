// Package bridge builds executable "bridge" stubs (trampolines): given the
// address of a still-unhooked function, it emits a small block of code
// that re-executes the function's first instructions and then jumps back
// into the function immediately past them. A caller holding the bridge
// pointer can invoke the original behavior even after the function's
// entry point has been overwritten with a detour.
package bridge

import (
	"errors"
	"unsafe"

	"github.com/nullterm/bridgebuilder/codepool"
	"github.com/nullterm/bridgebuilder/decoder"
)

// ErrUnrelocatablePrologue is returned when the victim's prologue
// contains a PC-relative instruction. This release detects but does not
// rewrite such instructions (spec.md §9's deferred design).
var ErrUnrelocatablePrologue = errors.New("bridge: victim prologue is not relocatable in this release")

// ErrUndecodablePrologue is returned when an opcode in the victim's
// prologue is not recognized by the decoder.
var ErrUndecodablePrologue = errors.New("bridge: victim prologue contains an unrecognized opcode")

// minPrologueBytes is the minimum number of prologue bytes a bridge must
// copy to make room for the trailing 5-byte near JMP without clobbering
// any instruction it didn't fully copy.
const minPrologueBytes = 5

// victimWindow is how many bytes of the victim are read to measure its
// prologue. The decoder never needs more than 15 bytes of lookahead per
// instruction, and the measured prologue is capped at 19 bytes (spec.md
// §6), so this comfortably covers the worst case.
const victimWindow = 64

// Builder constructs and destroys bridges against a particular code
// pool. The zero value is not usable; use New.
type Builder struct {
	pool *codepool.Pool
}

// New returns a Builder that allocates bridges from pool.
func New(pool *codepool.Pool) *Builder {
	return &Builder{pool: pool}
}

var defaultBuilder = New(codepool.Default())

// Create builds a bridge for victim using the process-wide default pool.
func Create(victim uintptr) (uintptr, error) { return defaultBuilder.Create(victim) }

// Destroy destroys a bridge built by Create.
func Destroy(ptr uintptr) { defaultBuilder.Destroy(ptr) }

// viewVictim returns a read-only window over the victim's first bytes,
// for the decoder and the hotpatch-signature check.
func viewVictim(addr uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), victimWindow)
}

// Create measures the victim's prologue, allocates a slice from b's
// pool, copies the prologue into it, and appends a near JMP back to
// victim+prologueLen. If victim begins with the hotpatch signature
// (fastpath.go), no allocation happens at all: Create returns victim+6
// directly, and that pointer is not owned by the pool (see Destroy).
// Errors are returned as (0, err).
func (b *Builder) Create(victim uintptr) (uintptr, error) {
	view := viewVictim(victim)

	if hasHotpatchPrologue(view) {
		return victim + uintptr(len(msHotpatchPrologue)), nil
	}

	prologueLen, err := measurePrologue(view)
	if err != nil {
		return 0, err
	}

	bridgeLen := prologueLen + jmpSize
	bridgePtr, err := b.pool.Alloc(bridgeLen)
	if err != nil {
		return 0, err
	}

	disp := jmpDisplacement(victim, bridgePtr, prologueLen, bridgeLen)

	b.pool.Unlock(bridgePtr)
	out := b.pool.Bytes(bridgePtr, bridgeLen)
	copy(out, view[:prologueLen])
	writeJmp(out[prologueLen:], disp)
	b.pool.Lock(bridgePtr)

	return bridgePtr, nil
}

// Destroy returns ptr's memory to b's pool. A pointer produced by the
// hotpatch fast path is not recognized by any pool and is silently
// ignored (spec.md §7, §9) — this is a documented contract, not an
// accident: Destroy does not need to know which path produced ptr.
func (b *Builder) Destroy(ptr uintptr) {
	b.pool.Free(ptr)
}

// measurePrologue sums instruction lengths starting at offset 0 in view
// until the total reaches at least minPrologueBytes, the byte count a
// trailing near JMP needs to overwrite safely.
func measurePrologue(view []byte) (int, error) {
	total := 0
	for total < minPrologueBytes {
		cursor := decoder.Cursor{Bytes: view, Offset: total}
		result := decoder.Decode(cursor, true)

		switch {
		case result.IsUndecodable():
			return 0, ErrUndecodablePrologue
		case result.IsUnrelocatable():
			return 0, ErrUnrelocatablePrologue
		}

		n, _ := result.Length()
		total += n
	}
	return total, nil
}
