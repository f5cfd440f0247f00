// Package codepool manages small, cache-line-sized, executable slices of
// memory carved out of whole OS virtual-memory pages, so that many
// trampolines can share a single RWX page instead of each consuming one.
//
// A Pool is not safe for concurrent use from multiple goroutines: its
// page list, bitfields, and page-protection state are unsynchronized
// mutable state, matching the single-threaded model in spec.md §5.
package codepool

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// unitSize is the granularity of a single allocation unit, matching the
// spec's 16-byte slice. A "double" slice spans two adjacent units.
const unitSize = 16

// ErrSizeOutOfRange is returned by Alloc when size is 0 or greater than
// two units (32 bytes).
var ErrSizeOutOfRange = errors.New("codepool: size must be in (0, 32]")

// Pool is a growable collection of RWX code pages, each logically
// partitioned into 16-byte units and tracked by a bit matrix.
type Pool struct {
	pageSize     int
	unitsPerPage int
	wordsPerPage int
	pages        []*page
}

// New returns an empty, lazily-initialized Pool. The OS page size is
// queried on the first call to Alloc.
func New() *Pool {
	return &Pool{}
}

var defaultPool = New()

// Default returns the process-wide singleton Pool. It exists so the
// package-level Alloc/Free/Lock/Unlock functions can offer the same
// implicit-global-pool ergonomics as the spec's C ABI (spec.md §9).
func Default() *Pool { return defaultPool }

// Alloc allocates a slice from the process-wide default pool.
func Alloc(size int) (uintptr, error) { return defaultPool.Alloc(size) }

// Free returns a slice to the process-wide default pool.
func Free(ptr uintptr) { defaultPool.Free(ptr) }

// Lock write-protects the page containing ptr in the default pool.
func Lock(ptr uintptr) { defaultPool.Lock(ptr) }

// Unlock allows writes to the page containing ptr in the default pool.
func Unlock(ptr uintptr) { defaultPool.Unlock(ptr) }

// ensureInit performs the pool's lazy, one-time setup: querying the OS
// page size and computing per-page bitfield geometry, then adding the
// first page.
func (p *Pool) ensureInit() error {
	if p.pageSize != 0 {
		return nil
	}
	p.pageSize = unix.Getpagesize()
	p.unitsPerPage = p.pageSize / unitSize
	// one (d,f) pair per unit, packed 32 units per 64-bit word
	p.wordsPerPage = p.unitsPerPage / 32
	if p.unitsPerPage%32 != 0 {
		p.wordsPerPage++
	}
	return p.addPage()
}

// Bytes returns a Go byte slice viewing the n bytes starting at ptr,
// which must be a value previously returned by Alloc. Callers use this
// to read or (between Unlock/Lock) write a slice's contents directly.
func (p *Pool) Bytes(ptr uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n)
}
