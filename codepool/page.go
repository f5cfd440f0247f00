package codepool

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// fillByte is the INT3 trap instruction. Every free byte of every page
// reads as this value (I4) so that stray control flow into an
// unallocated slice faults deterministically.
const fillByte = 0xCC

// freeWordPattern initializes every unit in a page as free and not the
// second half of a double: the 0x55 repeating bit pattern ("dfdfdfdf"
// with every f set and every d clear).
const freeWordPattern = 0x5555555555555555

// page is one OS virtual-memory page, RWX-mapped, logically cut into
// 16-byte units tracked by a bit matrix: two bits per unit, laid out
// d f d f ... inside each 64-bit word, where f means "this unit is
// free" and d means "if allocated, this is the first half of a double".
type page struct {
	base   uintptr
	bytes  []byte
	bits   []uint64
	locked bool
}

// addPage obtains a fresh anonymous RWX mapping, fills it with the INT3
// trap, marks every unit free, write-protects it, and appends it to the
// pool. Pages are added most-recent-last but scanned most-recent-first
// (spec.md §4.2 step 2): newly added pages are likeliest to have room.
func (p *Pool) addPage() error {
	mem, err := unix.Mmap(-1, 0, p.pageSize,
		unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return err
	}

	for i := range mem {
		mem[i] = fillByte
	}

	pg := &page{
		base:  uintptr(unsafe.Pointer(&mem[0])),
		bytes: mem,
		bits:  make([]uint64, p.wordsPerPage),
	}
	for i := range pg.bits {
		pg.bits[i] = freeWordPattern
	}

	if err := p.protect(pg, false); err != nil {
		unix.Munmap(mem)
		return err
	}
	pg.locked = true

	p.pages = append(p.pages, pg)
	return nil
}

// protect toggles the whole page's write permission. Reads and execution
// remain permitted at all times (I3).
func (p *Pool) protect(pg *page, writable bool) error {
	prot := unix.PROT_READ | unix.PROT_EXEC
	if writable {
		prot |= unix.PROT_WRITE
	}
	return unix.Mprotect(pg.bytes, prot)
}

// pageAlign rounds ptr down to the start of the page containing it.
func (p *Pool) pageAlign(ptr uintptr) uintptr {
	return ptr &^ (uintptr(p.pageSize) - 1)
}

// ownerOf returns the page containing ptr, scanning most-recent-first, or
// nil if ptr falls outside every page this pool owns.
func (p *Pool) ownerOf(ptr uintptr) *page {
	aligned := p.pageAlign(ptr)
	for i := len(p.pages) - 1; i >= 0; i-- {
		if p.pages[i].base == aligned {
			return p.pages[i]
		}
	}
	return nil
}

// bitsPerWord is the number of 16-byte units tracked by one bitfield
// word (2 bits per unit, 64 bits per word).
const bitsPerWord = 32

func unitIndex(word, bit int) int { return word*bitsPerWord + bit }

func isFree(word uint64, bit int) bool {
	return word&(1<<uint(bit*2)) != 0
}

func isDouble(word uint64, bit int) bool {
	return word&(1<<uint(bit*2+1)) != 0
}

func setAllocated(word uint64, bit int, double bool) uint64 {
	word &^= 3 << uint(bit*2)
	if double {
		word |= 2 << uint(bit*2)
	}
	return word
}

func setFree(word uint64, bit int) uint64 {
	word &^= 3 << uint(bit*2)
	word |= 1 << uint(bit*2)
	return word
}
