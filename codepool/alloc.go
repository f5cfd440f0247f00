package codepool

// Alloc returns the address of a newly allocated, write-locked slice of
// size bytes (size must be in (0, 32]; anything over 16 bytes consumes a
// double unit). It returns 0, err on failure: size out of range, or an
// OS allocation failure on the one page-growth retry spec.md §4.2 allows.
func (p *Pool) Alloc(size int) (uintptr, error) {
	if size <= 0 || size > 2*unitSize {
		return 0, ErrSizeOutOfRange
	}
	double := size > unitSize

	if err := p.ensureInit(); err != nil {
		return 0, err
	}

	if ptr, ok := p.scanForFree(double); ok {
		return ptr, nil
	}

	// One retry: grow by exactly one page and scan again.
	if err := p.addPage(); err != nil {
		return 0, err
	}
	if ptr, ok := p.scanForFree(double); ok {
		return ptr, nil
	}
	return 0, errAllocFailed
}

// scanForFree scans pages most-recent-first, word at a time, for a run of
// free units (1 for single, 2 adjacent for double). A double never spans
// a bitfield word boundary (spec.md §4.2 note): this is an accepted
// fragmentation cost for simpler scanning.
func (p *Pool) scanForFree(double bool) (uintptr, bool) {
	need := 1
	if double {
		need = 2
	}

	for i := len(p.pages) - 1; i >= 0; i-- {
		pg := p.pages[i]
		for w := 0; w < len(pg.bits); w++ {
			word := pg.bits[w]
			if word&freeWordPattern == 0 {
				continue // no free bits in this word
			}
			limit := bitsPerWord - need + 1
			for b := 0; b < limit; b++ {
				if !isFree(word, b) {
					continue
				}
				if double && !isFree(word, b+1) {
					continue
				}
				word = setAllocated(word, b, double)
				if double {
					word = setAllocated(word, b+1, false)
				}
				pg.bits[w] = word
				unit := unitIndex(w, b)
				return pg.base + uintptr(unit*unitSize), true
			}
		}
	}
	return 0, false
}

// Free returns a slice to the pool. A ptr not recognized by this pool
// (e.g. a fast-path bridge address, spec.md §4.3) or already free is a
// silent no-op, matching the spec's §7 error taxonomy.
func (p *Pool) Free(ptr uintptr) {
	pg := p.ownerOf(ptr)
	if pg == nil {
		return
	}

	offset := ptr - pg.base
	if offset%unitSize != 0 {
		return
	}
	unit := int(offset / unitSize)
	w, b := unit/bitsPerWord, unit%bitsPerWord

	if isFree(pg.bits[w], b) {
		return
	}
	double := isDouble(pg.bits[w], b)

	size := unitSize
	if double {
		size = 2 * unitSize
	}

	wasLocked := pg.locked
	p.unlockPage(pg)
	clear := p.Bytes(ptr, size)
	for i := range clear {
		clear[i] = fillByte
	}
	if wasLocked {
		p.lockPage(pg)
	}

	pg.bits[w] = setFree(pg.bits[w], b)
	if double {
		unit2 := unit + 1
		w2, b2 := unit2/bitsPerWord, unit2%bitsPerWord
		pg.bits[w2] = setFree(pg.bits[w2], b2)
	}
}
