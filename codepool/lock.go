package codepool

import "errors"

var errAllocFailed = errors.New("codepool: failed to allocate a new page")

// Lock write-protects the whole page containing ptr (execute+read only).
// Call this once writes made after Unlock are complete.
func (p *Pool) Lock(ptr uintptr) {
	if pg := p.ownerOf(ptr); pg != nil {
		p.lockPage(pg)
	}
}

// Unlock allows writes to the page containing ptr (execute+read+write).
// Always pair with a following Lock once the write is done.
func (p *Pool) Unlock(ptr uintptr) {
	if pg := p.ownerOf(ptr); pg != nil {
		p.unlockPage(pg)
	}
}

func (p *Pool) lockPage(pg *page) {
	if pg.locked {
		return
	}
	if err := p.protect(pg, false); err == nil {
		pg.locked = true
	}
}

func (p *Pool) unlockPage(pg *page) {
	if !pg.locked {
		return
	}
	if err := p.protect(pg, true); err == nil {
		pg.locked = false
	}
}
