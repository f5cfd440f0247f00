package codepool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/nullterm/bridgebuilder/codepool"
)

func TestAllocReturnsWritableExecutableMemory(t *testing.T) {
	p := codepool.New()
	ptr, err := p.Alloc(20)
	require.NoError(t, err)
	require.NotZero(t, ptr)

	p.Unlock(ptr)
	b := p.Bytes(ptr, 20)
	for i := range b {
		b[i] = 0x90
	}
	p.Lock(ptr)

	assert.Equal(t, byte(0x90), p.Bytes(ptr, 1)[0])
}

// P5: the set of live slice address ranges is pairwise disjoint.
func TestAllocNonOverlapping(t *testing.T) {
	p := codepool.New()
	seen := map[uintptr]bool{}
	for i := 0; i < 50; i++ {
		ptr, err := p.Alloc(16)
		require.NoError(t, err)
		require.False(t, seen[ptr], "duplicate slice address %x", ptr)
		seen[ptr] = true
	}
}

// P6: immediately after Free, the slice's bytes are all 0xCC.
func TestFreeFillsWithTrap(t *testing.T) {
	p := codepool.New()
	ptr, err := p.Alloc(16)
	require.NoError(t, err)

	p.Unlock(ptr)
	b := p.Bytes(ptr, 16)
	for i := range b {
		b[i] = 0x41
	}
	p.Lock(ptr)

	p.Free(ptr)

	after := p.Bytes(ptr, 16)
	for i, bb := range after {
		assert.Equal(t, byte(0xCC), bb, "byte %d not reset to trap", i)
	}
}

// P7: alloc -> free -> alloc may return the same address.
func TestAllocFreeAllocRecycles(t *testing.T) {
	p := codepool.New()
	first, err := p.Alloc(16)
	require.NoError(t, err)

	p.Free(first)

	second, err := p.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// P8: filling the first page forces growth onto a new page.
func TestAllocGrowsPageWhenFull(t *testing.T) {
	p := codepool.New()
	pageSize := unix.Getpagesize()
	unitsPerPage := pageSize / 16

	var firstPagePtr uintptr
	for i := 0; i < unitsPerPage; i++ {
		ptr, err := p.Alloc(16)
		require.NoError(t, err)
		if i == 0 {
			firstPagePtr = ptr
		}
	}

	overflow, err := p.Alloc(16)
	require.NoError(t, err)

	mask := uintptr(pageSize - 1)
	assert.NotEqual(t, firstPagePtr&^mask, overflow&^mask, "expected overflow to land on a new page")
}

// P9: freeing an unrecognized pointer is a silent no-op.
func TestFreeUnknownPointerIsNoop(t *testing.T) {
	p := codepool.New()
	ptr, err := p.Alloc(16)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		p.Free(ptr + 1<<30) // far outside any owned page
	})

	// original allocation is unaffected
	p.Unlock(ptr)
	b := p.Bytes(ptr, 1)
	b[0] = 0x42
	p.Lock(ptr)
	assert.Equal(t, byte(0x42), p.Bytes(ptr, 1)[0])
}

func TestDoubleSliceConsumesTwoUnits(t *testing.T) {
	p := codepool.New()
	ptr, err := p.Alloc(32)
	require.NoError(t, err)
	require.NotZero(t, ptr)

	p.Unlock(ptr)
	b := p.Bytes(ptr, 32)
	for i := range b {
		b[i] = byte(i)
	}
	p.Lock(ptr)
	assert.Equal(t, byte(31), p.Bytes(ptr, 32)[31])
}

func TestAllocRejectsOutOfRangeSize(t *testing.T) {
	p := codepool.New()
	_, err := p.Alloc(33)
	assert.ErrorIs(t, err, codepool.ErrSizeOutOfRange)

	_, err = p.Alloc(0)
	assert.ErrorIs(t, err, codepool.ErrSizeOutOfRange)
}

func TestDoubleFreeIsNoop(t *testing.T) {
	p := codepool.New()
	ptr, err := p.Alloc(16)
	require.NoError(t, err)

	p.Free(ptr)
	assert.NotPanics(t, func() {
		p.Free(ptr)
	})
}
