package bridge_test

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullterm/bridgebuilder/bridge"
	"github.com/nullterm/bridgebuilder/codepool"
)

// victimBuffer returns a 64-byte buffer seeded with code, plus its
// address as a uintptr, suitable for feeding to Builder.Create.
func victimBuffer(code []byte) ([]byte, uintptr) {
	buf := make([]byte, 64)
	copy(buf, code)
	for i := len(code); i < len(buf); i++ {
		buf[i] = 0x90 // pad with NOPs so the decoder never runs off the end
	}
	return buf, uintptr(unsafe.Pointer(&buf[0]))
}

func TestCreateSimpleMovePrologue(t *testing.T) {
	pool := codepool.New()
	b := bridge.New(pool)

	// mov eax,ecx ; mov edx,ebx ; ret -- 5+ bytes of plain ModR/M moves.
	code := []byte{0x89, 0xC8, 0x89, 0xDA, 0xC3}
	victim, addr := victimBuffer(code)
	_ = victim

	bridgePtr, err := b.Create(addr)
	require.NoError(t, err)
	require.NotZero(t, bridgePtr)

	prologueLen := 5 // both moves are 2 bytes each, ret is 1: total 5
	bridgeBytes := pool.Bytes(bridgePtr, prologueLen+5)

	assert.Equal(t, code[:prologueLen], bridgeBytes[:prologueLen])
	assert.Equal(t, byte(0xE9), bridgeBytes[prologueLen])

	disp := int32(binary.LittleEndian.Uint32(bridgeBytes[prologueLen+1:]))
	landing := bridgePtr + uintptr(prologueLen+5) + uintptr(disp)
	assert.Equal(t, addr+uintptr(prologueLen), landing)
}

func TestCreateRejectsUnrelocatablePrologue(t *testing.T) {
	pool := codepool.New()
	b := bridge.New(pool)

	for _, op := range []byte{0x70, 0xE3, 0xEB, 0xE8, 0xE9} {
		code := []byte{op, 0x00, 0x00, 0x00, 0x00}
		_, addr := victimBuffer(code)

		_, err := b.Create(addr)
		assert.Error(t, err, "opcode %02X should be rejected", op)
	}
}

func TestCreateFastPathSkipsPool(t *testing.T) {
	pool := codepool.New()
	b := bridge.New(pool)

	code := []byte{0x8B, 0xFF, 0x55, 0x8B, 0xEC, 0x5D, 0xC3}
	_, addr := victimBuffer(code)

	bridgePtr, err := b.Create(addr)
	require.NoError(t, err)
	assert.Equal(t, addr+6, bridgePtr)

	// Destroying a fast-path pointer must be observable as a no-op: the
	// pool doesn't recognize it, so freeing it must not panic or disturb
	// any real allocation.
	other, err := pool.Alloc(16)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		b.Destroy(bridgePtr)
	})

	pool.Unlock(other)
	buf := pool.Bytes(other, 1)
	buf[0] = 0x42
	pool.Lock(other)
	assert.Equal(t, byte(0x42), pool.Bytes(other, 1)[0])
}

func TestCreateAllocatesFromPoolForOrdinaryVictims(t *testing.T) {
	pool := codepool.New()
	b := bridge.New(pool)

	code := []byte{0x89, 0xC8, 0x89, 0xDA, 0xC3}
	_, addr := victimBuffer(code)

	bridgePtr, err := b.Create(addr)
	require.NoError(t, err)

	b.Destroy(bridgePtr)

	again, err := pool.Alloc(10)
	require.NoError(t, err)
	assert.Equal(t, bridgePtr, again, "expected the freed bridge slice to be recycled")
}
