package bridge

import "encoding/binary"

// jmpOpcode is the one-byte near JMP rel32 opcode.
const jmpOpcode = 0xE9

// jmpSize is the length in bytes of a near JMP rel32 instruction.
const jmpSize = 5

// jmpDisplacement computes the signed 32-bit displacement for a near JMP
// whose last byte sits at bridge+bridgeLen-1, so that it lands at
// victim+prologueLen. The JMP is always the final jmpSize bytes of the
// bridge, so "bridge+bridgeLen" is the address the CPU computes the
// displacement from, not "bridge+prologueLen+jmpSize" -- those happen to
// coincide in this release but won't once a future release inserts
// relocated instructions between the copied prologue and the JMP
// (spec.md §9), growing bridgeLen past prologueLen+jmpSize.
func jmpDisplacement(victim, bridge uintptr, prologueLen, bridgeLen int) int32 {
	disp := int64(victim) + int64(prologueLen) - int64(bridge) - int64(bridgeLen)
	return int32(disp)
}

// writeJmp encodes a near JMP with the given displacement into dst,
// which must be at least jmpSize bytes long.
func writeJmp(dst []byte, disp int32) {
	dst[0] = jmpOpcode
	binary.LittleEndian.PutUint32(dst[1:5], uint32(disp))
}
