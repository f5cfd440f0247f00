package decoder

import "log"

// diagnoseUndecodable emits the advisory diagnostic named in the spec:
// a single line naming the unrecognized byte and the address it was read
// from. It is advisory only — nothing in this package or its tests relies
// on its presence beyond spot-checking that it doesn't panic.
func diagnoseUndecodable(op byte, addr uintptr) {
	log.Printf("decoder: opcode %02X @ 0x%08X not recognized", op, addr)
}
