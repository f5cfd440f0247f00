package decoder

// decodeTwoByte classifies an 0x0F-escaped opcode. tail points at the 0x0F
// byte; length already accounts for prefixes and the 0x0F byte itself.
func decodeTwoByte(tail []byte, length int, stopOnUnrelocatable bool) Result {
	op := tail[1]

	switch {
	case op&0xF0 == 0x90: // SETcc: 90-9F
		return lengthResult(length + modRMLength(tail[1:]))
	case op == 0xB6 || op == 0xB7 || op == 0xBE || op == 0xBF: // MOVZX/MOVSX
		return lengthResult(length + modRMLength(tail[1:]))
	case op >= 0x80 && op <= 0x8F: // long conditional jumps, Jcc rel32
		if stopOnUnrelocatable {
			return unrelocatableResult()
		}
		return lengthResult(length + 5)
	default:
		return undecodableResult()
	}
}
