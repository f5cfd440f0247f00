package decoder

// legacy prefix bytes the decoder scans through before opcode dispatch.
// 0x66 and 0x67 additionally override operand/address size.
const (
	prefixOperandSize = 0x66
	prefixAddressSize = 0x67
	prefixSegCS       = 0x2E
	prefixSegSS       = 0x36
	prefixSegDS       = 0x3E
	prefixSegES       = 0x26
	prefixSegFS       = 0x64
	prefixSegGS       = 0x65
	prefixLock        = 0xF0
	prefixRepNE       = 0xF2
	prefixRep         = 0xF3
)

func isPrefixByte(b byte) bool {
	switch b {
	case prefixOperandSize, prefixAddressSize,
		prefixSegCS, prefixSegSS, prefixSegDS, prefixSegES, prefixSegFS, prefixSegGS,
		prefixLock, prefixRepNE, prefixRep:
		return true
	default:
		return false
	}
}

// prefixScan consumes the run of legacy prefix bytes starting at the
// cursor and reports how many bytes were consumed along with the
// effective operand and address sizes (4 by default, 2 if overridden).
func prefixScan(c Cursor) (consumed, operandSize, addressSize int) {
	operandSize, addressSize = 4, 4
	for {
		b := c.At(consumed)
		switch b {
		case prefixOperandSize:
			operandSize = 2
		case prefixAddressSize:
			addressSize = 2
		case prefixSegCS, prefixSegSS, prefixSegDS, prefixSegES, prefixSegFS, prefixSegGS,
			prefixLock, prefixRepNE, prefixRep:
			// consumed below; no size effect
		default:
			return consumed, operandSize, addressSize
		}
		consumed++
	}
}
