package decoder

// decodeOneByte classifies a one-byte opcode (anything other than the 0x0F
// two-byte escape). tail points at the opcode byte itself; length is the
// number of prefix bytes already consumed. Every branch is terminal: the
// returned Result is a length, Undecodable, or (under stopOnUnrelocatable)
// Unrelocatable.
func decodeOneByte(tail []byte, length int, operandSize, addressSize int, stopOnUnrelocatable bool) Result {
	op := tail[0]

	// 9A (far CALL) is explicitly unsupported: the operand encodes a
	// 16:32 segment:offset pair this decoder does not model.
	if op == 0x9A {
		return undecodableResult()
	}

	switch op {
	case 0xC3, 0xD7: // RET near, XLAT
		return lengthResult(length + 1)
	case 0xA8, 0x6A: // TEST AL,imm8 / PUSH imm8
		return lengthResult(length + 2)
	case 0xC8: // ENTER imm16,imm8
		return lengthResult(length + 4)
	case 0x68: // PUSH imm32
		return lengthResult(length + 5)
	case 0x69: // IMUL r,r/m,imm{16,32}
		return lengthResult(length + operandSize + modRMLength(tail))
	case 0x6B: // IMUL r,r/m,imm8
		return lengthResult(length + 1 + modRMLength(tail))
	case 0xC2, 0xCA: // RET imm16 (near/far)
		return lengthResult(length + 3)
	}

	if isNoOperandOneByte(op) {
		return lengthResult(length + 1)
	}

	if isShortRelativeJump(op) {
		if stopOnUnrelocatable {
			return unrelocatableResult()
		}
		return lengthResult(length + 2)
	}

	if isImm8OneByte(op) {
		return lengthResult(length + 2)
	}

	if isModRMOnly(op) {
		return lengthResult(length + modRMLength(tail))
	}

	if isModRMPlusImm8(op) {
		return lengthResult(length + 1 + modRMLength(tail))
	}

	if isModRMPlusImmGroup(op) {
		extra := 1
		if op&1 == 1 {
			extra = operandSize
		}
		return lengthResult(length + modRMLength(tail) + extra)
	}

	if op >= 0xA0 && op <= 0xA3 { // MOV AL/EAX <-> moffs
		return lengthResult(length + 1 + addressSize)
	}

	if isImmOperandSizeGroup(op) {
		return lengthResult(length + 1 + operandSize)
	}

	if op == 0xF6 || op == 0xF7 {
		return decodeGroupF6F7(tail, length, operandSize)
	}

	if op == 0xE8 || op == 0xE9 { // CALL near, JMP near
		if stopOnUnrelocatable {
			return unrelocatableResult()
		}
		return lengthResult(length + 5)
	}

	return undecodableResult()
}

// isNoOperandOneByte covers PUSH/POP reg, INC/DEC reg, NOP, XCHG EAX,reg,
// string ops, PUSHA/POPA, flag ops, INT3, segment prefixes used as
// mnemonics in other tables, and other single-byte, operand-free opcodes.
func isNoOperandOneByte(op byte) bool {
	switch {
	case op&0xC6 == 0x06: // 06,07,0E,0F,16,17,1E,1F,26,27,2E,2F,36,37,3E,3F
		return true
	case op >= 0x40 && op <= 0x5F: // INC/DEC/PUSH/POP reg
		return true
	case op == 0x60 || op == 0x61: // PUSHA, POPA
		return true
	case op >= 0x6C && op <= 0x6F: // INS/OUTS
		return true
	case op >= 0xEC && op <= 0xEF: // IN/OUT DX
		return true
	case op >= 0x90 && op <= 0x9F: // NOP, XCHG EAX,reg, CWDE/CDQ, flag ops (9A excluded above)
		return true
	case op >= 0xA4 && op <= 0xA7: // MOVS, CMPS
		return true
	case op >= 0xAC && op <= 0xAF: // LODS, SCAS
		return true
	case op == 0xAA || op == 0xAB: // STOS
		return true
	case op == 0xC9 || op == 0xCB: // LEAVE, RET far
		return true
	case op == 0xCC || op == 0xCE: // INT3, INTO
		return true
	case op >= 0xF0 && op <= 0xF3: // LOCK/REPNE/REP, also covers stray F1
		return true
	case op >= 0xF8 && op <= 0xFB: // CLC/STC/CLI/STI
		return true
	case op == 0xF4 || op == 0xF5: // HLT, CMC
		return true
	case op == 0xFC || op == 0xFD: // CLD, STD
		return true
	default:
		return false
	}
}

// isShortRelativeJump covers short Jcc, JECXZ, and JMP short: all
// position-dependent two-byte instructions.
func isShortRelativeJump(op byte) bool {
	return (op >= 0x70 && op <= 0x7F) || op == 0xE3 || op == 0xEB
}

// isImm8OneByte covers AL,imm8 arithmetic, MOV reg8,imm8, INT imm8/IRET,
// the single-operand shift-by-1 forms, and LOOPNE/LOOPE/LOOP — all
// measured as two bytes and never reported as Unrelocatable (JECXZ, 0xE3,
// is handled by isShortRelativeJump instead).
func isImm8OneByte(op byte) bool {
	switch {
	case op&0xC7 == 0x04: // 04,0C,14,1C,24,2C,34,3C: AL,imm8 arithmetic
		return true
	case op >= 0xB0 && op <= 0xB7: // MOV reg8,imm8
		return true
	case op == 0xCD || op == 0xCF: // INT imm8, IRET
		return true
	case op == 0xD0 || op == 0xD2: // shift group, 1 or CL
		return true
	case op >= 0xE0 && op <= 0xE2: // LOOPNE/LOOPE/LOOP
		return true
	default:
		return false
	}
}

// isModRMOnly covers ADD/OR/ADC/SBB/AND/SUB/XOR/CMP reg-mem forms,
// ARPL/BOUND, and the opcode-extension groups that take no immediate.
func isModRMOnly(op byte) bool {
	switch {
	case op&0xC4 == 0x00: // 00-03,08-0B,10-13,18-1B,20-23,28-2B,30-33,38-3B
		return true
	case op == 0x62 || op == 0x63: // BOUND, ARPL
		return true
	case op >= 0x84 && op <= 0x87: // TEST, XCHG reg-mem
		return true
	case op >= 0x88 && op <= 0x8F: // MOV, LEA, POP r/m, XCHG
		return true
	case op == 0xFE || op == 0xFF: // INC/DEC/CALL/JMP/PUSH opcode extension
		return true
	default:
		return false
	}
}

// isModRMPlusImm8 covers group-1 arithmetic with a sign-extended imm8
// (0x82, 0x83) and the shift-by-imm8 group (0xC0, 0xC1).
func isModRMPlusImm8(op byte) bool {
	return op == 0x82 || op == 0x83 || op == 0xC0 || op == 0xC1
}

// isModRMPlusImmGroup covers group-1 arithmetic (0x80/0x81) and MOV
// r/m,imm (0xC6/0xC7): the even opcode takes an imm8, the odd opcode an
// operand-sized immediate.
func isModRMPlusImmGroup(op byte) bool {
	return op == 0x80 || op == 0x81 || op == 0xC6 || op == 0xC7
}

// isImmOperandSizeGroup covers EAX,imm32 arithmetic, MOV reg32,imm32, and
// TEST EAX,imm32 — all one opcode byte plus an operand-sized immediate.
func isImmOperandSizeGroup(op byte) bool {
	switch {
	case op&0xC7 == 0x05: // 05,0D,15,1D,25,2D,35,3D: EAX,imm32 arithmetic
		return true
	case op >= 0xB8 && op <= 0xBF: // MOV reg32,imm32
		return true
	case op == 0xA9: // TEST EAX,imm32
		return true
	default:
		return false
	}
}

// decodeGroupF6F7 handles the TEST/NOT/NEG/MUL/IMUL/DIV/IDIV opcode
// extension group. F6 operates on a byte and F7 on an operand-sized value;
// only the TEST sub-opcodes (reg field 0 or 1) carry an immediate.
func decodeGroupF6F7(tail []byte, length int, operandSize int) Result {
	n := length + modRMLength(tail)
	reg := (tail[1] >> 3) & 7
	if reg == 0 || reg == 1 { // TEST r/m, imm
		if tail[0] == 0xF6 {
			n++
		} else {
			n += operandSize
		}
	}
	return lengthResult(n)
}
