package decoder

const twoByteEscape = 0x0F

// Decode classifies the instruction at cursor's current offset. When
// stopOnUnrelocatable is true, any instruction whose operand encodes a
// PC-relative target yields KindUnrelocatable instead of its length — the
// bridge builder uses this to detect prologues it cannot safely copy.
//
// Decode reads only from cursor.Bytes; it never writes to it (I5).
func Decode(cursor Cursor, stopOnUnrelocatable bool) Result {
	consumed, operandSize, addressSize := prefixScan(cursor)
	tail := cursor.Advance(consumed).tail()

	if len(tail) == 0 {
		return undecodableResult()
	}

	escaped := cursor.Advance(consumed)

	if tail[0] == twoByteEscape {
		if len(tail) < 2 {
			return undecodableResult()
		}
		result := decodeTwoByte(tail, consumed+1, stopOnUnrelocatable)
		if result.IsUndecodable() {
			diagnoseUndecodable(tail[1], escaped.Addr+1)
		}
		return result
	}

	result := decodeOneByte(tail, consumed, operandSize, addressSize, stopOnUnrelocatable)
	if result.IsUndecodable() {
		diagnoseUndecodable(tail[0], escaped.Addr)
	}
	return result
}

// Length is a convenience wrapper for callers that only want a plain int
// in the spec's C-ABI sentinel form: a positive length, -1 for
// Undecodable, -2 for Unrelocatable.
func Length(codePtr []byte, stopOnUnrelocatable bool) int {
	return Decode(NewCursor(codePtr), stopOnUnrelocatable).Int()
}
