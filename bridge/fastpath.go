package bridge

// msHotpatchPrologue is the "mov edi,edi / push ebp / mov ebp,esp / pop
// ebp" sequence a particular vendor's compiler emits ahead of
// hotpatch-friendly functions. Taken together the six bytes leave every
// register as they found it (ebp is pushed, overwritten and popped back),
// so they can simply be stepped over: the bridge is just victim+6, with
// no pool allocation at all.
var msHotpatchPrologue = [6]byte{0x8B, 0xFF, 0x55, 0x8B, 0xEC, 0x5D}

// hasHotpatchPrologue reports whether victim begins with the recognized
// do-nothing prologue.
func hasHotpatchPrologue(victim []byte) bool {
	if len(victim) < len(msHotpatchPrologue) {
		return false
	}
	for i, b := range msHotpatchPrologue {
		if victim[i] != b {
			return false
		}
	}
	return true
}
