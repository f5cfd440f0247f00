package decoder

// modRMLength implements the spec's ModR/M length rule. tail must point at
// the opcode byte: tail[1] is the ModR/M byte and tail[2] the SIB byte
// (read only when the ModR/M encodes one). It is grounded on
// x86_instruction_length_mod_reg_rm in original_source/bridgebuilder.
func modRMLength(tail []byte) int {
	modrm := tail[1]
	mod := modrm >> 6
	rm := modrm & 7

	if mod == 3 {
		return 2
	}

	length := 2
	switch mod {
	case 1:
		length++ // disp8
	case 2:
		length += 4 // disp32
	}

	switch {
	case mod == 0 && rm == 5:
		length += 4 // absolute disp32, no SIB
	case rm == 4:
		length++ // SIB byte
		if mod == 0 && (tail[2]&7) == 5 {
			length += 4 // SIB base==101 with mod==0 means disp32
		}
	}

	return length
}
