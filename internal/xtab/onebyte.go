package xtab

// arith builds the eight-opcode pattern shared by ADD/OR/ADC/SBB/AND/
// SUB/XOR/CMP: Eb,Gb / Ev,Gv / Gb,Eb / Gv,Ev / AL,Ib / eAX,Iz.
func arith(base uint16, mnemonic string) [6]Entry {
	return [6]Entry{
		{Opcode: base + 0, Size: 8, Mnemonic: mnemonic, Arg0: RM, Arg1: REG, Flags: AllowLock},
		{Opcode: base + 1, Size: SizeResolve, Mnemonic: mnemonic, Arg0: RM, Arg1: REG, Flags: AllowLock},
		{Opcode: base + 2, Size: 8, Mnemonic: mnemonic, Arg0: REG, Arg1: RM},
		{Opcode: base + 3, Size: SizeResolve, Mnemonic: mnemonic, Arg0: REG, Arg1: RM},
		{Opcode: base + 4, Size: 8, Mnemonic: mnemonic, Arg0: ALS, Arg1: IMM8},
		{Opcode: base + 5, Size: SizeResolve, Mnemonic: mnemonic, Arg0: AXS, Arg1: IMM},
	}
}

func putArith(t *[256]Entry, base uint16, slot uint16, mnemonic string) {
	es := arith(base, mnemonic)
	for i, e := range es {
		t[slot+uint16(i)] = e
	}
}

// buildCommon fills every one-byte slot whose meaning is identical in
// 16/32-bit and 64-bit mode; the two public tables below copy this and
// patch the handful of mode-dependent slots.
func buildCommon() [256]Entry {
	var t [256]Entry

	putArith(&t, 0x00, 0x00, "add")
	putArith(&t, 0x08, 0x08, "or")
	putArith(&t, 0x10, 0x10, "adc")
	putArith(&t, 0x18, 0x18, "sbb")
	putArith(&t, 0x20, 0x20, "and")
	putArith(&t, 0x28, 0x28, "sub")
	putArith(&t, 0x30, 0x30, "xor")
	putArith(&t, 0x38, 0x38, "cmp")

	t[0x27] = Entry{Mnemonic: "daa"}
	t[0x2F] = Entry{Mnemonic: "das"}
	t[0x37] = Entry{Mnemonic: "aaa"}
	t[0x3F] = Entry{Mnemonic: "aas"}

	for r := uint16(0); r < 8; r++ {
		t[0x50+r] = Entry{Mnemonic: "push", Size: SizeResolve, Arg0: REGONLY, Flags: Default64 | StackOp}
		t[0x58+r] = Entry{Mnemonic: "pop", Size: SizeResolve, Arg0: REGONLY, Flags: Default64 | StackOp}
	}

	t[0x69] = Entry{Mnemonic: "imul", Size: SizeResolve, Arg0: REG, Arg1: RM, Flags: Arg2Imm}
	t[0x6A] = Entry{Mnemonic: "push", Size: SizeResolve, Arg0: IMM8, Flags: Default64 | StackOp}
	t[0x6B] = Entry{Mnemonic: "imul", Size: SizeResolve, Arg0: REG, Arg1: RM, Flags: Arg2Imm8}
	t[0x68] = Entry{Mnemonic: "push", Size: SizeResolve, Arg0: IMM, Flags: Default64 | StackOp}
	t[0x6C] = Entry{Mnemonic: "insb", Arg0: ESDI, Arg1: DX, Flags: AllowRepE}
	t[0x6D] = Entry{Mnemonic: "ins", Size: SizeResolve, Arg0: ESDI, Arg1: DX, Flags: AllowRepE | StringOp}
	t[0x6E] = Entry{Mnemonic: "outsb", Arg0: DX, Arg1: DSSI, Flags: AllowRepE}
	t[0x6F] = Entry{Mnemonic: "outs", Size: SizeResolve, Arg0: DX, Arg1: DSSI, Flags: AllowRepE | StringOp}

	jcc := []string{"jo", "jno", "jb", "jae", "je", "jne", "jbe", "ja",
		"js", "jns", "jp", "jnp", "jl", "jge", "jle", "jg"}
	for i, mn := range jcc {
		t[0x70+uint16(i)] = Entry{Mnemonic: mn, Arg0: REL8, Flags: Branches}
	}

	t[0x84] = Entry{Mnemonic: "test", Size: 8, Arg0: RM, Arg1: REG}
	t[0x85] = Entry{Mnemonic: "test", Size: SizeResolve, Arg0: RM, Arg1: REG}
	t[0x86] = Entry{Mnemonic: "xchg", Size: 8, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0x87] = Entry{Mnemonic: "xchg", Size: SizeResolve, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0x88] = Entry{Mnemonic: "mov", Size: 8, Arg0: RM, Arg1: REG}
	t[0x89] = Entry{Mnemonic: "mov", Size: SizeResolve, Arg0: RM, Arg1: REG}
	t[0x8A] = Entry{Mnemonic: "mov", Size: 8, Arg0: REG, Arg1: RM}
	t[0x8B] = Entry{Mnemonic: "mov", Size: SizeResolve, Arg0: REG, Arg1: RM}
	t[0x8C] = Entry{Mnemonic: "mov", Size: 16, Arg0: RM, Arg1: SEG16}
	t[0x8D] = Entry{Mnemonic: "lea", Size: SizeResolve, Arg0: REG, Arg1: MEM}
	t[0x8E] = Entry{Mnemonic: "mov", Size: 16, Arg0: SEG16, Arg1: RM}

	t[0x90] = Entry{Mnemonic: "nop", Flags: AllowRepE}
	for r := uint16(1); r < 8; r++ {
		t[0x90+r] = Entry{Mnemonic: "xchg", Size: SizeResolve, Arg0: ALS, Arg1: REGONLY}
	}
	t[0x98] = Entry{Mnemonic: "cbw", Size: SizeResolve, Flags: Default64}
	t[0x99] = Entry{Mnemonic: "cwd", Size: SizeResolve, Flags: Default64}
	t[0x9B] = Entry{Mnemonic: "fwait"}
	t[0x9C] = Entry{Mnemonic: "pushf", Size: SizeResolve, Flags: StackOp}
	t[0x9D] = Entry{Mnemonic: "popf", Size: SizeResolve, Flags: StackOp}
	t[0x9E] = Entry{Mnemonic: "sahf"}
	t[0x9F] = Entry{Mnemonic: "lahf"}

	t[0xA0] = Entry{Mnemonic: "mov", Size: 8, Arg0: ALS, Arg1: MOFFS}
	t[0xA1] = Entry{Mnemonic: "mov", Size: SizeResolve, Arg0: AXS, Arg1: MOFFS}
	t[0xA2] = Entry{Mnemonic: "mov", Size: 8, Arg0: MOFFS, Arg1: ALS}
	t[0xA3] = Entry{Mnemonic: "mov", Size: SizeResolve, Arg0: MOFFS, Arg1: AXS}
	t[0xA4] = Entry{Mnemonic: "movsb", Arg0: ESDI, Arg1: DSSI, Flags: AllowRepE}
	t[0xA5] = Entry{Mnemonic: "movs", Size: SizeResolve, Arg0: ESDI, Arg1: DSSI, Flags: AllowRepE | StringOp}
	t[0xA6] = Entry{Mnemonic: "cmpsb", Arg0: DSSI, Arg1: ESDI, Flags: AllowRepE | AllowRepNE}
	t[0xA7] = Entry{Mnemonic: "cmps", Size: SizeResolve, Arg0: DSSI, Arg1: ESDI, Flags: AllowRepE | AllowRepNE | StringOp}
	t[0xA8] = Entry{Mnemonic: "test", Size: 8, Arg0: ALS, Arg1: IMM8}
	t[0xA9] = Entry{Mnemonic: "test", Size: SizeResolve, Arg0: AXS, Arg1: IMM}
	t[0xAA] = Entry{Mnemonic: "stosb", Arg0: ESDI, Arg1: ALS, Flags: AllowRepE}
	t[0xAB] = Entry{Mnemonic: "stos", Size: SizeResolve, Arg0: ESDI, Arg1: AXS, Flags: AllowRepE | StringOp}
	t[0xAC] = Entry{Mnemonic: "lodsb", Arg0: ALS, Arg1: DSSI, Flags: AllowRepE}
	t[0xAD] = Entry{Mnemonic: "lods", Size: SizeResolve, Arg0: AXS, Arg1: DSSI, Flags: AllowRepE | StringOp}
	t[0xAE] = Entry{Mnemonic: "scasb", Arg0: ALS, Arg1: ESDI, Flags: AllowRepE | AllowRepNE}
	t[0xAF] = Entry{Mnemonic: "scas", Size: SizeResolve, Arg0: AXS, Arg1: ESDI, Flags: AllowRepE | AllowRepNE | StringOp}

	for r := uint16(0); r < 8; r++ {
		t[0xB0+r] = Entry{Mnemonic: "mov", Size: 8, Arg0: REGONLY, Arg1: IMM8}
		t[0xB8+r] = Entry{Mnemonic: "mov", Size: SizeResolve, Arg0: REGONLY, Arg1: IMM, Flags: AllowImm64}
	}

	t[0xC2] = Entry{Mnemonic: "ret", Arg0: IMM16, Flags: Stops}
	t[0xC3] = Entry{Mnemonic: "ret", Flags: Stops}
	t[0xC8] = Entry{Mnemonic: "enter", Arg0: IMM16, Arg1: IMM8}
	t[0xC9] = Entry{Mnemonic: "leave"}
	t[0xCA] = Entry{Mnemonic: "retf", Arg0: IMM16, Flags: Stops | FarOp}
	t[0xCB] = Entry{Mnemonic: "retf", Flags: Stops | FarOp}
	t[0xCC] = Entry{Mnemonic: "int3"}
	t[0xCD] = Entry{Mnemonic: "int", Arg0: IMM8}
	t[0xCF] = Entry{Mnemonic: "iret", Flags: Stops}

	t[0xD7] = Entry{Mnemonic: "xlat", Arg0: DSBX}

	t[0xE0] = Entry{Mnemonic: "loopne", Arg0: REL8, Flags: Branches}
	t[0xE1] = Entry{Mnemonic: "loope", Arg0: REL8, Flags: Branches}
	t[0xE2] = Entry{Mnemonic: "loop", Arg0: REL8, Flags: Branches}
	t[0xE3] = Entry{Mnemonic: "jcxz", Arg0: REL8, Flags: Branches}
	t[0xE4] = Entry{Mnemonic: "in", Arg0: ALS, Arg1: IMM8}
	t[0xE5] = Entry{Mnemonic: "in", Size: SizeResolve, Arg0: AXS, Arg1: IMM8}
	t[0xE6] = Entry{Mnemonic: "out", Arg0: IMM8, Arg1: ALS}
	t[0xE7] = Entry{Mnemonic: "out", Size: SizeResolve, Arg0: IMM8, Arg1: AXS}
	t[0xE8] = Entry{Mnemonic: "call", Size: SizeResolve, Arg0: REL, Flags: Branches | Default64}
	t[0xE9] = Entry{Mnemonic: "jmp", Size: SizeResolve, Arg0: REL, Flags: Branches | Stops | Default64}
	t[0xEB] = Entry{Mnemonic: "jmp", Arg0: REL8, Flags: Branches | Stops}
	t[0xEC] = Entry{Mnemonic: "in", Arg0: ALS, Arg1: DXS}
	t[0xED] = Entry{Mnemonic: "in", Size: SizeResolve, Arg0: AXS, Arg1: DXS}
	t[0xEE] = Entry{Mnemonic: "out", Arg0: DXS, Arg1: ALS}
	t[0xEF] = Entry{Mnemonic: "out", Size: SizeResolve, Arg0: DXS, Arg1: AXS}

	t[0xF4] = Entry{Mnemonic: "hlt"}
	t[0xF5] = Entry{Mnemonic: "cmc"}
	t[0xF8] = Entry{Mnemonic: "clc"}
	t[0xF9] = Entry{Mnemonic: "stc"}
	t[0xFA] = Entry{Mnemonic: "cli"}
	t[0xFB] = Entry{Mnemonic: "sti"}
	t[0xFC] = Entry{Mnemonic: "cld"}
	t[0xFD] = Entry{Mnemonic: "std"}

	return t
}

// OneByte32 is the one-byte opcode table for 16- and 32-bit modes.
var OneByte32 = func() [256]Entry {
	t := buildCommon()

	t[0x06] = Entry{Mnemonic: "push", Arg0: ES, Flags: StackOp}
	t[0x07] = Entry{Mnemonic: "pop", Arg0: ES, Flags: StackOp}
	t[0x0E] = Entry{Mnemonic: "push", Arg0: CS, Flags: StackOp}
	t[0x16] = Entry{Mnemonic: "push", Arg0: SS, Flags: StackOp}
	t[0x17] = Entry{Mnemonic: "pop", Arg0: SS, Flags: StackOp}
	t[0x1E] = Entry{Mnemonic: "push", Arg0: DS, Flags: StackOp}
	t[0x1F] = Entry{Mnemonic: "pop", Arg0: DS, Flags: StackOp}

	for r := uint16(0); r < 8; r++ {
		t[0x40+r] = Entry{Mnemonic: "inc", Size: SizeResolve, Arg0: REGONLY}
		t[0x48+r] = Entry{Mnemonic: "dec", Size: SizeResolve, Arg0: REGONLY}
	}
	t[0x60] = Entry{Mnemonic: "pusha", Size: SizeResolve}
	t[0x61] = Entry{Mnemonic: "popa", Size: SizeResolve}
	t[0x62] = Entry{Mnemonic: "bound", Arg0: REG, Arg1: MEM}
	t[0x63] = Entry{Mnemonic: "arpl", Size: 16, Arg0: RM, Arg1: REG}
	t[0x9A] = Entry{Mnemonic: "call", Arg0: SEGPTR, Flags: Branches | FarOp}
	t[0xC4] = Entry{Mnemonic: "les", Arg0: REG, Arg1: MEM}
	t[0xC5] = Entry{Mnemonic: "lds", Arg0: REG, Arg1: MEM}
	t[0xCE] = Entry{Mnemonic: "into"}
	t[0xD4] = Entry{Mnemonic: "aam", Arg0: IMM8}
	t[0xD5] = Entry{Mnemonic: "aad", Arg0: IMM8}
	t[0xD6] = Entry{Mnemonic: "salc"}
	t[0xEA] = Entry{Mnemonic: "jmp", Arg0: SEGPTR, Flags: Branches | Stops | FarOp}

	return t
}()

// OneByte64 is the one-byte opcode table for 64-bit mode: 0x06/0x07/
// 0x0E/0x16/0x17/0x1E/0x1F/0x60-0x62/0x82/0x9A/0xCE/0xD4-0xD6/0xEA are
// invalid and left as reserved slots (the decoder substitutes Unknown);
// 0x40-0x4F are REX prefixes (consumed in the prefix loop, never table
// lookups); 0x63 becomes MOVSXD; 0xC4/0xC5 are always VEX prefixes
// (handled before table lookup).
var OneByte64 = func() [256]Entry {
	t := buildCommon()
	t[0x63] = Entry{Mnemonic: "movsxd", Size: SizeResolve, Arg0: REG, Arg1: RM}
	return t
}()
