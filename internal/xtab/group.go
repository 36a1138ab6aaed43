package xtab

// GroupKey selects a group-table row by the opcode byte that dispatches
// to it plus the ModR/M reg field.
type GroupKey struct {
	Opcode  uint16
	Subcode int // ModR/M reg field, 0..7
}

// Group holds the arithmetic/shift/unary group opcodes: 0x80..0x83,
// 0xC0/C1, 0xD0..D3, 0xF6/F7, 0xFE/FF, 0x8F, 0xC6/C7.
var Group = func() map[GroupKey]Entry {
	g := make(map[GroupKey]Entry)

	arith1 := []string{"add", "or", "adc", "sbb", "and", "sub", "xor", "cmp"}
	for i, mn := range arith1 {
		g[GroupKey{0x80, i}] = Entry{Mnemonic: mn, Size: 8, Arg0: RM, Arg1: IMM8, Flags: AllowLock}
		g[GroupKey{0x81, i}] = Entry{Mnemonic: mn, Size: SizeResolve, Arg0: RM, Arg1: IMM, Flags: AllowLock}
		// 0x82 is the 8-bit-immediate alias of 0x80, invalid in 64-bit mode.
		g[GroupKey{0x82, i}] = Entry{Mnemonic: mn, Size: 8, Arg0: RM, Arg1: IMM8, Flags: AllowLock}
		g[GroupKey{0x83, i}] = Entry{Mnemonic: mn, Size: SizeResolve, Arg0: RM, Arg1: IMM8, Flags: AllowLock}
	}

	shift := []string{"rol", "ror", "rcl", "rcr", "shl", "shr", "sal", "sar"}
	for i, mn := range shift {
		g[GroupKey{0xC0, i}] = Entry{Mnemonic: mn, Size: 8, Arg0: RM, Arg1: IMM8}
		g[GroupKey{0xC1, i}] = Entry{Mnemonic: mn, Size: SizeResolve, Arg0: RM, Arg1: IMM8}
		g[GroupKey{0xD0, i}] = Entry{Mnemonic: mn, Size: 8, Arg0: RM, Arg1: ONE}
		g[GroupKey{0xD1, i}] = Entry{Mnemonic: mn, Size: SizeResolve, Arg0: RM, Arg1: ONE}
		g[GroupKey{0xD2, i}] = Entry{Mnemonic: mn, Size: 8, Arg0: RM, Arg1: CL}
		g[GroupKey{0xD3, i}] = Entry{Mnemonic: mn, Size: SizeResolve, Arg0: RM, Arg1: CL}
	}

	unary := []struct {
		sub  int
		mn   string
		arg1 ArgType
	}{
		{0, "test", IMM}, {1, "test", IMM}, {2, "not", NONE}, {3, "neg", NONE},
		{4, "mul", NONE}, {5, "imul", NONE}, {6, "div", NONE}, {7, "idiv", NONE},
	}
	for _, u := range unary {
		flag := OpFlag(0)
		if u.mn == "not" || u.mn == "neg" {
			flag = AllowLock
		}
		if u.sub <= 1 {
			g[GroupKey{0xF6, u.sub}] = Entry{Mnemonic: u.mn, Size: 8, Arg0: RM, Arg1: IMM8, Flags: flag}
			g[GroupKey{0xF7, u.sub}] = Entry{Mnemonic: u.mn, Size: SizeResolve, Arg0: RM, Arg1: IMM, Flags: flag}
		} else {
			g[GroupKey{0xF6, u.sub}] = Entry{Mnemonic: u.mn, Size: 8, Arg0: RM, Flags: flag}
			g[GroupKey{0xF7, u.sub}] = Entry{Mnemonic: u.mn, Size: SizeResolve, Arg0: RM, Flags: flag}
		}
	}

	g[GroupKey{0xFE, 0}] = Entry{Mnemonic: "inc", Size: 8, Arg0: RM, Flags: AllowLock}
	g[GroupKey{0xFE, 1}] = Entry{Mnemonic: "dec", Size: 8, Arg0: RM, Flags: AllowLock}
	g[GroupKey{0xFF, 0}] = Entry{Mnemonic: "inc", Size: SizeResolve, Arg0: RM, Flags: AllowLock}
	g[GroupKey{0xFF, 1}] = Entry{Mnemonic: "dec", Size: SizeResolve, Arg0: RM, Flags: AllowLock}
	g[GroupKey{0xFF, 2}] = Entry{Mnemonic: "call", Size: SizeResolve, Arg0: RM, Flags: Branches | Default64}
	g[GroupKey{0xFF, 3}] = Entry{Mnemonic: "callf", Arg0: MEM, Flags: Branches | FarOp}
	g[GroupKey{0xFF, 4}] = Entry{Mnemonic: "jmp", Size: SizeResolve, Arg0: RM, Flags: Branches | Stops | Default64}
	g[GroupKey{0xFF, 5}] = Entry{Mnemonic: "jmpf", Arg0: MEM, Flags: Branches | Stops | FarOp}
	g[GroupKey{0xFF, 6}] = Entry{Mnemonic: "push", Size: SizeResolve, Arg0: RM, Flags: Default64 | StackOp}

	g[GroupKey{0x8F, 0}] = Entry{Mnemonic: "pop", Size: SizeResolve, Arg0: RM, Flags: Default64 | StackOp}

	g[GroupKey{0xC6, 0}] = Entry{Mnemonic: "mov", Size: 8, Arg0: RM, Arg1: IMM8}
	g[GroupKey{0xC7, 0}] = Entry{Mnemonic: "mov", Size: SizeResolve, Arg0: RM, Arg1: IMM}

	return g
}()

// Lookup finds a group-table entry by opcode+ModR/M-reg.
func Lookup(opcode uint16, subcode int) (Entry, bool) {
	e, ok := Group[GroupKey{opcode, subcode}]
	return e, ok
}
