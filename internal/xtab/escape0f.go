package xtab

// TwoByte is the 0F-escape table, keyed by the second opcode byte.
// Deliberately sparse: 0x0B (UD2) has no entry, so decoding it falls
// through to the unknown-opcode placeholder rather than a table hit.
var TwoByte = func() map[uint16]Entry {
	t := make(map[uint16]Entry)

	t[0x05] = Entry{Mnemonic: "syscall", Flags: Stops}
	t[0x06] = Entry{Mnemonic: "clts"}
	t[0x07] = Entry{Mnemonic: "sysret", Flags: Stops}
	t[0x08] = Entry{Mnemonic: "invd"}
	t[0x09] = Entry{Mnemonic: "wbinvd"}
	t[0x0D] = Entry{Mnemonic: "prefetchw", Arg0: MEM}
	t[0x0E] = Entry{Mnemonic: "femms"}
	t[0x18] = Entry{Mnemonic: "prefetcht0", Arg0: MEM}
	t[0x1E] = Entry{Mnemonic: "nop", Arg0: RM}
	t[0x1F] = Entry{Mnemonic: "nop", Size: SizeResolve, Arg0: RM}
	t[0x20] = Entry{Mnemonic: "mov", Arg0: REG32, Arg1: CR32}
	t[0x21] = Entry{Mnemonic: "mov", Arg0: REG32, Arg1: DR32}
	t[0x22] = Entry{Mnemonic: "mov", Arg0: CR32, Arg1: REG32}
	t[0x23] = Entry{Mnemonic: "mov", Arg0: DR32, Arg1: REG32}
	t[0x31] = Entry{Mnemonic: "rdtsc"}
	t[0xA2] = Entry{Mnemonic: "cpuid"}
	t[0xA3] = Entry{Mnemonic: "bt", Size: SizeResolve, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0xAB] = Entry{Mnemonic: "bts", Size: SizeResolve, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0xAF] = Entry{Mnemonic: "imul", Size: SizeResolve, Arg0: REG, Arg1: RM}
	t[0xB0] = Entry{Mnemonic: "cmpxchg", Size: 8, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0xB1] = Entry{Mnemonic: "cmpxchg", Size: SizeResolve, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0xB3] = Entry{Mnemonic: "btr", Size: SizeResolve, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0xB6] = Entry{Mnemonic: "movzx", Size: SizeResolve, Arg0: REG, Arg1: RM}
	t[0xB7] = Entry{Mnemonic: "movzx", Size: SizeResolve, Arg0: REG, Arg1: RM}
	t[0xBB] = Entry{Mnemonic: "btc", Size: SizeResolve, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0xBC] = Entry{Mnemonic: "bsf", Size: SizeResolve, Arg0: REG, Arg1: RM}
	t[0xBD] = Entry{Mnemonic: "bsr", Size: SizeResolve, Arg0: REG, Arg1: RM}
	t[0xBE] = Entry{Mnemonic: "movsx", Size: SizeResolve, Arg0: REG, Arg1: RM}
	t[0xBF] = Entry{Mnemonic: "movsx", Size: SizeResolve, Arg0: REG, Arg1: RM}
	t[0xC0] = Entry{Mnemonic: "xadd", Size: 8, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0xC1] = Entry{Mnemonic: "xadd", Size: SizeResolve, Arg0: RM, Arg1: REG, Flags: AllowLock}
	t[0xC8] = Entry{Mnemonic: "bswap", Size: 32, Arg0: REGONLY}

	for i, mn := range jccList() {
		t[0x80+uint16(i)] = Entry{Mnemonic: mn, Size: SizeResolve, Arg0: REL, Flags: Branches}
		t[0x90+uint16(i)] = Entry{Mnemonic: "set" + mn[1:], Size: 8, Arg0: RM}
	}

	return t
}()

func jccList() []string {
	return []string{"jo", "jno", "jb", "jae", "je", "jne", "jbe", "ja",
		"js", "jns", "jp", "jnp", "jl", "jge", "jle", "jg"}
}

// init populates the reg-dependent 0F-escape groups (0F 00 = group 6,
// 0F 01 = group 7, 0F BA = group 8, 0F C7 = group 9) into the shared
// Group table, using a distinct Opcode namespace (0x0Fxx) so they
// never collide with the one-byte table's group keys (0x80..0xFF).
func init() {
	Group[GroupKey{0x0F00, 0}] = Entry{Mnemonic: "sldt", Arg0: RM}
	Group[GroupKey{0x0F00, 1}] = Entry{Mnemonic: "str", Arg0: RM}
	Group[GroupKey{0x0F00, 2}] = Entry{Mnemonic: "lldt", Arg0: RM}
	Group[GroupKey{0x0F00, 3}] = Entry{Mnemonic: "ltr", Arg0: RM}
	Group[GroupKey{0x0F00, 4}] = Entry{Mnemonic: "verr", Arg0: RM}
	Group[GroupKey{0x0F00, 5}] = Entry{Mnemonic: "verw", Arg0: RM}

	Group[GroupKey{0x0F01, 0}] = Entry{Mnemonic: "sgdt", Arg0: MEM}
	Group[GroupKey{0x0F01, 1}] = Entry{Mnemonic: "sidt", Arg0: MEM}
	Group[GroupKey{0x0F01, 2}] = Entry{Mnemonic: "lgdt", Arg0: MEM}
	Group[GroupKey{0x0F01, 3}] = Entry{Mnemonic: "lidt", Arg0: MEM}
	Group[GroupKey{0x0F01, 4}] = Entry{Mnemonic: "smsw", Arg0: RM}
	Group[GroupKey{0x0F01, 6}] = Entry{Mnemonic: "lmsw", Arg0: RM}
	Group[GroupKey{0x0F01, 7}] = Entry{Mnemonic: "invlpg", Arg0: MEM}

	btGroup := []string{"bt", "bts", "btr", "btc"}
	for i, mn := range btGroup {
		Group[GroupKey{0x0FBA, i + 4}] = Entry{Mnemonic: mn, Size: SizeResolve, Arg0: RM, Arg1: IMM8, Flags: AllowLock}
	}

	Group[GroupKey{0x0FC7, 1}] = Entry{Mnemonic: "cmpxchg8b", Arg0: MEM, Flags: AllowLock}
}
