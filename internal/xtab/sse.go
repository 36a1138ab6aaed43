package xtab

// SSE tables select the SSE/MMX scalar/packed variant by the prefix
// active when the 0F escape is consumed: SSEPlain (no prefix, also
// the MMX-only encodings), SSEOp32 (66 prefix, packed double),
// SSERepNE (F2 prefix, scalar double), SSERepE (F3 prefix, scalar
// single). All keyed by the second opcode byte.
var (
	SSEPlain = map[uint16]Entry{}
	SSEOp32  = map[uint16]Entry{}
	SSERepNE = map[uint16]Entry{}
	SSERepE  = map[uint16]Entry{}
)

func init() {
	SSEPlain[0x10] = Entry{Mnemonic: "movups", Arg0: XM, Arg1: XM}
	SSEPlain[0x11] = Entry{Mnemonic: "movups", Arg0: XM, Arg1: XM}
	SSEPlain[0x28] = Entry{Mnemonic: "movaps", Arg0: XM, Arg1: XM}
	SSEPlain[0x29] = Entry{Mnemonic: "movaps", Arg0: XM, Arg1: XM}
	SSEPlain[0x2A] = Entry{Mnemonic: "cvtpi2ps", Arg0: XMM, Arg1: MM}
	SSEPlain[0x2C] = Entry{Mnemonic: "cvttps2pi", Arg0: MM, Arg1: XM}
	SSEPlain[0x2D] = Entry{Mnemonic: "cvtps2pi", Arg0: MM, Arg1: XM}
	SSEPlain[0x2E] = Entry{Mnemonic: "ucomiss", Arg0: XMM, Arg1: XM}
	SSEPlain[0x2F] = Entry{Mnemonic: "comiss", Arg0: XMM, Arg1: XM}
	SSEPlain[0x51] = Entry{Mnemonic: "sqrtps", Arg0: XM, Arg1: XM}
	SSEPlain[0x54] = Entry{Mnemonic: "andps", Arg0: XM, Arg1: XM}
	SSEPlain[0x55] = Entry{Mnemonic: "andnps", Arg0: XM, Arg1: XM}
	SSEPlain[0x56] = Entry{Mnemonic: "orps", Arg0: XM, Arg1: XM}
	SSEPlain[0x57] = Entry{Mnemonic: "xorps", Arg0: XM, Arg1: XM}
	SSEPlain[0x58] = Entry{Mnemonic: "addps", Arg0: XM, Arg1: XM}
	SSEPlain[0x59] = Entry{Mnemonic: "mulps", Arg0: XM, Arg1: XM}
	SSEPlain[0x5A] = Entry{Mnemonic: "cvtps2pd", Arg0: XM, Arg1: XM}
	SSEPlain[0x5C] = Entry{Mnemonic: "subps", Arg0: XM, Arg1: XM}
	SSEPlain[0x5D] = Entry{Mnemonic: "minps", Arg0: XM, Arg1: XM}
	SSEPlain[0x5E] = Entry{Mnemonic: "divps", Arg0: XM, Arg1: XM}
	SSEPlain[0x5F] = Entry{Mnemonic: "maxps", Arg0: XM, Arg1: XM}
	SSEPlain[0x6E] = Entry{Mnemonic: "movd", Arg0: MM, Arg1: RM}
	SSEPlain[0x6F] = Entry{Mnemonic: "movq", Arg0: MM, Arg1: MM}
	SSEPlain[0x7E] = Entry{Mnemonic: "movd", Arg0: RM, Arg1: MM}
	SSEPlain[0x7F] = Entry{Mnemonic: "movq", Arg0: MM, Arg1: MM}
	SSEPlain[0x77] = Entry{Mnemonic: "vzeroupper"} // VEX-only encoding
	SSEPlain[0xC6] = Entry{Mnemonic: "shufps", Arg0: XM, Arg1: XM, Flags: Arg2Imm8}
	SSEPlain[0xEF] = Entry{Mnemonic: "pxor", Arg0: MM, Arg1: MM}

	SSEOp32[0x10] = Entry{Mnemonic: "movupd", Arg0: XM, Arg1: XM}
	SSEOp32[0x11] = Entry{Mnemonic: "movupd", Arg0: XM, Arg1: XM}
	SSEOp32[0x28] = Entry{Mnemonic: "movapd", Arg0: XM, Arg1: XM}
	SSEOp32[0x29] = Entry{Mnemonic: "movapd", Arg0: XM, Arg1: XM}
	SSEOp32[0x54] = Entry{Mnemonic: "andpd", Arg0: XM, Arg1: XM}
	SSEOp32[0x57] = Entry{Mnemonic: "xorpd", Arg0: XM, Arg1: XM}
	SSEOp32[0x58] = Entry{Mnemonic: "addpd", Arg0: XM, Arg1: XM}
	SSEOp32[0x59] = Entry{Mnemonic: "mulpd", Arg0: XM, Arg1: XM}
	SSEOp32[0x5C] = Entry{Mnemonic: "subpd", Arg0: XM, Arg1: XM}
	SSEOp32[0x5E] = Entry{Mnemonic: "divpd", Arg0: XM, Arg1: XM}
	SSEOp32[0x6E] = Entry{Mnemonic: "movd", Arg0: XMM, Arg1: RM}
	SSEOp32[0x6F] = Entry{Mnemonic: "movdqa", Arg0: XM, Arg1: XM}
	SSEOp32[0x7E] = Entry{Mnemonic: "movd", Arg0: RM, Arg1: XMM}
	SSEOp32[0x7F] = Entry{Mnemonic: "movdqa", Arg0: XM, Arg1: XM}
	SSEOp32[0xD6] = Entry{Mnemonic: "movq", Arg0: XM, Arg1: XMM}
	SSEOp32[0xEF] = Entry{Mnemonic: "pxor", Arg0: XM, Arg1: XM}
	SSEOp32[0xFE] = Entry{Mnemonic: "paddd", Arg0: XM, Arg1: XM}

	SSERepNE[0x10] = Entry{Mnemonic: "movsd", Arg0: XM, Arg1: XM}
	SSERepNE[0x11] = Entry{Mnemonic: "movsd", Arg0: XM, Arg1: XM}
	SSERepNE[0x2A] = Entry{Mnemonic: "cvtsi2sd", Size: SizeResolve, Arg0: XMM, Arg1: RM}
	SSERepNE[0x2C] = Entry{Mnemonic: "cvttsd2si", Size: SizeResolve, Arg0: REG, Arg1: XM}
	SSERepNE[0x2D] = Entry{Mnemonic: "cvtsd2si", Size: SizeResolve, Arg0: REG, Arg1: XM}
	SSERepNE[0x51] = Entry{Mnemonic: "sqrtsd", Arg0: XMM, Arg1: XM}
	SSERepNE[0x58] = Entry{Mnemonic: "addsd", Arg0: XMM, Arg1: XM}
	SSERepNE[0x59] = Entry{Mnemonic: "mulsd", Arg0: XMM, Arg1: XM}
	SSERepNE[0x5A] = Entry{Mnemonic: "cvtsd2ss", Arg0: XMM, Arg1: XM}
	SSERepNE[0x5C] = Entry{Mnemonic: "subsd", Arg0: XMM, Arg1: XM}
	SSERepNE[0x5E] = Entry{Mnemonic: "divsd", Arg0: XMM, Arg1: XM}

	SSERepE[0x10] = Entry{Mnemonic: "movss", Arg0: XM, Arg1: XM}
	SSERepE[0x11] = Entry{Mnemonic: "movss", Arg0: XM, Arg1: XM}
	SSERepE[0x2A] = Entry{Mnemonic: "cvtsi2ss", Size: SizeResolve, Arg0: XMM, Arg1: RM}
	SSERepE[0x2C] = Entry{Mnemonic: "cvttss2si", Size: SizeResolve, Arg0: REG, Arg1: XM}
	SSERepE[0x2D] = Entry{Mnemonic: "cvtss2si", Size: SizeResolve, Arg0: REG, Arg1: XM}
	SSERepE[0x51] = Entry{Mnemonic: "sqrtss", Arg0: XMM, Arg1: XM}
	SSERepE[0x58] = Entry{Mnemonic: "addss", Arg0: XMM, Arg1: XM}
	SSERepE[0x59] = Entry{Mnemonic: "mulss", Arg0: XMM, Arg1: XM}
	SSERepE[0x5A] = Entry{Mnemonic: "cvtss2sd", Arg0: XMM, Arg1: XM}
	SSERepE[0x5C] = Entry{Mnemonic: "subss", Arg0: XMM, Arg1: XM}
	SSERepE[0x5E] = Entry{Mnemonic: "divss", Arg0: XMM, Arg1: XM}
	SSERepE[0x6F] = Entry{Mnemonic: "movdqu", Arg0: XM, Arg1: XM}
	SSERepE[0x7E] = Entry{Mnemonic: "movq", Arg0: XM, Arg1: XM}
	SSERepE[0x7F] = Entry{Mnemonic: "movdqu", Arg0: XM, Arg1: XM}
}

// ThreeByteKey selects a three-byte SSE encoding: the
// 0F 38 or 0F 3A escape byte followed by the subcode byte.
type ThreeByteKey struct {
	Escape  byte // 0x38 or 0x3A
	Subcode byte
}

// ThreeByte holds the three-byte SSE table (VEX.0F38/0F3A families:
// FMA, AVX2 gather/broadcast). Prefix (66 is mandatory for all
// populated entries below) is implied, not re-checked.
var ThreeByte = map[ThreeByteKey]Entry{
	{0x38, 0x00}: {Mnemonic: "pshufb", Arg0: XM, Arg1: XM},
	{0x38, 0x17}: {Mnemonic: "ptest", Arg0: XM, Arg1: XM},
	{0x38, 0x29}: {Mnemonic: "pcmpeqq", Arg0: XM, Arg1: XM},
	{0x38, 0xDB}: {Mnemonic: "aesimc", Arg0: XM, Arg1: XM},
	{0x3A, 0x0B}: {Mnemonic: "roundsd", Arg0: XMM, Arg1: XM, Flags: Arg2Imm8},
	{0x3A, 0x0F}: {Mnemonic: "palignr", Arg0: XM, Arg1: XM, Flags: Arg2Imm8},
	{0x3A, 0x63}: {Mnemonic: "pcmpistri", Arg0: XM, Arg1: XM, Flags: Arg2Imm8},
}
