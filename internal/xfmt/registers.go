// Package xfmt renders a decoded instruction as one line of assembly
// text in one of three surface syntaxes.
package xfmt

// Syntax selects the surface notation a formatted line is rendered in.
type Syntax int

const (
	IntelNASM Syntax = iota
	IntelMASM
	ATTGAS
)

func (s Syntax) String() string {
	switch s {
	case IntelNASM:
		return "nasm"
	case IntelMASM:
		return "masm"
	case ATTGAS:
		return "gas"
	default:
		return "unknown"
	}
}

var reg8 = [16]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
var reg8rex = [16]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil",
	"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"}
var reg16 = [16]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
	"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"}
var reg32 = [16]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
	"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"}
var reg64 = [16]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}
var regXMM = [16]string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
	"xmm8", "xmm9", "xmm10", "xmm11", "xmm12", "xmm13", "xmm14", "xmm15"}
var regMMX = [8]string{"mm0", "mm1", "mm2", "mm3", "mm4", "mm5", "mm6", "mm7"}
var regSeg = [6]string{"es", "cs", "ss", "ds", "fs", "gs"}
var regCR = [8]string{"cr0", "cr1", "cr2", "cr3", "cr4", "cr5", "cr6", "cr7"}
var regDR = [8]string{"dr0", "dr1", "dr2", "dr3", "dr4", "dr5", "dr6", "dr7"}
var regST = [8]string{"st(0)", "st(1)", "st(2)", "st(3)", "st(4)", "st(5)", "st(6)", "st(7)"}

// gpName resolves a general-purpose register index (0-15, already
// REX-extended by the decoder) at the given width. hasREX selects
// between the legacy AH/CH/DH/BH 8-bit names and the REX-era SPL/BPL/
// SIL/DIL names, which share the same index range but never coexist
// in one encoding.
func gpName(idx, size int, hasREX bool) string {
	switch size {
	case 8:
		if hasREX {
			return reg8rex[idx]
		}
		return reg8[idx]
	case 16:
		return reg16[idx]
	case 32:
		return reg32[idx]
	default:
		return reg64[idx]
	}
}

func attRegister(name string) string { return "%" + name }
