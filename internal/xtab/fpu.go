package xtab

// FPUMem holds the 8x8 (opcode low 3 bits x ModR/M reg field) table
// selected when ModR/M.mod < 3 (memory operand).
var FPUMem [8][8]Entry

// FPUReg holds the same shape, selected when ModR/M.mod == 3
// (register operand; falls back to FPUSingle when unpopulated).
var FPUReg [8][8]Entry

// FPUSingleKey selects a fully-qualified fixed two-byte FPU encoding
// not expressible as (escape, reg) alone.
type FPUSingleKey struct {
	Escape byte // D8..DF
	ModRM  byte // full ModR/M byte, mod==3
}

// FPUSingle is the fixed-encoding FPU instruction list.
var FPUSingle = map[FPUSingleKey]Entry{}

func fmem(escape int, reg int, mn string, size int) {
	FPUMem[escape][reg] = Entry{Mnemonic: mn, Size: size, Arg0: MEM}
}

func freg(escape int, reg int, mn string) {
	FPUReg[escape][reg] = Entry{Mnemonic: mn, Arg0: STX}
}

func fsingle(escape byte, modrm byte, mn string) {
	FPUSingle[FPUSingleKey{escape, modrm}] = Entry{Mnemonic: mn}
}

func init() {
	// D8: single-precision real arithmetic, memory form; ST(i), register form.
	fmem(0, 0, "fadd", 32)
	fmem(0, 1, "fmul", 32)
	fmem(0, 2, "fcom", 32)
	fmem(0, 3, "fcomp", 32)
	fmem(0, 4, "fsub", 32)
	fmem(0, 5, "fsubr", 32)
	fmem(0, 6, "fdiv", 32)
	fmem(0, 7, "fdivr", 32)
	for i, mn := range []string{"fadd", "fmul", "fcom", "fcomp", "fsub", "fsubr", "fdiv", "fdivr"} {
		freg(0, i, mn)
	}

	// D9: load/store/control, memory form.
	fmem(1, 0, "fld", 32)
	fmem(1, 2, "fst", 32)
	fmem(1, 3, "fstp", 32)
	fmem(1, 4, "fldenv", 0)
	fmem(1, 5, "fldcw", 16)
	fmem(1, 6, "fnstenv", 0)
	fmem(1, 7, "fnstcw", 16)
	freg(1, 0, "fld")
	freg(1, 1, "fxch")
	fsingle(0xD9, 0xD0, "fnop")
	fsingle(0xD9, 0xE0, "fchs")
	fsingle(0xD9, 0xE1, "fabs")
	fsingle(0xD9, 0xE4, "ftst")
	fsingle(0xD9, 0xE5, "fxam")
	fsingle(0xD9, 0xE8, "fld1")
	fsingle(0xD9, 0xE9, "fldl2t")
	fsingle(0xD9, 0xEA, "fldl2e")
	fsingle(0xD9, 0xEB, "fldpi")
	fsingle(0xD9, 0xEC, "fldlg2")
	fsingle(0xD9, 0xED, "fldln2")
	fsingle(0xD9, 0xEE, "fldz")
	fsingle(0xD9, 0xF0, "f2xm1")
	fsingle(0xD9, 0xF1, "fyl2x")
	fsingle(0xD9, 0xF8, "fprem")
	fsingle(0xD9, 0xFA, "fsqrt")
	fsingle(0xD9, 0xFE, "fsin")
	fsingle(0xD9, 0xFF, "fcos")

	// DA: 32-bit integer arithmetic, memory form; DB: 32-bit int load/store + misc control.
	fmem(2, 0, "fiadd", 32)
	fmem(2, 1, "fimul", 32)
	fmem(2, 2, "ficom", 32)
	fmem(2, 3, "ficomp", 32)
	fmem(2, 4, "fisub", 32)
	fmem(2, 5, "fisubr", 32)
	fmem(2, 6, "fidiv", 32)
	fmem(2, 7, "fidivr", 32)
	fsingle(0xDA, 0xE9, "fucompp")

	fmem(3, 0, "fild", 32)
	fmem(3, 2, "fist", 32)
	fmem(3, 3, "fistp", 32)
	fmem(3, 5, "fld", 80)
	fmem(3, 7, "fstp", 80)
	fsingle(0xDB, 0xE2, "fnclex")
	fsingle(0xDB, 0xE3, "fninit")

	// DC: double-precision real arithmetic, memory form.
	fmem(4, 0, "fadd", 64)
	fmem(4, 1, "fmul", 64)
	fmem(4, 2, "fcom", 64)
	fmem(4, 3, "fcomp", 64)
	fmem(4, 4, "fsub", 64)
	fmem(4, 5, "fsubr", 64)
	fmem(4, 6, "fdiv", 64)
	fmem(4, 7, "fdivr", 64)

	// DD: double-precision load/store; register-form fst/fstp ST(i).
	fmem(5, 0, "fld", 64)
	fmem(5, 2, "fst", 64)
	fmem(5, 3, "fstp", 64)
	freg(5, 2, "fst")
	freg(5, 3, "fstp")
	freg(5, 4, "fucom")
	freg(5, 5, "fucomp")

	// DE: 16-bit integer arithmetic, memory form; popping register forms.
	fmem(6, 0, "fiadd", 16)
	fmem(6, 1, "fimul", 16)
	fmem(6, 4, "fisub", 16)
	fmem(6, 5, "fisubr", 16)
	fmem(6, 6, "fidiv", 16)
	fmem(6, 7, "fidivr", 16)
	freg(6, 0, "faddp")
	freg(6, 1, "fmulp")
	freg(6, 4, "fsubrp")
	freg(6, 5, "fsubp")
	freg(6, 6, "fdivrp")
	freg(6, 7, "fdivp")
	fsingle(0xDE, 0xD9, "fcompp")

	// DF: 16-bit integer load/store, packed BCD, and status-word store.
	fmem(7, 0, "fild", 16)
	fmem(7, 2, "fist", 16)
	fmem(7, 3, "fistp", 16)
	fmem(7, 4, "fbld", 0)
	fmem(7, 5, "fild", 64)
	fmem(7, 6, "fbstp", 0)
	fmem(7, 7, "fistp", 64)
	fsingle(0xDF, 0xE0, "fnstsw")
}
