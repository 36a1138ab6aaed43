package xfmt

import (
	"fmt"
	"strings"

	"github.com/xyproto/dismod/internal/xdecode"
	"github.com/xyproto/dismod/internal/xtab"
)

// Format renders one decoded instruction as a single line of text in
// the requested syntax. Any Arg whose Text field was already
// populated by a resolver pass is rendered from that text (bracketed
// for a memory operand in Intel syntax) instead of being recomputed
// from its numeric Value, so symbolic labels survive.
func Format(in *xdecode.Instruction, syntax Syntax) string {
	mnemonic := mnemonicText(in, syntax)

	args := make([]string, 0, in.NumArgs)
	for i := 0; i < in.NumArgs; i++ {
		args = append(args, formatArg(in, &in.Args[i], syntax))
	}
	if in.VEX.Present && in.VEX.Reg2 >= 0 && syntax != ATTGAS {
		args = insertVEXSource(args, regXMM[in.VEX.Reg2&0xF])
	}

	if syntax == ATTGAS {
		// AT&T orders destination last.
		for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
			args[i], args[j] = args[j], args[i]
		}
	}

	if len(args) == 0 {
		return mnemonic
	}
	return mnemonic + " " + strings.Join(args, ", ")
}

// isMemoryShaped reports whether an argument slot that got a resolved
// label needs the bracket/parenthesis decoration of a memory operand
// rather than being printed as a bare symbol (a branch target).
func isMemoryShaped(t xtab.ArgType) bool {
	switch t {
	case xtab.RM, xtab.MEM, xtab.MM, xtab.XM, xtab.MOFFS:
		return true
	}
	return false
}

func insertVEXSource(args []string, reg string) []string {
	if len(args) < 2 {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0], reg)
	out = append(out, args[1:]...)
	return out
}

func mnemonicText(in *xdecode.Instruction, syntax Syntax) string {
	mn := in.Entry.Mnemonic
	if in.Prefixes&xdecode.PrefixLock != 0 {
		mn = "lock " + mn
	}
	if in.Entry.Flags&xtab.StringOp != 0 && syntax == ATTGAS {
		switch in.OpSize {
		case 8:
			mn += "b"
		case 16:
			mn += "w"
		case 32:
			mn += "l"
		case 64:
			mn += "q"
		}
	}
	if in.IsFar() && syntax == ATTGAS {
		mn = "l" + mn
	}
	return mn
}

func formatArg(in *xdecode.Instruction, a *xdecode.Arg, syntax Syntax) string {
	if a.Text != "" {
		return decorateResolved(a, syntax, isMemoryShaped(a.Type))
	}

	hasREX := in.Prefixes&xdecode.PrefixREX != 0

	switch a.Type {
	case xtab.ONE:
		return "1"
	case xtab.AL, xtab.ALS:
		return reg(gpName(0, 8, hasREX), syntax)
	case xtab.CL:
		return reg(gpName(1, 8, hasREX), syntax)
	case xtab.DL:
		return reg(gpName(2, 8, hasREX), syntax)
	case xtab.BL:
		return reg(gpName(3, 8, hasREX), syntax)
	case xtab.AH:
		return reg(gpName(4, 8, hasREX), syntax)
	case xtab.CH:
		return reg(gpName(5, 8, hasREX), syntax)
	case xtab.DH:
		return reg(gpName(6, 8, hasREX), syntax)
	case xtab.BH:
		return reg(gpName(7, 8, hasREX), syntax)
	case xtab.AX, xtab.AXS:
		return reg(gpName(0, 16, hasREX), syntax)
	case xtab.CX:
		return reg(gpName(1, 16, hasREX), syntax)
	case xtab.DX, xtab.DXS:
		return reg(gpName(2, 16, hasREX), syntax)
	case xtab.BX:
		return reg(gpName(3, 16, hasREX), syntax)
	case xtab.SP:
		return reg(gpName(4, 16, hasREX), syntax)
	case xtab.BP:
		return reg(gpName(5, 16, hasREX), syntax)
	case xtab.SI:
		return reg(gpName(6, 16, hasREX), syntax)
	case xtab.DI:
		return reg(gpName(7, 16, hasREX), syntax)
	case xtab.ES, xtab.CS, xtab.SS, xtab.DS, xtab.FS, xtab.GS:
		return reg(regSeg[a.Type-xtab.ES], syntax)
	case xtab.DSBX:
		return memRef(syntax, "ds", "bx", "", 0, 0, false)
	case xtab.DSSI:
		return memRef(syntax, "ds", "si", "", 0, 0, false)
	case xtab.ESDI:
		return memRef(syntax, "es", "di", "", 0, 0, false)

	case xtab.IMM8, xtab.IMM16, xtab.IMM:
		return imm(a.Value, syntax)
	case xtab.REL8, xtab.REL:
		return target(a.Value, syntax)
	case xtab.SEGPTR:
		seg := a.Value >> 32
		off := a.Value & 0xFFFFFFFF
		return segptr(seg, off, syntax)
	case xtab.MOFFS:
		return memAbs(a.Value, syntax)

	case xtab.REG:
		return reg(gpName(int(a.Value), in.OpSize, hasREX), syntax)
	case xtab.REG32:
		return reg(gpName(int(a.Value), 32, hasREX), syntax)
	case xtab.MMX, xtab.MMXONLY:
		return reg(regMMX[a.Value&7], syntax)
	case xtab.XMM, xtab.XMMONLY:
		return reg(regXMM[a.Value&0xF], syntax)
	case xtab.SEG16:
		return reg(regSeg[a.Value&7], syntax)
	case xtab.CR32:
		return reg(regCR[a.Value&7], syntax)
	case xtab.DR32:
		return reg(regDR[a.Value&7], syntax)
	case xtab.TR32:
		return reg(fmt.Sprintf("tr%d", a.Value&7), syntax)
	case xtab.ST:
		return reg(regST[0], syntax)
	case xtab.STX:
		return reg(regST[a.Value&7], syntax)

	case xtab.RM, xtab.MEM, xtab.REGONLY:
		return formatRM(in, a, syntax, hasREX, in.OpSize)
	case xtab.MM:
		return formatRM(in, a, syntax, hasREX, -1)
	case xtab.XM:
		return formatRM(in, a, syntax, hasREX, -2)
	default:
		return "?"
	}
}

// formatRM renders an RM/MEM/MM/XM/REGONLY slot: a bare register name
// when the ModR/M byte selected register-direct addressing, or a
// bracketed memory operand otherwise. regKind selects which register
// table a register-direct form names: -1 MMX, -2 XMM, else GP width.
func formatRM(in *xdecode.Instruction, a *xdecode.Arg, syntax Syntax, hasREX bool, regKind int) string {
	if in.ModRMDisp == xdecode.DispRegisterDirect {
		idx := int(a.Value)
		switch regKind {
		case -1:
			return reg(regMMX[idx&7], syntax)
		case -2:
			return reg(regXMM[idx&0xF], syntax)
		default:
			return reg(gpName(idx, regKind, hasREX), syntax)
		}
	}

	if in.ModRMReg == 16 {
		return ripRelative(int32(a.Value), syntax)
	}

	var base string
	if in.ModRMReg >= 0 {
		addrWidth := in.AddrSize
		base = gpName(in.ModRMReg, addrWidth, hasREX)
	}
	var index string
	if in.SIBIndex >= 0 {
		index = gpName(in.SIBIndex, in.AddrSize, hasREX)
	}
	return memRef(syntax, "", base, index, in.SIBScale, int32(a.Value), in.UsedMem && base == "" && index == "")
}

