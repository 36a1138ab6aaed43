package xfmt

import (
	"fmt"

	"github.com/xyproto/dismod/internal/xdecode"
)

func reg(name string, syntax Syntax) string {
	if syntax == ATTGAS {
		return attRegister(name)
	}
	return name
}

func imm(v uint64, syntax Syntax) string {
	if syntax == ATTGAS {
		return fmt.Sprintf("$0x%x", v)
	}
	return fmt.Sprintf("0x%x", v)
}

// target renders a branch/call destination. A resolver that filled in
// Arg.Text with a symbolic label bypasses this entirely.
func target(v uint64, syntax Syntax) string {
	return fmt.Sprintf("0x%x", v)
}

func segptr(seg, off uint64, syntax Syntax) string {
	if syntax == ATTGAS {
		return fmt.Sprintf("$0x%x,$0x%x", seg, off)
	}
	return fmt.Sprintf("0x%x:0x%x", seg, off)
}

func memAbs(v uint64, syntax Syntax) string {
	if syntax == ATTGAS {
		return fmt.Sprintf("0x%x", v)
	}
	return fmt.Sprintf("[0x%x]", v)
}

func ripRelative(disp int32, syntax Syntax) string {
	if syntax == ATTGAS {
		return fmt.Sprintf("%s(%%rip)", signedHex(disp))
	}
	return fmt.Sprintf("[rip%s]", signedHexSuffix(disp))
}

// memRef renders a base/index/scale/disp memory operand. absoluteOnly
// marks the case where neither base nor index is present (disp-only
// addressing), so the operand degenerates to a plain address.
func memRef(syntax Syntax, seg, base, index string, scale int, disp int32, absoluteOnly bool) string {
	if absoluteOnly {
		if syntax == ATTGAS {
			return fmt.Sprintf("0x%x", uint32(disp))
		}
		return segPrefix(seg, syntax) + fmt.Sprintf("[0x%x]", uint32(disp))
	}

	if syntax == ATTGAS {
		var inner string
		switch {
		case base != "" && index != "":
			inner = fmt.Sprintf("%s,%s,%d", attRegister(base), attRegister(index), scale)
		case base != "":
			inner = attRegister(base)
		case index != "":
			inner = fmt.Sprintf(",%s,%d", attRegister(index), scale)
		}
		prefix := ""
		if disp != 0 {
			prefix = signedHex(disp)
		}
		segp := ""
		if seg != "" {
			segp = attRegister(seg) + ":"
		}
		return fmt.Sprintf("%s%s(%s)", segp, prefix, inner)
	}

	var parts []string
	if base != "" {
		parts = append(parts, base)
	}
	if index != "" {
		if scale > 1 {
			parts = append(parts, fmt.Sprintf("%s*%d", index, scale))
		} else {
			parts = append(parts, index)
		}
	}
	inner := ""
	for i, p := range parts {
		if i > 0 {
			inner += "+"
		}
		inner += p
	}
	if disp != 0 || inner == "" {
		inner += signedHexSuffix(disp)
	}
	return segPrefix(seg, syntax) + "[" + inner + "]"
}

func segPrefix(seg string, syntax Syntax) string {
	if seg == "" {
		return ""
	}
	return seg + ":"
}

func signedHex(v int32) string {
	if v < 0 {
		return fmt.Sprintf("-0x%x", -int64(v))
	}
	return fmt.Sprintf("0x%x", v)
}

func signedHexSuffix(v int32) string {
	if v == 0 {
		return ""
	}
	if v < 0 {
		return fmt.Sprintf("-0x%x", -int64(v))
	}
	return fmt.Sprintf("+0x%x", v)
}

// decorateResolved formats an argument whose symbolic text a resolver
// pass already supplied, adding the brackets a memory-shaped slot
// needs in Intel syntax (the resolver only ever fills in the label
// itself, never operand punctuation). memShaped distinguishes a
// memory-operand label (RM/MEM/MM/XM/MOFFS resolving to "[name]") from
// any other label, such as a REL branch target, which is printed bare.
func decorateResolved(a *xdecode.Arg, syntax Syntax, memShaped bool) string {
	if memShaped {
		if syntax == ATTGAS {
			return a.Text
		}
		return "[" + a.Text + "]"
	}
	return a.Text
}
