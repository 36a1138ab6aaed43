package xdecode

// modrmResult carries everything a ModR/M (plus optional SIB and
// displacement) parse produces, before it's folded into the argument
// slot that requested it.
type modrmResult struct {
	disp     DispKind
	reg      int // modrm.reg field, extended by REX.R
	rm       int // register index when disp==DispRegisterDirect, else -1
	sibScale int
	sibIndex int // -1 if absent
	dispVal  int64
	dispIP   int // always -1; parseArgs derives the displacement's offset from the cursor
	usedMem  bool
}

// parseModRM consumes the ModR/M byte and (if present) the SIB byte
// and displacement, following the addressing rules for 16-bit versus
// 32/64-bit effective addresses.
// addrSize is the effective address width (16, 32, or 64).
func parseModRM(c *cursor, in *Instruction, addrSize int) (modrmResult, error) {
	var r modrmResult
	r.sibIndex = -1
	r.dispIP = -1

	b, err := c.u8()
	if err != nil {
		return r, err
	}
	in.ModRMByte = b
	mod := b >> 6
	reg := int((b >> 3) & 7)
	rm := int(b & 7)

	if in.Prefixes&PrefixREXR != 0 {
		reg += 8
	}
	r.reg = reg

	if mod == 3 {
		r.disp = DispRegisterDirect
		if in.Prefixes&PrefixREXB != 0 {
			rm += 8
		}
		r.rm = rm
		return r, nil
	}

	r.usedMem = true

	if addrSize == 16 {
		// classic 8-slot effective-address matrix; mod==0 && rm==6 is
		// absolute disp16, not [bp].
		if mod == 0 && rm == 6 {
			v, err := c.sized(2, true)
			if err != nil {
				return r, err
			}
			r.disp = Disp16Or32
			r.dispVal = int64(v)
			r.rm = -1
			return r, nil
		}
		r.rm = rm // caller maps rm (0..7) to the bx+si/.../bx matrix
		switch mod {
		case 1:
			v, err := c.sized(1, true)
			if err != nil {
				return r, err
			}
			r.disp = Disp8
			r.dispVal = int64(v)
		case 2:
			v, err := c.sized(2, true)
			if err != nil {
				return r, err
			}
			r.disp = Disp16Or32
			r.dispVal = int64(v)
		default:
			r.disp = DispNone
		}
		return r, nil
	}

	// 32/64-bit addressing: rm==4 means SIB follows.
	baseRM := rm
	if in.Prefixes&PrefixREXB != 0 {
		baseRM += 8
	}

	if rm == 4 {
		sib, err := c.u8()
		if err != nil {
			return r, err
		}
		in.SIBByte = sib
		scale := 1 << (sib >> 6)
		idx := int((sib >> 3) & 7)
		base := int(sib & 7)
		if in.Prefixes&PrefixREXX != 0 {
			idx += 8
		}
		if in.Prefixes&PrefixREXB != 0 {
			base += 8
		}
		r.sibScale = scale
		if idx == 4 && in.Prefixes&PrefixREXX == 0 {
			r.sibIndex = -1 // SIB index==4 with no REX.X extension: no index
		} else {
			r.sibIndex = idx
		}
		r.rm = base

		if mod == 0 && (base&7) == 5 {
			v, err := c.sized(4, true)
			if err != nil {
				return r, err
			}
			r.disp = Disp16Or32
			r.dispVal = int64(v)
			r.rm = -1 // absolute base, no base register contributes
			return r, nil
		}
	} else if mod == 0 && rm == 5 {
		v, err := c.sized(4, true)
		if err != nil {
			return r, err
		}
		r.disp = Disp16Or32
		r.dispVal = int64(v)
		if addrSize == 64 {
			r.rm = 16 // RIP-relative sentinel
		} else {
			r.rm = -1
		}
		return r, nil
	} else {
		r.rm = baseRM
	}

	switch mod {
	case 1:
		v, err := c.sized(1, true)
		if err != nil {
			return r, err
		}
		r.disp = Disp8
		r.dispVal = int64(v)
	case 2:
		v, err := c.sized(4, true)
		if err != nil {
			return r, err
		}
		r.disp = Disp16Or32
		r.dispVal = int64(v)
	}
	return r, nil
}
