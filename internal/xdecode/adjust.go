package xdecode

// applyMnemonicAdjustments finalizes table entries that are ambiguous
// until sizes are known, after resolveSizes and parseArgs have run.
func applyMnemonicAdjustments(in *Instruction, mode Mode) {
	switch in.Entry.Mnemonic {
	case "cbw":
		switch in.OpSize {
		case 16:
			in.Entry.Mnemonic = "cbw"
		case 32:
			in.Entry.Mnemonic = "cwde"
		case 64:
			in.Entry.Mnemonic = "cdqe"
		}
	case "cwd":
		switch in.OpSize {
		case 16:
			in.Entry.Mnemonic = "cwd"
		case 32:
			in.Entry.Mnemonic = "cdq"
		case 64:
			in.Entry.Mnemonic = "cqo"
		}
	case "jcxz":
		switch in.AddrSize {
		case 16:
			in.Entry.Mnemonic = "jcxz"
		case 32:
			in.Entry.Mnemonic = "jecxz"
		case 64:
			in.Entry.Mnemonic = "jrcxz"
		}
	case "pusha":
		if in.OpSize == 32 {
			in.Entry.Mnemonic = "pushad"
		}
	case "popa":
		if in.OpSize == 32 {
			in.Entry.Mnemonic = "popad"
		}
	case "cmpxchg8b":
		if in.Prefixes&PrefixREXW != 0 {
			in.Entry.Mnemonic = "cmpxchg16b"
		}
	}
}
