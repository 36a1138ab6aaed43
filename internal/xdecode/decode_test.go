package xdecode

import (
	"testing"

	"github.com/xyproto/dismod/internal/xtab"
)

func TestDecodeSimpleOpcodes(t *testing.T) {
	tests := []struct {
		name       string
		bytes      []byte
		mode       Mode
		mnemonic   string
		wantLength int
	}{
		{"nop", []byte{0x90}, Mode32, "nop", 1},
		{"ret", []byte{0xC3}, Mode32, "ret", 1},
		{"mov eax imm32", []byte{0xB8, 0x01, 0x00, 0x00, 0x00}, Mode32, "mov", 5},
		{"xor eax eax modrm", []byte{0x31, 0xC0}, Mode32, "xor", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, diags, err := Decode(0, tt.bytes, tt.mode)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(diags) != 0 {
				t.Errorf("unexpected diagnostics: %+v", diags)
			}
			if in.Entry.Mnemonic != tt.mnemonic {
				t.Errorf("Mnemonic = %q, want %q", in.Entry.Mnemonic, tt.mnemonic)
			}
			if in.Length != tt.wantLength {
				t.Errorf("Length = %d, want %d", in.Length, tt.wantLength)
			}
		})
	}
}

func TestDecodeUnknownOpcodeConsumesOneByte(t *testing.T) {
	// 0x0F 0xFF is not assigned in any two-byte table.
	in, diags, err := Decode(0, []byte{0x0F, 0xFF}, Mode32)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Entry.Mnemonic != xtab.Unknown.Mnemonic {
		t.Errorf("Mnemonic = %q, want unknown marker %q", in.Entry.Mnemonic, xtab.Unknown.Mnemonic)
	}
	if len(diags) == 0 {
		t.Error("expected an UnknownOpcode diagnostic")
	}
	if in.Length == 0 {
		t.Error("Length = 0, want at least 1 even for an unrecognized opcode")
	}
}

func TestDecodeTruncatedImmediate(t *testing.T) {
	// mov eax, imm32 with only one immediate byte present.
	_, _, err := Decode(0, []byte{0xB8, 0x01}, Mode32)
	if err != ErrTruncated {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestDecodeREXPrefix64Bit(t *testing.T) {
	// REX.W + mov eax, imm32 widens the operand to 64 bits.
	in, _, err := Decode(0, []byte{0x48, 0xB8, 1, 0, 0, 0, 0, 0, 0, 0}, Mode64)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Prefixes&PrefixREXW == 0 {
		t.Error("REX.W prefix bit not set")
	}
	if in.OpSize != 64 {
		t.Errorf("OpSize = %d, want 64", in.OpSize)
	}
}

func TestDecodeOperandSizePrefix(t *testing.T) {
	// 0x66 0xB8 imm16: operand-size override narrows mov eax,imm32 to 16 bits.
	in, _, err := Decode(0, []byte{0x66, 0xB8, 0x01, 0x00}, Mode32)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.OpSize != 16 {
		t.Errorf("OpSize = %d, want 16", in.OpSize)
	}
	if in.Length != 4 {
		t.Errorf("Length = %d, want 4", in.Length)
	}
}
