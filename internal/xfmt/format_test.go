package xfmt

import (
	"testing"

	"github.com/xyproto/dismod/internal/xdecode"
)

func decode(t *testing.T, bytes []byte, mode xdecode.Mode) *xdecode.Instruction {
	t.Helper()
	in, _, err := xdecode.Decode(0, bytes, mode)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return in
}

func TestFormatSyntaxVariants(t *testing.T) {
	tests := []struct {
		name   string
		bytes  []byte
		mode   xdecode.Mode
		syntax Syntax
		want   string
	}{
		{"nop nasm", []byte{0x90}, xdecode.Mode32, IntelNASM, "nop"},
		{"ret nasm", []byte{0xC3}, xdecode.Mode32, IntelNASM, "ret"},
		{"xor eax,eax nasm", []byte{0x31, 0xC0}, xdecode.Mode32, IntelNASM, "xor eax, eax"},
		{"xor eax,eax gas", []byte{0x31, 0xC0}, xdecode.Mode32, ATTGAS, "xor %eax, %eax"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := decode(t, tt.bytes, tt.mode)
			got := Format(in, tt.syntax)
			if got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatMovImmediate(t *testing.T) {
	in := decode(t, []byte{0xB8, 0x2A, 0x00, 0x00, 0x00}, xdecode.Mode32)
	got := Format(in, IntelNASM)
	want := "mov eax, 0x2a"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestSyntaxString(t *testing.T) {
	tests := []struct {
		s    Syntax
		want string
	}{
		{IntelNASM, "nasm"},
		{IntelMASM, "masm"},
		{ATTGAS, "gas"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Syntax(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
