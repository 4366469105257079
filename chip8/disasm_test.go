package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDisassemble(t *testing.T) {
	vm := newVM(t,
		0x00, 0xE0, // CLS
		0x12, 0x34, // JP
		0x63, 0x42, // LD V3, #42
		0x85, 0x64, // ADD V5, V6
		0xA2, 0x00, // LD I
		0xD1, 0x25, // DRW
		0xF7, 0x0A, // LD V7, K
		0xFF, 0xFF, // not an instruction
	)

	tests := []struct {
		address uint16
		want    string
	}{
		{0x200, "0200 - CLS"},
		{0x202, "0202 - JP     #0234"},
		{0x204, "0204 - LD     V3, #42"},
		{0x206, "0206 - ADD    V5, V6"},
		{0x208, "0208 - LD     I, #0200"},
		{0x20A, "020A - DRW    V1, V2, 5"},
		{0x20C, "020C - LD     V7, K"},
		{0x20E, "020E - ??"},
		{0x210, "0210 -"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, vm.Disassemble(tt.address))
	}
}

func TestDisassembleOutOfRange(t *testing.T) {
	vm := New()

	assert.Equal(t, "", vm.Disassemble(MemorySize-1))
	assert.Equal(t, "", vm.Disassemble(MemorySize))
}
