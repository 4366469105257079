package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// newVM loads a program and returns a machine ready to step.
func newVM(t *testing.T, program ...byte) *CHIP_8 {
	t.Helper()

	vm, err := LoadROM(program)
	assert.NoError(t, err)

	return vm
}

// step advances the machine n instructions, failing the test on any fault.
func step(t *testing.T, vm *CHIP_8, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		assert.NoError(t, vm.Step())
	}
}

func TestLoadROMTooLarge(t *testing.T) {
	_, err := LoadROM(make([]byte, MemorySize-ProgramStart+1))
	assert.True(t, errors.Is(err, ErrProgramTooLarge))
}

func TestLoadAndAdd(t *testing.T) {
	// LD V0, 5 / ADD V0, 3
	vm := newVM(t, 0x60, 0x05, 0x70, 0x03, 0x00, 0x00)

	step(t, vm, 2)

	assert.Equal(t, byte(8), vm.V[0])
	assert.Equal(t, uint16(ProgramStart+4), vm.PC)
}

func TestJump(t *testing.T) {
	vm := newVM(t, 0x12, 0x34)

	step(t, vm, 1)
	assert.Equal(t, uint16(0x234), vm.PC)
}

func TestJumpV0(t *testing.T) {
	// LD V0, 4 / JP V0, 0x300
	vm := newVM(t, 0x60, 0x04, 0xB3, 0x00)

	step(t, vm, 2)
	assert.Equal(t, uint16(0x304), vm.PC)
}

func TestCallRet(t *testing.T) {
	// CALL 0x204 / - / RET
	vm := newVM(t, 0x22, 0x04, 0x00, 0x00, 0x00, 0xEE)

	step(t, vm, 1)
	assert.Equal(t, uint16(0x204), vm.PC)
	assert.Equal(t, byte(1), vm.SP)
	assert.Equal(t, uint16(0x202), vm.Stack[0])

	step(t, vm, 1)
	assert.Equal(t, uint16(0x202), vm.PC)
	assert.Equal(t, byte(0), vm.SP)
}

func TestStackOverflow(t *testing.T) {
	// CALL 0x200, forever
	vm := newVM(t, 0x22, 0x00)

	// 16 frames fit
	step(t, vm, StackDepth)
	assert.Equal(t, byte(StackDepth), vm.SP)

	// the 17th does not
	err := vm.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, byte(StackDepth), vm.SP)
}

func TestStackUnderflow(t *testing.T) {
	vm := newVM(t, 0x00, 0xEE)

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint16(ProgramStart), vm.PC)
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name string
		op   uint16
		v0   byte
		v1   byte
		skip bool
	}{
		{"se byte taken", 0x3042, 0x42, 0, true},
		{"se byte not taken", 0x3042, 0x41, 0, false},
		{"sne byte taken", 0x4042, 0x41, 0, true},
		{"sne byte not taken", 0x4042, 0x42, 0, false},
		{"se reg taken", 0x5010, 7, 7, true},
		{"se reg not taken", 0x5010, 7, 8, false},
		{"sne reg taken", 0x9010, 7, 8, true},
		{"sne reg not taken", 0x9010, 7, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newVM(t, byte(tt.op>>8), byte(tt.op))
			vm.V[0] = tt.v0
			vm.V[1] = tt.v1

			step(t, vm, 1)

			want := uint16(ProgramStart + 2)
			if tt.skip {
				want = ProgramStart + 4
			}
			assert.Equal(t, want, vm.PC)
		})
	}
}

func TestRegisterOps(t *testing.T) {
	tests := []struct {
		name   string
		op     uint16
		v0     byte
		v1     byte
		want   byte
		wantVF byte
		flag   bool
	}{
		{"ld", 0x8010, 0x00, 0x5A, 0x5A, 0, false},
		{"or", 0x8011, 0xF0, 0x0F, 0xFF, 0, false},
		{"and", 0x8012, 0xF0, 0x3C, 0x30, 0, false},
		{"xor", 0x8013, 0xFF, 0x0F, 0xF0, 0, false},
		{"add no carry", 0x8014, 0x12, 0x34, 0x46, 0, true},
		{"add carry", 0x8014, 0xFF, 0x01, 0x00, 1, true},
		{"sub no borrow", 0x8015, 0x05, 0x03, 0x02, 1, true},
		{"sub borrow", 0x8015, 0x01, 0x02, 0xFF, 0, true},
		{"subn no borrow", 0x8017, 0x02, 0x0A, 0x08, 1, true},
		{"subn borrow", 0x8017, 0x0A, 0x02, 0xF8, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newVM(t, byte(tt.op>>8), byte(tt.op))
			vm.V[0] = tt.v0
			vm.V[1] = tt.v1

			step(t, vm, 1)

			assert.Equal(t, tt.want, vm.V[0])
			if tt.flag {
				assert.Equal(t, tt.wantVF, vm.V[0xF])
			}
			assert.Equal(t, uint16(ProgramStart+2), vm.PC)
		})
	}
}

func TestAddCarrySameRegister(t *testing.T) {
	// ADD V0, V0 with the high bit set must still carry
	vm := newVM(t, 0x80, 0x04)
	vm.V[0] = 0x80

	step(t, vm, 1)

	assert.Equal(t, byte(0), vm.V[0])
	assert.Equal(t, byte(1), vm.V[0xF])
}

func TestAddImmediateNoFlag(t *testing.T) {
	// ADD V0, 0x10 wraps without touching VF
	vm := newVM(t, 0x70, 0x10)
	vm.V[0] = 0xF8
	vm.V[0xF] = 0xAA

	step(t, vm, 1)

	assert.Equal(t, byte(0x08), vm.V[0])
	assert.Equal(t, byte(0xAA), vm.V[0xF])
}

func TestShiftRight(t *testing.T) {
	// SHR V0 takes the flag from the pre-shift LSB
	vm := newVM(t, 0x80, 0x06)
	vm.V[0] = 0x05

	step(t, vm, 1)

	assert.Equal(t, byte(0x02), vm.V[0])
	assert.Equal(t, byte(1), vm.V[0xF])
}

func TestShiftLeft(t *testing.T) {
	// SHL V0 takes the flag from the pre-shift MSB
	vm := newVM(t, 0x80, 0x0E)
	vm.V[0] = 0x81

	step(t, vm, 1)

	assert.Equal(t, byte(0x02), vm.V[0])
	assert.Equal(t, byte(1), vm.V[0xF])
}

func TestLoadI(t *testing.T) {
	// the full 12-bit range must survive
	vm := newVM(t, 0xAF, 0xFF)

	step(t, vm, 1)
	assert.Equal(t, uint16(0xFFF), vm.I)
}

func TestAddI(t *testing.T) {
	// LD V0, 5 / LD I, 0x123 / ADD I, V0
	vm := newVM(t, 0x60, 0x05, 0xA1, 0x23, 0xF0, 0x1E)

	step(t, vm, 3)
	assert.Equal(t, uint16(0x128), vm.I)
}

func TestRandomMasked(t *testing.T) {
	// RND V0, 0 always yields zero regardless of the random byte
	vm := newVM(t, 0xC0, 0x00)
	vm.V[0] = 0xFF

	step(t, vm, 1)
	assert.Equal(t, byte(0), vm.V[0])
}

func TestDraw(t *testing.T) {
	// LD V0, 0 / LD F, V0 / DRW V0, V1, 5, twice
	vm := newVM(t, 0x60, 0x00, 0xF0, 0x29, 0xD0, 0x15, 0xD0, 0x15)

	step(t, vm, 3)

	// the top row of glyph 0 is 0xF0
	for x := uint(0); x < 8; x++ {
		assert.Equal(t, x < 4, vm.Display.Pixel(x, 0))
	}
	assert.Equal(t, byte(0), vm.V[0xF])

	// redraw erases the glyph and reports a collision
	step(t, vm, 1)
	assert.Equal(t, byte(1), vm.V[0xF])
	assert.False(t, vm.Display.Pixel(0, 0))
}

func TestDrawSpriteOutOfRange(t *testing.T) {
	// LD I, 0xFFF / DRW V0, V1, 2 reads past the end of memory
	vm := newVM(t, 0xAF, 0xFF, 0xD0, 0x12)

	step(t, vm, 1)

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestClearDisplay(t *testing.T) {
	// LD V0, 0 / LD F, V0 / DRW V0, V1, 5 / CLS
	vm := newVM(t, 0x60, 0x00, 0xF0, 0x29, 0xD0, 0x15, 0x00, 0xE0)

	step(t, vm, 4)

	for y := uint(0); y < DisplayHeight; y++ {
		for x := uint(0); x < DisplayWidth; x++ {
			assert.False(t, vm.Display.Pixel(x, y))
		}
	}
}

func TestSkipIfPressed(t *testing.T) {
	vm := newVM(t, 0xE0, 0x9E)
	vm.V[0] = 4
	vm.PressKey(4)

	step(t, vm, 1)
	assert.Equal(t, uint16(ProgramStart+4), vm.PC)
}

func TestSkipIfNotPressed(t *testing.T) {
	vm := newVM(t, 0xE0, 0xA1)
	vm.V[0] = 4

	step(t, vm, 1)
	assert.Equal(t, uint16(ProgramStart+4), vm.PC)
}

func TestSetKeysBitmap(t *testing.T) {
	vm := New()

	vm.SetKeys(1<<0x4 | 1<<0xF)

	for key := byte(0); key < 16; key++ {
		assert.Equal(t, key == 0x4 || key == 0xF, vm.Keys[key])
	}

	vm.SetKeys(0)
	assert.Equal(t, [16]bool{}, vm.Keys)
}

func TestWaitKey(t *testing.T) {
	// LD V5, K
	vm := newVM(t, 0xF5, 0x0A)

	// the machine idles at the instruction until a key goes down
	for i := 0; i < 3; i++ {
		step(t, vm, 1)
		assert.Equal(t, uint16(ProgramStart), vm.PC)
	}

	vm.PressKey(0xA)
	step(t, vm, 1)

	assert.Equal(t, byte(0xA), vm.V[5])
	assert.Equal(t, uint16(ProgramStart+2), vm.PC)

	// no longer waiting
	assert.Equal(t, -1, vm.W)
}

func TestTimers(t *testing.T) {
	// LD V0, 2 / LD DT, V0 / LD ST, V0 / LD V1, DT
	vm := newVM(t, 0x60, 0x02, 0xF0, 0x15, 0xF0, 0x18, 0xF1, 0x07)

	step(t, vm, 3)
	assert.Equal(t, byte(2), vm.DT)
	assert.True(t, vm.SoundActive())

	step(t, vm, 1)
	assert.Equal(t, byte(2), vm.V[1])

	vm.Tick()
	assert.Equal(t, byte(1), vm.DT)
	assert.True(t, vm.SoundActive())

	vm.Tick()
	assert.False(t, vm.SoundActive())

	// both timers floor at zero
	vm.Tick()
	assert.Equal(t, byte(0), vm.DT)
	assert.Equal(t, byte(0), vm.ST)
}

func TestBCD(t *testing.T) {
	// LD V0, 234 / LD I, 0x300 / LD B, V0
	vm := newVM(t, 0x60, 0xEA, 0xA3, 0x00, 0xF0, 0x33)

	step(t, vm, 3)

	for i, want := range []byte{2, 3, 4} {
		got, err := vm.Memory.ReadByte(0x300 + uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSaveRegs(t *testing.T) {
	// LD I, 0x300 / LD [I], V2
	vm := newVM(t, 0xA3, 0x00, 0xF2, 0x55)
	vm.V[0] = 1
	vm.V[1] = 2
	vm.V[2] = 3
	vm.V[3] = 0xEE

	step(t, vm, 2)

	for i, want := range []byte{1, 2, 3} {
		got, err := vm.Memory.ReadByte(0x300 + uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// v3 is past the range, memory stays untouched
	got, err := vm.Memory.ReadByte(0x303)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), got)
}

func TestLoadRegs(t *testing.T) {
	// LD I, 0x300 / LD V2, [I]
	vm := newVM(t, 0xA3, 0x00, 0xF2, 0x65)

	for i, b := range []byte{7, 8, 9} {
		assert.NoError(t, vm.Memory.WriteByte(0x300+uint16(i), b))
	}

	step(t, vm, 2)

	assert.Equal(t, byte(7), vm.V[0])
	assert.Equal(t, byte(8), vm.V[1])
	assert.Equal(t, byte(9), vm.V[2])
	assert.Equal(t, byte(0), vm.V[3])
}

func TestSaveRegsOutOfRange(t *testing.T) {
	// LD I, 0xFFF / LD [I], V1
	vm := newVM(t, 0xAF, 0xFF, 0xF1, 0x55)

	step(t, vm, 1)

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))

	// the failed instruction left no partial state behind
	assert.Equal(t, uint16(ProgramStart+2), vm.PC)

	got, readErr := vm.Memory.ReadByte(0xFFF)
	assert.NoError(t, readErr)
	assert.Equal(t, byte(0), got)
}

func TestUnknownOpcode(t *testing.T) {
	tests := []struct {
		name string
		op   uint16
	}{
		{"all bits set", 0xFFFF},
		{"bad 8xxx variant", 0x800F},
		{"sys call", 0x0222},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newVM(t, byte(tt.op>>8), byte(tt.op))

			err := vm.Step()
			assert.True(t, err != nil)

			var opErr *UnknownOpcodeError
			assert.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.op, opErr.Opcode)
			assert.Equal(t, uint16(ProgramStart), opErr.PC)

			// the fault is recoverable, nothing moved
			assert.Equal(t, uint16(ProgramStart), vm.PC)
		})
	}
}

func TestFontSpriteLookup(t *testing.T) {
	// LD V0, 0xB / LD F, V0
	vm := newVM(t, 0x60, 0x0B, 0xF0, 0x29)

	step(t, vm, 2)
	assert.Equal(t, uint16(0xB*FontGlyphSize), vm.I)
}

func TestReset(t *testing.T) {
	// LD V0, 5 / LD F, V0 / DRW V0, V1, 5
	vm := newVM(t, 0x60, 0x05, 0xF0, 0x29, 0xD0, 0x15)

	step(t, vm, 3)
	vm.DT = 30
	vm.PressKey(2)

	vm.Reset()

	assert.Equal(t, uint16(ProgramStart), vm.PC)
	assert.Equal(t, byte(0), vm.SP)
	assert.Equal(t, [16]byte{}, vm.V)
	assert.Equal(t, uint16(0), vm.I)
	assert.Equal(t, byte(0), vm.DT)
	assert.Equal(t, [16]bool{}, vm.Keys)
	assert.Equal(t, -1, vm.W)

	// the program image survives and runs again
	got, err := vm.Memory.ReadByte(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x60), got)

	for y := uint(0); y < DisplayHeight; y++ {
		for x := uint(0); x < DisplayWidth; x++ {
			assert.False(t, vm.Display.Pixel(x, y))
		}
	}

	step(t, vm, 1)
	assert.Equal(t, byte(5), vm.V[0])
}
