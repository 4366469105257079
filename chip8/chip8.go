package chip8

import (
	"fmt"
	"math/rand"
	"time"
)

/// StackDepth is the maximum call depth. The 17th nested CALL fails with
/// ErrStackOverflow rather than silently overwriting a frame.
///
const StackDepth = 16

/// CHIP_8 virtual machine. It owns all machine state: memory, framebuffer,
/// registers, stack, timers, and keypad. An external driver advances it by
/// calling Step once per instruction and Tick at 60Hz.
///
type CHIP_8 struct {
	/// Memory addressable by CHIP-8. The first 512 bytes are reserved
	/// for the interpreter and hold the font sprites.
	///
	Memory *Memory

	/// Display is the 64x32 monochrome framebuffer, drawn to only by the
	/// DRW and CLS instructions.
	///
	Display *Display

	/// ROM is the pristine program image that Reset rebuilds memory from.
	///
	ROM []byte

	/// PC is the program counter. All programs begin at ProgramStart.
	///
	PC uint16

	/// Stack holds return addresses pushed by CALL. SP indexes the next
	/// free slot, so the call depth is SP itself.
	///
	Stack [StackDepth]uint16
	SP    byte

	/// I is the address register. It holds the full 12-bit address range.
	///
	I uint16

	/// V are the 16 virtual registers. V[0xF] doubles as the carry,
	/// borrow, and collision flag and is clobbered by several
	/// instructions as a side effect.
	///
	V [16]byte

	/// DT and ST are the delay and sound timers. Both count down to zero
	/// at the 60Hz cadence supplied by Tick.
	///
	DT byte
	ST byte

	/// Keys hold the current state for the 16-key pad keys.
	///
	Keys [16]bool

	/// W is the V-register index waiting on a key press, or -1 when not
	/// waiting. While set, Step only scans the keypad.
	///
	W int

	/// rng drives the RND instruction.
	///
	rng *rand.Rand
}

/// New creates a CHIP-8 virtual machine with no program loaded.
///
func New() *CHIP_8 {
	return &CHIP_8{
		Memory:  NewMemory(),
		Display: NewDisplay(),
		PC:      ProgramStart,
		W:       -1,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

/// LoadROM creates a new CHIP-8 virtual machine from a program image.
///
func LoadROM(program []byte) (*CHIP_8, error) {
	vm := New()

	if err := vm.LoadProgram(program); err != nil {
		return nil, err
	}

	return vm, nil
}

/// LoadProgram copies a program image into memory at ProgramStart, keeping
/// a pristine copy for Reset, and resets the machine.
///
func (vm *CHIP_8) LoadProgram(program []byte) error {
	if err := vm.Memory.LoadProgram(program); err != nil {
		return err
	}

	// keep a pristine copy of the program
	vm.ROM = append([]byte(nil), program...)

	vm.Reset()

	return nil
}

/// Reset restores the machine to its power-on state: memory is rebuilt from
/// the pristine ROM image, the display is cleared, and all registers,
/// timers, and key state are zeroed.
///
func (vm *CHIP_8) Reset() {
	vm.Memory = NewMemory()

	if vm.ROM != nil {
		// already validated when loaded
		_ = vm.Memory.LoadProgram(vm.ROM)
	}

	// reset video memory
	vm.Display.Clear()

	// reset program counter and stack
	vm.PC = ProgramStart
	vm.SP = 0
	vm.Stack = [StackDepth]uint16{}

	// reset address register and virtual registers
	vm.I = 0
	vm.V = [16]byte{}

	// reset timer registers
	vm.DT = 0
	vm.ST = 0

	// reset keys
	vm.Keys = [16]bool{}

	// not waiting for a key
	vm.W = -1
}

/// PressKey emulates a CHIP-8 key being pressed.
///
func (vm *CHIP_8) PressKey(key byte) {
	if key < 16 {
		vm.Keys[key] = true
	}
}

/// ReleaseKey emulates a CHIP-8 key being released.
///
func (vm *CHIP_8) ReleaseKey(key byte) {
	if key < 16 {
		vm.Keys[key] = false
	}
}

/// SetKeys replaces the entire keypad state with a bitmap, one bit per key
/// 0x0-0xF, bit 0 being key 0.
///
func (vm *CHIP_8) SetKeys(bitmap uint16) {
	for i := range vm.Keys {
		vm.Keys[i] = bitmap&(1<<uint(i)) != 0
	}
}

/// SoundActive reports whether the sound timer is running. The audio
/// collaborator polls it and plays a tone while true.
///
func (vm *CHIP_8) SoundActive() bool {
	return vm.ST > 0
}

/// Pixels returns a snapshot of the framebuffer for rendering.
///
func (vm *CHIP_8) Pixels() [DisplayHeight][DisplayWidth]byte {
	return vm.Display.Pixels()
}

/// Tick decrements the delay and sound timers, each floored at zero. The
/// driver calls it at 60Hz; the machine keeps no time of its own.
///
func (vm *CHIP_8) Tick() {
	if vm.DT > 0 {
		vm.DT--
	}

	if vm.ST > 0 {
		vm.ST--
	}
}

/// Step executes a single instruction. While waiting on a key press (LD
/// Vx, K) only the keypad is scanned; nothing advances until a key goes
/// down. Every handler manages the program counter itself: control flow
/// sets it directly, everything else advances it by 2.
///
func (vm *CHIP_8) Step() error {
	if vm.W >= 0 {
		for key, pressed := range vm.Keys {
			if pressed {
				vm.V[vm.W] = byte(key)
				vm.W = -1
				vm.PC += 2

				break
			}
		}

		return nil
	}

	// fetch the next instruction
	inst, err := vm.fetch()
	if err != nil {
		return err
	}

	// 12-bit address operand
	a := inst & 0xFFF

	// byte and nibble operands
	b := byte(inst & 0xFF)
	n := byte(inst & 0xF)

	// x and y register operands
	x := inst >> 8 & 0xF
	y := inst >> 4 & 0xF

	// instruction decoding
	if inst == 0x00E0 {
		vm.cls()
	} else if inst == 0x00EE {
		err = vm.ret()
	} else if inst&0xF000 == 0x1000 {
		vm.jump(a)
	} else if inst&0xF000 == 0x2000 {
		err = vm.call(a)
	} else if inst&0xF000 == 0x3000 {
		vm.skipIf(x, b)
	} else if inst&0xF000 == 0x4000 {
		vm.skipIfNot(x, b)
	} else if inst&0xF00F == 0x5000 {
		vm.skipIfXY(x, y)
	} else if inst&0xF000 == 0x6000 {
		vm.loadX(x, b)
	} else if inst&0xF000 == 0x7000 {
		vm.addX(x, b)
	} else if inst&0xF00F == 0x8000 {
		vm.loadXY(x, y)
	} else if inst&0xF00F == 0x8001 {
		vm.or(x, y)
	} else if inst&0xF00F == 0x8002 {
		vm.and(x, y)
	} else if inst&0xF00F == 0x8003 {
		vm.xor(x, y)
	} else if inst&0xF00F == 0x8004 {
		vm.addXY(x, y)
	} else if inst&0xF00F == 0x8005 {
		vm.subXY(x, y)
	} else if inst&0xF00F == 0x8006 {
		vm.shr(x)
	} else if inst&0xF00F == 0x8007 {
		vm.subYX(x, y)
	} else if inst&0xF00F == 0x800E {
		vm.shl(x)
	} else if inst&0xF00F == 0x9000 {
		vm.skipIfNotXY(x, y)
	} else if inst&0xF000 == 0xA000 {
		vm.loadI(a)
	} else if inst&0xF000 == 0xB000 {
		vm.jumpV0(a)
	} else if inst&0xF000 == 0xC000 {
		vm.rnd(x, b)
	} else if inst&0xF000 == 0xD000 {
		err = vm.drw(x, y, n)
	} else if inst&0xF0FF == 0xE09E {
		vm.skipIfPressed(x)
	} else if inst&0xF0FF == 0xE0A1 {
		vm.skipIfNotPressed(x)
	} else if inst&0xF0FF == 0xF007 {
		vm.loadXDT(x)
	} else if inst&0xF0FF == 0xF00A {
		vm.loadXK(x)
	} else if inst&0xF0FF == 0xF015 {
		vm.loadDTX(x)
	} else if inst&0xF0FF == 0xF018 {
		vm.loadSTX(x)
	} else if inst&0xF0FF == 0xF01E {
		vm.addIX(x)
	} else if inst&0xF0FF == 0xF029 {
		vm.loadF(x)
	} else if inst&0xF0FF == 0xF033 {
		err = vm.loadB(x)
	} else if inst&0xF0FF == 0xF055 {
		err = vm.saveRegs(x)
	} else if inst&0xF0FF == 0xF065 {
		err = vm.loadRegs(x)
	} else {
		return &UnknownOpcodeError{Opcode: inst, PC: vm.PC}
	}

	return err
}

/// Fetch the 16-bit instruction at the program counter. The program
/// counter is left alone; handlers advance it.
///
func (vm *CHIP_8) fetch() (uint16, error) {
	return vm.fetchAt(vm.PC)
}

/// clear the display.
///
func (vm *CHIP_8) cls() {
	vm.Display.Clear()
	vm.PC += 2
}

/// call a subroutine at address.
///
func (vm *CHIP_8) call(address uint16) error {
	if vm.SP >= StackDepth {
		return fmt.Errorf("call at %#04x: %w", vm.PC, ErrStackOverflow)
	}

	// push the return address
	vm.Stack[vm.SP] = vm.PC + 2
	vm.SP++

	// jump to address
	vm.PC = address

	return nil
}

/// return from subroutine.
///
func (vm *CHIP_8) ret() error {
	if vm.SP == 0 {
		return fmt.Errorf("return at %#04x: %w", vm.PC, ErrStackUnderflow)
	}

	// pop the return address
	vm.SP--
	vm.PC = vm.Stack[vm.SP]

	return nil
}

/// jump to address.
///
func (vm *CHIP_8) jump(address uint16) {
	vm.PC = address
}

/// jump to address + v0.
///
func (vm *CHIP_8) jumpV0(address uint16) {
	vm.PC = address + uint16(vm.V[0])
}

/// skip next instruction if vx == n.
///
func (vm *CHIP_8) skipIf(x uint16, b byte) {
	if vm.V[x] == b {
		vm.PC += 4
	} else {
		vm.PC += 2
	}
}

/// skip next instruction if vx != n.
///
func (vm *CHIP_8) skipIfNot(x uint16, b byte) {
	if vm.V[x] != b {
		vm.PC += 4
	} else {
		vm.PC += 2
	}
}

/// skip next instruction if vx == vy.
///
func (vm *CHIP_8) skipIfXY(x, y uint16) {
	if vm.V[x] == vm.V[y] {
		vm.PC += 4
	} else {
		vm.PC += 2
	}
}

/// skip next instruction if vx != vy.
///
func (vm *CHIP_8) skipIfNotXY(x, y uint16) {
	if vm.V[x] != vm.V[y] {
		vm.PC += 4
	} else {
		vm.PC += 2
	}
}

/// skip next instruction if key(vx) is pressed.
///
func (vm *CHIP_8) skipIfPressed(x uint16) {
	if vm.Keys[vm.V[x]&0xF] {
		vm.PC += 4
	} else {
		vm.PC += 2
	}
}

/// skip next instruction if key(vx) is not pressed.
///
func (vm *CHIP_8) skipIfNotPressed(x uint16) {
	if !vm.Keys[vm.V[x]&0xF] {
		vm.PC += 4
	} else {
		vm.PC += 2
	}
}

/// load n into vx.
///
func (vm *CHIP_8) loadX(x uint16, b byte) {
	vm.V[x] = b
	vm.PC += 2
}

/// load vy into vx.
///
func (vm *CHIP_8) loadXY(x, y uint16) {
	vm.V[x] = vm.V[y]
	vm.PC += 2
}

/// load delay timer into vx.
///
func (vm *CHIP_8) loadXDT(x uint16) {
	vm.V[x] = vm.DT
	vm.PC += 2
}

/// load vx into delay timer.
///
func (vm *CHIP_8) loadDTX(x uint16) {
	vm.DT = vm.V[x]
	vm.PC += 2
}

/// load vx into sound timer.
///
func (vm *CHIP_8) loadSTX(x uint16) {
	vm.ST = vm.V[x]
	vm.PC += 2
}

/// load vx with next key hit. The program counter is left where it is;
/// Step resumes and advances it once a key goes down.
///
func (vm *CHIP_8) loadXK(x uint16) {
	vm.W = int(x)
}

/// load address register.
///
func (vm *CHIP_8) loadI(address uint16) {
	vm.I = address
	vm.PC += 2
}

/// load memory at I with the BCD of vx.
///
func (vm *CHIP_8) loadB(x uint16) error {
	if uint32(vm.I)+2 >= MemorySize {
		return fmt.Errorf("bcd store at %#04x: %w", vm.I, ErrAddressOutOfRange)
	}

	v := vm.V[x]

	vm.Memory.bytes[vm.I+0] = v / 100
	vm.Memory.bytes[vm.I+1] = v / 10 % 10
	vm.Memory.bytes[vm.I+2] = v % 10

	vm.PC += 2

	return nil
}

/// load font sprite address for vx into I.
///
func (vm *CHIP_8) loadF(x uint16) {
	vm.I = FontAddress(vm.V[x])
	vm.PC += 2
}

/// or vx with vy into vx.
///
func (vm *CHIP_8) or(x, y uint16) {
	vm.V[x] |= vm.V[y]
	vm.PC += 2
}

/// and vx with vy into vx.
///
func (vm *CHIP_8) and(x, y uint16) {
	vm.V[x] &= vm.V[y]
	vm.PC += 2
}

/// xor vx with vy into vx.
///
func (vm *CHIP_8) xor(x, y uint16) {
	vm.V[x] ^= vm.V[y]
	vm.PC += 2
}

/// shl vx 1 bit, set carry to MSB of vx before the shift.
///
func (vm *CHIP_8) shl(x uint16) {
	flag := vm.V[x] >> 7

	vm.V[x] <<= 1
	vm.V[0xF] = flag
	vm.PC += 2
}

/// shr vx 1 bit, set carry to LSB of vx before the shift.
///
func (vm *CHIP_8) shr(x uint16) {
	flag := vm.V[x] & 1

	vm.V[x] >>= 1
	vm.V[0xF] = flag
	vm.PC += 2
}

/// add n to vx, wrapping without touching the flag.
///
func (vm *CHIP_8) addX(x uint16, b byte) {
	vm.V[x] += b
	vm.PC += 2
}

/// add vy to vx and set carry.
///
func (vm *CHIP_8) addXY(x, y uint16) {
	sum := uint16(vm.V[x]) + uint16(vm.V[y])

	vm.V[x] = byte(sum)
	vm.V[0xF] = byte(sum >> 8)
	vm.PC += 2
}

/// add vx to i, wrapping within 16 bits.
///
func (vm *CHIP_8) addIX(x uint16) {
	vm.I += uint16(vm.V[x])
	vm.PC += 2
}

/// subtract vy from vx, set carry if no borrow.
///
func (vm *CHIP_8) subXY(x, y uint16) {
	flag := byte(0)
	if vm.V[x] >= vm.V[y] {
		flag = 1
	}

	vm.V[x] -= vm.V[y]
	vm.V[0xF] = flag
	vm.PC += 2
}

/// subtract vx from vy and store in vx, set carry if no borrow.
///
func (vm *CHIP_8) subYX(x, y uint16) {
	flag := byte(0)
	if vm.V[y] >= vm.V[x] {
		flag = 1
	}

	vm.V[x] = vm.V[y] - vm.V[x]
	vm.V[0xF] = flag
	vm.PC += 2
}

/// load a random byte & n into vx.
///
func (vm *CHIP_8) rnd(x uint16, b byte) {
	vm.V[x] = byte(vm.rng.Intn(256)) & b
	vm.PC += 2
}

/// draw an n-byte sprite at I to the display at vx, vy, setting the carry
/// flag on collision.
///
func (vm *CHIP_8) drw(x, y uint16, n byte) error {
	sprite := make([]byte, n)

	// read the whole sprite before touching the display
	for i := range sprite {
		b, err := vm.Memory.ReadByte(vm.I + uint16(i))
		if err != nil {
			return err
		}

		sprite[i] = b
	}

	if vm.Display.DrawSprite(vm.V[x], vm.V[y], sprite) {
		vm.V[0xF] = 1
	} else {
		vm.V[0xF] = 0
	}

	vm.PC += 2

	return nil
}

/// save registers v0..vx to memory at I.
///
func (vm *CHIP_8) saveRegs(x uint16) error {
	if uint32(vm.I)+uint32(x) >= MemorySize {
		return fmt.Errorf("register store at %#04x: %w", vm.I, ErrAddressOutOfRange)
	}

	for i := uint16(0); i <= x; i++ {
		vm.Memory.bytes[vm.I+i] = vm.V[i]
	}

	vm.PC += 2

	return nil
}

/// load registers v0..vx from memory at I.
///
func (vm *CHIP_8) loadRegs(x uint16) error {
	if uint32(vm.I)+uint32(x) >= MemorySize {
		return fmt.Errorf("register load at %#04x: %w", vm.I, ErrAddressOutOfRange)
	}

	for i := uint16(0); i <= x; i++ {
		vm.V[i] = vm.Memory.bytes[vm.I+i]
	}

	vm.PC += 2

	return nil
}
