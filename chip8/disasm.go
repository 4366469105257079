package chip8

import "fmt"

/// Disassemble the instruction at an address into its mnemonic form.
///
func (vm *CHIP_8) Disassemble(address uint16) string {
	if address >= MemorySize-1 {
		return ""
	}

	inst, err := vm.fetchAt(address)
	if err != nil {
		return ""
	}

	// end of program memory?
	if inst == 0 {
		return fmt.Sprintf("%04X -", address)
	}

	// 12-bit literal address
	a := inst & 0xFFF

	// byte and nibble literals
	b := byte(inst & 0xFF)
	n := byte(inst & 0xF)

	// vx and vy registers
	x := inst >> 8 & 0xF
	y := inst >> 4 & 0xF

	// instruction decoding
	if inst == 0x00E0 {
		return fmt.Sprintf("%04X - CLS", address)
	} else if inst == 0x00EE {
		return fmt.Sprintf("%04X - RET", address)
	} else if inst&0xF000 == 0x1000 {
		return fmt.Sprintf("%04X - JP     #%04X", address, a)
	} else if inst&0xF000 == 0x2000 {
		return fmt.Sprintf("%04X - CALL   #%04X", address, a)
	} else if inst&0xF000 == 0x3000 {
		return fmt.Sprintf("%04X - SE     V%X, #%02X", address, x, b)
	} else if inst&0xF000 == 0x4000 {
		return fmt.Sprintf("%04X - SNE    V%X, #%02X", address, x, b)
	} else if inst&0xF00F == 0x5000 {
		return fmt.Sprintf("%04X - SE     V%X, V%X", address, x, y)
	} else if inst&0xF000 == 0x6000 {
		return fmt.Sprintf("%04X - LD     V%X, #%02X", address, x, b)
	} else if inst&0xF000 == 0x7000 {
		return fmt.Sprintf("%04X - ADD    V%X, #%02X", address, x, b)
	} else if inst&0xF00F == 0x8000 {
		return fmt.Sprintf("%04X - LD     V%X, V%X", address, x, y)
	} else if inst&0xF00F == 0x8001 {
		return fmt.Sprintf("%04X - OR     V%X, V%X", address, x, y)
	} else if inst&0xF00F == 0x8002 {
		return fmt.Sprintf("%04X - AND    V%X, V%X", address, x, y)
	} else if inst&0xF00F == 0x8003 {
		return fmt.Sprintf("%04X - XOR    V%X, V%X", address, x, y)
	} else if inst&0xF00F == 0x8004 {
		return fmt.Sprintf("%04X - ADD    V%X, V%X", address, x, y)
	} else if inst&0xF00F == 0x8005 {
		return fmt.Sprintf("%04X - SUB    V%X, V%X", address, x, y)
	} else if inst&0xF00F == 0x8006 {
		return fmt.Sprintf("%04X - SHR    V%X", address, x)
	} else if inst&0xF00F == 0x8007 {
		return fmt.Sprintf("%04X - SUBN   V%X, V%X", address, x, y)
	} else if inst&0xF00F == 0x800E {
		return fmt.Sprintf("%04X - SHL    V%X", address, x)
	} else if inst&0xF00F == 0x9000 {
		return fmt.Sprintf("%04X - SNE    V%X, V%X", address, x, y)
	} else if inst&0xF000 == 0xA000 {
		return fmt.Sprintf("%04X - LD     I, #%04X", address, a)
	} else if inst&0xF000 == 0xB000 {
		return fmt.Sprintf("%04X - JP     V0, #%04X", address, a)
	} else if inst&0xF000 == 0xC000 {
		return fmt.Sprintf("%04X - RND    V%X, #%02X", address, x, b)
	} else if inst&0xF000 == 0xD000 {
		return fmt.Sprintf("%04X - DRW    V%X, V%X, %d", address, x, y, n)
	} else if inst&0xF0FF == 0xE09E {
		return fmt.Sprintf("%04X - SKP    V%X", address, x)
	} else if inst&0xF0FF == 0xE0A1 {
		return fmt.Sprintf("%04X - SKNP   V%X", address, x)
	} else if inst&0xF0FF == 0xF007 {
		return fmt.Sprintf("%04X - LD     V%X, DT", address, x)
	} else if inst&0xF0FF == 0xF00A {
		return fmt.Sprintf("%04X - LD     V%X, K", address, x)
	} else if inst&0xF0FF == 0xF015 {
		return fmt.Sprintf("%04X - LD     DT, V%X", address, x)
	} else if inst&0xF0FF == 0xF018 {
		return fmt.Sprintf("%04X - LD     ST, V%X", address, x)
	} else if inst&0xF0FF == 0xF01E {
		return fmt.Sprintf("%04X - ADD    I, V%X", address, x)
	} else if inst&0xF0FF == 0xF029 {
		return fmt.Sprintf("%04X - LD     F, V%X", address, x)
	} else if inst&0xF0FF == 0xF033 {
		return fmt.Sprintf("%04X - LD     B, V%X", address, x)
	} else if inst&0xF0FF == 0xF055 {
		return fmt.Sprintf("%04X - LD     [I], V%X", address, x)
	} else if inst&0xF0FF == 0xF065 {
		return fmt.Sprintf("%04X - LD     V%X, [I]", address, x)
	}

	// unknown instruction
	return fmt.Sprintf("%04X - ??", address)
}

/// fetchAt reads the 16-bit instruction word at an arbitrary address
/// without touching the program counter.
///
func (vm *CHIP_8) fetchAt(address uint16) (uint16, error) {
	hi, err := vm.Memory.ReadByte(address)
	if err != nil {
		return 0, err
	}

	lo, err := vm.Memory.ReadByte(address + 1)
	if err != nil {
		return 0, err
	}

	return uint16(hi)<<8 | uint16(lo), nil
}
