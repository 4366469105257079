package chip8

import "fmt"

const (
	/// MemorySize is the total addressable memory of the CHIP-8 (4KB).
	///
	MemorySize = 0x1000

	/// ProgramStart is the first address available to user programs. The
	/// 512 bytes below it are reserved for the interpreter and hold the
	/// font sprites.
	///
	ProgramStart = 0x200
)

/// Memory is the full address space of a CHIP-8 machine.
///
type Memory struct {
	bytes [MemorySize]byte
}

/// NewMemory creates a zeroed memory with the font sprites pre-loaded at
/// address 0x000.
///
func NewMemory() *Memory {
	m := &Memory{}
	copy(m.bytes[:], Font[:])

	return m
}

/// ReadByte returns the byte at address.
///
func (m *Memory) ReadByte(address uint16) (byte, error) {
	if address >= MemorySize {
		return 0, fmt.Errorf("read at %#04x: %w", address, ErrAddressOutOfRange)
	}

	return m.bytes[address], nil
}

/// WriteByte stores b at address.
///
func (m *Memory) WriteByte(address uint16, b byte) error {
	if address >= MemorySize {
		return fmt.Errorf("write at %#04x: %w", address, ErrAddressOutOfRange)
	}

	m.bytes[address] = b

	return nil
}

/// LoadProgram copies a program image into memory at ProgramStart. An image
/// that would extend past the end of memory is rejected outright, never
/// truncated.
///
func (m *Memory) LoadProgram(program []byte) error {
	if len(program) > MemorySize-ProgramStart {
		return fmt.Errorf("%d byte program: %w", len(program), ErrProgramTooLarge)
	}

	copy(m.bytes[ProgramStart:], program)

	return nil
}
