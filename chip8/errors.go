package chip8

import (
	"errors"
	"fmt"
)

var (
	/// ErrAddressOutOfRange is returned by memory reads and writes outside
	/// the 4K address space. Addresses never wrap.
	///
	ErrAddressOutOfRange = errors.New("address out of range")

	/// ErrProgramTooLarge is returned when a program image would extend
	/// past the end of memory.
	///
	ErrProgramTooLarge = errors.New("program too large to fit in memory")

	/// ErrStackOverflow is returned by CALL when the stack is full.
	///
	ErrStackOverflow = errors.New("stack overflow")

	/// ErrStackUnderflow is returned by RET when the stack is empty.
	///
	ErrStackUnderflow = errors.New("stack underflow")
)

/// UnknownOpcodeError reports an instruction word that matches no known
/// opcode pattern, along with the address it was fetched from. It is
/// recoverable; the machine state is left untouched and the driver decides
/// whether to halt.
///
type UnknownOpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %04X at %#04x", e.Opcode, e.PC)
}
