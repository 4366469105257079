package main

import (
	"fmt"

	"chip8emu/chip8"

	"github.com/retroenv/retrogolib/log"
)

/// DebugRegisters logs the full register file of the paused machine.
///
func DebugRegisters() {
	logger.Info("Registers",
		log.String("pc", fmt.Sprintf("%#04x", VM.PC)),
		log.String("i", fmt.Sprintf("%#04x", VM.I)),
		log.Uint8("sp", VM.SP),
		log.Uint8("dt", VM.DT),
		log.Uint8("st", VM.ST))

	for i := 0; i < 16; i += 4 {
		logger.Info(fmt.Sprintf("V%X-V%X", i, i+3),
			log.String("values", fmt.Sprintf("%02X %02X %02X %02X",
				VM.V[i], VM.V[i+1], VM.V[i+2], VM.V[i+3])))
	}
}

/// DebugAssembly logs the disassembly around the program counter, marking
/// the next instruction.
///
func DebugAssembly() {
	start := uint16(chip8.ProgramStart)
	if VM.PC >= chip8.ProgramStart+8 {
		start = VM.PC - 8
	}

	for addr := start; addr < start+16 && addr < chip8.MemorySize-1; addr += 2 {
		marker := "   "
		if addr == VM.PC {
			marker = "-> "
		}

		logger.Info(marker + VM.Disassemble(addr))
	}
}
