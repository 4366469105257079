package main

import (
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Mapping of a modern keyboard to the CHIP-8 keypad.
	///
	KeyMap = map[sdl.Scancode]byte{
		sdl.SCANCODE_X: 0x0,
		sdl.SCANCODE_1: 0x1,
		sdl.SCANCODE_2: 0x2,
		sdl.SCANCODE_3: 0x3,
		sdl.SCANCODE_Q: 0x4,
		sdl.SCANCODE_W: 0x5,
		sdl.SCANCODE_E: 0x6,
		sdl.SCANCODE_A: 0x7,
		sdl.SCANCODE_S: 0x8,
		sdl.SCANCODE_D: 0x9,
		sdl.SCANCODE_Z: 0xA,
		sdl.SCANCODE_C: 0xB,
		sdl.SCANCODE_4: 0xC,
		sdl.SCANCODE_R: 0xD,
		sdl.SCANCODE_F: 0xE,
		sdl.SCANCODE_V: 0xF,
	}
)

/// ProcessEvents drains the SDL event queue, feeding key state to the VM.
/// It returns false once the user quits.
///
func ProcessEvents() bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false

		case *sdl.KeyboardEvent:
			if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
				if ev.Type == sdl.KEYDOWN {
					VM.PressKey(key)
				} else {
					VM.ReleaseKey(key)
				}

				continue
			}

			if ev.Type != sdl.KEYDOWN {
				continue
			}

			switch ev.Keysym.Scancode {
			case sdl.SCANCODE_ESCAPE:
				return false
			case sdl.SCANCODE_BACKSPACE:
				VM.Reset()

				// holding control during reset reboots paused
				Paused = ev.Keysym.Mod&sdl.KMOD_CTRL != 0
			case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
				Paused = !Paused

				if Paused {
					DebugRegisters()
					DebugAssembly()
				}
			case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
				if Paused {
					stepVM()
					DebugAssembly()
				}
			case sdl.SCANCODE_F8:
				if Paused {
					DebugRegisters()
				}
			}
		}
	}

	return true
}
