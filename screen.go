package main

import (
	"chip8emu/chip8"

	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Screen is the render target for the CHIP-8 framebuffer.
	///
	Screen *sdl.Texture
)

/// InitScreen creates the render target for the CHIP-8 video memory.
///
func InitScreen() {
	var err error

	Screen, err = Renderer.CreateTexture(sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_TARGET,
		chip8.DisplayWidth, chip8.DisplayHeight)
	if err != nil {
		logger.Fatal("Creating screen texture", log.Err(err))
	}
}

/// Refresh redraws the window from the CHIP-8 framebuffer.
///
func Refresh() {
	if err := Renderer.SetRenderTarget(Screen); err != nil {
		logger.Fatal("Setting render target", log.Err(err))
	}

	// background
	Renderer.SetDrawColor(17, 29, 43, 255)
	Renderer.Clear()

	// pixel color
	Renderer.SetDrawColor(143, 145, 133, 255)

	pixels := VM.Pixels()

	for y := int32(0); y < chip8.DisplayHeight; y++ {
		for x := int32(0); x < chip8.DisplayWidth; x++ {
			if pixels[y][x] != 0 {
				Renderer.DrawPoint(x, y)
			}
		}
	}

	// stretch the render target over the window
	Renderer.SetRenderTarget(nil)
	Renderer.Copy(Screen, nil, nil)
	Renderer.Present()
}
