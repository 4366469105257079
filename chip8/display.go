package chip8

const (
	/// DisplayWidth and DisplayHeight are the dimensions of the CHIP-8
	/// framebuffer in pixels.
	///
	DisplayWidth  = 64
	DisplayHeight = 32
)

/// Display is the 64x32 monochrome framebuffer. Each pixel is on or off;
/// coordinates wrap modulo the display dimensions on both axes.
///
type Display struct {
	pixels [DisplayHeight][DisplayWidth]byte
}

/// NewDisplay creates a blank display.
///
func NewDisplay() *Display {
	return &Display{}
}

/// Clear turns every pixel off.
///
func (d *Display) Clear() {
	d.pixels = [DisplayHeight][DisplayWidth]byte{}
}

/// DrawSprite XORs a sprite into the display at (x, y). Each sprite byte is
/// one 8-pixel row, rows stacked downward from y. It returns true if any
/// pixel was turned off by the blit, which DRW stores in VF.
///
func (d *Display) DrawSprite(x, y byte, sprite []byte) bool {
	collision := false

	for row, bits := range sprite {
		py := (uint(y) + uint(row)) % DisplayHeight

		for col := uint(0); col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}

			px := (uint(x) + col) % DisplayWidth

			// xor the pixel, a 1 -> 0 transition is a collision
			d.pixels[py][px] ^= 1

			if d.pixels[py][px] == 0 {
				collision = true
			}
		}
	}

	return collision
}

/// Pixel reports whether the pixel at (x, y) is on, wrapping coordinates.
///
func (d *Display) Pixel(x, y uint) bool {
	return d.pixels[y%DisplayHeight][x%DisplayWidth] != 0
}

/// Pixels returns a snapshot of the framebuffer for the renderer.
///
func (d *Display) Pixels() [DisplayHeight][DisplayWidth]byte {
	return d.pixels
}
