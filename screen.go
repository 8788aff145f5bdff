package main

import (
	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Streaming texture holding the CHIP-8 video memory.
	///
	Screen *sdl.Texture

	/// ABGR pixels uploaded to Screen.
	///
	pixels = make([]byte, chip8.Width*chip8.Height*4)
)

var (
	/// Lit and unlit pixel colors.
	///
	pixelOn  = [4]byte{17, 29, 43, 255}
	pixelOff = [4]byte{143, 145, 133, 255}
)

/// InitScreen creates the texture for the CHIP-8 video memory.
///
func InitScreen() {
	var err error

	Screen, err = Renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, chip8.Width, chip8.Height)
	if err != nil {
		Fatal("Creating screen texture failed", err)
	}
}

/// RefreshScreen with the CHIP-8 video memory when it has changed since
/// the last refresh.
///
func RefreshScreen() {
	var frame chip8.FrameBuffer
	var redraw bool

	Runner.View(func(vm *chip8.Machine) {
		if redraw = vm.Redraw(); redraw {
			frame = vm.Frame()
		}
	})

	if !redraw {
		return
	}

	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			c := pixelOff
			if frame[y][x] {
				c = pixelOn
			}

			copy(pixels[(y*chip8.Width+x)*4:], c[:])
		}
	}

	if err := Screen.Update(nil, pixels, chip8.Width*4); err != nil {
		Logger.Error("Updating screen failed", nil, log.Err(err))
	}
}

/// CopyScreen to the renderer, stretched to fit.
///
func CopyScreen(x, y, w, h int32) {
	Renderer.Copy(Screen, nil, &sdl.Rect{X: x, Y: y, W: w, H: h})
}
