package main

import (
	"image"
	"image/draw"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	/// Size of a character cell in the font texture.
	///
	GlyphWidth  = 7
	GlyphHeight = 13

	/// Printable ASCII in the font texture.
	///
	firstGlyph = ' '
	lastGlyph  = '~'
	glyphCount = lastGlyph - firstGlyph + 1
)

var (
	/// Texture containing a predefined font for debugging, etc.
	///
	Font *sdl.Texture
)

/// InitFont renders the basic 7x13 face into a single row texture.
///
func InitFont() {
	face := basicfont.Face7x13
	atlas := image.NewRGBA(image.Rect(0, 0, glyphCount*GlyphWidth, GlyphHeight))

	for c := rune(firstGlyph); c <= lastGlyph; c++ {
		dot := fixed.P(int(c-firstGlyph)*GlyphWidth, face.Ascent)

		if dr, mask, mp, _, ok := face.Glyph(dot, c); ok {
			draw.DrawMask(atlas, dr, image.White, image.Point{}, mask, mp, draw.Over)
		}
	}

	var err error

	Font, err = Renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STATIC, glyphCount*GlyphWidth, GlyphHeight)
	if err != nil {
		Fatal("Creating font texture failed", err)
	}

	if err = Font.Update(nil, atlas.Pix, atlas.Stride); err != nil {
		Fatal("Creating font texture failed", err)
	}

	// the atlas is white on transparent, color comes from SetColorMod
	Font.SetBlendMode(sdl.BLENDMODE_BLEND)
}

/// DrawText using the loaded font.
///
func DrawText(s string, x, y int32) {
	src := sdl.Rect{W: GlyphWidth, H: GlyphHeight}
	dst := sdl.Rect{X: x, Y: y, W: GlyphWidth, H: GlyphHeight}

	// loop over all the characters in the string
	for _, c := range s {
		if c > firstGlyph && c <= lastGlyph {
			src.X = (c - firstGlyph) * GlyphWidth

			// draw the character to the renderer
			Renderer.Copy(Font, &src, &dst)
		}

		// advance
		dst.X += GlyphWidth
	}
}

/// DrawTextColor draws text tinted with a color.
///
func DrawTextColor(s string, x, y int32, r, g, b uint8) {
	Font.SetColorMod(r, g, b)
	DrawText(s, x, y)
	Font.SetColorMod(255, 255, 255)
}
