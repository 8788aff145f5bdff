// Package keypad maps the 4x4 block of physical keys on the left of a
// modern keyboard onto the CHIP-8 hex keypad.
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
package keypad

import "unicode"

// Rows are the physical keys, top to bottom.
var Rows = [4]string{"1234", "QWER", "ASDF", "ZXCV"}

// keys are the logical keys at the same positions as Rows.
var keys = [4][4]uint{
	{0x1, 0x2, 0x3, 0xC},
	{0x4, 0x5, 0x6, 0xD},
	{0x7, 0x8, 0x9, 0xE},
	{0xA, 0x0, 0xB, 0xF},
}

// Lookup returns the logical key for a physical key. Letters match in
// either case.
func Lookup(r rune) (uint, bool) {
	r = unicode.ToUpper(r)

	for row, s := range Rows {
		for col, c := range s {
			if c == r {
				return keys[row][col], true
			}
		}
	}

	return 0, false
}

// Label returns the physical key bound to a logical key.
func Label(key uint) rune {
	for row, s := range Rows {
		for col, c := range s {
			if keys[row][col] == key {
				return c
			}
		}
	}

	return 0
}

// Each calls fn for every binding in row order.
func Each(fn func(r rune, key uint)) {
	for row, s := range Rows {
		for col, c := range s {
			fn(c, keys[row][col])
		}
	}
}
