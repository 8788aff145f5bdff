package main

import (
	"context"
	"fmt"

	"github.com/massung/chip8vm/internal/keypad"
	"github.com/massung/chip8vm/internal/rom"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// Mapping of modern keyboard to CHIP-8 keys.
	///
	KeyMap = make(map[sdl.Scancode]uint)
)

/// InitInput binds the physical keypad layout to scancodes.
///
func InitInput() {
	keypad.Each(func(r rune, key uint) {
		KeyMap[sdl.GetScancodeFromName(string(r))] = key
	})
}

/// ProcessEvents from SDL and map keys to the CHIP-8 VM.
///
func ProcessEvents(ctx context.Context) bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYUP {
				if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
					Runner.ReleaseKey(key)
				}
				break
			}

			if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
				Runner.PressKey(key)
			} else if ev.Repeat == 0 {
				if !KeyDown(ctx, ev.Keysym) {
					return false
				}
			}
		}
	}

	return true
}

/// KeyDown handles the emulation keys, returns false to quit.
///
func KeyDown(ctx context.Context, keysym sdl.Keysym) bool {
	switch keysym.Scancode {
	case sdl.SCANCODE_ESCAPE:
		return false
	case sdl.SCANCODE_BACKSPACE:
		Log.Logln("Rebooting")

		// holding control during reset will reboot paused
		Runner.Reset(keysym.Mod&sdl.KMOD_CTRL != 0)
		Start(ctx)
	case sdl.SCANCODE_UP, sdl.SCANCODE_PAGEUP:
		Log.ScrollUp()
	case sdl.SCANCODE_DOWN, sdl.SCANCODE_PAGEDOWN:
		Log.ScrollDown(LogLines)
	case sdl.SCANCODE_HOME:
		Log.Home()
	case sdl.SCANCODE_END:
		Log.End()
	case sdl.SCANCODE_F3:
		LoadDialog(ctx)
	case sdl.SCANCODE_H:
		DebugHelp()
	case sdl.SCANCODE_LEFTBRACKET:
		Runner.DecSpeed()
		Log.Log(fmt.Sprintf("Speed %d Hz", Runner.Speed()))
	case sdl.SCANCODE_RIGHTBRACKET:
		Runner.IncSpeed()
		Log.Log(fmt.Sprintf("Speed %d Hz", Runner.Speed()))
	case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
		Runner.TogglePause()
	case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
		if Runner.Paused() {
			Runner.Step()
		}
	case sdl.SCANCODE_F7, sdl.SCANCODE_F11:
		if Runner.Paused() {
			Runner.StepOver()
		}
	case sdl.SCANCODE_F8:
		if Runner.Paused() {
			DebugMemory()
		}
	case sdl.SCANCODE_F9:
		if Runner.Paused() {
			DebugBreakpoint()
		}
	}

	return true
}

/// LoadDialog asks for a ROM and reboots the virtual machine with it.
///
func LoadDialog(ctx context.Context) {
	path, err := dialog.File().Title("Load ROM").Filter("All Files", "*").Load()
	if err != nil {
		return
	}

	program, err := rom.Read(FS, path)
	if err == nil {
		err = Runner.Load(program)
	}

	if err != nil {
		Log.Logln("Loading ROM failed:", err.Error())
		return
	}

	File = path
	Log.Logln("Loaded", rom.Name(File))

	Start(ctx)
}
