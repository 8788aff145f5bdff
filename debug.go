package main

import (
	"fmt"
	"strings"

	"github.com/massung/chip8vm/chip8"
	"github.com/massung/chip8vm/internal/keypad"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	/// Lines shown in the assembly and log panels.
	///
	AssemblyLines = 16
	LogLines      = 16

	/// Pixel height of a line of text.
	///
	LineHeight = 14

	/// Longest log line shown before it is cut.
	///
	logWidth = 80
)

var (
	/// First address shown in the assembly panel.
	///
	Address int
)

/// Show the HELP text in the log.
///
func DebugHelp() {
	Log.Logln("Virtual keys:")
	for _, row := range keypad.Rows {
		Log.Log("  " + strings.Join(strings.Split(row, ""), "-"))
	}

	Log.Logln("Emulation keys:")
	Log.Log("  ESC      - Quit")
	Log.Log("  BS       - Reboot, +CTRL to pause")
	Log.Log("  [ / ]    - Slower / faster")
	Log.Log("  F3       - Load ROM")
	Log.Log("  F5/SPACE - Pause")
	Log.Log("  F6/F10   - Step")
	Log.Log("  F7/F11   - Step over")
	Log.Log("  F8       - Dump memory at I")
	Log.Log("  F9       - Toggle breakpoint")
	Log.Log("  PG UP/DN - Scroll log")
	Log.Log("  H        - Help")
}

/// DebugAssembly renders the disassembled instructions around
/// the CHIP-8 program counter.
///
func DebugAssembly(x, y int32) {
	var lines [AssemblyLines]string
	var pc int

	Runner.View(func(vm *chip8.Machine) {
		pc = int(vm.PC)

		// scroll only once the pc leaves the window
		if pc < Address || pc >= Address+AssemblyLines*2 || (Address^pc)&1 == 1 {
			Address = max(pc-2, 0)
		}

		for i := range lines {
			lines[i] = vm.Disassemble(uint(Address + i*2))
		}
	})

	paused := Runner.Paused()

	// show the disassembled instructions
	for i, line := range lines {
		address := Address + i*2
		top := y + int32(i)*LineHeight

		if address == pc {
			if paused {
				Renderer.SetDrawColor(176, 32, 57, 255)
			} else {
				Renderer.SetDrawColor(57, 102, 176, 255)
			}

			// highlight the current instruction
			Renderer.FillRect(&sdl.Rect{
				X: x - 2,
				Y: top - 1,
				W: 252,
				H: LineHeight,
			})
		}

		if Runner.Breakpoint(uint16(address)) {
			DrawTextColor("*", x, top, 240, 200, 60)
		}

		DrawText(line, x+GlyphWidth*2, top)
	}
}

/// Show the current value of all the CHIP-8 registers.
///
func DebugRegisters(x, y int32) {
	var vm chip8.Machine

	Runner.View(func(m *chip8.Machine) {
		vm.V, vm.PC, vm.SP, vm.I = m.V, m.PC, m.SP, m.I
		vm.DT, vm.ST, vm.Cycles = m.DT, m.ST, m.Cycles
	})

	for i := range vm.V {
		DrawText(fmt.Sprintf("V%X - #%02X", i, vm.V[i]), x, y+int32(i)*LineHeight)
	}

	// shift over for the other registers
	x += 92

	DrawText(fmt.Sprintf("PC - #%04X", vm.PC), x, y)
	DrawText(fmt.Sprintf("SP - #%02X", vm.SP), x, y+LineHeight)
	DrawText(fmt.Sprintf("I  - #%04X", vm.I), x, y+LineHeight*3)
	DrawText(fmt.Sprintf("DT - #%02X", vm.DT), x, y+LineHeight*5)
	DrawText(fmt.Sprintf("ST - #%02X", vm.ST), x, y+LineHeight*6)
	DrawText(fmt.Sprintf("%d Hz", Runner.Speed()), x, y+LineHeight*8)
	DrawText(fmt.Sprintf("%d", vm.Cycles), x, y+LineHeight*9)

	if Runner.Fault() != nil {
		DrawTextColor("HALTED", x, y+LineHeight*11, 240, 80, 80)
	} else if Runner.Paused() {
		DrawTextColor("PAUSED", x, y+LineHeight*11, 240, 200, 60)
	}
}

/// Show the current log text.
///
func DebugLog(x, y int32) {
	for _, line := range Log.Window(LogLines) {
		if len(line) > logWidth {
			line = line[:logWidth-3] + "..."
		}

		DrawText(line, x, y)

		// advance to the next line
		y += LineHeight
	}
}

/// DebugMemory dumps the memory at I to the log.
///
func DebugMemory() {
	var dump []string

	Runner.View(func(vm *chip8.Machine) {
		for row := 0; row < 8; row++ {
			address := (int(vm.I) + row*8) % chip8.MemorySize

			var sb strings.Builder
			fmt.Fprintf(&sb, "%04X -", address)

			for i := 0; i < 8; i++ {
				fmt.Fprintf(&sb, " %02X", vm.Memory[(address+i)%chip8.MemorySize])
			}

			dump = append(dump, sb.String())
		}
	})

	Log.Logln("Memory at I:")
	for _, line := range dump {
		Log.Log(line)
	}
}

/// DebugBreakpoint toggles a breakpoint at the PC.
///
func DebugBreakpoint() {
	var pc uint16
	Runner.View(func(vm *chip8.Machine) {
		pc = vm.PC
	})

	if Runner.ToggleBreakpoint() {
		Log.Log(fmt.Sprintf("Breakpoint set at #%04X", pc))
	} else {
		Log.Log(fmt.Sprintf("Breakpoint cleared at #%04X", pc))
	}
}
