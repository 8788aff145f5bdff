/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

import (
	"math/rand"
)

const (
	// MemorySize is the number of addressable bytes.
	MemorySize = 0x1000

	// ProgramStart is where program images are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest image that fits between ProgramStart
	// and the end of memory.
	MaxProgramSize = MemorySize - ProgramStart

	// FontAddress is where the 16 hex digit glyphs are stored.
	FontAddress = 0x050

	// StackDepth is the number of return addresses the stack holds.
	StackDepth = 16

	// NumKeys is the size of the hex keypad.
	NumKeys = 16

	// Width and Height of the frame buffer in pixels.
	Width  = 64
	Height = 32
)

// Status is the outcome of a single Step.
type Status int

const (
	// StatusRunning means an instruction executed and the machine can
	// be stepped again.
	StatusRunning Status = iota

	// StatusWaiting means the machine is suspended in a key wait. The
	// caller should keep stepping (or feeding keys) until it resumes.
	StatusWaiting

	// StatusHalted accompanies a fault. The state is unchanged and
	// stepping again reproduces the same fault.
	StatusHalted
)

// FrameBuffer is the 64x32 monochrome display, row-major.
type FrameBuffer [Height][Width]bool

// Options configure a Machine.
type Options struct {
	// Unknown decides what happens when an opcode decodes to nothing in
	// the instruction table. The zero value halts.
	Unknown UnknownPolicy

	// Seed initializes the machine's random source used by RND. Two
	// machines with the same seed draw the same numbers.
	Seed int64
}

// DefaultOptions returns the options the emulator runs with unless told
// otherwise: unknown opcodes are skipped, as most interpreters do.
func DefaultOptions() Options {
	return Options{
		Unknown: IgnoreUnknown,
	}
}

// Machine is a CHIP-8 virtual machine. It is not safe for concurrent use;
// Step, DecrementTimers and the key and frame accessors must be
// serialized by the caller.
type Machine struct {
	// Memory addressable by CHIP-8. The first 512 bytes are reserved
	// and hold the font glyphs at FontAddress.
	Memory [MemorySize]byte

	// V are the 16 general registers. VF doubles as the carry, borrow
	// and collision flag.
	V [16]byte

	// I is the address register.
	I uint16

	// PC is the program counter.
	PC uint16

	// Stack holds return addresses; SP is the number in use.
	Stack [StackDepth]uint16
	SP    int

	// DT and ST are the delay and sound timers.
	DT byte
	ST byte

	// Video is the frame buffer.
	Video FrameBuffer

	// Keys hold the current state for the 16-key pad.
	Keys [NumKeys]bool

	// Cycles is how many instructions have executed since reset.
	Cycles uint64

	opts Options
	rng  *rand.Rand

	// program is the last loaded image, restored by Reset.
	program []byte

	// redraw is set whenever the frame buffer changes.
	redraw bool

	// waiting is set while suspended in a key wait; latched is the key
	// pressed since the wait began, or -1.
	waiting bool
	latched int
}

// New creates a machine with the font loaded and no program.
func New(opts Options) *Machine {
	vm := &Machine{opts: opts}
	vm.Reset()

	return vm
}

// Load copies a program image into memory at ProgramStart. Images too large
// to fit are rejected with ErrCapacityExceeded and memory is untouched.
func (vm *Machine) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return ErrCapacityExceeded
	}

	vm.program = append([]byte(nil), program...)
	vm.Reset()

	return nil
}

// Reset reboots the machine: memory is cleared to the font and the last
// loaded program, and all registers, timers, video and keys are zeroed.
func (vm *Machine) Reset() {
	vm.Memory = [MemorySize]byte{}

	copy(vm.Memory[FontAddress:], font[:])
	copy(vm.Memory[ProgramStart:], vm.program)

	vm.Video = FrameBuffer{}
	vm.Keys = [NumKeys]bool{}

	vm.PC = ProgramStart
	vm.I = 0
	vm.V = [16]byte{}

	vm.Stack = [StackDepth]uint16{}
	vm.SP = 0

	vm.DT = 0
	vm.ST = 0

	vm.Cycles = 0
	vm.redraw = true

	vm.waiting = false
	vm.latched = -1

	vm.rng = rand.New(rand.NewSource(vm.opts.Seed))
}

// Options returns the options the machine was created with.
func (vm *Machine) Options() Options {
	return vm.opts
}

// DecrementTimers counts both timers down by one, stopping at zero. The
// host calls it at 60 Hz independently of Step.
func (vm *Machine) DecrementTimers() {
	if vm.DT > 0 {
		vm.DT--
	}

	if vm.ST > 0 {
		vm.ST--
	}
}

// SoundActive is true while the sound timer is running.
func (vm *Machine) SoundActive() bool {
	return vm.ST > 0
}

// Waiting is true while the machine is suspended on a key wait.
func (vm *Machine) Waiting() bool {
	return vm.waiting
}

// PressKey marks a key as down. A press during a key wait is latched and
// consumed by the next Step.
func (vm *Machine) PressKey(key uint) {
	if key >= NumKeys {
		return
	}

	if !vm.Keys[key] && vm.waiting && vm.latched < 0 {
		vm.latched = int(key)
	}

	vm.Keys[key] = true
}

// ReleaseKey marks a key as up.
func (vm *Machine) ReleaseKey(key uint) {
	if key < NumKeys {
		vm.Keys[key] = false
	}
}

// SetKeys replaces the whole keypad with a snapshot. Keys that go from up
// to down count as presses for a pending key wait.
func (vm *Machine) SetKeys(keys [NumKeys]bool) {
	for k, down := range keys {
		if down {
			vm.PressKey(uint(k))
		} else {
			vm.ReleaseKey(uint(k))
		}
	}
}

// Frame returns a copy of the frame buffer.
func (vm *Machine) Frame() FrameBuffer {
	return vm.Video
}

// Pixel reports whether the pixel at x, y is lit. Coordinates wrap.
func (vm *Machine) Pixel(x, y int) bool {
	return vm.Video[mod(y, Height)][mod(x, Width)]
}

// Redraw reports whether the frame buffer changed since the last call.
func (vm *Machine) Redraw() bool {
	r := vm.redraw
	vm.redraw = false

	return r
}

func mod(a, n int) int {
	if a %= n; a < 0 {
		a += n
	}

	return a
}
