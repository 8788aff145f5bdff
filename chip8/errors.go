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
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned by Load for images larger than
	// MaxProgramSize.
	ErrCapacityExceeded = errors.New("program exceeds memory capacity")

	// ErrOutOfBounds means the program counter points past the last
	// complete instruction word in memory.
	ErrOutOfBounds = errors.New("program counter out of bounds")

	// ErrStackOverflow means a call was made with all 16 stack slots in use.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow means a return was made with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrUnknownOpcode means an opcode is not in the instruction table and
	// the machine is configured with HaltOnUnknown.
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// Fault is a runtime error raised by Step. It records where execution
// stopped and unwraps to one of the sentinel errors above.
type Fault struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v at #%04X (opcode #%04X)", f.Err, f.PC, f.Opcode)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// UnknownPolicy selects how Step treats opcodes outside the instruction
// table. Real programs exist that rely on either behavior, so there is
// no implicit choice: the zero value halts, DefaultOptions ignores.
type UnknownPolicy int

const (
	// HaltOnUnknown makes Step fail with ErrUnknownOpcode.
	HaltOnUnknown UnknownPolicy = iota

	// IgnoreUnknown treats the opcode as a no-op and advances the PC.
	IgnoreUnknown
)

func (p UnknownPolicy) String() string {
	switch p {
	case HaltOnUnknown:
		return "halt"
	case IgnoreUnknown:
		return "ignore"
	}

	return fmt.Sprintf("UnknownPolicy(%d)", int(p))
}

// ParseUnknownPolicy converts "halt" or "ignore" to a policy.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch s {
	case "halt":
		return HaltOnUnknown, nil
	case "ignore":
		return IgnoreUnknown, nil
	}

	return HaltOnUnknown, fmt.Errorf("invalid unknown opcode policy %q (want halt or ignore)", s)
}
