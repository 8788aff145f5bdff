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

import "fmt"

/// Disassemble the CHIP-8 instruction at address i for a listing. Zero
/// words are shown as a bare address, marking the end of the program.
///
func (vm *Machine) Disassemble(i uint) string {
	if i+1 >= MemorySize {
		return ""
	}

	// end of program memory?
	if vm.opcodeAt(i) == 0 {
		return fmt.Sprintf("%04X -", i)
	}

	return vm.Trace(i)
}

/// Trace disassembles the instruction at address i as it executes, so a
/// zero word is shown as the SYS it runs as.
///
func (vm *Machine) Trace(i uint) string {
	if i+1 >= MemorySize {
		return ""
	}

	return fmt.Sprintf("%04X - %s", i, Decode(vm.opcodeAt(i)))
}

func (vm *Machine) opcodeAt(i uint) uint16 {
	return uint16(vm.Memory[i])<<8 | uint16(vm.Memory[i+1])
}
