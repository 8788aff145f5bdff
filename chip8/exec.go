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

/// Step the virtual machine a single instruction.
///
/// A fault returns StatusHalted and leaves the machine exactly as it was,
/// so the same fault is reported again if the caller steps once more.
///
func (vm *Machine) Step() (Status, error) {
	inst, err := vm.Fetch()
	if err != nil {
		return StatusHalted, err
	}

	pc := vm.PC

	// advance past the instruction, control flow overwrites this
	vm.PC += 2

	status, err := vm.execute(inst)
	if err != nil {
		vm.PC = pc

		return StatusHalted, &Fault{PC: pc, Opcode: inst.Opcode, Err: err}
	}

	if status == StatusWaiting {
		vm.PC = pc

		return StatusWaiting, nil
	}

	vm.Cycles++

	return StatusRunning, nil
}

// Fetch decodes the instruction at PC without executing it.
func (vm *Machine) Fetch() (Instruction, error) {
	if int(vm.PC)+1 >= MemorySize {
		return Instruction{}, &Fault{PC: vm.PC, Err: ErrOutOfBounds}
	}

	return Decode(uint16(vm.Memory[vm.PC])<<8 | uint16(vm.Memory[vm.PC+1])), nil
}

func (vm *Machine) execute(inst Instruction) (Status, error) {
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OpSys:
		// machine code routines are not emulated
	case OpCls:
		vm.cls()
	case OpRet:
		return StatusRunning, vm.ret()
	case OpJump:
		vm.jump(inst.NNN)
	case OpCall:
		return StatusRunning, vm.call(inst.NNN)
	case OpSkipIf:
		vm.skip(vm.V[x] == inst.NN)
	case OpSkipIfNot:
		vm.skip(vm.V[x] != inst.NN)
	case OpSkipIfXY:
		vm.skip(vm.V[x] == vm.V[y])
	case OpLoadX:
		vm.V[x] = inst.NN
	case OpAddX:
		vm.V[x] += inst.NN
	case OpLoadXY:
		vm.V[x] = vm.V[y]
	case OpOr:
		vm.V[x] |= vm.V[y]
	case OpAnd:
		vm.V[x] &= vm.V[y]
	case OpXor:
		vm.V[x] ^= vm.V[y]
	case OpAddXY:
		vm.addXY(x, y)
	case OpSubXY:
		vm.subXY(x, y)
	case OpShr:
		vm.shr(x)
	case OpSubYX:
		vm.subYX(x, y)
	case OpShl:
		vm.shl(x)
	case OpSkipIfNotXY:
		vm.skip(vm.V[x] != vm.V[y])
	case OpLoadI:
		vm.I = inst.NNN
	case OpJumpV0:
		vm.jump(inst.NNN + uint16(vm.V[0]))
	case OpRnd:
		vm.V[x] = byte(vm.rng.Intn(0x100)) & inst.NN
	case OpDrw:
		vm.drw(x, y, inst.N)
	case OpSkipIfPressed:
		vm.skip(vm.Keys[vm.V[x]&0xF])
	case OpSkipIfNotPressed:
		vm.skip(!vm.Keys[vm.V[x]&0xF])
	case OpLoadXDT:
		vm.V[x] = vm.DT
	case OpLoadXK:
		return vm.loadXK(x), nil
	case OpLoadDTX:
		vm.DT = vm.V[x]
	case OpLoadSTX:
		vm.ST = vm.V[x]
	case OpAddIX:
		vm.I += uint16(vm.V[x])
	case OpLoadF:
		vm.I = FontAddress + uint16(vm.V[x]&0xF)*GlyphSize
	case OpLoadB:
		vm.loadB(x)
	case OpSaveRegs:
		vm.saveRegs(x)
	case OpLoadRegs:
		vm.loadRegs(x)
	case OpUnknown:
		if vm.opts.Unknown != IgnoreUnknown {
			return StatusHalted, ErrUnknownOpcode
		}
	}

	return StatusRunning, nil
}

// addr wraps an I-relative address into memory.
func (vm *Machine) addr(offset uint) uint {
	return (uint(vm.I) + offset) & (MemorySize - 1)
}

/// Clear the video display memory.
///
func (vm *Machine) cls() {
	vm.Video = FrameBuffer{}
	vm.redraw = true
}

/// call a subroutine at address.
///
func (vm *Machine) call(address uint16) error {
	if vm.SP == StackDepth {
		return ErrStackOverflow
	}

	// push the return address, PC already points past the call
	vm.Stack[vm.SP] = vm.PC
	vm.SP++

	vm.PC = address

	return nil
}

/// return from subroutine.
///
func (vm *Machine) ret() error {
	if vm.SP == 0 {
		return ErrStackUnderflow
	}

	vm.SP--
	vm.PC = vm.Stack[vm.SP]

	return nil
}

/// jump to address.
///
func (vm *Machine) jump(address uint16) {
	vm.PC = address
}

/// skip the next instruction if cond holds.
///
func (vm *Machine) skip(cond bool) {
	if cond {
		vm.PC += 2
	}
}

/// add vy to vx and set carry.
///
func (vm *Machine) addXY(x, y byte) {
	sum := uint16(vm.V[x]) + uint16(vm.V[y])

	vm.V[x] = byte(sum)
	vm.V[0xF] = byte(sum >> 8)
}

/// subtract vy from vx, set carry if no borrow.
///
func (vm *Machine) subXY(x, y byte) {
	carry := flag(vm.V[x] >= vm.V[y])

	vm.V[x] -= vm.V[y]
	vm.V[0xF] = carry
}

/// subtract vx from vy and store in vx, set carry if no borrow.
///
func (vm *Machine) subYX(x, y byte) {
	carry := flag(vm.V[y] >= vm.V[x])

	vm.V[x] = vm.V[y] - vm.V[x]
	vm.V[0xF] = carry
}

/// shr vx 1 bit, set carry to LSB of vx before shift.
///
func (vm *Machine) shr(x byte) {
	carry := vm.V[x] & 1

	vm.V[x] >>= 1
	vm.V[0xF] = carry
}

/// shl vx 1 bit, set carry to MSB of vx before shift.
///
func (vm *Machine) shl(x byte) {
	carry := vm.V[x] >> 7

	vm.V[x] <<= 1
	vm.V[0xF] = carry
}

/// load vx with next key hit. Until a key is pressed the machine stays on
/// this instruction and reports StatusWaiting.
///
func (vm *Machine) loadXK(x byte) Status {
	if !vm.waiting {
		vm.waiting = true
		vm.latched = -1

		return StatusWaiting
	}

	if vm.latched < 0 {
		return StatusWaiting
	}

	vm.V[x] = byte(vm.latched)

	// done waiting
	vm.waiting = false
	vm.latched = -1

	return StatusRunning
}

/// load address with BCD of vx.
///
func (vm *Machine) loadB(x byte) {
	n := uint16(vm.V[x])
	b := uint16(0)

	// double dabble, 8 shifts
	for i := uint(0); i < 8; i++ {
		if (b>>0)&0xF >= 5 {
			b += 3
		}
		if (b>>4)&0xF >= 5 {
			b += 3 << 4
		}
		if (b>>8)&0xF >= 5 {
			b += 3 << 8
		}

		// apply shift, pull next bit
		b = (b << 1) | (n >> (7 - i) & 1)
	}

	vm.Memory[vm.addr(0)] = byte(b>>8) & 0xF
	vm.Memory[vm.addr(1)] = byte(b>>4) & 0xF
	vm.Memory[vm.addr(2)] = byte(b>>0) & 0xF
}

/// draw a sprite at I to video memory at vx, vy.
///
/// The origin wraps onto the screen and so does every pixel of the sprite.
/// VF is set if any lit pixel was turned off.
///
func (vm *Machine) drw(x, y, n byte) {
	ox := int(vm.V[x])
	oy := int(vm.V[y])

	c := byte(0)

	for row := 0; row < int(n); row++ {
		s := vm.Memory[vm.addr(uint(row))]
		line := &vm.Video[(oy+row)%Height]

		for bit := 0; bit < 8; bit++ {
			if s&(0x80>>uint(bit)) == 0 {
				continue
			}

			px := (ox + bit) % Width

			// collision when a lit pixel is erased
			if line[px] {
				c = 1
			}

			line[px] = !line[px]
		}
	}

	vm.V[0xF] = c
	vm.redraw = true
}

/// save registers v0..vx to I.
///
func (vm *Machine) saveRegs(x byte) {
	for i := uint(0); i <= uint(x); i++ {
		vm.Memory[vm.addr(i)] = vm.V[i]
	}
}

/// load registers v0..vx from I.
///
func (vm *Machine) loadRegs(x byte) {
	for i := uint(0); i <= uint(x); i++ {
		vm.V[i] = vm.Memory[vm.addr(i)]
	}
}

func flag(b bool) byte {
	if b {
		return 1
	}

	return 0
}
