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

// Op identifies one of the 35 CHIP-8 instructions, or OpUnknown.
type Op int

const (
	OpUnknown Op = iota
	OpSys
	OpCls
	OpRet
	OpJump
	OpCall
	OpSkipIf
	OpSkipIfNot
	OpSkipIfXY
	OpLoadX
	OpAddX
	OpLoadXY
	OpOr
	OpAnd
	OpXor
	OpAddXY
	OpSubXY
	OpShr
	OpSubYX
	OpShl
	OpSkipIfNotXY
	OpLoadI
	OpJumpV0
	OpRnd
	OpDrw
	OpSkipIfPressed
	OpSkipIfNotPressed
	OpLoadXDT
	OpLoadXK
	OpLoadDTX
	OpLoadSTX
	OpAddIX
	OpLoadF
	OpLoadB
	OpSaveRegs
	OpLoadRegs
)

// Instruction is a decoded opcode. Only the operand fields the op uses
// are meaningful, but all are always extracted.
type Instruction struct {
	Op     Op
	Opcode uint16

	// X and Y are register operands, N is the low nibble.
	X, Y, N byte

	// NN is the low byte.
	NN byte

	// NNN is the 12-bit address operand.
	NNN uint16
}

// Decode splits an opcode into its instruction and operands.
func Decode(opcode uint16) Instruction {
	inst := Instruction{
		Opcode: opcode,
		X:      byte(opcode >> 8 & 0xF),
		Y:      byte(opcode >> 4 & 0xF),
		N:      byte(opcode & 0xF),
		NN:     byte(opcode & 0xFF),
		NNN:    opcode & 0xFFF,
	}

	inst.Op = decodeOp(opcode)

	return inst
}

func decodeOp(opcode uint16) Op {
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
		return OpSys
	case 0x1000:
		return OpJump
	case 0x2000:
		return OpCall
	case 0x3000:
		return OpSkipIf
	case 0x4000:
		return OpSkipIfNot
	case 0x5000:
		if opcode&0xF == 0 {
			return OpSkipIfXY
		}
	case 0x6000:
		return OpLoadX
	case 0x7000:
		return OpAddX
	case 0x8000:
		switch opcode & 0xF {
		case 0x0:
			return OpLoadXY
		case 0x1:
			return OpOr
		case 0x2:
			return OpAnd
		case 0x3:
			return OpXor
		case 0x4:
			return OpAddXY
		case 0x5:
			return OpSubXY
		case 0x6:
			return OpShr
		case 0x7:
			return OpSubYX
		case 0xE:
			return OpShl
		}
	case 0x9000:
		if opcode&0xF == 0 {
			return OpSkipIfNotXY
		}
	case 0xA000:
		return OpLoadI
	case 0xB000:
		return OpJumpV0
	case 0xC000:
		return OpRnd
	case 0xD000:
		return OpDrw
	case 0xE000:
		switch opcode & 0xFF {
		case 0x9E:
			return OpSkipIfPressed
		case 0xA1:
			return OpSkipIfNotPressed
		}
	case 0xF000:
		switch opcode & 0xFF {
		case 0x07:
			return OpLoadXDT
		case 0x0A:
			return OpLoadXK
		case 0x15:
			return OpLoadDTX
		case 0x18:
			return OpLoadSTX
		case 0x1E:
			return OpAddIX
		case 0x29:
			return OpLoadF
		case 0x33:
			return OpLoadB
		case 0x55:
			return OpSaveRegs
		case 0x65:
			return OpLoadRegs
		}
	}

	return OpUnknown
}

// String returns the assembly form of the instruction.
func (inst Instruction) String() string {
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OpSys:
		return fmt.Sprintf("SYS    #%03X", inst.NNN)
	case OpCls:
		return "CLS"
	case OpRet:
		return "RET"
	case OpJump:
		return fmt.Sprintf("JP     #%03X", inst.NNN)
	case OpCall:
		return fmt.Sprintf("CALL   #%03X", inst.NNN)
	case OpSkipIf:
		return fmt.Sprintf("SE     V%X, #%02X", x, inst.NN)
	case OpSkipIfNot:
		return fmt.Sprintf("SNE    V%X, #%02X", x, inst.NN)
	case OpSkipIfXY:
		return fmt.Sprintf("SE     V%X, V%X", x, y)
	case OpLoadX:
		return fmt.Sprintf("LD     V%X, #%02X", x, inst.NN)
	case OpAddX:
		return fmt.Sprintf("ADD    V%X, #%02X", x, inst.NN)
	case OpLoadXY:
		return fmt.Sprintf("LD     V%X, V%X", x, y)
	case OpOr:
		return fmt.Sprintf("OR     V%X, V%X", x, y)
	case OpAnd:
		return fmt.Sprintf("AND    V%X, V%X", x, y)
	case OpXor:
		return fmt.Sprintf("XOR    V%X, V%X", x, y)
	case OpAddXY:
		return fmt.Sprintf("ADD    V%X, V%X", x, y)
	case OpSubXY:
		return fmt.Sprintf("SUB    V%X, V%X", x, y)
	case OpShr:
		return fmt.Sprintf("SHR    V%X", x)
	case OpSubYX:
		return fmt.Sprintf("SUBN   V%X, V%X", x, y)
	case OpShl:
		return fmt.Sprintf("SHL    V%X", x)
	case OpSkipIfNotXY:
		return fmt.Sprintf("SNE    V%X, V%X", x, y)
	case OpLoadI:
		return fmt.Sprintf("LD     I, #%03X", inst.NNN)
	case OpJumpV0:
		return fmt.Sprintf("JP     V0, #%03X", inst.NNN)
	case OpRnd:
		return fmt.Sprintf("RND    V%X, #%02X", x, inst.NN)
	case OpDrw:
		return fmt.Sprintf("DRW    V%X, V%X, %d", x, y, inst.N)
	case OpSkipIfPressed:
		return fmt.Sprintf("SKP    V%X", x)
	case OpSkipIfNotPressed:
		return fmt.Sprintf("SKNP   V%X", x)
	case OpLoadXDT:
		return fmt.Sprintf("LD     V%X, DT", x)
	case OpLoadXK:
		return fmt.Sprintf("LD     V%X, K", x)
	case OpLoadDTX:
		return fmt.Sprintf("LD     DT, V%X", x)
	case OpLoadSTX:
		return fmt.Sprintf("LD     ST, V%X", x)
	case OpAddIX:
		return fmt.Sprintf("ADD    I, V%X", x)
	case OpLoadF:
		return fmt.Sprintf("LD     F, V%X", x)
	case OpLoadB:
		return fmt.Sprintf("LD     B, V%X", x)
	case OpSaveRegs:
		return fmt.Sprintf("LD     [I], V%X", x)
	case OpLoadRegs:
		return fmt.Sprintf("LD     V%X, [I]", x)
	}

	return fmt.Sprintf("??     #%04X", inst.Opcode)
}
