package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		x, y   byte
		vf     byte // initial VF
		want   byte
		wantVF byte
	}{
		{"add immediate wraps", 0x70FF, 0x01, 0, 0x07, 0x00, 0x07},
		{"add immediate", 0x7001, 0x01, 0, 0x07, 0x02, 0x07},
		{"add register carry", 0x8014, 0xFF, 0x01, 0, 0x00, 1},
		{"add register no carry", 0x8014, 0x01, 0x01, 1, 0x02, 0},
		{"sub borrow", 0x8015, 0x05, 0x0A, 1, 0xFB, 0},
		{"sub no borrow", 0x8015, 0x0A, 0x05, 0, 0x05, 1},
		{"sub equal", 0x8015, 0x07, 0x07, 0, 0x00, 1},
		{"subn borrow", 0x8017, 0x0A, 0x05, 1, 0xFB, 0},
		{"subn no borrow", 0x8017, 0x05, 0x0A, 0, 0x05, 1},
		{"shr odd", 0x8016, 0x03, 0, 0, 0x01, 1},
		{"shr even", 0x8016, 0x02, 0, 1, 0x01, 0},
		{"shl high bit", 0x801E, 0x81, 0, 0, 0x02, 1},
		{"shl low bits", 0x801E, 0x41, 0, 1, 0x82, 0},
		{"or", 0x8011, 0xF0, 0x0F, 0x07, 0xFF, 0x07},
		{"and", 0x8012, 0xF3, 0x3F, 0x07, 0x33, 0x07},
		{"xor", 0x8013, 0xFF, 0x0F, 0x07, 0xF0, 0x07},
		{"load register", 0x8010, 0x00, 0x99, 0x07, 0x99, 0x07},
		{"load immediate", 0x60AB, 0x00, 0, 0x07, 0xAB, 0x07},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := load(t, DefaultOptions(), tt.opcode)
			vm.V[0] = tt.x
			vm.V[1] = tt.y
			vm.V[0xF] = tt.vf

			run(t, vm, 1)

			assert.Equal(t, tt.want, vm.V[0])
			assert.Equal(t, tt.wantVF, vm.V[0xF])
			assert.Equal(t, uint16(ProgramStart+2), vm.PC)
		})
	}
}

func TestFlagWrittenLast(t *testing.T) {
	// with VF as the destination, the flag wins over the result
	tests := []struct {
		name   string
		opcode uint16
		vf, v1 byte
		want   byte
	}{
		{"add carry", 0x8F14, 0xFF, 0x01, 1},
		{"sub no borrow", 0x8F15, 0x0A, 0x05, 1},
		{"shr", 0x8F06, 0x02, 0, 0},
		{"shl", 0x8F0E, 0x80, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := load(t, DefaultOptions(), tt.opcode)
			vm.V[0xF] = tt.vf
			vm.V[1] = tt.v1

			run(t, vm, 1)
			assert.Equal(t, tt.want, vm.V[0xF])
		})
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		v0, v1 byte
		key    bool
		skip   bool
	}{
		{"se byte taken", 0x3042, 0x42, 0, false, true},
		{"se byte not taken", 0x3042, 0x41, 0, false, false},
		{"sne byte taken", 0x4042, 0x41, 0, false, true},
		{"sne byte not taken", 0x4042, 0x42, 0, false, false},
		{"se reg taken", 0x5010, 0x10, 0x10, false, true},
		{"se reg not taken", 0x5010, 0x10, 0x11, false, false},
		{"sne reg taken", 0x9010, 0x10, 0x11, false, true},
		{"sne reg not taken", 0x9010, 0x10, 0x10, false, false},
		{"skp pressed", 0xE09E, 0x05, 0, true, true},
		{"skp released", 0xE09E, 0x05, 0, false, false},
		{"sknp pressed", 0xE0A1, 0x05, 0, true, false},
		{"sknp released", 0xE0A1, 0x05, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := load(t, DefaultOptions(), tt.opcode)
			vm.V[0] = tt.v0
			vm.V[1] = tt.v1
			if tt.key {
				vm.PressKey(5)
			}

			run(t, vm, 1)

			want := uint16(ProgramStart + 2)
			if tt.skip {
				want += 2
			}
			assert.Equal(t, want, vm.PC)
		})
	}
}

func TestJumps(t *testing.T) {
	vm := load(t, DefaultOptions(), 0x1ABC)
	run(t, vm, 1)
	assert.Equal(t, uint16(0xABC), vm.PC)

	vm = load(t, DefaultOptions(), 0xB300)
	vm.V[0] = 0x12
	run(t, vm, 1)
	assert.Equal(t, uint16(0x312), vm.PC)
}

func TestCallReturn(t *testing.T) {
	// 200 CALL #300 / 202 LD V1, #01 ... 300 RET
	vm := load(t, DefaultOptions(), 0x2300, 0x6101)
	vm.Memory[0x300] = 0x00
	vm.Memory[0x301] = 0xEE

	run(t, vm, 1)
	assert.Equal(t, uint16(0x300), vm.PC)
	assert.Equal(t, 1, vm.SP)
	assert.Equal(t, uint16(0x202), vm.Stack[0])

	run(t, vm, 1)
	assert.Equal(t, uint16(0x202), vm.PC)
	assert.Equal(t, 0, vm.SP)
}

func TestCallNesting(t *testing.T) {
	// a chain of 16 calls, each to the next word, then 16 returns
	vm := New(DefaultOptions())
	image := make([]uint16, 0, 2*StackDepth+1)
	for i := 0; i < StackDepth; i++ {
		image = append(image, 0x2000|uint16(ProgramStart+2*(i+1)))
	}
	for i := 0; i < StackDepth; i++ {
		image = append(image, 0x00EE)
	}
	assert.NoError(t, vm.Load(program(image...)))

	run(t, vm, StackDepth)
	assert.Equal(t, StackDepth, vm.SP)

	// each return lands on the instruction following its call
	for i := StackDepth - 1; i >= 0; i-- {
		pc := vm.PC
		run(t, vm, 1)
		assert.Equal(t, uint16(ProgramStart+2*(i+1)), vm.PC)
		assert.Equal(t, i, vm.SP)

		// continue with the next RET instead of the call it returned to
		if i > 0 {
			vm.PC = pc + 2
		}
	}
}

func TestStackOverflow(t *testing.T) {
	// CALL #200 forever
	vm := load(t, DefaultOptions(), 0x2200)
	run(t, vm, StackDepth)
	assert.Equal(t, StackDepth, vm.SP)

	status, err := vm.Step()
	assert.Equal(t, StatusHalted, status)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, StackDepth, vm.SP)
	assert.Equal(t, uint16(ProgramStart), vm.PC)

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(ProgramStart), fault.PC)
	assert.Equal(t, uint16(0x2200), fault.Opcode)
}

func TestStackUnderflow(t *testing.T) {
	vm := load(t, DefaultOptions(), 0x00EE)

	status, err := vm.Step()
	assert.Equal(t, StatusHalted, status)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint16(ProgramStart), vm.PC)

	// deterministic, the same fault again
	_, err = vm.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}

func TestOutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		pc   uint16
		err  bool
	}{
		{"last word", 0xFFE, false},
		{"straddles end", 0xFFF, true},
		{"past end", 0x1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := New(DefaultOptions())
			vm.PC = tt.pc

			_, err := vm.Step()
			if tt.err {
				assert.True(t, errors.Is(err, ErrOutOfBounds))
				assert.Equal(t, tt.pc, vm.PC)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnknownOpcode(t *testing.T) {
	opcodes := []uint16{0x5001, 0x8008, 0x800F, 0x9001, 0xE000, 0xF000, 0xF0FF}

	for _, op := range opcodes {
		vm := load(t, Options{Unknown: HaltOnUnknown}, op)
		status, err := vm.Step()
		assert.Equal(t, StatusHalted, status)
		assert.True(t, errors.Is(err, ErrUnknownOpcode))
		assert.Equal(t, uint16(ProgramStart), vm.PC)

		vm = load(t, Options{Unknown: IgnoreUnknown}, op)
		status, err = vm.Step()
		assert.NoError(t, err)
		assert.Equal(t, StatusRunning, status)
		assert.Equal(t, uint16(ProgramStart+2), vm.PC)
	}
}

func TestSysIgnored(t *testing.T) {
	vm := load(t, Options{Unknown: HaltOnUnknown}, 0x0123)
	run(t, vm, 1)
	assert.Equal(t, uint16(ProgramStart+2), vm.PC)
}

func TestIndex(t *testing.T) {
	// LD I, #123 / ADD I, V0 / LD F, V1
	vm := load(t, DefaultOptions(), 0xA123, 0xF01E, 0xF129)
	vm.V[0] = 0x10
	vm.V[1] = 0x0B
	vm.V[0xF] = 0x07

	run(t, vm, 2)
	assert.Equal(t, uint16(0x133), vm.I)
	assert.Equal(t, byte(0x07), vm.V[0xF])

	run(t, vm, 1)
	assert.Equal(t, uint16(FontAddress+0xB*GlyphSize), vm.I)
}

func TestBCD(t *testing.T) {
	tests := []struct {
		v    byte
		want [3]byte
	}{
		{0, [3]byte{0, 0, 0}},
		{7, [3]byte{0, 0, 7}},
		{42, [3]byte{0, 4, 2}},
		{109, [3]byte{1, 0, 9}},
		{255, [3]byte{2, 5, 5}},
	}

	for _, tt := range tests {
		vm := load(t, DefaultOptions(), 0xF033)
		vm.I = 0x300
		vm.V[0] = tt.v

		run(t, vm, 1)
		assert.Equal(t, tt.want, [3]byte{vm.Memory[0x300], vm.Memory[0x301], vm.Memory[0x302]})
	}
}

func TestRegisterDump(t *testing.T) {
	// LD [I], V3 / LD V3, [I]
	vm := load(t, DefaultOptions(), 0xF355, 0xF365)
	vm.I = 0x400
	vm.V = [16]byte{1, 2, 3, 4, 5}

	run(t, vm, 1)
	var got [5]byte
	copy(got[:], vm.Memory[0x400:])
	assert.Equal(t, [5]byte{1, 2, 3, 4, 0}, got)
	assert.Equal(t, uint16(0x400), vm.I)

	vm.V = [16]byte{}
	vm.Memory[0x403] = 9
	run(t, vm, 1)
	assert.Equal(t, [16]byte{1, 2, 3, 9}, vm.V)
}

func TestIndexWraps(t *testing.T) {
	// LD [I], V1 at the very end of memory
	vm := load(t, DefaultOptions(), 0xF155)
	vm.I = 0xFFF
	vm.V[0] = 0xAA
	vm.V[1] = 0xBB

	run(t, vm, 1)
	assert.Equal(t, byte(0xAA), vm.Memory[0xFFF])
	assert.Equal(t, byte(0xBB), vm.Memory[0x000])
}

func TestTimers(t *testing.T) {
	// LD DT, V0 / LD ST, V1 / LD V2, DT
	vm := load(t, DefaultOptions(), 0xF015, 0xF118, 0xF207)
	vm.V[0] = 10
	vm.V[1] = 3

	run(t, vm, 2)
	assert.Equal(t, byte(10), vm.DT)
	assert.Equal(t, byte(3), vm.ST)
	assert.True(t, vm.SoundActive())

	vm.DecrementTimers()
	run(t, vm, 1)
	assert.Equal(t, byte(9), vm.V[2])
}

func TestRandom(t *testing.T) {
	// RND V0, #0F
	vm := load(t, Options{Seed: 99}, 0xC00F, 0xC00F, 0xC00F, 0xC00F)
	run(t, vm, 4)
	assert.Equal(t, byte(0), vm.V[0]&0xF0)

	// a zero mask always yields zero
	vm = load(t, Options{Seed: 99}, 0xC000)
	vm.V[0] = 0xFF
	run(t, vm, 1)
	assert.Equal(t, byte(0), vm.V[0])
}

func TestDrawCollision(t *testing.T) {
	// LD I, #300 / DRW V0, V1, 5 / DRW V0, V1, 5
	vm := load(t, DefaultOptions(), 0xA300, 0xD015, 0xD015)
	copy(vm.Memory[0x300:], []byte{0xFF, 0x81, 0xFF, 0x81, 0xFF})
	vm.V[0] = 10
	vm.V[1] = 4

	run(t, vm, 2)
	assert.Equal(t, byte(0), vm.V[0xF])
	assert.True(t, vm.Pixel(10, 4))
	assert.True(t, vm.Pixel(17, 4))
	assert.False(t, vm.Pixel(11, 5))
	assert.True(t, vm.Pixel(17, 8))

	run(t, vm, 1)
	assert.Equal(t, byte(1), vm.V[0xF])
	assert.Equal(t, FrameBuffer{}, vm.Frame())
}

func TestDrawNoCollisionOnOverlapOfUnlit(t *testing.T) {
	// a sprite drawn next to another lights new pixels only
	vm := load(t, DefaultOptions(), 0xA300, 0xD011, 0x7008, 0xD011)
	vm.Memory[0x300] = 0xFF

	run(t, vm, 4)
	assert.Equal(t, byte(0), vm.V[0xF])
	for x := 0; x < 16; x++ {
		assert.True(t, vm.Pixel(x, 0))
	}
}

func TestDrawWraps(t *testing.T) {
	// LD I, #300 / DRW V0, V1, 2
	vm := load(t, DefaultOptions(), 0xA300, 0xD012)
	vm.Memory[0x300] = 0xFF
	vm.Memory[0x301] = 0x80
	vm.V[0] = 60
	vm.V[1] = 31

	run(t, vm, 2)

	// row 31 spans the right edge into the left side
	for x := 60; x < 64; x++ {
		assert.True(t, vm.Video[31][x])
	}
	for x := 0; x < 4; x++ {
		assert.True(t, vm.Video[31][x])
	}
	assert.False(t, vm.Video[31][4])

	// row 32 wraps to the top
	assert.True(t, vm.Video[0][60])
	assert.False(t, vm.Video[0][61])
}

func TestDrawOriginWraps(t *testing.T) {
	vm := load(t, DefaultOptions(), 0xA300, 0xD011)
	vm.Memory[0x300] = 0x80
	vm.V[0] = 64 + 3
	vm.V[1] = 32 + 2

	run(t, vm, 2)
	assert.True(t, vm.Video[2][3])
}

func TestClearScreen(t *testing.T) {
	vm := load(t, DefaultOptions(), 0x00E0)
	for y := range vm.Video {
		for x := range vm.Video[y] {
			vm.Video[y][x] = (x+y)%3 == 0
		}
	}

	run(t, vm, 1)

	frame := vm.Frame()
	assert.Equal(t, Height, len(frame))
	assert.Equal(t, Width, len(frame[0]))
	assert.Equal(t, FrameBuffer{}, frame)
}

func TestKeyWait(t *testing.T) {
	// LD V3, K / LD V4, #01
	vm := load(t, DefaultOptions(), 0xF30A, 0x6401)

	status, err := vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, StatusWaiting, status)
	assert.True(t, vm.Waiting())
	assert.Equal(t, uint16(ProgramStart), vm.PC)

	// still waiting with nothing pressed, timers keep running
	vm.DT = 5
	vm.DecrementTimers()
	status, _ = vm.Step()
	assert.Equal(t, StatusWaiting, status)
	assert.Equal(t, byte(4), vm.DT)

	vm.PressKey(0xC)
	status, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, byte(0xC), vm.V[3])
	assert.False(t, vm.Waiting())
	assert.Equal(t, uint16(ProgramStart+2), vm.PC)

	run(t, vm, 1)
	assert.Equal(t, byte(1), vm.V[4])
}

func TestKeyWaitNeedsFreshPress(t *testing.T) {
	// a key held before the wait starts does not satisfy it
	vm := load(t, DefaultOptions(), 0xF00A)
	vm.PressKey(2)

	status, _ := vm.Step()
	assert.Equal(t, StatusWaiting, status)
	status, _ = vm.Step()
	assert.Equal(t, StatusWaiting, status)

	vm.ReleaseKey(2)
	vm.SetKeys([NumKeys]bool{7: true})
	status, _ = vm.Step()
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, byte(7), vm.V[0])
}
