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

// Package driver runs a CHIP-8 machine in real time. It owns the two
// advancing callers of the machine, the 60 Hz timer and the instruction
// clock, and serializes them with the host's input and rendering.
package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSpeed is the instruction clock in Hz. The RCA 1802 ran at
	// 4-5 MHz, and each instruction took 16-24 clock cycles. Best
	// estimations are the 1802 could interpret 500 CHIP-8 instructions
	// per second.
	DefaultSpeed = 500

	// MinSpeed and MaxSpeed bound the instruction clock.
	MinSpeed = 100
	MaxSpeed = 5000

	// SpeedStep is the change applied by IncSpeed and DecSpeed.
	SpeedStep = 100

	// TimerRate is the frequency of the delay and sound timers.
	TimerRate = 60

	// clockPeriod is how often the clock loop wakes to catch up.
	clockPeriod = 2 * time.Millisecond
)

// Sink receives one line per traced instruction.
type Sink interface {
	Log(s ...string)
}

// Options configure a Runner.
type Options struct {
	// Speed is the initial instruction clock in Hz.
	Speed int

	// Trace logs every executed instruction at debug level and to Sink.
	Trace bool

	// Sink optionally receives trace lines and faults.
	Sink Sink

	// Logger for faults and trace, defaults to an error level logger.
	Logger *log.Logger
}

// Runner shares one machine between the timer and clock loops and the
// host. Every access to the machine goes through the runner's lock.
type Runner struct {
	mu sync.Mutex
	vm *chip8.Machine

	speed  int
	paused bool

	// breakpoints pause the runner when the PC lands on them.
	breakpoints map[uint16]bool

	// over is a one-shot breakpoint set by StepOver.
	over    uint16
	overSet bool

	// owed is the fraction of an instruction carried between clock ticks.
	owed time.Duration

	fault error

	trace  bool
	sink   Sink
	logger *log.Logger
}

// New creates a runner for vm. The runner starts unpaused.
func New(vm *chip8.Machine, opts Options) *Runner {
	if opts.Speed == 0 {
		opts.Speed = DefaultSpeed
	}

	if opts.Logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		opts.Logger = log.NewWithConfig(cfg)
	}

	return &Runner{
		vm:          vm,
		speed:       clamp(opts.Speed),
		breakpoints: make(map[uint16]bool),
		trace:       opts.Trace,
		sink:        opts.Sink,
		logger:      opts.Logger,
	}
}

// Run drives the machine until ctx is cancelled or the machine faults.
// Cancellation returns nil, a fault is returned as the *chip8.Fault.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.timerLoop(ctx)
	})
	g.Go(func() error {
		return r.clockLoop(ctx)
	})

	return g.Wait()
}

func (r *Runner) timerLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / TimerRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Tick()
		}
	}
}

func (r *Runner) clockLoop(ctx context.Context) error {
	ticker := time.NewTicker(clockPeriod)
	defer ticker.Stop()

	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := r.Elapse(now.Sub(last)); err != nil {
				return err
			}
			last = now
		}
	}
}

// Tick decrements the machine timers once.
func (r *Runner) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.paused {
		r.vm.DecrementTimers()
	}
}

// Elapse executes as many instructions as the clock owes for d of wall
// time. Fractions of an instruction carry over to the next call.
func (r *Runner) Elapse(d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		r.owed = 0
		return r.fault
	}

	period := time.Second / time.Duration(r.speed)
	r.owed += d

	n := int(r.owed / period)
	r.owed -= time.Duration(n) * period

	return r.advance(n)
}

// Advance executes up to n instructions. It stops early when paused by a
// breakpoint, when the machine waits for a key, or on a fault.
func (r *Runner) Advance(n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return r.fault
	}

	return r.advance(n)
}

func (r *Runner) advance(n int) error {
	for i := 0; i < n && !r.paused; i++ {
		status, err := r.step()
		if err != nil {
			return err
		}

		if status == chip8.StatusWaiting {
			r.owed = 0
			break
		}

		r.checkBreakpoints()
	}

	return nil
}

func (r *Runner) step() (chip8.Status, error) {
	// decode before executing, the instruction may overwrite itself
	var line string
	if r.trace {
		line = r.vm.Trace(uint(r.vm.PC))
	}

	status, err := r.vm.Step()
	if err != nil {
		r.halt(err)
		return status, err
	}

	if r.trace && status == chip8.StatusRunning {

		r.logger.Debug("Step", log.String("instruction", line))
		if r.sink != nil {
			r.sink.Log(line)
		}
	}

	return status, nil
}

func (r *Runner) halt(err error) {
	r.fault = err
	r.paused = true

	r.logger.Error("Machine halted", nil, log.Err(err))
	if r.sink != nil {
		r.sink.Log(fmt.Sprintf("HALT: %v", err))
	}
}

func (r *Runner) checkBreakpoints() {
	pc := r.vm.PC

	if r.overSet && pc == r.over {
		r.overSet = false
		r.paused = true
		return
	}

	if r.breakpoints[pc] {
		r.paused = true

		r.logger.Info("Breakpoint", log.String("pc", fmt.Sprintf("0x%04X", pc)))
		if r.sink != nil {
			r.sink.Log(fmt.Sprintf("BREAK: #%04X", pc))
		}
	}
}

// Step executes a single instruction, used while paused.
func (r *Runner) Step() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fault != nil {
		return r.fault
	}

	_, err := r.step()

	return err
}

// StepOver runs a CALL at the PC until it returns, or steps any other
// instruction.
func (r *Runner) StepOver() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fault != nil {
		return r.fault
	}

	inst, err := r.vm.Fetch()
	if err != nil {
		r.halt(err)
		return err
	}

	if inst.Op != chip8.OpCall {
		_, err := r.step()
		return err
	}

	r.over = r.vm.PC + 2
	r.overSet = true
	r.paused = false

	return nil
}

// ToggleBreakpoint sets or clears a breakpoint at the current PC and
// reports whether one is now set.
func (r *Runner) ToggleBreakpoint() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pc := r.vm.PC
	if r.breakpoints[pc] {
		delete(r.breakpoints, pc)
		return false
	}

	r.breakpoints[pc] = true

	return true
}

// Breakpoint reports whether a breakpoint is set at address.
func (r *Runner) Breakpoint(address uint16) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.breakpoints[address]
}

// Pause stops the clock and the timers.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paused = true
}

// Resume restarts the clock unless the machine has faulted.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fault == nil {
		r.paused = false
	}
}

// TogglePause pauses a running machine or resumes a paused one.
func (r *Runner) TogglePause() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused && r.fault == nil {
		r.paused = false
	} else {
		r.paused = true
	}
}

// Paused reports whether the clock is stopped.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.paused
}

// Fault returns the error that halted the machine, if any.
func (r *Runner) Fault() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.fault
}

// Speed returns the instruction clock in Hz.
func (r *Runner) Speed() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.speed
}

// SetSpeed changes the instruction clock, clamped to MinSpeed-MaxSpeed.
func (r *Runner) SetSpeed(hz int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.speed = clamp(hz)
}

// IncSpeed raises the clock by SpeedStep.
func (r *Runner) IncSpeed() {
	r.adjustSpeed(SpeedStep)
}

// DecSpeed lowers the clock by SpeedStep.
func (r *Runner) DecSpeed() {
	r.adjustSpeed(-SpeedStep)
}

func (r *Runner) adjustSpeed(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.speed = clamp(r.speed + delta)
}

// Reset reboots the machine with its loaded program and clears any fault.
// Breakpoints are kept; paused is cleared unless keepPaused is set.
func (r *Runner) Reset(keepPaused bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm.Reset()

	r.fault = nil
	r.overSet = false
	r.owed = 0
	r.paused = keepPaused
}

// Load replaces the program, clears breakpoints and reboots the machine.
func (r *Runner) Load(program []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.vm.Load(program); err != nil {
		return err
	}

	r.fault = nil
	r.overSet = false
	r.owed = 0
	r.paused = false
	r.breakpoints = make(map[uint16]bool)

	return nil
}

// PressKey forwards a key press to the machine.
func (r *Runner) PressKey(key uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm.PressKey(key)
}

// ReleaseKey forwards a key release to the machine.
func (r *Runner) ReleaseKey(key uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm.ReleaseKey(key)
}

// View calls fn with the machine while holding the lock. fn must not
// keep the machine or call back into the runner.
func (r *Runner) View(fn func(vm *chip8.Machine)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn(r.vm)
}

func clamp(hz int) int {
	switch {
	case hz < MinSpeed:
		return MinSpeed
	case hz > MaxSpeed:
		return MaxSpeed
	}

	return hz
}
