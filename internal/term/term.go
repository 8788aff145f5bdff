// Package term plays a CHIP-8 program in a terminal. Two rows of pixels
// share one character cell using half block glyphs.
package term

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell"
	"github.com/massung/chip8vm/chip8"
	"github.com/massung/chip8vm/internal/driver"
	"github.com/massung/chip8vm/internal/keypad"
	"golang.org/x/sync/errgroup"
)

const (
	// releaseDelay is how long a key stays down after a press. Terminals
	// don't report key releases.
	releaseDelay = 150 * time.Millisecond

	// refreshRate is the frequency the screen is redrawn.
	refreshRate = 60

	// top is the first row of the display, below the title.
	top = 1
)

var (
	style = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	faint = tcell.StyleDefault.Foreground(tcell.ColorGray)

	errQuit = errors.New("quit")
)

// Run plays the runner's machine on the terminal until ctx is cancelled,
// the user quits with ESC, or the machine faults.
func Run(ctx context.Context, runner *driver.Runner, title string) error {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err = s.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}
	defer s.Fini()

	s.HideCursor()
	s.DisableMouse()
	s.Clear()

	return play(ctx, s, runner, title)
}

func play(ctx context.Context, s tcell.Screen, runner *driver.Runner, title string) error {
	g, ctx := errgroup.WithContext(ctx)

	// PollEvent only returns nil after Fini, so this can't join the group
	events := make(chan tcell.Event)
	go poll(ctx, s, events)

	g.Go(func() error {
		return runner.Run(ctx)
	})

	g.Go(func() error {
		k := newKeys(runner)
		defer k.stop()

		ticker := time.NewTicker(time.Second / refreshRate)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				draw(s, runner, title)
				s.Show()
			case ev := <-events:
				if handle(s, ev, runner, k) {
					return errQuit
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}

	return nil
}

func poll(ctx context.Context, s tcell.Screen, events chan<- tcell.Event) {
	for {
		ev := s.PollEvent()
		if ev == nil {
			return
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// handle processes a terminal event and reports whether to quit.
func handle(s tcell.Screen, ev tcell.Event, runner *driver.Runner, k *keys) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			runner.Reset(false)
		case tcell.KeyRune:
			switch r := ev.Rune(); r {
			case '[':
				runner.DecSpeed()
			case ']':
				runner.IncSpeed()
			case ' ':
				runner.TogglePause()
			default:
				if key, ok := keypad.Lookup(r); ok {
					k.press(key)
				}
			}
		}
	}

	return false
}

// draw renders the title, the display and the status line.
func draw(s tcell.Screen, runner *driver.Runner, title string) {
	var frame chip8.FrameBuffer
	var sound bool

	runner.View(func(vm *chip8.Machine) {
		frame = vm.Frame()
		sound = vm.SoundActive()
	})

	text(s, 0, 0, faint, title)

	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			s.SetContent(x, top+y/2, glyph(frame[y][x], frame[y+1][x]), nil, style)
		}
	}

	status := fmt.Sprintf("%4d Hz", runner.Speed())
	if runner.Paused() {
		status += "  PAUSED"
	}
	if sound {
		status += "  BEEP"
	}

	// pad to clear a longer previous status
	text(s, 0, top+chip8.Height/2, faint, fmt.Sprintf("%-*s", chip8.Width, status))
}

// glyph returns the half block character showing two stacked pixels.
func glyph(upper, lower bool) rune {
	switch {
	case upper && lower:
		return '█'
	case upper:
		return '▀'
	case lower:
		return '▄'
	}

	return ' '
}

func text(s tcell.Screen, x, y int, st tcell.Style, str string) {
	for _, c := range str {
		s.SetContent(x, y, c, nil, st)
		x++
	}
}

// keys releases pressed keys after releaseDelay. Pressing a key again
// before then keeps it down.
type keys struct {
	mu     sync.Mutex
	runner *driver.Runner
	timers map[uint]*time.Timer
}

func newKeys(runner *driver.Runner) *keys {
	return &keys{
		runner: runner,
		timers: make(map[uint]*time.Timer),
	}
}

func (k *keys) press(key uint) {
	k.runner.PressKey(key)

	k.mu.Lock()
	defer k.mu.Unlock()

	if t, ok := k.timers[key]; ok {
		t.Reset(releaseDelay)
		return
	}

	k.timers[key] = time.AfterFunc(releaseDelay, func() {
		k.runner.ReleaseKey(key)
	})
}

func (k *keys) stop() {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, t := range k.timers {
		t.Stop()
	}
}
