package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/massung/chip8vm/internal/config"
	"github.com/massung/chip8vm/internal/driver"
	"github.com/massung/chip8vm/internal/rom"
	"github.com/massung/chip8vm/internal/term"
	"github.com/massung/chip8vm/internal/tickrate"
	"github.com/massung/chip8vm/internal/tracelog"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/afero"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// The CHIP-8 virtual machine and the runner sharing it with the host.
	///
	VM     *chip8.Machine
	Runner *driver.Runner

	/// The SDL Window and Renderer.
	///
	Window   *sdl.Window
	Renderer *sdl.Renderer

	/// Lines shown in the log panel, and the host logger.
	///
	Log    *tracelog.Log
	Logger *log.Logger

	/// Path of the loaded ROM.
	///
	File string

	/// Filesystem ROMs are read from.
	///
	FS = afero.NewOsFs()
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		var usage *config.UsageError
		if errors.As(err, &usage) {
			fmt.Fprintln(os.Stderr, err)
			usage.ShowUsage(os.Stderr)
		}
		os.Exit(2)
	}

	Logger = config.CreateLogger(opts.Debug, opts.Quiet)

	// seed the random number generator
	if opts.Seed == 0 {
		opts.Seed = time.Now().UTC().UnixNano()
	}

	// ask for a rom when none was given
	if opts.ROM == "" {
		if opts.ROM, err = dialog.File().Title("Load ROM").Filter("All Files", "*").Load(); err != nil {
			Logger.Fatal("No ROM selected", log.Err(err))
		}
	}

	program, err := rom.Read(FS, opts.ROM)
	if err != nil {
		Logger.Fatal("Loading ROM failed", log.Err(err))
	}

	// create a new CHIP-8 virtual machine
	VM = chip8.New(opts.Machine())
	if err = VM.Load(program); err != nil {
		Logger.Fatal("Loading ROM failed", log.Err(err))
	}

	File = opts.ROM
	Log = tracelog.New(tracelog.DefaultCapacity)

	Logger.Info("Loaded ROM",
		log.String("file", File),
		log.Int("size", len(program)),
		log.String("unknown", opts.Unknown.String()))

	if opts.Text {
		Runner = driver.New(VM, driver.Options{Speed: opts.Speed})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = term.Run(ctx, Runner, "CHIP-8 - "+rom.Name(File)+" | ESC to quit")
		stop()

		if err != nil {
			Logger.Fatal("Emulation halted", log.Err(err))
		}
		return
	}

	Runner = driver.New(VM, driver.Options{
		Speed:  opts.Speed,
		Trace:  opts.Debug,
		Sink:   Log,
		Logger: Logger,
	})

	Play()
}

/// Play the loaded ROM in a window until it is closed.
///
func Play() {
	var err error

	// initialize SDL or quit
	if err = sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		Fatal("Initializing SDL failed", err)
	}
	defer sdl.Quit()

	// create the main window and renderer
	if Window, Renderer, err = sdl.CreateWindowAndRenderer(800, 520, uint32(sdl.WINDOW_SHOWN)); err != nil {
		Fatal("Creating window failed", err)
	}
	defer Window.Destroy()
	defer Renderer.Destroy()

	Window.SetTitle("CHIP-8")

	// initialize subsystems
	InitScreen()
	InitAudio()
	InitFont()
	InitInput()
	defer CloseAudio()

	DebugHelp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	Start(ctx)

	// refresh rate and frame counter
	video := time.NewTicker(time.Second / 60)
	defer video.Stop()
	fps := tickrate.New()

	// loop until window closed or user quit
	for ProcessEvents(ctx) {
		select {
		case now := <-video.C:
			Refresh()
			Window.SetTitle(fmt.Sprintf("CHIP-8 - playing: %s | fps: %d", rom.Name(File), fps.Tick(now)))
		case err := <-Faults:
			running = false
			dialog.Message("%v\n\nPress BACKSPACE to reboot.", err).Title("CHIP-8 halted").Error()
		}
	}
}

var (
	/// Faults returned by the runner.
	///
	Faults = make(chan error, 1)

	/// True while the runner goroutine is alive, main thread only.
	///
	running bool
)

/// Start the runner unless it already is. A fault stops the runner and
/// is reported on Faults.
///
func Start(ctx context.Context) {
	if running {
		return
	}

	running = true

	go func() {
		if err := Runner.Run(ctx); err != nil {
			Faults <- err
		}
	}()
}

/// Refresh the whole window.
///
func Refresh() {
	Renderer.SetDrawColor(32, 42, 53, 255)
	Renderer.Clear()

	// frame various portions of the app
	Frame(8, 8, 516, 260)
	Frame(532, 8, 260, 260)
	Frame(8, 276, 200, 236)
	Frame(216, 276, 576, 236)

	// update the video screen and copy it
	RefreshScreen()
	CopyScreen(10, 10, 512, 256)

	// debug assembly, virtual registers and log
	DebugAssembly(538, 14)
	DebugRegisters(14, 282)
	DebugLog(222, 282)

	// keep the tone playing while the sound timer is active
	UpdateAudio()

	// show the new frame
	Renderer.Present()
}

/// Frame draws a bevelled border.
///
func Frame(x, y, w, h int32) {
	Renderer.SetDrawColor(0, 0, 0, 255)
	Renderer.DrawLine(x, y, x+w, y)
	Renderer.DrawLine(x, y, x, y+h)

	// highlight
	Renderer.SetDrawColor(95, 112, 120, 255)
	Renderer.DrawLine(x+w, y, x+w, y+h)
	Renderer.DrawLine(x, y+h, x+w, y+h)
}

/// Fatal shows an error message box, logs the error and exits.
///
func Fatal(msg string, err error) {
	dialog.Message("%s: %v", msg, err).Title("CHIP-8").Error()
	Logger.Fatal(msg, log.Err(err))
}
