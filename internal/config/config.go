// Package config handles command line configuration and logger setup.
package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/massung/chip8vm/chip8"
	"github.com/massung/chip8vm/internal/driver"
	"github.com/retroenv/retrogolib/log"
)

// Options are the settings of the host program. The machine itself only
// sees the policy and seed; everything else is consumed by the host.
type Options struct {
	// ROM is the path of the program image to run.
	ROM string

	// Debug traces every executed instruction to the log sink.
	Debug bool

	// Quiet only logs errors.
	Quiet bool

	// Text runs in the terminal instead of a window.
	Text bool

	// Speed is the instruction clock in Hz.
	Speed int

	// Unknown is the unknown opcode policy.
	Unknown chip8.UnknownPolicy

	// Seed for the random number generator, 0 picks one from the clock.
	Seed int64
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage text and flag defaults.
func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: chip8vm [options] <rom file>\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

// ParseFlags parses the command line arguments, without the program name.
// A missing ROM is only an error in text mode; the windowed host asks for
// one with a file dialog.
func ParseFlags(args []string) (Options, error) {
	flags := flag.NewFlagSet("chip8vm", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts Options
	var unknown string

	flags.BoolVar(&opts.Debug, "debug", false, "trace every executed instruction")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")
	flags.BoolVar(&opts.Text, "text", false, "run in the terminal instead of a window")
	flags.IntVar(&opts.Speed, "speed", driver.DefaultSpeed, "instructions executed per second")
	flags.StringVar(&unknown, "unknown", chip8.DefaultOptions().Unknown.String(), "unknown opcode policy (ignore/halt)")
	flags.Int64Var(&opts.Seed, "seed", 0, "random number seed, 0 seeds from the clock")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	var err error
	if opts.Unknown, err = chip8.ParseUnknownPolicy(unknown); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	if opts.Speed < driver.MinSpeed || opts.Speed > driver.MaxSpeed {
		return opts, &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("speed %d out of range %d-%d", opts.Speed, driver.MinSpeed, driver.MaxSpeed),
		}
	}

	switch rest := flags.Args(); len(rest) {
	case 0:
		if opts.Text {
			return opts, &UsageError{flags: flags, msg: "no rom file given"}
		}
	case 1:
		opts.ROM = rest[0]
	default:
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("unexpected arguments after rom file: %v", rest[1:])}
	}

	return opts, nil
}

// Machine returns the machine options selected on the command line.
func (opts Options) Machine() chip8.Options {
	return chip8.Options{
		Unknown: opts.Unknown,
		Seed:    opts.Seed,
	}
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
