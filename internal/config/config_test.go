package config

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/massung/chip8vm/chip8"
	"github.com/massung/chip8vm/internal/driver"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{
			name: "defaults",
			args: []string{"PONG"},
			want: Options{ROM: "PONG", Speed: driver.DefaultSpeed, Unknown: chip8.IgnoreUnknown},
		},
		{
			name: "no rom in window mode",
			args: []string{},
			want: Options{Speed: driver.DefaultSpeed, Unknown: chip8.IgnoreUnknown},
		},
		{
			name: "all flags",
			args: []string{"-debug", "-text", "-speed", "1000", "-unknown", "halt", "-seed", "7", "games/BRIX"},
			want: Options{
				ROM:     "games/BRIX",
				Debug:   true,
				Text:    true,
				Speed:   1000,
				Unknown: chip8.HaltOnUnknown,
				Seed:    7,
			},
		},
		{
			name: "quiet",
			args: []string{"-q", "TETRIS"},
			want: Options{ROM: "TETRIS", Quiet: true, Speed: driver.DefaultSpeed, Unknown: chip8.IgnoreUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags(tt.args)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"text mode without rom", []string{"-text"}},
		{"bad policy", []string{"-unknown", "maybe", "PONG"}},
		{"speed too low", []string{"-speed", "1", "PONG"}},
		{"speed too high", []string{"-speed", "100000", "PONG"}},
		{"extra arguments", []string{"PONG", "-debug"}},
		{"unknown flag", []string{"-fast", "PONG"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags(tt.args)
			assert.True(t, err != nil)

			var usage *UsageError
			assert.True(t, errors.As(err, &usage))

			var buf bytes.Buffer
			usage.ShowUsage(&buf)
			assert.True(t, strings.HasPrefix(buf.String(), "usage: chip8vm"))
			assert.True(t, strings.Contains(buf.String(), "-unknown"))
		})
	}
}

func TestMachineOptions(t *testing.T) {
	opts := Options{Unknown: chip8.HaltOnUnknown, Seed: 42}
	assert.Equal(t, chip8.Options{Unknown: chip8.HaltOnUnknown, Seed: 42}, opts.Machine())
}

func TestCreateLogger(t *testing.T) {
	assert.True(t, CreateLogger(true, false) != nil)
	assert.True(t, CreateLogger(false, true) != nil)
	assert.True(t, CreateLogger(false, false) != nil)
}
