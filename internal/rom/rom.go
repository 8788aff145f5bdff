// Package rom reads CHIP-8 program images from a filesystem.
package rom

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/massung/chip8vm/chip8"
	"github.com/spf13/afero"
)

// Read returns the raw program image at path. Images that cannot fit in
// program memory are rejected with chip8.ErrCapacityExceeded without
// being read.
func Read(fs afero.Fs, path string) ([]byte, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("reading rom: %s is a directory", path)
	}
	if info.Size() > chip8.MaxProgramSize {
		return nil, fmt.Errorf("reading rom %s (%d bytes): %w", path, info.Size(), chip8.ErrCapacityExceeded)
	}

	program, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	// the file may have grown since Stat
	if len(program) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("reading rom %s (%d bytes): %w", path, len(program), chip8.ErrCapacityExceeded)
	}

	return program, nil
}

// Load reads the image at path into the machine.
func Load(fs afero.Fs, path string, vm *chip8.Machine) error {
	program, err := Read(fs, path)
	if err != nil {
		return err
	}

	return vm.Load(program)
}

// Name is the file name of the rom without directory or extension, used
// in window titles.
func Name(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
