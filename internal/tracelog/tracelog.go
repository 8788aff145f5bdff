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

// Package tracelog keeps the lines shown in the debugger's log panel.
package tracelog

import (
	"strings"
	"sync"
)

// DefaultCapacity is the number of lines kept when none is given.
const DefaultCapacity = 1000

// Log is a scrollable output log of bounded size. It is written to by
// the emulation goroutines and read by the renderer, so all methods lock.
type Log struct {
	mu sync.Mutex

	// buf contains each line of logged text.
	buf []string

	// capacity is the most lines kept, older lines are dropped.
	capacity int

	// pos is the current user read position within the log.
	pos int
}

// New creates a new Log holding at most capacity lines.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Log{
		buf:      make([]string, 0, 100),
		capacity: capacity,
	}
}

// Log outputs a new line to the log.
func (log *Log) Log(s ...string) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.append(strings.Join(s, " "))
}

// Logln outputs a new line to the log, with an empty line prefixed.
func (log *Log) Logln(s ...string) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.append("", strings.Join(s, " "))
}

// Write implements io.Writer, one line per newline-terminated chunk.
func (log *Log) Write(p []byte) (int, error) {
	log.mu.Lock()
	defer log.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		log.append(line)
	}

	return len(p), nil
}

func (log *Log) append(lines ...string) {
	scroll := log.pos == len(log.buf)

	log.buf = append(log.buf, lines...)

	// drop the oldest lines, keeping the read position on the same text
	if n := len(log.buf) - log.capacity; n > 0 {
		log.buf = append(log.buf[:0], log.buf[n:]...)

		if log.pos -= n; log.pos < 0 {
			log.pos = 0
		}
	}

	if scroll {
		log.pos = len(log.buf)
	}
}

// Len is the number of lines held.
func (log *Log) Len() int {
	log.mu.Lock()
	defer log.mu.Unlock()

	return len(log.buf)
}

// Window returns up to n lines ending at the read position.
func (log *Log) Window(n int) []string {
	log.mu.Lock()
	defer log.mu.Unlock()

	start := log.pos - n

	// don't scroll past the beginning
	if start < 0 {
		start = 0
	}

	end := start + n
	if end > len(log.buf) {
		end = len(log.buf)
	}

	return append([]string(nil), log.buf[start:end]...)
}

// Home scrolls the log to the beginning.
func (log *Log) Home() {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos = 0
}

// End scrolls the log to the end.
func (log *Log) End() {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos = len(log.buf)
}

// ScrollUp scrolls the log back one position.
func (log *Log) ScrollUp() {
	log.mu.Lock()
	defer log.mu.Unlock()

	// clamp to home
	if log.pos -= 1; log.pos < 0 {
		log.pos = 0
	}
}

// ScrollDown scrolls the log forward one position.
func (log *Log) ScrollDown(windowSize int) {
	log.mu.Lock()
	defer log.mu.Unlock()

	log.pos += 1

	// if less than the window size, drop to it
	if log.pos <= windowSize {
		log.pos = windowSize + 1
	}

	// clamp to end
	if log.pos >= len(log.buf) {
		log.pos = len(log.buf)
	}
}
