// Package emu provides functional vm64 emulation.
package emu

import (
	"fmt"
	"io"
	"sync"
)

// Default device addresses.
const (
	ScreenAddr   uint64 = 0x100
	KeyboardAddr uint64 = 0x200
)

// KeyboardEmpty is returned by a read from an empty keyboard queue.
const KeyboardEmpty uint64 = 0xFF

// Screen is a character output device. Each write appends the low byte of
// the value to the screen text. Show copies the text written since the
// previous Show to the screen's output, if one is attached.
//
// Screen is safe for concurrent use, so a host may read Text while the CPU
// runs on another goroutine.
type Screen struct {
	mu    sync.Mutex
	text  []byte
	shown int
	out   io.Writer
}

// NewScreen creates a screen. out may be nil.
func NewScreen(out io.Writer) *Screen {
	return &Screen{out: out}
}

// Read returns 0; the screen is write-only.
func (s *Screen) Read() uint64 {
	return 0
}

// Write appends the low byte of value to the screen text.
func (s *Screen) Write(value uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = append(s.text, byte(value))
}

// Show flushes the pending text to the output.
func (s *Screen) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

// Flush is an alias for Show, for hosts that want to drain the screen at
// the end of a run.
func (s *Screen) Flush() {
	s.Show()
}

func (s *Screen) flushLocked() {
	if s.out != nil && s.shown < len(s.text) {
		_, _ = s.out.Write(s.text[s.shown:])
	}
	s.shown = len(s.text)
}

// Text returns everything written to the screen.
func (s *Screen) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.text)
}

// Last returns the most recently written character.
func (s *Screen) Last() (byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.text) == 0 {
		return 0, false
	}
	return s.text[len(s.text)-1], true
}

// Reset clears the screen text.
func (s *Screen) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = s.text[:0]
	s.shown = 0
}

// Keyboard is a FIFO input device. The host writes key codes with Write
// (or Type); the program reads them one at a time. Reading an empty queue
// returns KeyboardEmpty.
//
// Keyboard is safe for concurrent use, so a host goroutine may feed keys
// while the CPU runs.
type Keyboard struct {
	mu    sync.Mutex
	queue []byte
}

// NewKeyboard creates an empty keyboard.
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Read dequeues the next key code.
func (k *Keyboard) Read() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.queue) == 0 {
		return KeyboardEmpty
	}
	c := k.queue[0]
	k.queue = k.queue[1:]
	return uint64(c)
}

// Write enqueues the low byte of value.
func (k *Keyboard) Write(value uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.queue = append(k.queue, byte(value))
}

// Type enqueues every byte of s.
func (k *Keyboard) Type(s string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.queue = append(k.queue, s...)
}

// Pending returns the number of queued key codes.
func (k *Keyboard) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.queue)
}

// Reset drops all queued key codes.
func (k *Keyboard) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.queue = nil
}

// Latch is a single 64-bit cell. Reads return the last written value and
// Show prints "[IO 0xADDR] = value" to the output.
type Latch struct {
	addr  uint64
	value uint64
	out   io.Writer
}

// NewLatch creates a latch that reports itself as living at addr. out may
// be nil.
func NewLatch(addr uint64, out io.Writer) *Latch {
	return &Latch{addr: addr, out: out}
}

// Read returns the last written value.
func (l *Latch) Read() uint64 {
	return l.value
}

// Write stores value.
func (l *Latch) Write(value uint64) {
	l.value = value
}

// Show prints the stored value.
func (l *Latch) Show() {
	if l.out == nil {
		return
	}
	_, _ = fmt.Fprintf(l.out, "[IO 0x%X] = %d\n", l.addr, l.value)
}

// Reset clears the stored value.
func (l *Latch) Reset() {
	l.value = 0
}
