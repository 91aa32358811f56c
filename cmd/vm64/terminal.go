package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/term"

	"github.com/sarchlab/vm64/emu"
)

const keyInterrupt = 0x03

// startRawKeyboard puts the terminal on in into raw mode and feeds each
// keystroke to kbd from a background goroutine. Ctrl-C calls interrupt,
// since raw mode no longer turns it into a signal. The returned function
// restores the terminal.
func startRawKeyboard(
	in *os.File,
	kbd *emu.Keyboard,
	interrupt func(),
	log logr.Logger,
) (func(), error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("-kbd-raw needs stdin to be a terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}

	go func() {
		buf := make([]byte, 64)
		for {
			n, err := in.Read(buf)
			for _, b := range buf[:n] {
				if b == keyInterrupt {
					interrupt()
					continue
				}
				kbd.Write(uint64(translateKey(b)))
			}
			if err != nil {
				log.V(1).Info("keyboard input closed", "err", err.Error())
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { _ = term.Restore(fd, oldState) })
	}, nil
}

// translateKey maps raw terminal bytes to the codes programs expect: Enter
// arrives as CR and Backspace as DEL.
func translateKey(b byte) byte {
	switch b {
	case '\r':
		return '\n'
	case 0x7F:
		return 0x08
	}
	return b
}
