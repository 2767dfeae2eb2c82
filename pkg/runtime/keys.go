package runtime

import (
	"os"
	"sync"

	"golang.org/x/term"
)

// Operator key bindings.
const (
	keyHandoff   = '8'
	keyQuit      = 'q'
	keyQuitUpper = 'Q'
	keySlow      = '-'
	keyFast      = '='
	keyFastAlt   = '+'
	keyInterrupt = 0x03 // Ctrl-C in raw mode
)

// KeySource yields operator keystrokes without blocking the tick loop.
type KeySource interface {
	Keys() <-chan byte
}

// TerminalKeys reads single keystrokes from stdin in raw mode.
type TerminalKeys struct {
	fd        int
	prevState *term.State
	keys      chan byte
	closeOnce sync.Once
}

// OpenTerminalKeys switches stdin to raw mode and starts the reader
// goroutine. Callers must Close to restore the terminal.
func OpenTerminalKeys() (*TerminalKeys, error) {
	fd := int(os.Stdin.Fd())
	var prev *term.State
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		prev = state
	}

	t := &TerminalKeys{
		fd:        fd,
		prevState: prev,
		keys:      make(chan byte, 16),
	}
	go t.read()
	return t, nil
}

func (t *TerminalKeys) read() {
	var buf [1]byte
	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil {
			close(t.keys)
			return
		}
		if n == 0 {
			continue
		}
		select {
		case t.keys <- buf[0]:
		default:
			// Tick loop is behind; drop the keystroke rather than stall.
		}
	}
}

// Keys returns the keystroke channel.
func (t *TerminalKeys) Keys() <-chan byte {
	return t.keys
}

// Close restores the terminal state.
func (t *TerminalKeys) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.prevState != nil {
			err = term.Restore(t.fd, t.prevState)
		}
	})
	return err
}
