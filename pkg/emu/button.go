// Package emu defines the emulator facade consumed by the agent runtime and
// the actor that serializes every interaction with it. The emulator's
// internals (state decoding, collision maps, path solving) live behind the
// Facade interface and stay external to this module.
package emu

import "fmt"

// Button is one of the eight pad inputs understood by the emulator.
type Button string

// The full button vocabulary.
const (
	ButtonA      Button = "a"
	ButtonB      Button = "b"
	ButtonStart  Button = "start"
	ButtonSelect Button = "select"
	ButtonUp     Button = "up"
	ButtonDown   Button = "down"
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
)

// Screen grid bounds used by the path solver.
const (
	GridRows = 9
	GridCols = 10
)

var validButtons = map[Button]struct{}{
	ButtonA: {}, ButtonB: {}, ButtonStart: {}, ButtonSelect: {},
	ButtonUp: {}, ButtonDown: {}, ButtonLeft: {}, ButtonRight: {},
}

// ParseButton validates a button name.
func ParseButton(name string) (Button, error) {
	b := Button(name)
	if _, ok := validButtons[b]; !ok {
		return "", fmt.Errorf("unknown button %q", name)
	}
	return b, nil
}

// ParseButtons validates an ordered sequence of button names.
func ParseButtons(names []string) ([]Button, error) {
	out := make([]Button, 0, len(names))
	for _, name := range names {
		b, err := ParseButton(name)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// ButtonNames renders a button sequence back to plain strings.
func ButtonNames(buttons []Button) []string {
	out := make([]string, len(buttons))
	for i, b := range buttons {
		out[i] = string(b)
	}
	return out
}
